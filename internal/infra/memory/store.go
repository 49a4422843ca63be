// Package memory is an in-process implementation of every repository and the
// transaction manager. Transactions are serialized and rolled back by restoring
// a snapshot of the whole store.
package memory

import (
	"context"
	"sync"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/google/uuid"
)

type state struct {
	users       map[uuid.UUID]model.User
	sellers     map[uuid.UUID]model.Seller
	categories  map[uuid.UUID]model.Category
	products    map[uuid.UUID]model.Product
	items       map[uuid.UUID]model.OrderItem
	orders      map[uuid.UUID]model.Order
	addresses   map[uuid.UUID]model.ShippingAddress
	adjustments []model.InventoryAdjustment
	audits      []model.AuditLog
}

func (st state) clone() state {
	out := state{
		users:       make(map[uuid.UUID]model.User, len(st.users)),
		sellers:     make(map[uuid.UUID]model.Seller, len(st.sellers)),
		categories:  make(map[uuid.UUID]model.Category, len(st.categories)),
		products:    make(map[uuid.UUID]model.Product, len(st.products)),
		items:       make(map[uuid.UUID]model.OrderItem, len(st.items)),
		orders:      make(map[uuid.UUID]model.Order, len(st.orders)),
		addresses:   make(map[uuid.UUID]model.ShippingAddress, len(st.addresses)),
		adjustments: append([]model.InventoryAdjustment(nil), st.adjustments...),
		audits:      append([]model.AuditLog(nil), st.audits...),
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	for k, v := range st.sellers {
		out.sellers[k] = v
	}
	for k, v := range st.categories {
		out.categories[k] = v
	}
	for k, v := range st.products {
		out.products[k] = v
	}
	for k, v := range st.items {
		out.items[k] = v
	}
	for k, v := range st.orders {
		out.orders[k] = v
	}
	for k, v := range st.addresses {
		out.addresses[k] = v
	}
	return out
}

type Store struct {
	// 1度に1トランザクション
	txMu sync.Mutex

	mu     sync.Mutex
	st     state
	clock  time.Time
	faults map[string]error
	// LockProducts呼び出しの履歴
	locks [][]uuid.UUID
}

func NewStore() *Store {
	return &Store{
		st:     state{}.clone(),
		clock:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		faults: map[string]error{},
	}
}

// created_atの順序を保証するため1件ごとに進める。muを持って呼ぶ
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *Store) stamp(b *model.BaseModel) {
	now := s.tick()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// 次にopが呼ばれたとき1回だけerrを返す。muを持って呼ぶ
func (s *Store) fault(op string) error {
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

// 障害注入（テスト用）
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Orders() repo.OrderRepository         { return orderRepo{s} }
func (s *Store) OrderItems() repo.OrderItemRepository { return lineRepo{s} }
func (s *Store) CartLines() repo.CartLineRepository   { return lineRepo{s} }
func (s *Store) Inventory() repo.InventoryRepository  { return inventoryRepo{s} }
func (s *Store) Products() repo.ProductRepository     { return productRepo{s} }
func (s *Store) Addresses() repo.AddressRepository    { return addressRepo{s} }
func (s *Store) AuditLogs() repo.AuditLogRepository   { return auditRepo{s} }
func (s *Store) Users() repo.UserRepository           { return userRepo{s} }
func (s *Store) Sellers() repo.SellerRepository       { return sellerRepo{s} }
func (s *Store) Categories() repo.CategoryRepository  { return categoryRepo{s} }

var _ repo.TxRepos = (*Store)(nil)
var _ repo.TransactionManager = (*Store)(nil)
