package memory

import (
	"time"

	"shop/internal/domain/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// テストデータの投入と確認

func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&u.BaseModel)
	s.st.users[u.ID] = u
	return u
}

func (s *Store) AddSeller(v model.Seller) model.Seller {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&v.BaseModel)
	s.st.sellers[v.ID] = v
	return v
}

func (s *Store) AddCategory(c model.Category) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&c.BaseModel)
	s.st.categories[c.ID] = c
	return c
}

func (s *Store) AddProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&p.BaseModel)
	s.st.products[p.ID] = p
	return s.withRelations(p)
}

func (s *Store) AddAddress(a model.ShippingAddress) model.ShippingAddress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&a.BaseModel)
	s.st.addresses[a.ID] = a
	return a
}

// 論理削除
func (s *Store) SoftDeleteProduct(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	if !ok {
		return
	}
	p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	s.st.products[id] = p
}

// 削除済みも含めて返す
func (s *Store) Product(id uuid.UUID) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	return p, ok
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orders)
}

func (s *Store) Adjustments() []model.InventoryAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.InventoryAdjustment(nil), s.st.adjustments...)
}

func (s *Store) AuditEntries() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AuditLog(nil), s.st.audits...)
}

// LockProductsに渡されたid列を呼び出し順に返す
func (s *Store) LockCalls() [][]uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]uuid.UUID, len(s.locks))
	for i, ids := range s.locks {
		out[i] = append([]uuid.UUID(nil), ids...)
	}
	return out
}

// Category・Sellerを付ける。muを持って呼ぶ
func (s *Store) withRelations(p model.Product) model.Product {
	p.Category = s.st.categories[p.CategoryID]
	p.Seller = nil
	if p.SellerID != nil {
		if v, ok := s.st.sellers[*p.SellerID]; ok {
			p.Seller = &v
		}
	}
	return p
}
