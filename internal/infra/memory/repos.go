package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ---- products / categories / sellers ----

type productRepo struct{ s *Store }

func (r productRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.ToLower(strings.TrimSpace(q.Name))
	out := make([]model.Product, 0)
	for _, p := range s.st.products {
		if p.DeletedAt.Valid {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		if q.MinPrice != nil && p.PriceCurrent.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && p.PriceCurrent.GreaterThan(*q.MaxPrice) {
			continue
		}
		if q.MinStock != nil && p.InStock < *q.MinStock {
			continue
		}
		if q.CategorySlug != "" && s.st.categories[p.CategoryID].Slug != q.CategorySlug {
			continue
		}
		out = append(out, s.withRelations(p))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch q.Ordering {
		case "price":
			if !a.PriceCurrent.Equal(b.PriceCurrent) {
				return a.PriceCurrent.LessThan(b.PriceCurrent)
			}
		case "-price":
			if !a.PriceCurrent.Equal(b.PriceCurrent) {
				return a.PriceCurrent.GreaterThan(b.PriceCurrent)
			}
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case "-name":
			if a.Name != b.Name {
				return a.Name > b.Name
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	total := int64(len(out))
	return paginate(out, q.Page, q.Limit), total, nil
}

func (r productRepo) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.st.products {
		if p.Slug == slug && !p.DeletedAt.Valid {
			return s.withRelations(p), nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r productRepo) Update(ctx context.Context, p model.Product) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.st.products[p.ID]
	if !ok || cur.DeletedAt.Valid {
		return repo.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.PriceCurrent = p.PriceCurrent
	cur.PriceOld = p.PriceOld
	cur.InStock = p.InStock
	cur.UpdatedAt = s.tick()
	s.st.products[p.ID] = cur
	return nil
}

func (r productRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	//slugのユニーク制約（削除済みも含む）
	for _, cur := range s.st.products {
		if cur.Slug == p.Slug {
			return model.Product{}, repo.ErrDuplicateSlug
		}
	}
	p.Category = model.Category{}
	p.Seller = nil
	s.stamp(&p.BaseModel)
	s.st.products[p.ID] = p
	return s.withRelations(p), nil
}

func (r productRepo) ListBySellerID(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0)
	for _, p := range s.st.products {
		if p.DeletedAt.Valid || p.SellerID == nil || *p.SellerID != sellerID {
			continue
		}
		out = append(out, s.withRelations(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r productRepo) SoftDelete(ctx context.Context, productID uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[productID]
	if !ok || p.DeletedAt.Valid {
		return repo.ErrNotFound
	}
	p.DeletedAt = gorm.DeletedAt{Time: s.tick(), Valid: true}
	s.st.products[productID] = p
	return nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Category, 0, len(s.st.categories))
	for _, c := range s.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r categoryRepo) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.st.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return model.Category{}, repo.ErrNotFound
}

func (r categoryRepo) Create(ctx context.Context, c model.Category) (model.Category, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.st.categories {
		if cur.Name == c.Name || cur.Slug == c.Slug {
			return model.Category{}, repo.ErrDuplicateCategory
		}
	}
	s.stamp(&c.BaseModel)
	s.st.categories[c.ID] = c
	return c, nil
}

type sellerRepo struct{ s *Store }

func (r sellerRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (model.Seller, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.st.sellers {
		if v.UserID == userID {
			return v, nil
		}
	}
	return model.Seller{}, repo.ErrNotFound
}

func (r sellerRepo) FindBySlug(ctx context.Context, slug string) (model.Seller, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.st.sellers {
		if v.Slug == slug {
			return v, nil
		}
	}
	return model.Seller{}, repo.ErrNotFound
}

func (r sellerRepo) Save(ctx context.Context, v model.Seller) (model.Seller, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.st.sellers {
		if cur.ID != v.ID && cur.Slug == v.Slug {
			return model.Seller{}, repo.ErrDuplicateSlug
		}
	}
	if cur, ok := s.st.sellers[v.ID]; ok {
		v.UserID = cur.UserID
		v.IsApproved = cur.IsApproved
		v.CreatedAt = cur.CreatedAt
		v.UpdatedAt = s.tick()
	} else {
		s.stamp(&v.BaseModel)
	}
	s.st.sellers[v.ID] = v
	return v, nil
}

func (r sellerRepo) SetApproved(ctx context.Context, sellerID uuid.UUID, approved bool) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.st.sellers[sellerID]
	if !ok {
		return repo.ErrNotFound
	}
	v.IsApproved = approved
	v.UpdatedAt = s.tick()
	s.st.sellers[sellerID] = v
	return nil
}

// ---- inventory ----

type inventoryRepo struct{ s *Store }

// 排他はWithinTxで取っている
func (r inventoryRepo) LockProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("LockProducts"); err != nil {
		return nil, err
	}
	s.locks = append(s.locks, append([]uuid.UUID(nil), ids...))
	out := make(map[uuid.UUID]model.Product, len(ids))
	for _, id := range ids {
		p, ok := s.st.products[id]
		if !ok || p.DeletedAt.Valid {
			continue
		}
		out[id] = s.withRelations(p)
	}
	return out, nil
}

func (r inventoryRepo) DecreaseStockIfEnough(ctx context.Context, productID uuid.UUID, qty int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("DecreaseStockIfEnough"); err != nil {
		return false, err
	}
	p, ok := s.st.products[productID]
	if !ok || p.DeletedAt.Valid || p.InStock < qty {
		return false, nil
	}
	p.InStock -= qty
	s.st.products[productID] = p
	return true, nil
}

func (r inventoryRepo) IncreaseStock(ctx context.Context, productID uuid.UUID, qty int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.InStock += qty
	s.st.products[productID] = p
	return nil
}

func (r inventoryRepo) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("CreateAdjustment"); err != nil {
		return err
	}
	s.stamp(&adj.BaseModel)
	s.st.adjustments = append(s.st.adjustments, adj)
	return nil
}

// ---- cart lines / order items ----

type lineRepo struct{ s *Store }

func (r lineRepo) ListOpenByUserID(ctx context.Context, userID uuid.UUID) ([]model.OrderItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.OrderItem, 0)
	for _, it := range s.st.items {
		if it.UserID == userID && it.OrderID == nil {
			out = append(out, s.withProduct(it))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r lineRepo) FindOpenByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (model.OrderItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.st.items {
		if it.UserID == userID && it.ProductID == productID && it.OrderID == nil {
			return it, nil
		}
	}
	return model.OrderItem{}, repo.ErrNotFound
}

func (r lineRepo) Create(ctx context.Context, item model.OrderItem) (model.OrderItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	//部分ユニーク制約
	for _, it := range s.st.items {
		if it.UserID == item.UserID && it.ProductID == item.ProductID && it.OrderID == nil {
			return model.OrderItem{}, repo.ErrDuplicateCartLine
		}
	}
	item.Product = model.Product{}
	s.stamp(&item.BaseModel)
	s.st.items[item.ID] = item
	return item, nil
}

func (r lineRepo) UpdateQuantity(ctx context.Context, itemID uuid.UUID, qty int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.st.items[itemID]
	if !ok || it.OrderID != nil {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	it.UpdatedAt = s.tick()
	s.st.items[itemID] = it
	return nil
}

func (r lineRepo) DeleteByID(ctx context.Context, itemID uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.st.items[itemID]
	if !ok || it.OrderID != nil {
		return repo.ErrNotFound
	}
	delete(s.st.items, itemID)
	return nil
}

func (r lineRepo) AttachToOrder(ctx context.Context, userID, orderID uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault("AttachToOrder"); err != nil {
		return 0, err
	}
	var n int64
	for _, id := range itemIDs {
		it, ok := s.st.items[id]
		if !ok || it.UserID != userID || it.OrderID != nil {
			continue
		}
		oid := orderID
		it.OrderID = &oid
		s.st.items[id] = it
		n++
	}
	return n, nil
}

func (r lineRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderItems(orderID), nil
}

// muを持って呼ぶ
func (s *Store) orderItems(orderID uuid.UUID) []model.OrderItem {
	out := make([]model.OrderItem, 0)
	for _, it := range s.st.items {
		if it.OrderID != nil && *it.OrderID == orderID {
			out = append(out, s.withProduct(it))
		}
	}
	sortNewestFirst(out)
	return out
}

// 削除済み商品も付ける。muを持って呼ぶ
func (s *Store) withProduct(it model.OrderItem) model.OrderItem {
	if p, ok := s.st.products[it.ProductID]; ok {
		it.Product = s.withRelations(p)
	}
	return it
}

func sortNewestFirst(items []model.OrderItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// ---- orders ----

type orderRepo struct{ s *Store }

func (r orderRepo) Create(ctx context.Context, order model.Order) (model.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	//tx_refのユニーク制約
	for _, o := range s.st.orders {
		if o.TxRef == order.TxRef {
			return model.Order{}, repo.ErrDuplicateTxRef
		}
	}
	order.Items = nil
	order.User = model.User{}
	s.stamp(&order.BaseModel)
	s.st.orders[order.ID] = order
	return order, nil
}

func (r orderRepo) ExistsTxRef(ctx context.Context, txRef string) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.st.orders {
		if o.TxRef == txRef {
			return true, nil
		}
	}
	return false, nil
}

func (r orderRepo) FindByTxRef(ctx context.Context, txRef string) (model.Order, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.st.orders {
		if o.TxRef == txRef {
			o.User = s.st.users[o.UserID]
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r orderRepo) ListByUserID(ctx context.Context, userID uuid.UUID, page int, limit int) ([]model.Order, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0)
	for _, o := range s.st.orders {
		if o.UserID != userID {
			continue
		}
		o.User = s.st.users[o.UserID]
		o.Items = s.orderItems(o.ID)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	return paginate(out, page, limit), total, nil
}

func (r orderRepo) MarkCancelled(ctx context.Context, orderID uuid.UUID) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[orderID]
	if !ok || !o.IsCancellable() {
		return false, nil
	}
	o.PaymentStatus = model.PaymentStatusCancelled
	o.UpdatedAt = s.tick()
	s.st.orders[orderID] = o
	return true, nil
}

// ---- addresses / audit logs / users ----

type addressRepo struct{ s *Store }

func (r addressRepo) Create(ctx context.Context, a model.ShippingAddress) (model.ShippingAddress, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&a.BaseModel)
	s.st.addresses[a.ID] = a
	return a, nil
}

func (r addressRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.ShippingAddress, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ShippingAddress, 0)
	for _, a := range s.st.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r addressRepo) FindByIDForUser(ctx context.Context, addressID, userID uuid.UUID) (model.ShippingAddress, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.addresses[addressID]
	if !ok || a.UserID != userID {
		return model.ShippingAddress{}, repo.ErrNotFound
	}
	return a, nil
}

func (r addressRepo) Update(ctx context.Context, a model.ShippingAddress) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.st.addresses[a.ID]
	if !ok || cur.UserID != a.UserID {
		return repo.ErrNotFound
	}
	a.CreatedAt = cur.CreatedAt
	a.UpdatedAt = s.tick()
	s.st.addresses[a.ID] = a
	return nil
}

func (r addressRepo) Delete(ctx context.Context, addressID, userID uuid.UUID) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.addresses[addressID]
	if !ok || a.UserID != userID {
		return repo.ErrNotFound
	}
	delete(s.st.addresses, addressID)
	return nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Create(ctx context.Context, log model.AuditLog) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&log.BaseModel)
	s.st.audits = append(s.st.audits, log)
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.st.users {
		if strings.EqualFold(cur.Email, u.Email) {
			return repo.ErrEmailTaken
		}
	}
	s.stamp(&u.BaseModel)
	s.st.users[u.ID] = *u
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	return &u, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (r userRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return repo.ErrUserNotFound
	}
	u.LastLoginAt = &at
	s.st.users[id] = u
	return nil
}

func (r userRepo) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) error {
	return r.s.updateUser(id, func(u *model.User) {
		u.FirstName = firstName
		u.LastName = lastName
	})
}

func (r userRepo) SetAccountType(ctx context.Context, id uuid.UUID, t model.AccountType) error {
	return r.s.updateUser(id, func(u *model.User) { u.AccountType = t })
}

func (r userRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.s.updateUser(id, func(u *model.User) {
		u.IsActive = false
		u.TokenVersion++
	})
}

func (s *Store) updateUser(id uuid.UUID, fn func(u *model.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return repo.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = s.tick()
	s.st.users[id] = u
	return nil
}

func paginate[T any](list []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return list
	}
	start := (page - 1) * limit
	if start >= len(list) {
		return []T{}
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}
