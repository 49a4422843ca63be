package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shop/internal/access"
	"shop/internal/domain/model"
	repo "shop/internal/repository"
	"shop/internal/slug"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	tx         repo.TransactionManager
	products   repo.ProductRepository
	categories repo.CategoryRepository
	sellers    repo.SellerRepository
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	categories repo.CategoryRepository,
	sellers repo.SellerRepository,
) *ProductUsecase {
	return &ProductUsecase{
		tx:         tx,
		products:   products,
		categories: categories,
		sellers:    sellers,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	PageSize int
	Name     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  *int64
	Category string
	Ordering string
}

type CategoryOutput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type SellerOutput struct {
	BusinessName string `json:"business_name"`
	Slug         string `json:"slug"`
}

type ProductOutput struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	Description  string         `json:"description"`
	PriceOld     *string        `json:"price_old"`
	PriceCurrent string         `json:"price_current"`
	InStock      int64          `json:"in_stock"`
	Category     CategoryOutput `json:"category"`
	Seller       *SellerOutput  `json:"seller"`
	CreatedAt    time.Time      `json:"created_at"`
}

func toProductOutput(p model.Product) ProductOutput {
	out := ProductOutput{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		PriceOld:     nullMoney(p.PriceOld),
		PriceCurrent: money(p.PriceCurrent),
		InStock:      p.InStock,
		Category:     CategoryOutput{Name: p.Category.Name, Slug: p.Category.Slug},
		CreatedAt:    p.CreatedAt,
	}
	if p.Seller != nil {
		out.Seller = &SellerOutput{BusinessName: p.Seller.BusinessName, Slug: p.Seller.Slug}
	}
	return out
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (Page[ProductOutput], error) {
	if len(in.Name) > 150 {
		return Page[ProductOutput]{}, validationError("name too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return Page[ProductOutput]{}, validationError("min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return Page[ProductOutput]{}, validationError("max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return Page[ProductOutput]{}, validationError("min_price must be <= max_price")
	}
	if in.InStock != nil && *in.InStock < 0 {
		return Page[ProductOutput]{}, validationError("in_stock must be >= 0")
	}
	switch in.Ordering {
	case "", "price", "-price", "name", "-name":
	default:
		return Page[ProductOutput]{}, validationError("invalid ordering")
	}

	page, size := normalizePage(in.Page, in.PageSize)

	items, total, err := u.products.List(ctx, repo.ProductListQuery{
		Page:         page,
		Limit:        size,
		Name:         strings.TrimSpace(in.Name),
		MinPrice:     in.MinPrice,
		MaxPrice:     in.MaxPrice,
		MinStock:     in.InStock,
		CategorySlug: strings.TrimSpace(in.Category),
		Ordering:     in.Ordering,
	})
	if err != nil {
		return Page[ProductOutput]{}, internal(err)
	}

	out := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		out = append(out, toProductOutput(p))
	}
	return Page[ProductOutput]{
		PageNumber: page,
		TotalPages: totalPages(total, size),
		Result:     out,
		Count:      total,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productSlug string) (ProductOutput, error) {
	p, err := u.products.FindBySlug(ctx, strings.TrimSpace(productSlug))
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, notFound("Product does not exist!")
	}
	if err != nil {
		return ProductOutput{}, internal(err)
	}
	return toProductOutput(p), nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]CategoryOutput, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return nil, internal(err)
	}
	out := make([]CategoryOutput, 0, len(list))
	for _, c := range list {
		out = append(out, CategoryOutput{Name: c.Name, Slug: c.Slug})
	}
	return out, nil
}

// nilの項目は変更しない
type SellerUpdateProductInput struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	PriceCurrent *decimal.Decimal `json:"price_current"`
	InStock      *int64           `json:"in_stock"`
}

// 監査ログに残す項目
type productAuditView struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	PriceOld     *string `json:"price_old"`
	PriceCurrent string  `json:"price_current"`
	InStock      int64   `json:"in_stock"`
}

func toProductAuditJSON(p model.Product) (string, error) {
	return auditPayload(productAuditView{
		Name:         p.Name,
		Description:  p.Description,
		PriceOld:     nullMoney(p.PriceOld),
		PriceCurrent: money(p.PriceCurrent),
		InStock:      p.InStock,
	})
}

// 出品者（承認済み・自分の商品）かスタッフだけが更新できる
func (u *ProductUsecase) SellerUpdateProduct(ctx context.Context, actor *model.User, productSlug string, in SellerUpdateProductInput) (ProductOutput, error) {
	if actor == nil {
		return ProductOutput{}, ErrUnauthorized
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return ProductOutput{}, validationError("name required")
	}
	if in.PriceCurrent != nil && !in.PriceCurrent.IsPositive() {
		return ProductOutput{}, validationError("price_current must be > 0")
	}
	if in.InStock != nil && *in.InStock < 0 {
		return ProductOutput{}, validationError("in_stock must be >= 0")
	}

	seller, err := u.sellerOf(ctx, actor)
	if err != nil {
		return ProductOutput{}, internal(err)
	}

	var out model.Product

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindBySlug(ctx, strings.TrimSpace(productSlug))
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Product does not exist!")
		}
		if err != nil {
			return err
		}
		if !access.CanManageProduct(actor, seller, p) {
			return ErrForbidden
		}

		//在庫は行ロックして読み直す
		locked, err := r.Inventory().LockProducts(ctx, []uuid.UUID{p.ID})
		if err != nil {
			return err
		}
		if cur, ok := locked[p.ID]; ok {
			p.InStock = cur.InStock
		}

		before, err := toProductAuditJSON(p)
		if err != nil {
			return err
		}
		oldStock := p.InStock

		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.PriceCurrent != nil {
			p.ChangePrice(in.PriceCurrent.Round(2))
		}
		if in.InStock != nil {
			p.InStock = *in.InStock
		}

		if err := r.Products().Update(ctx, p); err != nil {
			return err
		}

		//在庫が変わったら台帳に残す
		if delta := p.InStock - oldStock; delta != 0 {
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   p.ID,
				ActorUserID: actor.ID,
				Delta:       delta,
				Reason:      "seller update",
			}); err != nil {
				return err
			}
		}

		if err := writeProductAudit(ctx, r, actor, model.AuditActionUpdateProduct, before, p); err != nil {
			return err
		}

		out = p
		return nil
	})
	if err != nil {
		return ProductOutput{}, internal(err)
	}
	return toProductOutput(out), nil
}

// 出品者でなければnil
func (u *ProductUsecase) sellerOf(ctx context.Context, actor *model.User) (*model.Seller, error) {
	if !access.IsSeller(actor) {
		return nil, nil
	}
	s, err := u.sellers.FindByUserID(ctx, actor.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func accessDenied() error {
	return &HTTPError{Status: ErrForbidden.Status, Code: ErrForbidden.Code, Message: "Access is denied"}
}

// 承認済みの出品者本人。それ以外は403
func (u *ProductUsecase) approvedSeller(ctx context.Context, actor *model.User) (model.Seller, error) {
	seller, err := u.sellerOf(ctx, actor)
	if err != nil {
		return model.Seller{}, internal(err)
	}
	if seller == nil || !seller.IsApproved {
		return model.Seller{}, accessDenied()
	}
	return *seller, nil
}

func writeProductAudit(ctx context.Context, r repo.TxRepos, actor *model.User, action model.AuditAction, before string, p model.Product) error {
	after := ""
	if action != model.AuditActionDeleteProduct {
		var err error
		if after, err = toProductAuditJSON(p); err != nil {
			return err
		}
	}
	return r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actor.ID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   p.ID.String(),
		BeforeJSON:   before,
		AfterJSON:    after,
	})
}

func (u *ProductUsecase) ListSellerProducts(ctx context.Context, actor *model.User) ([]ProductOutput, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	seller, err := u.approvedSeller(ctx, actor)
	if err != nil {
		return nil, err
	}

	list, err := u.products.ListBySellerID(ctx, seller.ID)
	if err != nil {
		return nil, internal(err)
	}
	out := make([]ProductOutput, 0, len(list))
	for _, p := range list {
		out = append(out, toProductOutput(p))
	}
	return out, nil
}

// POST /seller/productsの本文
type CreateProductInput struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	PriceCurrent *decimal.Decimal `json:"price_current"`
	CategorySlug string           `json:"category_slug"`
	InStock      *int64           `json:"in_stock"`
}

func (in CreateProductInput) validate() error {
	if in.Name == "" {
		return validationError("name required")
	}
	if len(in.Name) > 150 {
		return validationError("name too long")
	}
	if in.Description == "" {
		return validationError("description required")
	}
	if in.CategorySlug == "" {
		return validationError("category_slug required")
	}
	if in.PriceCurrent == nil || !in.PriceCurrent.IsPositive() {
		return validationError("price_current must be > 0")
	}
	if in.InStock == nil || *in.InStock < 0 {
		return validationError("in_stock must be >= 0")
	}
	return nil
}

// 承認済み出品者の商品を作る。slugは名前から付ける
func (u *ProductUsecase) CreateSellerProduct(ctx context.Context, actor *model.User, in CreateProductInput) (ProductOutput, error) {
	if actor == nil {
		return ProductOutput{}, ErrUnauthorized
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategorySlug = strings.TrimSpace(in.CategorySlug)
	if err := in.validate(); err != nil {
		return ProductOutput{}, err
	}

	seller, err := u.approvedSeller(ctx, actor)
	if err != nil {
		return ProductOutput{}, err
	}

	var out model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		category, err := r.Categories().FindBySlug(ctx, in.CategorySlug)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Category does not exist!")
		}
		if err != nil {
			return err
		}

		base := slug.Make(in.Name)
		if base == "" {
			base = "product"
		}
		p, err := withUniqueSlug(base, func(candidate string) (model.Product, error) {
			return r.Products().Create(ctx, model.Product{
				SellerID:     &seller.ID,
				CategoryID:   category.ID,
				Name:         in.Name,
				Slug:         candidate,
				Description:  in.Description,
				PriceCurrent: in.PriceCurrent.Round(2),
				InStock:      *in.InStock,
			})
		})
		if err != nil {
			return err
		}

		//初期在庫も台帳に残す
		if p.InStock > 0 {
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   p.ID,
				ActorUserID: actor.ID,
				Delta:       p.InStock,
				Reason:      "seller create",
			}); err != nil {
				return err
			}
		}

		if err := writeProductAudit(ctx, r, actor, model.AuditActionCreateProduct, "", p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return ProductOutput{}, internal(err)
	}
	return toProductOutput(out), nil
}

// 論理削除。カートや注文明細の行はそのまま残る
func (u *ProductUsecase) SellerDeleteProduct(ctx context.Context, actor *model.User, productSlug string) error {
	if actor == nil {
		return ErrUnauthorized
	}

	seller, err := u.sellerOf(ctx, actor)
	if err != nil {
		return internal(err)
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindBySlug(ctx, strings.TrimSpace(productSlug))
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Product does not exist!")
		}
		if err != nil {
			return err
		}
		if !access.CanManageProduct(actor, seller, p) {
			return accessDenied()
		}

		before, err := toProductAuditJSON(p)
		if err != nil {
			return err
		}
		if err := r.Products().SoftDelete(ctx, p.ID); err != nil {
			return err
		}
		return writeProductAudit(ctx, r, actor, model.AuditActionDeleteProduct, before, p)
	})
	if err != nil {
		return internal(err)
	}
	return nil
}

// POST /categoriesの本文。slugが空なら名前から作る
type CreateCategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// スタッフだけがカテゴリを追加できる
func (u *ProductUsecase) CreateCategory(ctx context.Context, actor *model.User, in CreateCategoryInput) (CategoryOutput, error) {
	if actor == nil {
		return CategoryOutput{}, ErrUnauthorized
	}
	if !access.IsStaff(actor) {
		return CategoryOutput{}, ErrForbidden
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CategoryOutput{}, validationError("name required")
	}
	if len(name) > 100 {
		return CategoryOutput{}, validationError("name too long")
	}

	s := strings.TrimSpace(in.Slug)
	if s == "" {
		s = slug.Make(name)
	}
	if s == "" || s != slug.Make(s) || len(s) > 120 {
		return CategoryOutput{}, validationError("invalid slug")
	}

	c, err := u.categories.Create(ctx, model.Category{Name: name, Slug: s})
	if errors.Is(err, repo.ErrDuplicateCategory) {
		return CategoryOutput{}, NewHTTPError(http.StatusConflict, ErrConflict.Code, "Category already exists")
	}
	if err != nil {
		return CategoryOutput{}, internal(err)
	}
	return CategoryOutput{Name: c.Name, Slug: c.Slug}, nil
}
