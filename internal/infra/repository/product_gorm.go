package repository

import (
	"context"
	"strings"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 削除されていない商品を、検索/価格帯/在庫/カテゴリ/並び替え/ページング付きで返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// 名前の部分一致
	if name := strings.TrimSpace(q.Name); name != "" {
		tx = tx.Where("products.name ILIKE ?", "%"+name+"%")
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("products.price_current >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("products.price_current <= ?", *q.MaxPrice)
	}

	//在庫数以上
	if q.MinStock != nil {
		tx = tx.Where("products.in_stock >= ?", *q.MinStock)
	}

	//カテゴリ
	if q.CategorySlug != "" {
		tx = tx.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", q.CategorySlug)
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	//sort
	switch q.Ordering {
	case "price":
		tx = tx.Order("products.price_current asc").Order("products.id asc")
	case "-price":
		tx = tx.Order("products.price_current desc").Order("products.id desc")
	case "name":
		tx = tx.Order("products.name asc").Order("products.id asc")
	case "-name":
		tx = tx.Order("products.name desc").Order("products.id desc")
	default:
		tx = tx.Order("products.created_at desc").Order("products.id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.
		Preload("Category").
		Preload("Seller").
		Offset(offset).
		Limit(q.Limit).
		Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// slugで商品を取得
func (r *ProductGormRepository) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Seller").
		Where("slug = ?", slug).
		First(&p).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新（price_oldも一緒に保存する）
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":          p.Name,
		"description":   p.Description,
		"price_current": p.PriceCurrent,
		"price_old":     p.PriceOld,
		"in_stock":      p.InStock,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// SAVEPOINTの中でINSERTするので、slug重複でも外側のトランザクションは続けられる。
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Category", "Seller").Create(&p).Error
	})
	if isUniqueViolation(err, model.ProductSlugIndex) {
		return model.Product{}, repo.ErrDuplicateSlug
	}
	if err != nil {
		return model.Product{}, err
	}
	return r.withRelations(ctx, p)
}

func (r *ProductGormRepository) withRelations(ctx context.Context, p model.Product) (model.Product, error) {
	var out model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Seller").
		Where("id = ?", p.ID).
		First(&out).Error
	if err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// 出品者の商品一覧
func (r *ProductGormRepository) ListBySellerID(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Seller").
		Where("seller_id = ?", sellerID).
		Order("created_at desc").Order("id desc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// deleted_atを入れるだけ。注文明細からはUnscopedで読める
func (r *ProductGormRepository) SoftDelete(ctx context.Context, productID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", productID).Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
