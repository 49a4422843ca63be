package repository

import (
	"context"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// ユーザーのカート（未注文の行）を一覧取得。削除済みの商品も付ける
func (r *CartLineGormRepository) ListOpenByUserID(ctx context.Context, userID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem

	if err := r.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("user_id = ? AND order_id IS NULL", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return []model.OrderItem{}, err
	}

	return items, nil
}

// 同じ商品の行をロックして取得
func (r *CartLineGormRepository) FindOpenByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (model.OrderItem, error) {
	var item model.OrderItem

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ? AND order_id IS NULL", userID, productID).
		First(&item).Error

	if isNotFound(err) {
		return model.OrderItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.OrderItem{}, err
	}
	return item, nil
}

// 新しい行を作成
func (r *CartLineGormRepository) Create(ctx context.Context, item model.OrderItem) (model.OrderItem, error) {
	//Productは保存しない
	err := r.db.WithContext(ctx).Omit("Product").Create(&item).Error
	if isUniqueViolation(err, model.OpenCartLineIndex) {
		return model.OrderItem{}, repo.ErrDuplicateCartLine
	}
	if err != nil {
		return model.OrderItem{}, err
	}
	return item, nil
}

// 数量を更新（注文済みの行は触らない）
func (r *CartLineGormRepository) UpdateQuantity(ctx context.Context, itemID uuid.UUID, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id = ? AND order_id IS NULL", itemID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 行を削除
func (r *CartLineGormRepository) DeleteByID(ctx context.Context, itemID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND order_id IS NULL", itemID).
		Delete(&model.OrderItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カートの行にorder_idを入れて注文明細にする（コピーしない）
func (r *CartLineGormRepository) AttachToOrder(ctx context.Context, userID, orderID uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Where("id IN ? AND user_id = ? AND order_id IS NULL", itemIDs, userID).
		Update("order_id", orderID)

	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// 注文の明細を取得（削除済み商品も含める）
func (r *CartLineGormRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.WithContext(ctx).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Product.Category").
		Preload("Product.Seller").
		Where("order_id = ?", orderID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.OrderItem{}, err
	}
	return items, nil
}
