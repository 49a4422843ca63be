package repository

import (
	"context"

	"shop/internal/domain/model"
	repo "shop/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 注文を作成。
// SAVEPOINTの中でINSERTするので、tx_ref重複でも外側のトランザクションは続けられる。
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User", "Items").Create(&order).Error
	})
	if isUniqueViolation(err, model.OrderTxRefIndex) {
		return model.Order{}, repo.ErrDuplicateTxRef
	}
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) ExistsTxRef(ctx context.Context, txRef string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("tx_ref = ?", txRef).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *OrderGormRepository) FindByTxRef(ctx context.Context, txRef string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("tx_ref = ?", txRef).
		First(&o).Error
	if isNotFound(err) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 明細と商品はまとめて取る（N+1にしない）
func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID uuid.UUID, page int, limit int) ([]model.Order, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

// 発送前・支払い前の注文だけキャンセルにする
func (r *OrderGormRepository) MarkCancelled(ctx context.Context, orderID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND delivery_status = ? AND payment_status = ?",
			orderID, model.DeliveryStatusPending, model.PaymentStatusPending).
		Update("payment_status", model.PaymentStatusCancelled)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
