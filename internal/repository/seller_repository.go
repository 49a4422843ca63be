package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"

	"github.com/google/uuid"
)

// slugが使用済み（商品・出品者で共通）
var ErrDuplicateSlug = errors.New("duplicate slug")

type SellerRepository interface {
	// 出品者でなければErrNotFound
	FindByUserID(ctx context.Context, userID uuid.UUID) (model.Seller, error)
	FindBySlug(ctx context.Context, slug string) (model.Seller, error)
	// IDが空なら作成、あれば更新（user_id・is_approvedは変えない）。
	// slugが重複したらErrDuplicateSlug（トランザクションは生きたまま）
	Save(ctx context.Context, s model.Seller) (model.Seller, error)
	SetApproved(ctx context.Context, sellerID uuid.UUID, approved bool) error
}
