package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// カテゴリ名かslugが使用済み
var ErrDuplicateCategory = errors.New("duplicate category")

// 一覧検索
type ProductListQuery struct {
	Page         int
	Limit        int
	Name         string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinStock     *int64
	CategorySlug string
	Ordering     string // price / -price / name / -name
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	// Category・Seller付き
	FindBySlug(ctx context.Context, slug string) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	// slugが重複したらErrDuplicateSlug（トランザクションは生きたまま）
	Create(ctx context.Context, p model.Product) (model.Product, error)
	// 出品者の商品（削除済みを除く）を新しい順に
	ListBySellerID(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error)
	// 論理削除。注文履歴からは引き続き参照できる
	SoftDelete(ctx context.Context, productID uuid.UUID) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindBySlug(ctx context.Context, slug string) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
}
