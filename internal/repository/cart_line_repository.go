package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"

	"github.com/google/uuid"
)

// 同じ商品のカート行が同時に作られた
var ErrDuplicateCartLine = errors.New("duplicate cart line")

// カートの行（order_idがNULLのOrderItem）を扱う
type CartLineRepository interface {
	// Product付きで返す（新しい順）
	ListOpenByUserID(ctx context.Context, userID uuid.UUID) ([]model.OrderItem, error)

	// 行ロックして取得。無ければErrNotFound
	FindOpenByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (model.OrderItem, error)

	// 同じ商品の行が既にあればErrDuplicateCartLine
	Create(ctx context.Context, item model.OrderItem) (model.OrderItem, error)
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, qty int64) error
	DeleteByID(ctx context.Context, itemID uuid.UUID) error

	// カートの行を注文に付け替える。付け替えた件数を返す
	AttachToOrder(ctx context.Context, userID, orderID uuid.UUID, itemIDs []uuid.UUID) (int64, error)
}
