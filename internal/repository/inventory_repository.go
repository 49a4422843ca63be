package repository

import (
	"context"

	"shop/internal/domain/model"

	"github.com/google/uuid"
)

type InventoryRepository interface {
	// 商品を行ロックして最新の在庫を読み直す（id順にロック）
	LockProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]model.Product, error)

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)

	// 在庫戻し（キャンセル）
	IncreaseStock(ctx context.Context, productID uuid.UUID, qty int64) error

	// 台帳に1行追加
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
