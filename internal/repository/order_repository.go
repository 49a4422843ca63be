package repository

import (
	"context"
	"errors"

	"shop/internal/domain/model"

	"github.com/google/uuid"
)

// tx_refのユニーク制約に当たった
var ErrDuplicateTxRef = errors.New("duplicate tx_ref")

type OrderRepository interface {
	// tx_refが重複したらErrDuplicateTxRef（トランザクションは生きたまま）
	Create(ctx context.Context, order model.Order) (model.Order, error)
	ExistsTxRef(ctx context.Context, txRef string) (bool, error)

	// User付きで返す
	FindByTxRef(ctx context.Context, txRef string) (model.Order, error)

	// User・明細付きで新しい順
	ListByUserID(ctx context.Context, userID uuid.UUID, page int, limit int) ([]model.Order, int64, error)

	// 発送前・支払い前のときだけCANCELLEDにする
	MarkCancelled(ctx context.Context, orderID uuid.UUID) (bool, error)
}
