package repository

import (
	"context"

	"shop/internal/domain/model"

	"github.com/google/uuid"
)

// 配送先住所を保存・取得する窓口
type AddressRepository interface {
	//作成後はID入りで返す
	Create(ctx context.Context, address model.ShippingAddress) (model.ShippingAddress, error)

	//ユーザーが持つ住所一覧を返す
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.ShippingAddress, error)

	//存在しない・他人の住所はErrNotFound
	FindByIDForUser(ctx context.Context, addressID, userID uuid.UUID) (model.ShippingAddress, error)

	Update(ctx context.Context, address model.ShippingAddress) error

	Delete(ctx context.Context, addressID, userID uuid.UUID) error
}
