package repository

import (
	"context"

	"shop/internal/domain/model"

	"github.com/google/uuid"
)

type OrderItemRepository interface {
	// Product付きで返す
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)
}
