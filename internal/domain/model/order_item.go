package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// カート行の部分ユニーク制約名
const OpenCartLineIndex = "idx_open_cart_line"

// 注文明細。
// order_idがNULLの間は「カートの行」、注文確定で付け替えられて注文明細になる。
// (user_id, product_id) はカートの間だけユニーク。
type OrderItem struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_open_cart_line,unique,where:order_id IS NULL,priority:1" json:"-"`
	OrderID   *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index:idx_open_cart_line,unique,where:order_id IS NULL,priority:2" json:"-"`
	Product   Product    `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int64      `gorm:"not null;check:quantity >= 0" json:"quantity"`
}

// まだ注文に付いていない行か
func (i OrderItem) IsCartLine() bool {
	return i.OrderID == nil
}

// 現在価格×数量
func (i OrderItem) Total() decimal.Decimal {
	return i.Product.PriceCurrent.Mul(decimal.NewFromInt(i.Quantity))
}

func Subtotal(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total())
	}
	return sum
}
