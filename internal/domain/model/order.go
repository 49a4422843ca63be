package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DeliveryStatus string

const (
	DeliveryStatusPending  DeliveryStatus = "PENDING"
	DeliveryStatusPacking  DeliveryStatus = "PACKING"
	DeliveryStatusShipping DeliveryStatus = "SHIPPING"
	DeliveryStatusArriving DeliveryStatus = "ARRIVING"
	DeliveryStatusSuccess  DeliveryStatus = "SUCCESS"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// tx_refのユニーク制約名（重複検知に使う）
const OrderTxRefIndex = "idx_orders_tx_ref"

type Order struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID" json:"-"`

	// 一度決めたら変えない
	TxRef string `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_tx_ref" json:"tx_ref"`

	DeliveryStatus DeliveryStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"delivery_status"`
	PaymentStatus  PaymentStatus  `gorm:"type:varchar(20);not null;default:'PENDING'" json:"payment_status"`
	DateDelivered  *time.Time     `json:"date_delivered"`

	Shipping ShippingSnapshot `gorm:"embedded" json:"shipping_details"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"-"`
}

// 明細の合計
func (o Order) Subtotal() decimal.Decimal {
	return Subtotal(o.Items)
}

// 送料・税は無いので小計と同じ
func (o Order) Total() decimal.Decimal {
	return o.Subtotal()
}

// キャンセルできるのは発送前かつ支払い前だけ
func (o Order) IsCancellable() bool {
	return o.DeliveryStatus == DeliveryStatusPending && o.PaymentStatus == PaymentStatusPending
}
