package usecase

import (
	"time"

	"shop/internal/domain/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 金額は小数2桁の文字列で返す
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money(d.Decimal)
	return &s
}

type ProductSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	PriceOld     *string   `json:"price_old"`
	PriceCurrent string    `json:"price_current"`
	InStock      int64     `json:"in_stock"`
}

func toProductSummary(p model.Product) ProductSummary {
	return ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		PriceOld:     nullMoney(p.PriceOld),
		PriceCurrent: money(p.PriceCurrent),
		InStock:      p.InStock,
	}
}

// カート行・注文明細の共通形
type LineOutput struct {
	ID       uuid.UUID      `json:"id"`
	Product  ProductSummary `json:"product"`
	Quantity int64          `json:"quantity"`
	Total    string         `json:"total"`
}

func toLineOutput(it model.OrderItem) LineOutput {
	return LineOutput{
		ID:       it.ID,
		Product:  toProductSummary(it.Product),
		Quantity: it.Quantity,
		Total:    money(it.Total()),
	}
}

func toLineOutputs(items []model.OrderItem) []LineOutput {
	out := make([]LineOutput, 0, len(items))
	for _, it := range items {
		out = append(out, toLineOutput(it))
	}
	return out
}

type OrderSummary struct {
	TxRef           string                 `json:"tx_ref"`
	DeliveryStatus  model.DeliveryStatus   `json:"delivery_status"`
	PaymentStatus   model.PaymentStatus    `json:"payment_status"`
	DateDelivered   *time.Time             `json:"date_delivered"`
	ShippingDetails model.ShippingSnapshot `json:"shipping_details"`
	Items           []LineOutput           `json:"items"`
	Subtotal        string                 `json:"subtotal"`
	Total           string                 `json:"total"`
	CreatedAt       time.Time              `json:"created_at"`
}

func toOrderSummary(o model.Order) OrderSummary {
	return OrderSummary{
		TxRef:           o.TxRef,
		DeliveryStatus:  o.DeliveryStatus,
		PaymentStatus:   o.PaymentStatus,
		DateDelivered:   o.DateDelivered,
		ShippingDetails: o.Shipping,
		Items:           toLineOutputs(o.Items),
		Subtotal:        money(o.Subtotal()),
		Total:           money(o.Total()),
		CreatedAt:       o.CreatedAt,
	}
}

// ページング付き一覧
type Page[T any] struct {
	PageNumber int   `json:"page_number"`
	TotalPages int   `json:"total_pages"`
	Result     []T   `json:"result"`
	Count      int64 `json:"count"`
}

const (
	defaultPageSize = 15
	maxPageSize     = 50
)

// page・page_sizeを補正する
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func totalPages(total int64, size int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}
