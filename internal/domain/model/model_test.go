package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderItemTotalsAndSubtotal(t *testing.T) {
	a := Product{PriceCurrent: decimal.RequireFromString("10.00")}
	b := Product{PriceCurrent: decimal.RequireFromString("2.50")}

	items := []OrderItem{
		{Product: a, Quantity: 2},
		{Product: b, Quantity: 3},
	}

	assert.True(t, decimal.RequireFromString("20.00").Equal(items[0].Total()))
	assert.True(t, decimal.RequireFromString("27.50").Equal(Subtotal(items)))

	o := Order{Items: items}
	assert.True(t, o.Subtotal().Equal(o.Total()))
	assert.True(t, Subtotal(nil).IsZero())
}

func TestOrderItemIsCartLine(t *testing.T) {
	line := OrderItem{}
	assert.True(t, line.IsCartLine())

	id := uuid.New()
	line.OrderID = &id
	assert.False(t, line.IsCartLine())
}

func TestProductHasStock(t *testing.T) {
	p := Product{InStock: 5}
	assert.True(t, p.HasStock(5))
	assert.True(t, p.HasStock(0))
	assert.False(t, p.HasStock(6))
}

func TestProductChangePrice(t *testing.T) {
	p := Product{PriceCurrent: decimal.RequireFromString("10.00")}

	//同じ価格なら旧価格は残さない
	assert.False(t, p.ChangePrice(decimal.RequireFromString("10")))
	assert.False(t, p.PriceOld.Valid)

	assert.True(t, p.ChangePrice(decimal.RequireFromString("12.00")))
	assert.True(t, p.PriceOld.Valid)
	assert.True(t, decimal.RequireFromString("10.00").Equal(p.PriceOld.Decimal))
	assert.True(t, decimal.RequireFromString("12.00").Equal(p.PriceCurrent))
}

func TestShippingSnapshotIsACopy(t *testing.T) {
	addr := ShippingAddress{FullName: "Aru Sat", City: "Almaty"}
	snap := addr.Snapshot()

	addr.City = "Astana"

	if assert.NotNil(t, snap.City) {
		assert.Equal(t, "Almaty", *snap.City)
	}
	assert.Equal(t, "Aru Sat", *snap.FullName)
}

func TestOrderIsCancellable(t *testing.T) {
	o := Order{DeliveryStatus: DeliveryStatusPending, PaymentStatus: PaymentStatusPending}
	assert.True(t, o.IsCancellable())

	o.PaymentStatus = PaymentStatusSuccessful
	assert.False(t, o.IsCancellable())

	o.PaymentStatus = PaymentStatusPending
	o.DeliveryStatus = DeliveryStatusPacking
	assert.False(t, o.IsCancellable())
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Aru Sat", User{FirstName: "Aru", LastName: "Sat"}.FullName())
	assert.Equal(t, "Aru", User{FirstName: "Aru"}.FullName())
}
