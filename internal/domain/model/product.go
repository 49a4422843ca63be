package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品slugのユニーク制約名（論理削除済みの行も含む）
const ProductSlugIndex = "idx_products_slug"

type Product struct {
	BaseModel
	SellerID   *uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Seller     *Seller    `gorm:"foreignKey:SellerID;constraint:OnDelete:SET NULL" json:"seller"`
	CategoryID uuid.UUID  `gorm:"type:uuid;not null;index" json:"-"`
	Category   Category   `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`

	Name        string `gorm:"type:varchar(150);not null" json:"name"`
	Slug        string `gorm:"type:varchar(200);not null;uniqueIndex:idx_products_slug" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	// 価格変更前の価格（未変更ならNULL）
	PriceOld     decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price_old"`
	PriceCurrent decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"price_current"`

	// マイナスにはならない
	InStock int64 `gorm:"not null;default:0;check:in_stock >= 0" json:"in_stock"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 在庫が足りるか
func (p Product) HasStock(qty int64) bool {
	return qty <= p.InStock
}

// 価格が変わるときだけ旧価格を残す
func (p *Product) ChangePrice(newPrice decimal.Decimal) bool {
	if p.PriceCurrent.Equal(newPrice) {
		return false
	}
	p.PriceOld = decimal.NewNullDecimal(p.PriceCurrent)
	p.PriceCurrent = newPrice
	return true
}
