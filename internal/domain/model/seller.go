package model

import "github.com/google/uuid"

// 出品者slugのユニーク制約名
const SellerSlugIndex = "idx_sellers_slug"

// 出品者。承認済みのみ商品を管理できる。
// slugはbusiness_nameから作り、名前が変われば付け直す。
type Seller struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"-"`
	BusinessName string    `gorm:"type:varchar(200);not null" json:"business_name"`
	Slug         string    `gorm:"type:varchar(220);uniqueIndex:idx_sellers_slug" json:"slug"`

	InnNumber           string  `gorm:"type:varchar(12)" json:"inn_number"`
	WebsiteURL          *string `gorm:"type:varchar(255)" json:"website_url"`
	PhoneNumber         string  `gorm:"type:varchar(20)" json:"phone_number"`
	BusinessDescription string  `gorm:"type:text" json:"business_description"`

	BusinessAddress string `gorm:"type:varchar(200)" json:"business_address"`
	City            string `gorm:"type:varchar(100)" json:"city"`
	PostalCode      string `gorm:"type:varchar(10)" json:"postal_code"`

	BankName          string `gorm:"type:varchar(127)" json:"bank_name"`
	BicBankNumber     string `gorm:"type:varchar(9)" json:"bic_bank_number"`
	BankAccountNumber string `gorm:"type:varchar(50)" json:"bank_account_number"`
	BankRoutingNumber string `gorm:"type:varchar(50)" json:"bank_routing_number"`

	IsApproved bool `gorm:"not null;default:false" json:"is_approved"`
}
