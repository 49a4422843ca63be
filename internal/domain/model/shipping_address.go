package model

import "github.com/google/uuid"

// 配送先住所（ユーザーごとに複数）
type ShippingAddress struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	//宛名
	FullName string `gorm:"type:varchar(200);not null" json:"full_name"`
	Email    string `gorm:"type:varchar(254);not null" json:"email"`
	Phone    string `gorm:"type:varchar(20)" json:"phone"`
	Address  string `gorm:"type:varchar(1000)" json:"address"`
	City     string `gorm:"type:varchar(200)" json:"city"`
	Country  string `gorm:"type:varchar(200)" json:"country"`
	Zipcode  string `gorm:"type:varchar(6)" json:"zipcode"`
}

// 注文に埋め込む住所のコピー。
// 住所を後で編集しても過去の注文は変わらない。
type ShippingSnapshot struct {
	FullName *string `gorm:"type:varchar(1000)" json:"full_name"`
	Email    *string `gorm:"type:varchar(254)" json:"email"`
	Phone    *string `gorm:"type:varchar(20)" json:"phone"`
	Address  *string `gorm:"type:varchar(1000)" json:"address"`
	City     *string `gorm:"type:varchar(200)" json:"city"`
	Country  *string `gorm:"type:varchar(100)" json:"country"`
	Zipcode  *string `gorm:"type:varchar(6)" json:"zipcode"`
}

// 値コピーでスナップショットを作る
func (a ShippingAddress) Snapshot() ShippingSnapshot {
	return ShippingSnapshot{
		FullName: strPtr(a.FullName),
		Email:    strPtr(a.Email),
		Phone:    strPtr(a.Phone),
		Address:  strPtr(a.Address),
		City:     strPtr(a.City),
		Country:  strPtr(a.Country),
		Zipcode:  strPtr(a.Zipcode),
	}
}

func strPtr(s string) *string {
	return &s
}
