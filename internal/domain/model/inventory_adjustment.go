package model

import "github.com/google/uuid"

// 在庫の増減履歴（台帳）
type InventoryAdjustment struct {
	BaseModel
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ActorUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"actor_user_id"`
	Delta       int64     `gorm:"not null" json:"delta"`
	Reason      string    `gorm:"type:varchar(255);not null" json:"reason"`
}
