package model

import (
	"strings"
	"time"
)

type AccountType string

const (
	AccountTypeBuyer  AccountType = "BUYER"
	AccountTypeSeller AccountType = "SELLER"
)

type User struct {
	BaseModel
	FirstName    string      `gorm:"type:varchar(50)"`
	LastName     string      `gorm:"type:varchar(50)"`
	Email        string      `gorm:"uniqueIndex;not null"`
	PasswordHash string      `gorm:"column:password_hash;not null"`
	IsStaff      bool        `gorm:"not null;default:false"`
	IsActive     bool        `gorm:"not null;default:true"`
	AccountType  AccountType `gorm:"type:varchar(6);not null;default:'BUYER'"`
	TokenVersion int         `gorm:"not null;default:0"`
	LastLoginAt  *time.Time
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
