// Package access holds the ownership and role checks shared by the usecases.
package access

import (
	"shop/internal/domain/model"

	"github.com/google/uuid"
)

// 本人かスタッフなら true
func IsOwner(actor *model.User, ownerID uuid.UUID) bool {
	if actor == nil {
		return false
	}
	return actor.IsStaff || actor.ID == ownerID
}

func IsStaff(actor *model.User) bool {
	return actor != nil && actor.IsStaff
}

// 出品者アカウントか
func IsSeller(actor *model.User) bool {
	return actor != nil && actor.AccountType == model.AccountTypeSeller
}

// 承認済みの出品者で、その商品の持ち主か
func CanManageProduct(actor *model.User, seller *model.Seller, product model.Product) bool {
	if IsStaff(actor) {
		return true
	}
	if !IsSeller(actor) || seller == nil || !seller.IsApproved {
		return false
	}
	if seller.UserID != actor.ID {
		return false
	}
	return product.SellerID != nil && *product.SellerID == seller.ID
}
