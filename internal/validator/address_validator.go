package validator

import (
	"context"

	"shop/internal/usecase"
)

type addressValidator struct{}

func NewAddressValidator() usecase.AddressValidator {
	return addressValidator{}
}

// 列の長さに合わせる
func (addressValidator) ValidateAddress(ctx context.Context, req usecase.AddressRequest) error {
	if req.FullName == "" {
		return invalid("full_name is required")
	}
	if req.Email == "" || !isEmailLike(req.Email) {
		return invalid("invalid email")
	}
	if len(req.FullName) > 200 {
		return invalid("full_name too long")
	}
	if len(req.Phone) > 20 {
		return invalid("phone too long")
	}
	if len(req.Address) > 1000 {
		return invalid("address too long")
	}
	if len(req.City) > 200 || len(req.Country) > 100 {
		return invalid("city or country too long")
	}
	if len(req.Zipcode) > 6 {
		return invalid("zipcode must be at most 6 characters")
	}
	return nil
}
