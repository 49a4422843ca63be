package validator

import (
	"context"
	"net/url"

	"shop/internal/usecase"
)

type sellerValidator struct{}

// DI
func NewSellerValidator() usecase.SellerValidator {
	return sellerValidator{}
}

// website_url以外は必須。長さは列に合わせる
func (sellerValidator) ValidateSeller(ctx context.Context, req usecase.SellerRequest) error {
	required := []struct {
		name  string
		value string
		max   int
	}{
		{"business_name", req.BusinessName, 200},
		{"inn_number", req.InnNumber, 12},
		{"phone_number", req.PhoneNumber, 20},
		{"business_description", req.BusinessDescription, 5000},
		{"business_address", req.BusinessAddress, 200},
		{"city", req.City, 100},
		{"postal_code", req.PostalCode, 10},
		{"bank_name", req.BankName, 127},
		{"bic_bank_number", req.BicBankNumber, 9},
		{"bank_account_number", req.BankAccountNumber, 50},
		{"bank_routing_number", req.BankRoutingNumber, 50},
	}
	for _, f := range required {
		if f.value == "" {
			return invalid(f.name + " is required")
		}
		if len(f.value) > f.max {
			return invalid(f.name + " too long")
		}
	}

	if req.WebsiteURL != nil {
		if len(*req.WebsiteURL) > 255 || !isWebURL(*req.WebsiteURL) {
			return invalid("invalid website_url")
		}
	}
	return nil
}

func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
