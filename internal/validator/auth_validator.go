package validator

import (
	"context"
	"net/http"
	"regexp"

	"shop/internal/repository"
	"shop/internal/usecase"
)

// 簡易メール形式
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func invalid(message string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, usecase.ErrValidation.Code, message)
}

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, req usecase.AuthRegisterRequest) error {
	// 必須チェック
	if req.Email == "" || req.Password == "" {
		return invalid("email and password are required")
	}

	// email形式
	if !isEmailLike(req.Email) {
		return invalid("invalid email")
	}

	// パスワード最低文字数（8）
	if len(req.Password) < 8 {
		return invalid("password must be at least 8 characters")
	}
	// bcryptは72バイトまで
	if len(req.Password) > 72 {
		return invalid("password too long")
	}

	if len(req.FirstName) > 50 || len(req.LastName) > 50 {
		return invalid("name too long")
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, req.Email)
	if err == nil && u != nil {
		return usecase.NewHTTPError(http.StatusConflict, usecase.ErrConflict.Code, "email already used")
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, req usecase.AuthLoginRequest) error {
	// 必須チェック
	if req.Email == "" || req.Password == "" {
		return invalid("email and password are required")
	}

	// email形式
	if !isEmailLike(req.Email) {
		return invalid("invalid email")
	}

	return nil
}

func isEmailLike(s string) bool {
	return emailPattern.MatchString(s)
}
