package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop/internal/domain/model"
	"shop/internal/repository"
)

// emailとaccount_typeは読み取り専用
type ProfileOutput struct {
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Email       string            `json:"email"`
	AccountType model.AccountType `json:"account_type"`
}

// PATCHはnilの項目を変更しない。PUTは両方必須
type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type ProfileUsecase struct {
	users repository.UserRepository
}

// DI
func NewProfileUsecase(users repository.UserRepository) *ProfileUsecase {
	return &ProfileUsecase{users: users}
}

func toProfileOutput(u *model.User) ProfileOutput {
	return ProfileOutput{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		AccountType: u.AccountType,
	}
}

func (u *ProfileUsecase) Get(ctx context.Context, actor *model.User) (ProfileOutput, error) {
	if actor == nil {
		return ProfileOutput{}, ErrUnauthorized
	}
	return toProfileOutput(actor), nil
}

func (u *ProfileUsecase) Update(ctx context.Context, actor *model.User, req ProfileUpdateRequest, partial bool) (ProfileOutput, error) {
	if actor == nil {
		return ProfileOutput{}, ErrUnauthorized
	}
	if !partial && (req.FirstName == nil || req.LastName == nil) {
		return ProfileOutput{}, validationError("first_name and last_name are required")
	}

	first, last := actor.FirstName, actor.LastName
	if req.FirstName != nil {
		first = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		last = strings.TrimSpace(*req.LastName)
	}
	if len(first) > 50 || len(last) > 50 {
		return ProfileOutput{}, validationError("name too long")
	}

	if err := u.users.UpdateProfile(ctx, actor.ID, first, last); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ProfileOutput{}, ErrUnauthorized
		}
		return ProfileOutput{}, internal(err)
	}

	updated := *actor
	updated.FirstName = first
	updated.LastName = last
	return toProfileOutput(&updated), nil
}

// 無効化したアカウントは以後ログインも認証も通らない
func (u *ProfileUsecase) Deactivate(ctx context.Context, actor *model.User) (string, error) {
	if actor == nil {
		return "", ErrUnauthorized
	}
	if err := u.users.Deactivate(ctx, actor.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", internal(err)
	}
	return fmt.Sprintf("Account %s deactivated", actor.Email), nil
}
