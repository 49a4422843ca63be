package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"shop/internal/domain/model"
	"shop/internal/repository"

	"github.com/google/uuid"
)

// 住所の入力検証（validatorパッケージが実装）
type AddressValidator interface {
	ValidateAddress(ctx context.Context, req AddressRequest) error
}

type AddressDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Zipcode   string    `json:"zipcode"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt *string   `json:"updated_at,omitempty"`
}

// 作成・更新で共通
type AddressRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Zipcode  string `json:"zipcode"`
}

func (r AddressRequest) trimmed() AddressRequest {
	return AddressRequest{
		FullName: strings.TrimSpace(r.FullName),
		Email:    strings.TrimSpace(r.Email),
		Phone:    strings.TrimSpace(r.Phone),
		Address:  strings.TrimSpace(r.Address),
		City:     strings.TrimSpace(r.City),
		Country:  strings.TrimSpace(r.Country),
		Zipcode:  strings.TrimSpace(r.Zipcode),
	}
}

type AddressUsecase struct {
	addresses repository.AddressRepository
	validator AddressValidator
}

func NewAddressUsecase(addresses repository.AddressRepository, validator AddressValidator) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, validator: validator}
}

func (u *AddressUsecase) List(ctx context.Context, actor *model.User) ([]AddressDTO, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, actor.ID)
	if err != nil {
		return nil, internal(err)
	}

	out := make([]AddressDTO, 0, len(list))
	for i := range list {
		out = append(out, toAddressDTO(&list[i]))
	}
	return out, nil
}

func (u *AddressUsecase) Get(ctx context.Context, actor *model.User, addressID uuid.UUID) (AddressDTO, error) {
	if actor == nil {
		return AddressDTO{}, ErrUnauthorized
	}

	a, err := u.addresses.FindByIDForUser(ctx, addressID, actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return AddressDTO{}, notFound("Shipping address does not exist!")
	}
	if err != nil {
		return AddressDTO{}, internal(err)
	}
	return toAddressDTO(&a), nil
}

func (u *AddressUsecase) Create(ctx context.Context, actor *model.User, req AddressRequest) (AddressDTO, error) {
	if actor == nil {
		return AddressDTO{}, ErrUnauthorized
	}

	//入力チェック
	req = req.trimmed()
	if err := u.validator.ValidateAddress(ctx, req); err != nil {
		return AddressDTO{}, err
	}

	created, err := u.addresses.Create(ctx, model.ShippingAddress{
		UserID:   actor.ID,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
		Zipcode:  req.Zipcode,
	})
	if err != nil {
		return AddressDTO{}, internal(err)
	}

	return toAddressDTO(&created), nil
}

// 注文済みのスナップショットには影響しない
func (u *AddressUsecase) Update(ctx context.Context, actor *model.User, addressID uuid.UUID, req AddressRequest) (AddressDTO, error) {
	if actor == nil {
		return AddressDTO{}, ErrUnauthorized
	}

	req = req.trimmed()
	if err := u.validator.ValidateAddress(ctx, req); err != nil {
		return AddressDTO{}, err
	}

	//所有チェック（他人の住所は404）
	a, err := u.addresses.FindByIDForUser(ctx, addressID, actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return AddressDTO{}, notFound("Shipping address does not exist!")
	}
	if err != nil {
		return AddressDTO{}, internal(err)
	}

	a.FullName = req.FullName
	a.Email = req.Email
	a.Phone = req.Phone
	a.Address = req.Address
	a.City = req.City
	a.Country = req.Country
	a.Zipcode = req.Zipcode

	if err := u.addresses.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AddressDTO{}, notFound("Shipping address does not exist!")
		}
		return AddressDTO{}, internal(err)
	}

	return toAddressDTO(&a), nil
}

func (u *AddressUsecase) Delete(ctx context.Context, actor *model.User, addressID uuid.UUID) error {
	if actor == nil {
		return ErrUnauthorized
	}

	if err := u.addresses.Delete(ctx, addressID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("Shipping address does not exist!")
		}
		return internal(err)
	}
	return nil
}

func toAddressDTO(a *model.ShippingAddress) AddressDTO {
	dto := AddressDTO{
		ID:        a.ID,
		FullName:  a.FullName,
		Email:     a.Email,
		Phone:     a.Phone,
		Address:   a.Address,
		City:      a.City,
		Country:   a.Country,
		Zipcode:   a.Zipcode,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt.Format(time.RFC3339)
		dto.UpdatedAt = &t
	}
	return dto
}
