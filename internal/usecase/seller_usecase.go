package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shop/internal/access"
	"shop/internal/domain/model"
	repo "shop/internal/repository"
	"shop/internal/slug"

	"github.com/google/uuid"
)

// 出品者登録の入力検証（validatorパッケージが実装）
type SellerValidator interface {
	ValidateSeller(ctx context.Context, req SellerRequest) error
}

const notSellerMessage = "Your account type is 'BUYER'. You need to become a 'seller' to retrieve seller's info"

// POST /sellerの本文。PATCHはSellerPatchRequestを重ねてからこの形で検証する
type SellerRequest struct {
	BusinessName        string  `json:"business_name"`
	InnNumber           string  `json:"inn_number"`
	WebsiteURL          *string `json:"website_url"`
	PhoneNumber         string  `json:"phone_number"`
	BusinessDescription string  `json:"business_description"`
	BusinessAddress     string  `json:"business_address"`
	City                string  `json:"city"`
	PostalCode          string  `json:"postal_code"`
	BankName            string  `json:"bank_name"`
	BicBankNumber       string  `json:"bic_bank_number"`
	BankAccountNumber   string  `json:"bank_account_number"`
	BankRoutingNumber   string  `json:"bank_routing_number"`
}

func (r SellerRequest) trimmed() SellerRequest {
	out := SellerRequest{
		BusinessName:        strings.TrimSpace(r.BusinessName),
		InnNumber:           strings.TrimSpace(r.InnNumber),
		PhoneNumber:         strings.TrimSpace(r.PhoneNumber),
		BusinessDescription: strings.TrimSpace(r.BusinessDescription),
		BusinessAddress:     strings.TrimSpace(r.BusinessAddress),
		City:                strings.TrimSpace(r.City),
		PostalCode:          strings.TrimSpace(r.PostalCode),
		BankName:            strings.TrimSpace(r.BankName),
		BicBankNumber:       strings.TrimSpace(r.BicBankNumber),
		BankAccountNumber:   strings.TrimSpace(r.BankAccountNumber),
		BankRoutingNumber:   strings.TrimSpace(r.BankRoutingNumber),
	}
	//空文字はNULL扱い
	if r.WebsiteURL != nil {
		if w := strings.TrimSpace(*r.WebsiteURL); w != "" {
			out.WebsiteURL = &w
		}
	}
	return out
}

func (r SellerRequest) applyTo(s *model.Seller) {
	s.BusinessName = r.BusinessName
	s.InnNumber = r.InnNumber
	s.WebsiteURL = r.WebsiteURL
	s.PhoneNumber = r.PhoneNumber
	s.BusinessDescription = r.BusinessDescription
	s.BusinessAddress = r.BusinessAddress
	s.City = r.City
	s.PostalCode = r.PostalCode
	s.BankName = r.BankName
	s.BicBankNumber = r.BicBankNumber
	s.BankAccountNumber = r.BankAccountNumber
	s.BankRoutingNumber = r.BankRoutingNumber
}

// nilの項目は変更しない
type SellerPatchRequest struct {
	BusinessName        *string `json:"business_name"`
	InnNumber           *string `json:"inn_number"`
	WebsiteURL          *string `json:"website_url"`
	PhoneNumber         *string `json:"phone_number"`
	BusinessDescription *string `json:"business_description"`
	BusinessAddress     *string `json:"business_address"`
	City                *string `json:"city"`
	PostalCode          *string `json:"postal_code"`
	BankName            *string `json:"bank_name"`
	BicBankNumber       *string `json:"bic_bank_number"`
	BankAccountNumber   *string `json:"bank_account_number"`
	BankRoutingNumber   *string `json:"bank_routing_number"`
}

func (p SellerPatchRequest) merge(s model.Seller) SellerRequest {
	pick := func(v *string, cur string) string {
		if v != nil {
			return *v
		}
		return cur
	}
	out := SellerRequest{
		BusinessName:        pick(p.BusinessName, s.BusinessName),
		InnNumber:           pick(p.InnNumber, s.InnNumber),
		WebsiteURL:          s.WebsiteURL,
		PhoneNumber:         pick(p.PhoneNumber, s.PhoneNumber),
		BusinessDescription: pick(p.BusinessDescription, s.BusinessDescription),
		BusinessAddress:     pick(p.BusinessAddress, s.BusinessAddress),
		City:                pick(p.City, s.City),
		PostalCode:          pick(p.PostalCode, s.PostalCode),
		BankName:            pick(p.BankName, s.BankName),
		BicBankNumber:       pick(p.BicBankNumber, s.BicBankNumber),
		BankAccountNumber:   pick(p.BankAccountNumber, s.BankAccountNumber),
		BankRoutingNumber:   pick(p.BankRoutingNumber, s.BankRoutingNumber),
	}
	if p.WebsiteURL != nil {
		out.WebsiteURL = p.WebsiteURL
	}
	return out
}

type SellerProfileOutput struct {
	ID                  uuid.UUID `json:"id"`
	BusinessName        string    `json:"business_name"`
	Slug                string    `json:"slug"`
	InnNumber           string    `json:"inn_number"`
	WebsiteURL          *string   `json:"website_url"`
	PhoneNumber         string    `json:"phone_number"`
	BusinessDescription string    `json:"business_description"`
	BusinessAddress     string    `json:"business_address"`
	City                string    `json:"city"`
	PostalCode          string    `json:"postal_code"`
	BankName            string    `json:"bank_name"`
	BicBankNumber       string    `json:"bic_bank_number"`
	BankAccountNumber   string    `json:"bank_account_number"`
	BankRoutingNumber   string    `json:"bank_routing_number"`
	IsApproved          bool      `json:"is_approved"`
	CreatedAt           time.Time `json:"created_at"`
}

func toSellerProfileOutput(s model.Seller) SellerProfileOutput {
	return SellerProfileOutput{
		ID:                  s.ID,
		BusinessName:        s.BusinessName,
		Slug:                s.Slug,
		InnNumber:           s.InnNumber,
		WebsiteURL:          s.WebsiteURL,
		PhoneNumber:         s.PhoneNumber,
		BusinessDescription: s.BusinessDescription,
		BusinessAddress:     s.BusinessAddress,
		City:                s.City,
		PostalCode:          s.PostalCode,
		BankName:            s.BankName,
		BicBankNumber:       s.BicBankNumber,
		BankAccountNumber:   s.BankAccountNumber,
		BankRoutingNumber:   s.BankRoutingNumber,
		IsApproved:          s.IsApproved,
		CreatedAt:           s.CreatedAt,
	}
}

// 監査ログには銀行情報を残さない
type sellerAuditView struct {
	BusinessName string `json:"business_name"`
	Slug         string `json:"slug"`
	IsApproved   bool   `json:"is_approved"`
}

func toSellerAuditJSON(s model.Seller) (string, error) {
	return auditPayload(sellerAuditView{BusinessName: s.BusinessName, Slug: s.Slug, IsApproved: s.IsApproved})
}

type SellerUsecase struct {
	tx          repo.TransactionManager
	sellers     repo.SellerRepository
	validator   SellerValidator
	autoApprove bool
}

// DI
func NewSellerUsecase(tx repo.TransactionManager, sellers repo.SellerRepository, validator SellerValidator, autoApprove bool) *SellerUsecase {
	return &SellerUsecase{
		tx:          tx,
		sellers:     sellers,
		validator:   validator,
		autoApprove: autoApprove,
	}
}

// 出品者として申請する。2回目以降は内容の上書き。
// アカウントはここでSELLERに切り替わる
func (u *SellerUsecase) Apply(ctx context.Context, actor *model.User, req SellerRequest) (SellerProfileOutput, error) {
	if actor == nil {
		return SellerProfileOutput{}, ErrUnauthorized
	}

	req = req.trimmed()
	if err := u.validator.ValidateSeller(ctx, req); err != nil {
		return SellerProfileOutput{}, err
	}

	var out model.Seller
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cur, err := r.Sellers().FindByUserID(ctx, actor.ID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			cur = model.Seller{UserID: actor.ID, IsApproved: u.autoApprove}
		case err != nil:
			return err
		}

		before := ""
		if cur.ID != uuid.Nil {
			if before, err = toSellerAuditJSON(cur); err != nil {
				return err
			}
		}

		renamed := cur.BusinessName != req.BusinessName
		req.applyTo(&cur)
		saved, err := saveSeller(ctx, r.Sellers(), cur, renamed)
		if err != nil {
			return err
		}

		if actor.AccountType != model.AccountTypeSeller {
			if err := r.Users().SetAccountType(ctx, actor.ID, model.AccountTypeSeller); err != nil {
				return err
			}
		}

		if err := writeSellerAudit(ctx, r, actor, model.AuditActionApplySeller, before, saved); err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return SellerProfileOutput{}, internal(err)
	}

	return toSellerProfileOutput(out), nil
}

func (u *SellerUsecase) Get(ctx context.Context, actor *model.User) (SellerProfileOutput, error) {
	if actor == nil {
		return SellerProfileOutput{}, ErrUnauthorized
	}

	s, err := u.sellers.FindByUserID(ctx, actor.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return SellerProfileOutput{}, notFound(notSellerMessage)
	}
	if err != nil {
		return SellerProfileOutput{}, internal(err)
	}
	return toSellerProfileOutput(s), nil
}

func (u *SellerUsecase) Update(ctx context.Context, actor *model.User, patch SellerPatchRequest) (SellerProfileOutput, error) {
	if actor == nil {
		return SellerProfileOutput{}, ErrUnauthorized
	}

	var out model.Seller
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cur, err := r.Sellers().FindByUserID(ctx, actor.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound(notSellerMessage)
		}
		if err != nil {
			return err
		}

		req := patch.merge(cur).trimmed()
		if err := u.validator.ValidateSeller(ctx, req); err != nil {
			return err
		}

		before, err := toSellerAuditJSON(cur)
		if err != nil {
			return err
		}

		renamed := cur.BusinessName != req.BusinessName
		req.applyTo(&cur)
		saved, err := saveSeller(ctx, r.Sellers(), cur, renamed)
		if err != nil {
			return err
		}

		if err := writeSellerAudit(ctx, r, actor, model.AuditActionApplySeller, before, saved); err != nil {
			return err
		}
		out = saved
		return nil
	})
	if err != nil {
		return SellerProfileOutput{}, internal(err)
	}
	return toSellerProfileOutput(out), nil
}

// スタッフだけが承認できる
func (u *SellerUsecase) Approve(ctx context.Context, actor *model.User, sellerSlug string) (SellerProfileOutput, error) {
	if actor == nil {
		return SellerProfileOutput{}, ErrUnauthorized
	}
	if !access.IsStaff(actor) {
		return SellerProfileOutput{}, ErrForbidden
	}

	var out model.Seller
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Sellers().FindBySlug(ctx, strings.TrimSpace(sellerSlug))
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Seller does not exist!")
		}
		if err != nil {
			return err
		}
		if s.IsApproved {
			out = s
			return nil
		}

		before, err := toSellerAuditJSON(s)
		if err != nil {
			return err
		}
		if err := r.Sellers().SetApproved(ctx, s.ID, true); err != nil {
			return err
		}
		s.IsApproved = true

		if err := writeSellerAudit(ctx, r, actor, model.AuditActionApproveSeller, before, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return SellerProfileOutput{}, internal(err)
	}
	return toSellerProfileOutput(out), nil
}

// 名前が変わったときだけslugを付け直す
func saveSeller(ctx context.Context, sellers repo.SellerRepository, s model.Seller, renamed bool) (model.Seller, error) {
	if !renamed && s.Slug != "" {
		return sellers.Save(ctx, s)
	}
	base := slug.Make(s.BusinessName)
	if base == "" {
		base = "seller"
	}
	return withUniqueSlug(base, func(candidate string) (model.Seller, error) {
		s.Slug = candidate
		return sellers.Save(ctx, s)
	})
}

func writeSellerAudit(ctx context.Context, r repo.TxRepos, actor *model.User, action model.AuditAction, before string, s model.Seller) error {
	after, err := toSellerAuditJSON(s)
	if err != nil {
		return err
	}
	return r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actor.ID,
		Action:       action,
		ResourceType: model.AuditResourceSeller,
		ResourceID:   s.ID.String(),
		BeforeJSON:   before,
		AfterJSON:    after,
	})
}

const maxSlugAttempts = 10

// base, base-2, base-3 ... の順に試す
func withUniqueSlug[T any](base string, create func(candidate string) (T, error)) (T, error) {
	var zero T
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		out, err := create(slug.Candidate(base, attempt))
		if errors.Is(err, repo.ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return zero, err
		}
		return out, nil
	}
	return zero, NewHTTPError(http.StatusConflict, ErrConflict.Code, "could not allocate a unique slug")
}
