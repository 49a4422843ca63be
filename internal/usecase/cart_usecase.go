package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

// upsertの結果
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
	OutcomeRemoved UpsertOutcome = "removed"
)

type UpsertLineInput struct {
	Slug     string `json:"slug"`
	Quantity int64  `json:"quantity"`
}

type UpsertLineResult struct {
	Outcome UpsertOutcome `json:"-"`
	Message string        `json:"message"`
	// 削除したときはnil
	Item *LineOutput `json:"item"`
}

// Created は201、それ以外は200
func (r UpsertLineResult) StatusCode() int {
	if r.Outcome == OutcomeCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}

type CartUsecase struct {
	tx    repo.TransactionManager
	lines repo.CartLineRepository
}

// DI
func NewCartUsecase(tx repo.TransactionManager, lines repo.CartLineRepository) *CartUsecase {
	return &CartUsecase{tx: tx, lines: lines}
}

// カートの行を作成・更新・削除する（数量は加算ではなく置き換え）
func (u *CartUsecase) UpsertLine(ctx context.Context, actor *model.User, in UpsertLineInput) (UpsertLineResult, error) {
	if actor == nil {
		return UpsertLineResult{}, ErrUnauthorized
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		return UpsertLineResult{}, validationError("slug is required")
	}
	if in.Quantity < 0 {
		return UpsertLineResult{}, validationError("quantity must be >= 0")
	}

	var res UpsertLineResult

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindBySlug(ctx, slug)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Product does not exist!")
		}
		if err != nil {
			return err
		}

		//在庫チェック
		if !p.HasStock(in.Quantity) {
			return insufficientStock(p.InStock)
		}

		line, err := r.CartLines().FindOpenByUserAndProduct(ctx, actor.ID, p.ID)
		found := err == nil
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		switch {
		case in.Quantity == 0:
			//0なら行を残さない
			if found {
				if err := r.CartLines().DeleteByID(ctx, line.ID); err != nil {
					return err
				}
			}
			res = UpsertLineResult{Outcome: OutcomeRemoved, Message: "Item removed from cart"}

		case found:
			if err := r.CartLines().UpdateQuantity(ctx, line.ID, in.Quantity); err != nil {
				return err
			}
			line.Quantity = in.Quantity
			line.Product = p
			out := toLineOutput(line)
			res = UpsertLineResult{Outcome: OutcomeUpdated, Message: "Item quantity updated", Item: &out}

		default:
			created, err := r.CartLines().Create(ctx, model.OrderItem{
				UserID:    actor.ID,
				ProductID: p.ID,
				Quantity:  in.Quantity,
			})
			if errors.Is(err, repo.ErrDuplicateCartLine) {
				return NewHTTPError(http.StatusConflict, ErrConflict.Code, "cart line was changed concurrently")
			}
			if err != nil {
				return err
			}
			created.Product = p
			out := toLineOutput(created)
			res = UpsertLineResult{Outcome: OutcomeCreated, Message: "Item added to cart", Item: &out}
		}
		return nil
	})
	if err != nil {
		return UpsertLineResult{}, internal(err)
	}
	return res, nil
}

// 未注文の行を一覧（行ごとの合計付き）
func (u *CartUsecase) ListLines(ctx context.Context, actor *model.User) ([]LineOutput, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	items, err := u.lines.ListOpenByUserID(ctx, actor.ID)
	if err != nil {
		return nil, internal(err)
	}
	return toLineOutputs(items), nil
}
