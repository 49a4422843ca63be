package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"shop/internal/domain/model"
	"shop/internal/events"
	repo "shop/internal/repository"
	"shop/internal/txref"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// tx_refの再生成の上限
const maxTxRefAttempts = 10

type CheckoutInput struct {
	ShippingID *uuid.UUID
}

type CheckoutUsecase struct {
	tx              repo.TransactionManager
	txRefs          txref.Generator
	publisher       events.Publisher
	observer        Observer
	logger          *log.Logger
	requireShipping bool
}

// DI
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	txRefs txref.Generator,
	publisher events.Publisher,
	observer Observer,
	logger *log.Logger,
	requireShipping bool,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:              tx,
		txRefs:          txRefs,
		publisher:       publisher,
		observer:        observer,
		logger:          logger,
		requireShipping: requireShipping,
	}
}

// カートの行を注文にする。
// 在庫確認・注文作成・在庫減算・行の付け替えは1トランザクション。
func (u *CheckoutUsecase) Checkout(ctx context.Context, actor *model.User, in CheckoutInput) (OrderSummary, error) {
	if actor == nil {
		return OrderSummary{}, ErrUnauthorized
	}

	var order model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カートの行
		lines, err := r.CartLines().ListOpenByUserID(ctx, actor.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		//商品を行ロックして最新の在庫で確認
		locked, err := r.Inventory().LockProducts(ctx, productIDs(lines))
		if err != nil {
			return err
		}
		shortages := make([]StockShortage, 0)
		for i := range lines {
			p, ok := locked[lines[i].ProductID]
			if !ok {
				//削除済みの商品は在庫0扱い
				shortages = append(shortages, StockShortage{
					Product:   lines[i].Product.Name,
					Slug:      lines[i].Product.Slug,
					Available: 0,
				})
				continue
			}
			lines[i].Product = p
			if !p.HasStock(lines[i].Quantity) {
				shortages = append(shortages, StockShortage{Product: p.Name, Slug: p.Slug, Available: p.InStock})
			}
		}
		if len(shortages) > 0 {
			return insufficientStockBatch(shortages)
		}

		//配送先
		var shipping model.ShippingSnapshot
		if in.ShippingID != nil {
			addr, err := r.Addresses().FindByIDForUser(ctx, *in.ShippingID, actor.ID)
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("Shipping address does not exist!")
			}
			if err != nil {
				return err
			}
			shipping = addr.Snapshot()
		} else if u.requireShipping {
			return validationError("shipping_id is required")
		}

		//注文作成（tx_refが被ったら作り直す）
		order, err = u.createOrder(ctx, r, model.Order{
			UserID:         actor.ID,
			DeliveryStatus: model.DeliveryStatusPending,
			PaymentStatus:  model.PaymentStatusPending,
			Shipping:       shipping,
		})
		if err != nil {
			return err
		}

		//在庫減算と台帳
		itemIDs := make([]uuid.UUID, 0, len(lines))
		for i, line := range lines {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return insufficientStockBatch([]StockShortage{{
					Product:   line.Product.Name,
					Slug:      line.Product.Slug,
					Available: line.Product.InStock,
				}})
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   line.ProductID,
				ActorUserID: actor.ID,
				Delta:       -line.Quantity,
				Reason:      "checkout " + order.TxRef,
			}); err != nil {
				return err
			}
			lines[i].Product.InStock -= line.Quantity
			itemIDs = append(itemIDs, line.ID)
		}

		//カートの行を注文明細に付け替え
		n, err := r.CartLines().AttachToOrder(ctx, actor.ID, order.ID, itemIDs)
		if err != nil {
			return err
		}
		if n != int64(len(itemIDs)) {
			return fmt.Errorf("attach cart lines: want %d, got %d", len(itemIDs), n)
		}

		for i := range lines {
			lines[i].OrderID = &order.ID
		}
		order.Items = lines
		return nil
	})

	u.observer.ObserveCheckout(checkoutResult(err))
	if err != nil {
		if _, ok := AsHTTPError(err); !ok {
			u.logger.Errorj(log.JSON{"event": "checkout_failed", "user_id": actor.ID.String(), "error": err.Error()})
		}
		return OrderSummary{}, internal(err)
	}

	u.logger.Infoj(log.JSON{
		"event":    "order_placed",
		"tx_ref":   order.TxRef,
		"user_id":  actor.ID.String(),
		"subtotal": money(order.Subtotal()),
	})
	publishAfterCommit(ctx, u.publisher, u.logger, events.OrderEvent{
		Type:       events.TypeOrderPlaced,
		TxRef:      order.TxRef,
		UserID:     actor.ID.String(),
		Subtotal:   money(order.Subtotal()),
		ItemCount:  len(order.Items),
		OccurredAt: time.Now().UTC(),
	})

	return toOrderSummary(order), nil
}

// 既存チェックとユニーク制約の両方で重複を避ける
func (u *CheckoutUsecase) createOrder(ctx context.Context, r repo.TxRepos, order model.Order) (model.Order, error) {
	for attempt := 0; attempt < maxTxRefAttempts; attempt++ {
		ref, err := u.txRefs.Generate()
		if err != nil {
			return model.Order{}, err
		}

		exists, err := r.Orders().ExistsTxRef(ctx, ref)
		if err != nil {
			return model.Order{}, err
		}
		if exists {
			u.observer.ObserveTxRefCollision()
			continue
		}

		order.TxRef = ref
		created, err := r.Orders().Create(ctx, order)
		if errors.Is(err, repo.ErrDuplicateTxRef) {
			u.observer.ObserveTxRefCollision()
			continue
		}
		if err != nil {
			return model.Order{}, err
		}
		return created, nil
	}
	return model.Order{}, fmt.Errorf("tx_ref: no free value after %d attempts", maxTxRefAttempts)
}

// ロック順を揃えるためid順
func productIDs(lines []model.OrderItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
