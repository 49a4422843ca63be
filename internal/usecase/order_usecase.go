package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shop/internal/access"
	"shop/internal/domain/model"
	"shop/internal/events"
	repo "shop/internal/repository"
	"shop/internal/txref"

	"github.com/labstack/gommon/log"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	items     repo.OrderItemRepository
	auditRepo repo.AuditLogRepository
	publisher events.Publisher
	observer  Observer
	logger    *log.Logger
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	auditRepo repo.AuditLogRepository,
	publisher events.Publisher,
	observer Observer,
	logger *log.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		tx:        tx,
		orders:    orders,
		items:     items,
		auditRepo: auditRepo,
		publisher: publisher,
		observer:  observer,
		logger:    logger,
	}
}

// 自分の注文を新しい順で（明細付き）
func (u *OrderUsecase) ListOrders(ctx context.Context, actor *model.User, page, size int) (Page[OrderSummary], error) {
	if actor == nil {
		return Page[OrderSummary]{}, ErrUnauthorized
	}
	page, size = normalizePage(page, size)

	orders, total, err := u.orders.ListByUserID(ctx, actor.ID, page, size)
	if err != nil {
		return Page[OrderSummary]{}, internal(err)
	}

	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderSummary(o))
	}
	return Page[OrderSummary]{
		PageNumber: page,
		TotalPages: totalPages(total, size),
		Result:     out,
		Count:      total,
	}, nil
}

// 注文の明細。無い・他人の注文は404（スタッフは読める）
func (u *OrderUsecase) GetOrderItems(ctx context.Context, actor *model.User, txRef string) ([]LineOutput, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	o, err := u.findOwned(ctx, u.orders, actor, txRef)
	if err != nil {
		return nil, err
	}

	items, err := u.items.ListByOrderID(ctx, o.ID)
	if err != nil {
		return nil, internal(err)
	}
	return toLineOutputs(items), nil
}

// 発送前・支払い前の注文だけキャンセルして在庫を戻す
func (u *OrderUsecase) CancelOrder(ctx context.Context, actor *model.User, txRef string) (OrderSummary, error) {
	if actor == nil {
		return OrderSummary{}, ErrUnauthorized
	}

	var order model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := u.findOwned(ctx, r.Orders(), actor, txRef)
		if err != nil {
			return err
		}
		if !o.IsCancellable() {
			return validationError("Only pending orders can be cancelled")
		}

		//同時キャンセルはここで1件だけ通る
		ok, err := r.Orders().MarkCancelled(ctx, o.ID)
		if err != nil {
			return err
		}
		if !ok {
			return validationError("Only pending orders can be cancelled")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return err
		}

		//checkoutと同じid順で行ロックを取ってから在庫戻し
		if _, err := r.Inventory().LockProducts(ctx, productIDs(items)); err != nil {
			return err
		}
		for _, it := range items {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
			if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
				ProductID:   it.ProductID,
				ActorUserID: actor.ID,
				Delta:       it.Quantity,
				Reason:      "cancel " + o.TxRef,
			}); err != nil {
				return err
			}
		}

		//監査ログ
		before, err := auditPayload(map[string]string{"payment_status": string(o.PaymentStatus)})
		if err != nil {
			return err
		}
		after, err := auditPayload(map[string]string{"payment_status": string(model.PaymentStatusCancelled)})
		if err != nil {
			return err
		}
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actor.ID,
			Action:       model.AuditActionCancelOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID.String(),
			BeforeJSON:   before,
			AfterJSON:    after,
		}); err != nil {
			return err
		}

		o.PaymentStatus = model.PaymentStatusCancelled
		o.Items = items
		order = o
		return nil
	})
	if err != nil {
		return OrderSummary{}, internal(err)
	}

	u.observer.ObserveCancel()
	u.logger.Infoj(log.JSON{"event": "order_cancelled", "tx_ref": order.TxRef, "actor": actor.ID.String()})
	publishAfterCommit(ctx, u.publisher, u.logger, events.OrderEvent{
		Type:       events.TypeOrderCancelled,
		TxRef:      order.TxRef,
		UserID:     order.UserID.String(),
		Subtotal:   money(order.Subtotal()),
		ItemCount:  len(order.Items),
		OccurredAt: time.Now().UTC(),
	})

	return toOrderSummary(order), nil
}

// 形式が違う・無い・他人の注文はどれも404
func (u *OrderUsecase) findOwned(ctx context.Context, orders repo.OrderRepository, actor *model.User, txRef string) (model.Order, error) {
	if !txref.Valid(txRef) {
		return model.Order{}, notFound("Order does not exist!")
	}

	o, err := orders.FindByTxRef(ctx, txRef)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, notFound("Order does not exist!")
	}
	if err != nil {
		return model.Order{}, err
	}
	if !access.IsOwner(actor, o.UserID) {
		return model.Order{}, notFound("Order does not exist!")
	}
	return o, nil
}

func auditPayload(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("audit payload: %w", err)
	}
	return string(b), nil
}
