package usecase

import (
	"context"
	"errors"
	"time"

	"shop/internal/events"
	"shop/internal/metrics"

	"github.com/labstack/gommon/log"
)

// metrics.Metricsが満たす
type Observer interface {
	ObserveCheckout(result string)
	ObserveTxRefCollision()
	ObserveCancel()
}

// 送信が詰まってもレスポンスを待たせない
const publishTimeout = 3 * time.Second

// コミット後のイベント送信。失敗してもログだけ残す
func publishAfterCommit(ctx context.Context, p events.Publisher, logger *log.Logger, ev events.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, ev); err != nil {
		logger.Warnj(log.JSON{
			"event":  "publish_failed",
			"type":   ev.Type,
			"tx_ref": ev.TxRef,
			"error":  err.Error(),
		})
	}
}

// checkoutの失敗をメトリクスのラベルにする
func checkoutResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultPlaced
	case errors.Is(err, ErrEmptyCart):
		return metrics.ResultEmptyCart
	case errors.Is(err, ErrInsufficientStockBatch):
		return metrics.ResultInsufficientStock
	case errors.Is(err, ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
