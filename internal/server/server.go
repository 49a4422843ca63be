package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shop/internal/config"
	"shop/internal/handler"
	"shop/internal/metrics"
	"shop/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

// ルーティングに必要な部品
type Deps struct {
	Config  config.Config
	Logger  *log.Logger
	Metrics *metrics.Metrics
	Users   repository.UserRepository

	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Address *handler.AddressHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Seller  *handler.SellerHandler
	Profile *handler.ProfileHandler
}

// echoを組み立てる（Startはしない）
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = d.Logger

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(d.Metrics.Middleware())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	RegisterRoutes(e, d)
	return e
}

func RegisterRoutes(e *echo.Echo, d Deps) {
	d.Auth.RegisterRoutes(e)
	d.Product.RegisterRoutes(e, d.Config, d.Users)
	d.Address.RegisterRoutes(e, d.Config, d.Users)
	d.Cart.RegisterRoutes(e, d.Config, d.Users)
	d.Order.RegisterRoutes(e, d.Config, d.Users)
	d.Seller.RegisterRoutes(e, d.Config, d.Users)
	d.Profile.RegisterRoutes(e, d.Config, d.Users)
}

// 1リクエスト1行
func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := log.JSON{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
				logger.Errorj(fields)
				return nil
			}
			logger.Infoj(fields)
			return nil
		},
	})
}

// ctxがキャンセルされたらgraceful shutdown
func Run(ctx context.Context, e *echo.Echo, addr string, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infoj(log.JSON{"msg": "server started", "addr": addr})
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Infoj(log.JSON{"msg": "shutting down"})
	return e.Shutdown(shutdownCtx)
}
