package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"shop/internal/config"
	"shop/internal/events"
	"shop/internal/handler"
	"shop/internal/infra/db"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/logging"
	"shop/internal/metrics"
	"shop/internal/server"
	"shop/internal/txref"
	"shop/internal/usecase"
	"shop/internal/validator"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

func main() {
	//.envは任意（本番は環境変数だけ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalj(log.JSON{"msg": "config", "error": err.Error()})
	}

	logger := logging.New("shop", cfg.LogLevel)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatalj(log.JSON{"msg": "db connect", "error": err.Error()})
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatalj(log.JSON{"msg": "db migrate", "error": err.Error()})
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	sellerRepo := infraRepo.NewSellerGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	lineRepo := infraRepo.NewCartLineGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//注文イベント（KAFKA_BROKERSが空なら送らない）
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warnj(log.JSON{"msg": "publisher close", "error": err.Error()})
		}
	}()

	m := metrics.New()

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator(userRepo))
	productUC := usecase.NewProductUsecase(txm, productRepo, categoryRepo, sellerRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo, validator.NewAddressValidator())
	cartUC := usecase.NewCartUsecase(txm, lineRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txm, txref.NewRandomGenerator(), publisher, m, logger, cfg.CheckoutRequireShipping)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, lineRepo, auditRepo, publisher, m, logger)
	sellerUC := usecase.NewSellerUsecase(txm, sellerRepo, validator.NewSellerValidator(), cfg.SellerAutoApprove)
	profileUC := usecase.NewProfileUsecase(userRepo)

	//Handler生成
	e := server.New(server.Deps{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Users:   userRepo,
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Address: handler.NewAddressHandler(addressUC),
		Cart:    handler.NewCartHandler(cartUC, checkoutUC),
		Order:   handler.NewOrderHandler(orderUC),
		Seller:  handler.NewSellerHandler(sellerUC),
		Profile: handler.NewProfileHandler(profileUC),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//Server起動
	if err := server.Run(ctx, e, cfg.Addr(), logger); err != nil {
		logger.Errorj(log.JSON{"msg": "server stopped", "error": err.Error()})
	}
}
