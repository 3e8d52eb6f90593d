package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/notify"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/security"
	"storefront/internal/infra/storage"
	"storefront/internal/logging"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env", "../.env")
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.LogLevel)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := security.NewBcryptPasswordHasher(12)

	ctx := context.Background()
	seedOpts := db.SeedOptions{SampleData: cfg.SeedSampleData}
	if cfg.AdminEmail != "" {
		hash, err := hasher.Hash(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		seedOpts.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
		seedOpts.AdminPasswordHash = hash
		seedOpts.AdminBalance = cfg.InitialBalance
	}
	if err := db.Seed(ctx, gormDB, seedOpts); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentMethodGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//REDIS_ADDRがあればトークンはRedisに置く
	var tokens repository.TokenStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		defer rdb.Close()
		tokens = infraRepo.NewTokenRedisStore(rdb)
	} else {
		tokens = infraRepo.NewTokenGormStore(gormDB)
	}

	images, err := storage.NewLocalImageStore(cfg.UploadDir, "/uploads")
	if err != nil {
		return err
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	issuer := security.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		usecase.AuthSettings{
			InitialBalance: cfg.InitialBalance,
			VerifyTokenTTL: cfg.VerifyTokenTTL,
			ResetTokenTTL:  cfg.ResetTokenTTL,
			PublicBaseURL:  cfg.PublicBaseURL,
		},
		userRepo,
		tokens,
		hasher,
		issuer,
		security.NewRandomSecretGenerator(),
		notify.NewLogNotifier(logger),
		clock,
		validator.NewAuthValidator(),
	)
	productUC := usecase.NewProductUsecase(productRepo, txm, clock)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, txm, clock)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txm, userRepo, cartRepo, addressRepo, idGen, clock, cfg.CheckoutTimeout)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, clock)
	addressUC := usecase.NewAddressUsecase(addressRepo, clock)
	paymentUC := usecase.NewPaymentMethodUsecase(paymentRepo, clock)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo)
	imageUC := usecase.NewImageUsecase(images, idGen, cfg.MaxUploadBytes)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:      handler.NewAuthHandler(authUC),
		Product:   handler.NewProductHandler(productUC, categoryUC),
		Cart:      handler.NewCartHandler(cartUC),
		Checkout:  handler.NewCheckoutHandler(checkoutUC),
		Order:     handler.NewOrderHandler(orderUC),
		Address:   handler.NewAddressHandler(addressUC),
		Payment:   handler.NewPaymentMethodHandler(paymentUC),
		Wishlist:  handler.NewWishlistHandler(wishlistUC),
		Admin:     handler.NewAdminProductHandler(productUC),
		AdminCat:  handler.NewAdminCatalogHandler(categoryUC, imageUC, auditUC),
		AdminOrd:  handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser: handler.NewAdminUserHandler(authUC),
	}

	e := server.New(logger, server.Options{
		BodyLimit: fmt.Sprintf("%dK", cfg.MaxUploadBytes/1024+64),
		UploadDir: images.Dir(),
	})
	server.RegisterRoutes(e, handlers, issuer, userRepo)

	//Server起動
	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}
	return server.Start(ctx, e, addr, logger)
}
