package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace-service/internal/api/http"
	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/observability"
	"github.com/spec-kit/marketplace-service/internal/persistence"
	"github.com/spec-kit/marketplace-service/internal/repository"
	"github.com/spec-kit/marketplace-service/internal/service"
	"github.com/spec-kit/marketplace-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	listingRepo := repository.NewListingRepository(pool)
	purchaseRepo := repository.NewPurchaseRepository(pool)
	secretRepo := repository.NewSecretRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	secrets := service.NewSecretIssuer(secretRepo)
	denylist := auth.NewTokenDenylist(redis.Client)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Secrets:    secrets,
		Denylist:   denylist,
		Dispatcher: dispatcher,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		ListingRepo:  listingRepo,
		UserRepo:     userRepo,
		PurchaseRepo: purchaseRepo,
		Dispatcher:   dispatcher,
	})
	reviewService := service.NewReviewService(listingRepo, dispatcher)
	entitlementService := service.NewEntitlementService(service.EntitlementDependencies{
		PurchaseRepo:    purchaseRepo,
		ListingRepo:     listingRepo,
		Secrets:         secrets,
		Dispatcher:      dispatcher,
		DownloadBaseURL: cfg.Download.BaseURL,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, denylist)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Listings:       handlers.NewListingsHandler(catalogService),
		Purchases:      handlers.NewPurchasesHandler(entitlementService),
		Admin:          handlers.NewAdminHandler(catalogService, reviewService, authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
