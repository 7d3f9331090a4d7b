package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront-backend/controllers"
	"storefront-backend/database"
	"storefront-backend/middleware"
	"storefront-backend/providers"
	"storefront-backend/repository"
	"storefront-backend/routes"
	servicepkg "storefront-backend/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if err := database.Connect(cfg.MongoURI, cfg.MongoDB); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	// Redis is a cache, not a dependency; the catalog runs without it.
	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := cache.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable, product cache disabled", zap.Error(err))
			cache = nil
		}
	}

	// Repositories and indexes
	orderRepo := repository.NewMongoOrderRepository(database.DB)
	userRepo := repository.NewMongoUserRepository(database.DB)
	productRepo := repository.NewMongoProductRepository(database.DB)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelIndexes()
	if err := orderRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal("Failed to create order indexes", zap.Error(err))
	}
	if err := userRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal("Failed to create user indexes", zap.Error(err))
	}
	if err := productRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Fatal("Failed to create product indexes", zap.Error(err))
	}

	// Providers and DI chain
	paymentProvider := providers.NewCashfreeProvider(
		cfg.CashfreeAppID,
		cfg.CashfreeSecretKey,
		cfg.CashfreeEnv,
		cfg.CashfreeReturnURL,
		cfg.CashfreeNotifyURL,
	)
	shippingProvider := providers.NewShipwayProvider(cfg.ShipwayConfig())

	orderService := servicepkg.NewOrderService(
		orderRepo,
		shippingProvider,
		cfg.AutoCreateShipment,
		cfg.DefaultShippingCharge,
		logger,
	)
	authService := servicepkg.NewAuthService(userRepo, cfg.JWTSecret, logger)
	productService := servicepkg.NewProductService(productRepo, cache, logger)

	ctl := routes.Controllers{
		Auth:     controllers.NewAuthController(authService),
		Orders:   controllers.NewOrderController(orderService, logger),
		Payments: controllers.NewPaymentController(paymentProvider, orderService, logger),
		Products: controllers.NewProductController(productService),
		Shipway:  controllers.NewShipwayController(shippingProvider, orderService, logger),
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Global request-logging middleware
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
		)
	})

	// 30-second request timeout
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	routes.Setup(r, ctl, authService, limiter)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Storefront backend started", zap.String("port", cfg.Port))
	<-quit
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}
