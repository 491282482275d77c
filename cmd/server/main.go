package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/vendora/backend/internal/application/catalog"
	checkoutapp "github.com/vendora/backend/internal/application/checkout"
	identityapp "github.com/vendora/backend/internal/application/identity"
	orderapp "github.com/vendora/backend/internal/application/order"
	promotionapp "github.com/vendora/backend/internal/application/promotion"
	"github.com/vendora/backend/internal/domain/identity"
	"github.com/vendora/backend/internal/infrastructure/auth"
	"github.com/vendora/backend/internal/infrastructure/cache"
	"github.com/vendora/backend/internal/infrastructure/config"
	"github.com/vendora/backend/internal/infrastructure/logger"
	"github.com/vendora/backend/internal/infrastructure/payment"
	"github.com/vendora/backend/internal/infrastructure/persistence"
	"github.com/vendora/backend/internal/infrastructure/scheduler"
	"github.com/vendora/backend/internal/interfaces/http/handler"
	"github.com/vendora/backend/internal/interfaces/http/middleware"
	"github.com/vendora/backend/internal/interfaces/http/router"
)

//	@title			Vendora Marketplace API
//	@version		1.0
//	@description	Multi-vendor marketplace backend: catalog, coupons, checkout and order promotion.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Vendora backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis backs the payment callback dedup fast path. The database replay
	// check stays authoritative, so a missing cache only costs latency.
	var deduper handler.CallbackDeduper
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, payment callback dedup falls back to database", zap.Error(err))
	} else {
		store := cache.NewRedisCallbackStore(redisClient)
		deduper = store
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	usageRepo := persistence.NewGormCouponUsageRepository(db.DB)
	tempOrderRepo := persistence.NewGormTemporaryOrderRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Infrastructure services
	jwtService := auth.NewJWTService(cfg.JWT)
	gateway := payment.NewHMACGateway(cfg.Payment, log)

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService)
	productService := catalogapp.NewProductService(productRepo)
	couponService := promotionapp.NewCouponService(couponRepo, usageRepo, orderRepo)
	tempOrderService := checkoutapp.NewTempOrderService(productRepo, tempOrderRepo, couponService, gateway)
	promotionService := checkoutapp.NewPromotionService(
		txManager, tempOrderRepo, orderRepo, productRepo, couponRepo, usageRepo, couponService, gateway)
	orderService := orderapp.NewService(orderRepo)

	// Background sweeper purging expired temporary orders
	sweeper := scheduler.NewExpirySweeper(tempOrderRepo, log, scheduler.ExpirySweeperConfig{
		Enabled:      cfg.Checkout.SweepEnabled,
		Interval:     cfg.Checkout.SweepInterval,
		SweepTimeout: time.Minute,
	})
	sweeperCtx, cancelSweeper := context.WithCancel(context.Background())
	defer cancelSweeper()
	if err := sweeper.Start(sweeperCtx); err != nil {
		log.Fatal("Failed to start expiry sweeper", zap.Error(err))
	}
	if cfg.Checkout.SweepEnabled {
		log.Info("Expiry sweeper started", zap.Duration("interval", cfg.Checkout.SweepInterval))
	}

	// HTTP handlers
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, cfg.Cookie),
		Products: handler.NewProductHandler(productService),
		Coupons:  handler.NewCouponHandler(couponService),
		Checkout: handler.NewTempOrderHandler(tempOrderService),
		Payments: handler.NewPaymentHandler(promotionService, deduper),
		Orders:   handler.NewOrderHandler(orderService),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack in order: request ID, panic recovery, request logging,
	// security headers, CORS, body limit, rate limit.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, handlers, router.Middlewares{
		RequireAuth: middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			CookieName: cfg.Cookie.Name,
			Logger:     log,
		}),
		RequireVendor: middleware.RequireRoles(identity.RoleVendor, identity.RoleAdmin),
		RequireAdmin:  middleware.RequireRoles(identity.RoleAdmin),
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sweeper.Stop(ctx); err != nil {
		log.Warn("Expiry sweeper did not stop cleanly", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
