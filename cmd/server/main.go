package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/lateleria/storefront/internal/application/cart"
	catalogapp "github.com/lateleria/storefront/internal/application/catalog"
	"github.com/lateleria/storefront/internal/application/checkout"
	"github.com/lateleria/storefront/internal/application/identity"
	"github.com/lateleria/storefront/internal/application/notification"
	tradeapp "github.com/lateleria/storefront/internal/application/trade"
	"github.com/lateleria/storefront/internal/domain/trade"
	"github.com/lateleria/storefront/internal/infrastructure/auth"
	"github.com/lateleria/storefront/internal/infrastructure/cache"
	"github.com/lateleria/storefront/internal/infrastructure/cartstore"
	"github.com/lateleria/storefront/internal/infrastructure/config"
	"github.com/lateleria/storefront/internal/infrastructure/event"
	"github.com/lateleria/storefront/internal/infrastructure/logger"
	"github.com/lateleria/storefront/internal/infrastructure/mail"
	"github.com/lateleria/storefront/internal/infrastructure/persistence"
	"github.com/lateleria/storefront/internal/infrastructure/scheduler"
	"github.com/lateleria/storefront/internal/infrastructure/storage"
	"github.com/lateleria/storefront/internal/infrastructure/telemetry"
	"github.com/lateleria/storefront/internal/interfaces/http/handler"
	"github.com/lateleria/storefront/internal/interfaces/http/middleware"
	"github.com/lateleria/storefront/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	La Teleria storefront API
//
//	Public catalog, cart and checkout for the shop, plus the admin panel
//	(products, categories, orders) behind a Bearer token.
//	Base path: /api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// The log exporter must exist before the logger so the bridge core can be teed in
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	})
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, otelCores(logProvider, cfg.Log.Level)...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting La Teleria storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", zap.Error(err))
	}
	if profiler != nil && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	shopMetrics, err := telemetry.NewStorefrontMetrics(meterProvider.Meter("lateleria-storefront"))
	if err != nil {
		log.Fatal("Failed to register storefront metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if db.Driver() == persistence.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	// Redis backs the cart store, token blacklist and notification dedup when enabled
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		redisClient = client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	adminRepo := persistence.NewGormAdminUserRepository(db.DB)

	cartStore, err := cartstore.New(cfg.Cart, cartstore.Backends{DB: db.DB, Redis: redisClient})
	if err != nil {
		log.Fatal("Failed to initialize cart store", zap.Error(err), zap.String("store", cfg.Cart.Store))
	}

	// Events and order confirmation mail
	eventBus := event.NewInMemoryEventBus(log)
	mailer, err := mail.New(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err), zap.String("provider", cfg.Mail.Provider))
	}
	renderer, err := notification.NewEmailRenderer(cfg.Mail.BankIBAN)
	if err != nil {
		log.Fatal("Failed to parse email templates", zap.Error(err))
	}
	confirmation := notification.NewOrderConfirmationHandler(mailer, renderer, log,
		notification.WithSendTimeout(cfg.Mail.SendTimeout),
		notification.WithFailureRecorder(shopMetrics),
	)
	idempotency := cache.NewIdempotencyStore(redisClient, log)
	defer func() {
		_ = idempotency.Close()
	}()
	eventBus.Subscribe(event.NewIdempotentHandler(confirmation, idempotency, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Image uploads are optional; an unset storage keeps the interface nil
	var imageStorage catalogapp.ImageStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ImageStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err), zap.String("bucket", cfg.Storage.Bucket))
		}
		imageStorage = s3Storage
	}

	// Application services
	storefrontService := catalogapp.NewStorefrontService(productRepo, categoryRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, imageStorage)
	productService.SetEventPublisher(eventBus)
	if cfg.Storage.PresignExpiry > 0 {
		productService.SetUploadURLExpiry(cfg.Storage.PresignExpiry)
	}
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	categoryService.SetEventPublisher(eventBus)

	orderService := tradeapp.NewOrderService(
		orderRepo,
		productRepo,
		trade.NewOrderNumberGenerator(cfg.Order.NumberPrefix),
		log,
		tradeapp.WithMaxNumberAttempts(cfg.Order.MaxNumberAttempts),
		tradeapp.WithOrderMetrics(shopMetrics),
	)
	orderService.SetEventPublisher(eventBus)

	sessionService := cartapp.NewSessionService(cartStore, storefrontService, log)
	checkoutService := checkout.NewService(checkout.NewLocalGateway(orderService), log)

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identity.NewAuthService(adminRepo, jwtService, blacklist, log)
	if cfg.Admin.BootstrapPassword != "" {
		created, err := authService.EnsureBootstrapAdmin(ctx, cfg.Admin.BootstrapUsername, cfg.Admin.BootstrapPassword)
		if err != nil {
			log.Fatal("Failed to bootstrap admin user", zap.Error(err))
		}
		if created {
			log.Info("Bootstrap admin created", zap.String("username", cfg.Admin.BootstrapUsername))
		}
	}

	// Background jobs
	jobs := scheduler.NewRunner(log)
	if purger, ok := cartStore.(scheduler.CartPurger); ok && cfg.Cart.PurgeInterval > 0 {
		if err := jobs.Add(scheduler.NewCartPurgeJob(purger, cfg.Cart.PurgeAfter, cfg.Cart.PurgeInterval, log)); err != nil {
			log.Fatal("Failed to schedule cart purge", zap.Error(err))
		}
	}
	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if cfg.Telemetry.Enabled {
		engine.Use(
			middleware.TracingWithConfig(middleware.TracingConfig{
				ServiceName: cfg.Telemetry.ServiceName,
				Enabled:     true,
			}),
			middleware.SpanErrorMarker(),
			middleware.TracingAttributeInjector(),
		)
	}
	engine.Use(
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       cfg.Telemetry.MetricsEnabled,
		}),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   cfg.Telemetry.ProfilingEnabled,
			SkipPaths: []string{"/health"},
		}),
	)
	securityConfig := middleware.DefaultSecurityConfig()
	if cfg.App.IsProduction() {
		securityConfig = middleware.ProductionSecurityConfig()
	}
	engine.Use(middleware.SecureWithConfig(securityConfig))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig), middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
	}

	guards := router.Guards{
		CartSession: middleware.CartSession(middleware.CartSessionConfig{
			CookieName: cfg.Cart.CookieName,
			MaxAge:     cfg.Cart.CookieMaxAge,
			Secure:     cfg.Cart.CookieSecure,
		}),
		Admin: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		loginLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, loginLimiter)
		guards.Login = middleware.LoginRateLimit(loginLimiter)
	}

	handlers := router.Handlers{
		System:     handler.NewSystemHandler(db, productService),
		Auth:       handler.NewAuthHandler(authService),
		Storefront: handler.NewStorefrontHandler(storefrontService),
		Cart:       handler.NewCartHandler(sessionService),
		Checkout:   handler.NewCheckoutHandler(sessionService, checkoutService),
		Orders:     handler.NewOrderHandler(orderService),
		Products:   handler.NewProductAdminHandler(productService),
		Categories: handler.NewCategoryAdminHandler(categoryService),
	}
	r := router.NewRouter(engine)
	router.Mount(engine, r, handlers, guards)
	log.Info("Routes registered", zap.Int("count", len(r.Routes())+1))

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.HTTP.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, limiter := range limiters {
		limiter.Stop()
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	// Pending confirmation emails are flushed before the process exits
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}

	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx, log); err != nil {
		log.Warn("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func otelCores(lp *telemetry.LoggerProvider, level string) []zapcore.Core {
	if !lp.IsEnabled() {
		return nil
	}
	return []zapcore.Core{lp.Core(logger.ParseLevel(level))}
}

func shutdownTimeout(configured time.Duration) time.Duration {
	if configured <= 0 {
		return 30 * time.Second
	}
	return configured
}
