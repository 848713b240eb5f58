package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	orderapp "github.com/cartoprint/backend/internal/application/order"
	renderapp "github.com/cartoprint/backend/internal/application/render"
	"github.com/cartoprint/backend/internal/infrastructure/config"
	"github.com/cartoprint/backend/internal/infrastructure/geocode"
	"github.com/cartoprint/backend/internal/infrastructure/logger"
	"github.com/cartoprint/backend/internal/infrastructure/mail"
	"github.com/cartoprint/backend/internal/infrastructure/osm"
	"github.com/cartoprint/backend/internal/infrastructure/payment"
	"github.com/cartoprint/backend/internal/infrastructure/persistence"
	"github.com/cartoprint/backend/internal/infrastructure/render"
	"github.com/cartoprint/backend/internal/infrastructure/storage"
	"github.com/cartoprint/backend/internal/interfaces/http/handler"
	"github.com/cartoprint/backend/internal/interfaces/http/middleware"
	"github.com/cartoprint/backend/internal/interfaces/http/router"
)

func main() {
	// Load .env if present; real environment variables win
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CartoPrint Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize stores
	orderStore, err := persistence.NewFileOrderStore(cfg.Posters.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize order store", zap.Error(err))
	}
	invoiceStore, err := persistence.NewFileInvoiceStore(cfg.Posters.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize invoice store", zap.Error(err))
	}
	artifactStore, err := storage.New(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize artifact storage", zap.Error(err))
	}
	log.Info("Artifact storage ready", zap.String("backend", cfg.Storage.Backend))

	// Initialize map data clients and the renderer
	geocoder := geocode.NewClient(geocode.Config{
		BaseURL:     cfg.Geocoder.BaseURL,
		UserAgent:   cfg.Geocoder.UserAgent,
		MinInterval: cfg.Geocoder.MinInterval,
		Timeout:     cfg.Geocoder.Timeout,
	}, log)
	overpass := osm.NewClient(osm.Config{
		BaseURL:   cfg.Overpass.BaseURL,
		UserAgent: cfg.Overpass.UserAgent,
		Timeout:   cfg.Overpass.Timeout,
	}, log)
	themeStore := render.NewThemeStore(cfg.Posters.ThemesDir, log)
	renderer := render.NewRenderer(cfg.Posters.FontsDir, log)
	renderService := renderapp.NewService(geocoder, overpass, themeStore, renderer, cfg.Render.PreviewWidth, log)

	// Stripe checkout is optional; without it orders fulfill immediately
	var checkout orderapp.CheckoutGateway
	if cfg.Stripe.Enabled() {
		client, err := payment.NewCheckoutClient(&payment.Config{
			SecretKey:     cfg.Stripe.SecretKey,
			PriceID:       cfg.Stripe.PriceID,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			PublicBaseURL: cfg.Stripe.PublicBaseURL,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe checkout", zap.Error(err))
		}
		checkout = client
		log.Info("Stripe checkout enabled")
	} else {
		log.Warn("Stripe checkout disabled, orders will fulfill without payment")
	}

	// Order mail is optional
	var mailer orderapp.Mailer
	if cfg.SMTP.Enabled() {
		m, err := mail.NewMailer(&mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize mailer", zap.Error(err))
		}
		mailer = m
		log.Info("Order mail enabled", zap.String("host", cfg.SMTP.Host))
	} else {
		log.Info("Order mail disabled")
	}

	orderService := orderapp.NewService(
		orderStore,
		invoiceStore,
		artifactStore,
		renderService,
		checkout,
		mailer,
		orderapp.Config{
			PriceCents:    cfg.Posters.PriceCents,
			Currency:      cfg.Posters.Currency,
			PublicBaseURL: cfg.Stripe.PublicBaseURL,
		},
		log,
	)

	// Initialize handlers
	orderHandler := handler.NewOrderHandler(orderService)
	posterHandler := handler.NewPosterHandler(themeStore, cfg.Posters.PriceCents, cfg.Posters.Currency, cfg.Stripe.Enabled())
	checkoutHandler := handler.NewCheckoutHandler(orderService)
	webhookHandler := handler.NewStripeWebhookHandler(orderService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(orderStore, log))

	// Register routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.GET("/:id/preview", orderHandler.Preview)
	orderRoutes.GET("/:id/download/:filename", orderHandler.Download)

	posterRoutes := router.NewDomainGroup("posters", "/posters")
	posterRoutes.GET("/options", posterHandler.GetOptions)
	posterRoutes.GET("/themes", posterHandler.GetThemes)

	checkoutRoutes := router.NewDomainGroup("checkout", "/checkout")
	checkoutRoutes.GET("/success", checkoutHandler.Complete)
	checkoutRoutes.GET("/cancel", checkoutHandler.Cancel)

	webhookRoutes := router.NewDomainGroup("webhooks", "/webhooks")
	webhookRoutes.POST("/stripe", webhookHandler.HandleStripeWebhook)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(orderRoutes).
		Register(posterRoutes).
		Register(checkoutRoutes).
		Register(webhookRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(store *persistence.FileOrderStore, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
				"store":  "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  "ok",
		})
	}
}
