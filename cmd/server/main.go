package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/config"
	"github.com/tripveda/booking-backend/internal/database"
	"github.com/tripveda/booking-backend/internal/handlers"
	"github.com/tripveda/booking-backend/internal/middleware"
	"github.com/tripveda/booking-backend/internal/services"
	"github.com/tripveda/booking-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting TripVeda Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Repositories need the concrete *sqlx.DB behind the interface
	sqlxDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Failed to cast database connection to PostgresDB")
	}
	draftRepository := database.NewDraftRepository(sqlxDB.DB)
	templateRepository := database.NewPassengerTemplateRepository(sqlxDB.DB)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	gatewayService := services.NewGatewayService(cfg.Gateway, logger)
	settingsService := services.NewSettingsService(cfg.Settings, cfg.Gateway.KeyID, logger)
	bookingClient := services.NewBookingClient(cfg.Booking.BookingServiceURL, logger)
	couponService := services.NewCouponService(cfg.Booking.CouponServiceURL, logger)
	draftService := services.NewDraftService(draftRepository, cfg.Booking.DraftTTL, logger)
	orchestrator := services.NewPaymentOrchestrator(bookingClient, gatewayService, settingsService, logger)
	wizardService := services.NewWizardService(
		bookingClient,
		couponService,
		orchestrator,
		draftService,
		services.WizardConfig{
			ReferralAmount:  cfg.Booking.ReferralDiscount,
			MinPassengerAge: cfg.Booking.MinPassengerAge,
			AutosaveDelay:   cfg.Booking.AutosaveDelay,
			PollInterval:    cfg.Booking.PollInterval,
		},
		logger,
	)

	if settingsService.Mode() == "gateway" && !gatewayService.IsConfigured() {
		logger.Fatal("Gateway payment mode requires gateway credentials")
	}

	// Start the draft and template purge jobs
	cronService := services.NewCronService(draftRepository, templateRepository)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	logger.Info("Cron service started")

	// Initialize handlers
	wizardHandler := handlers.NewWizardHandler(wizardService, logger)
	paymentHandler := handlers.NewPaymentHandler(orchestrator, wizardService, gatewayService, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsService, logger)
	templateHandler := handlers.NewTemplateHandler(templateRepository, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public payment settings for the checkout UI
		v1.GET("/payment-settings", settingsHandler.GetPaymentSettings)

		// Gateway webhook (authenticated by signature, not by JWT)
		v1.POST("/webhooks/gateway", paymentHandler.GatewayWebhook)

		// Everything else needs a signed-in user
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(jwtService))
		authed.Use(middleware.MaintenanceMiddleware(settingsService))
		{
			booking := authed.Group("/booking")
			{
				booking.POST("/sessions", wizardHandler.StartSession)
				booking.GET("/sessions/:session_id", wizardHandler.GetSession)
				booking.DELETE("/sessions/:session_id", wizardHandler.Abandon)
				booking.PUT("/sessions/:session_id/contact", wizardHandler.UpdateContact)
				booking.PUT("/sessions/:session_id/passengers", wizardHandler.UpdatePassengers)
				booking.POST("/sessions/:session_id/advance", wizardHandler.Advance)
				booking.POST("/sessions/:session_id/back", wizardHandler.Back)
				booking.POST("/sessions/:session_id/goto", wizardHandler.GoTo)
				booking.PUT("/sessions/:session_id/payment-type", wizardHandler.SetPaymentType)
				booking.PUT("/sessions/:session_id/wallet", wizardHandler.SetWallet)
				booking.POST("/sessions/:session_id/coupon", wizardHandler.ApplyCoupon)
				booking.DELETE("/sessions/:session_id/coupon", wizardHandler.RemoveCoupon)
				booking.GET("/sessions/:session_id/availability", wizardHandler.Availability)
				booking.POST("/sessions/:session_id/draft/resume", wizardHandler.ResumeDraft)
				booking.POST("/sessions/:session_id/draft/dismiss", wizardHandler.DismissDraft)
				booking.POST("/sessions/:session_id/submit", wizardHandler.Submit)
			}

			payments := authed.Group("/payments")
			{
				payments.POST("/verify", paymentHandler.VerifyPayment)
				payments.POST("/checkout-cancelled", paymentHandler.CancelCheckout)
				payments.POST("/remaining/verify", paymentHandler.VerifyRemainingPayment)
			}

			bookings := authed.Group("/bookings")
			{
				bookings.POST("/:booking_id/remaining/order", paymentHandler.StartRemainingPayment)
				bookings.POST("/:booking_id/remaining/manual", paymentHandler.SubmitRemainingManual)
			}

			templates := authed.Group("/passenger-templates")
			{
				templates.GET("", templateHandler.List)
				templates.POST("", templateHandler.Create)
				templates.DELETE("/:template_id", templateHandler.Delete)
			}
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	logger.Info("Stopping cron service...")
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
