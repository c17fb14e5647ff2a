package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clipperdesk/clipperdesk/cmd/mainconfig"
	"github.com/clipperdesk/clipperdesk/internal/api/router"
	"github.com/clipperdesk/clipperdesk/internal/archive"
	"github.com/clipperdesk/clipperdesk/internal/booking"
	appconfig "github.com/clipperdesk/clipperdesk/internal/config"
	"github.com/clipperdesk/clipperdesk/internal/http/handlers"
	"github.com/clipperdesk/clipperdesk/internal/messaging"
	"github.com/clipperdesk/clipperdesk/internal/notify"
	"github.com/clipperdesk/clipperdesk/internal/observability/metrics"
	"github.com/clipperdesk/clipperdesk/internal/payments"
	"github.com/clipperdesk/clipperdesk/internal/staff"
	"github.com/clipperdesk/clipperdesk/internal/timeclock"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

func main() {
	// .env is optional; real deployments inject environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clipperdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The owner dashboard runs its scans over database/sql.
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	timeclockMetrics := metrics.NewTimeclockMetrics(nil)
	smsMetrics := metrics.NewSMSMetrics(nil)

	// Roster
	roster := staff.NewPostgresRepository(pool)
	staffHandler := staff.NewHandler(roster, logger)

	// Time clock
	entryStore := timeclock.NewStore(pool)
	liveHub := timeclock.NewLiveHub(logger)
	timeclockHandler := timeclock.NewHandler(entryStore, roster, liveHub, timeclockMetrics, logger)

	// Booking
	bookingStore := booking.NewStore(pool)
	bookingService := booking.NewService(bookingStore, cfg.DepositAmountCents, logger)
	bookingHandler := booking.NewHandler(bookingService, logger)

	// Payments
	paymentsStore := payments.NewStore(pool)
	var paymentsHandler *payments.Handler
	if cfg.StripeSecretKey != "" {
		checkout := payments.NewStripeCheckoutService(
			cfg.StripeSecretKey,
			cfg.PublicBaseURL+"/booking/success",
			cfg.PublicBaseURL+"/booking/cancelled",
			logger,
		)
		paymentsHandler = payments.NewHandler(checkout, bookingService, paymentsStore, logger)
	}
	stripeWebhook := payments.NewStripeWebhookHandler(cfg.StripeWebhookSecret, paymentsStore, bookingService, logger)

	// Messaging + OTP login
	optOuts := messaging.NewOptOutStore(redisClient)
	messagingHandler := messaging.NewHandler(cfg.TwilioWebhookSecret, optOuts, cfg.ShopName, logger)
	otpStore := messaging.NewOTPStore(redisClient, cfg.OTPCodeTTL, cfg.OTPMaxAttempts, smsMetrics)
	smsSender := messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, smsMetrics, logger)
	authHandler := handlers.NewAuthOTPHandler(otpStore, roster, smsSender, cfg.StaffJWTSecret, cfg.ShopName, logger)

	// AWS-backed extras (timesheet archive, SES email)
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	var archiveStore *archive.Store
	if cfg.TimesheetBucket != "" {
		archiveStore = archive.NewStore(s3.NewFromConfig(awsCfg), cfg.TimesheetBucket, logger)
	}

	var emailSender notify.EmailSender
	switch {
	case cfg.EmailProvider == "sendgrid" || (cfg.EmailProvider == "auto" && cfg.SendGridAPIKey != ""):
		if s := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); s != nil {
			emailSender = s
		}
	case cfg.EmailProvider == "ses" || (cfg.EmailProvider == "auto" && cfg.SESFromEmail != ""):
		if s := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
		}, logger); s != nil {
			emailSender = s
		}
	}
	notifyService := notify.NewService(emailSender, cfg.OwnerEmail, cfg.ShopName, logger)

	timesheetExport := handlers.NewTimesheetExportHandler(entryStore, roster, archiveStore, notifyService, logger)
	ownerDashboard := handlers.NewOwnerDashboardHandler(sqlDB, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     bookingHandler,
		PaymentsHandler:    paymentsHandler,
		StripeWebhook:      stripeWebhook,
		MessagingHandler:   messagingHandler,
		StaffHandler:       staffHandler,
		TimeclockHandler:   timeclockHandler,
		LiveHub:            liveHub,
		AuthHandler:        authHandler,
		OwnerDashboard:     ownerDashboard,
		TimesheetExport:    timesheetExport,
		StaffAuthSecret:    cfg.StaffJWTSecret,
		OwnerAuthSecret:    cfg.OwnerJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
