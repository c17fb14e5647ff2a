package main

import (
	"context"
	"crypto/tls"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/clipperdesk/clipperdesk/cmd/mainconfig"
	"github.com/clipperdesk/clipperdesk/internal/booking"
	appconfig "github.com/clipperdesk/clipperdesk/internal/config"
	"github.com/clipperdesk/clipperdesk/internal/messaging"
	"github.com/clipperdesk/clipperdesk/internal/observability/metrics"
	"github.com/clipperdesk/clipperdesk/internal/worker/reminders"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clipperdesk reminder worker",
		"env", cfg.Env,
		"queue_url", cfg.ReminderQueueURL,
	)

	if cfg.ReminderQueueURL == "" {
		logger.Error("REMINDER_QUEUE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	queue := reminders.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.ReminderQueueURL)

	bookingStore := booking.NewStore(pool)
	optOuts := messaging.NewOptOutStore(redisClient)
	smsMetrics := metrics.NewSMSMetrics(nil)
	smsSender := messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, smsMetrics, logger)

	poller := reminders.NewPoller(bookingStore, queue, cfg.ReminderLeadTime, logger).
		WithPollInterval(cfg.ReminderPollInterval).
		WithBatchSize(cfg.ReminderBatchSize)
	sender := reminders.NewSender(queue, smsSender, bookingStore, optOuts, cfg.ShopName, logger)

	go poller.Run(ctx)
	sender.Run(ctx)

	logger.Info("reminder worker stopped")
}
