// Command worker runs the campaign dispatcher: the polling loop that
// claims due jobs, renders them, sends via the configured EmailTransport,
// and schedules follow-ups.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/outreachcore/campaign-engine/internal/clock"
	"github.com/outreachcore/campaign-engine/internal/config"
	"github.com/outreachcore/campaign-engine/internal/dispatcher"
	"github.com/outreachcore/campaign-engine/internal/logger"
	"github.com/outreachcore/campaign-engine/internal/store"
	"github.com/outreachcore/campaign-engine/internal/transport"
)

func main() {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("worker: load config: %v", err)
	}
	applyLogConfig(cfg)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("worker: connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("worker: ping database: %v", err)
	}
	logger.Info("worker: connected to database")

	tr := buildTransport(cfg)

	st := store.NewPostgres(db)
	d := dispatcher.New(st, tr, clock.New(), dispatcher.Config{
		PollInterval: cfg.Worker.PollInterval(),
		BatchSize:    cfg.Worker.BatchSize,
		MaxAttempts:  cfg.Worker.MaxRetryAttempts,
		SendTimeout:  30 * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker: dispatcher starting",
		"poll_interval_seconds", cfg.Worker.PollIntervalSeconds,
		"batch_size", cfg.Worker.BatchSize)
	d.Run(ctx)
	logger.Info("worker: dispatcher stopped")
}

func buildTransport(cfg *config.Config) transport.EmailTransport {
	switch cfg.Email.Provider {
	case config.ProviderSparkPost:
		return transport.NewSparkPostTransport(cfg.Email.SparkPostKey, cfg.Webhook.Username, cfg.Webhook.Password, nil)
	case config.ProviderSES:
		client := newSESClient(cfg)
		return transport.NewSESTransport(client, cfg.Auth.SecretKey)
	default:
		logger.Warn("worker: EMAIL_PROVIDER unset or unrecognized, using logging transport", "provider", string(cfg.Email.Provider))
		return transport.NewLoggingTransport()
	}
}

func newSESClient(cfg *config.Config) *sesv2.Client {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Email.SESRegion))
	if err != nil {
		log.Fatalf("worker: load AWS config: %v", err)
	}
	return sesv2.NewFromConfig(awsCfg)
}

func applyLogConfig(cfg *config.Config) {
	switch cfg.Logging.Level {
	case "debug":
		logger.SetLevel(logger.DEBUG)
	case "warn":
		logger.SetLevel(logger.WARN)
	case "error":
		logger.SetLevel(logger.ERROR)
	default:
		logger.SetLevel(logger.INFO)
	}
	logger.SetRedactPII(cfg.Logging.RedactPII)
}
