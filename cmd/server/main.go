// Command server runs the campaign execution core's HTTP surface: campaign
// lifecycle control, email-history lookups, and the inbound reply/bounce
// webhook. The dispatcher itself runs in the separate worker process; this
// binary only orchestrates state transitions and ingestion.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/outreachcore/campaign-engine/internal/clock"
	"github.com/outreachcore/campaign-engine/internal/config"
	"github.com/outreachcore/campaign-engine/internal/distlock"
	"github.com/outreachcore/campaign-engine/internal/httpapi"
	"github.com/outreachcore/campaign-engine/internal/lifecycle"
	"github.com/outreachcore/campaign-engine/internal/logger"
	"github.com/outreachcore/campaign-engine/internal/replyingest"
	"github.com/outreachcore/campaign-engine/internal/store"
	"github.com/outreachcore/campaign-engine/internal/transport"
)

func main() {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("server: load config: %v", err)
	}
	applyLogConfig(cfg)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("server: connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("server: ping database: %v", err)
	}
	logger.Info("server: connected to database")

	redisClient := buildRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	st := store.NewPostgres(db)
	tr := buildTransport(cfg)
	cl := clock.New()

	lockFactory := func(key string) distlock.DistLock {
		return distlock.NewLock(redisClient, db, key, lifecycle.LockTTL)
	}

	lc := lifecycle.New(st, cl, lockFactory)
	ingestor := replyingest.New(st, tr)

	router := httpapi.NewRouter(httpapi.Deps{
		Store:     st,
		Lifecycle: lc,
		Ingestor:  ingestor,
		ReplyMode: httpapi.ReplyMode(cfg.Webhook.ReplyMode),
		PingDB: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server: listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("server: shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server: graceful shutdown failed", "error", err.Error())
	}
	logger.Info("server: stopped")
}

func buildRedisClient(cfg *config.Config) *redis.Client {
	if cfg.Redis.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Warn("server: invalid REDIS_URL, falling back to PostgreSQL advisory locks", "error", err.Error())
		return nil
	}
	return redis.NewClient(opts)
}

func buildTransport(cfg *config.Config) transport.EmailTransport {
	switch cfg.Email.Provider {
	case config.ProviderSparkPost:
		return transport.NewSparkPostTransport(cfg.Email.SparkPostKey, cfg.Webhook.Username, cfg.Webhook.Password, nil)
	case config.ProviderSES:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Email.SESRegion))
		if err != nil {
			log.Fatalf("server: load AWS config: %v", err)
		}
		return transport.NewSESTransport(sesv2.NewFromConfig(awsCfg), cfg.Auth.SecretKey)
	default:
		logger.Warn("server: EMAIL_PROVIDER unset or unrecognized, using logging transport", "provider", string(cfg.Email.Provider))
		return transport.NewLoggingTransport()
	}
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
