package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/tour-matching/internal/auth"
	"github.com/example/tour-matching/internal/config"
	"github.com/example/tour-matching/internal/dispatch"
	"github.com/example/tour-matching/internal/embedding"
	"github.com/example/tour-matching/internal/events"
	httpapi "github.com/example/tour-matching/internal/http"
	"github.com/example/tour-matching/internal/lock"
	"github.com/example/tour-matching/internal/logging"
	"github.com/example/tour-matching/internal/match"
	"github.com/example/tour-matching/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.NewLogger(cfg.LogLevel)

	var st store.Store
	if cfg.PGDSN != "" {
		ps, err := store.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres unavailable", "error", err)
			os.Exit(1)
		}
		defer ps.Close()
		if cfg.RunMigrations {
			if b, err := os.ReadFile(filepath.Join("migrations", "001_schema.sql")); err == nil {
				if _, err := ps.DB().Exec(string(b)); err != nil {
					logger.Error("migration failed", "error", err)
				} else {
					logger.Info("migration applied", "file", "001_schema.sql")
				}
			}
		}
		st = ps
	} else {
		logger.Warn("PG_DSN not set, using in-memory store")
		st = store.NewMemoryStore()
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic, cfg.KafkaLocationsTopic)
		defer producer.Close()
	}

	var locker match.Locker
	if cfg.RedisAddr != "" {
		rl := lock.NewRedisLocker(cfg.RedisAddr, cfg.RedisPassword, cfg.MatchLockTTL)
		defer rl.Close()
		locker = rl
	}

	wsreg := dispatch.NewWSRegistry()
	offerer := dispatch.NewWebhookOfferer(cfg.DriverWebhookURL, wsreg)

	dispatcher := &dispatch.Service{Store: st, Offers: offerer, Logger: logger}
	matcher := &match.Service{Store: st, Lock: locker, Logger: logger, Threshold: cfg.MatchThreshold, TopN: cfg.MatchTopN}
	if producer != nil {
		dispatcher.Events = producer
		matcher.Events = producer
	}

	var embedSvc *embedding.Service
	if cfg.EmbeddingsEndpoint != "" {
		embedSvc = &embedding.Service{
			Store:  st,
			Client: embedding.NewClient(cfg.EmbeddingsEndpoint, cfg.EmbeddingsAPIKey, cfg.EmbeddingsModel),
			Cache:  embedding.NewCache(time.Hour),
			Logger: logger,
		}
	}

	srv := httpapi.NewServer(httpapi.Options{
		Dispatcher: dispatcher,
		Matcher:    matcher,
		Embeddings: embedSvc,
		Auth:       auth.NewVerifier(cfg.JWTSecret),
		Store:      st,
		Events:     producer,
		WSReg:      wsreg,
		Logger:     logger,
	})

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("tour-matching listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}
