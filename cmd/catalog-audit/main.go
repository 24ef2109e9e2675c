package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-menu-pricing/internal/catalog"
	"github.com/ariefcatur/go-menu-pricing/internal/config"
	kafkax "github.com/ariefcatur/go-menu-pricing/internal/kafka"
	"github.com/ariefcatur/go-menu-pricing/internal/logx"
	"github.com/ariefcatur/go-menu-pricing/internal/postgres"
	"github.com/ariefcatur/go-menu-pricing/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	service := cfg.ServiceName + "-audit"
	logger := logx.New(service, cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &catalog.AuditService{
		Dedup: &redisx.Dedup{Client: rdb, Service: service},
		Store: &catalog.AuditRepo{DB: db},
	}

	topics := catalog.Topics()
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, topics, cfg.AuditWorkers)

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info().Str("group", cfg.AuditGroup).Strs("topics", topics).Int("workers", cfg.AuditWorkers).Msg("audit consumer started")
		if err := cons.Start(ctx, svc.Handle); err != nil {
			logger.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info().Msg("shutting down consumer")
	case <-ctx.Done():
	}
	cancel()
	<-done
}
