package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/ariefcatur/go-menu-pricing/internal/catalog"
	"github.com/ariefcatur/go-menu-pricing/internal/config"
	"github.com/ariefcatur/go-menu-pricing/internal/httpx"
	kafkax "github.com/ariefcatur/go-menu-pricing/internal/kafka"
	"github.com/ariefcatur/go-menu-pricing/internal/logx"
	"github.com/ariefcatur/go-menu-pricing/internal/menu"
	"github.com/ariefcatur/go-menu-pricing/internal/metrics"
	"github.com/ariefcatur/go-menu-pricing/internal/offers"
	"github.com/ariefcatur/go-menu-pricing/internal/postgres"
	"github.com/ariefcatur/go-menu-pricing/internal/redisx"
	"github.com/ariefcatur/go-menu-pricing/internal/tracing"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logx.New(cfg.ServiceName, cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	tp, err := tracing.InitTracerProvider(cfg.ServiceName, cfg.JaegerEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("init tracing")
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, one for all catalog topics
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024)
	prod.Start(ctx)
	events := &catalog.Emitter{Producer: prod, Source: cfg.ServiceName}

	// Services
	menuRepo := &menu.Repo{DB: db}
	offerRepo := &offers.Repo{DB: db}
	pricer := &menu.Pricer{
		Store:   menuRepo,
		Offers:  offerRepo,
		Clock:   menu.SystemClock{},
		FanOut:  cfg.PricingFanOut,
		Metrics: metrics.NewPricing(prometheus.DefaultRegisterer),
		Tracer:  otel.Tracer("menu"),
	}
	admin := &menu.Admin{Store: menuRepo, Writer: menuRepo, Events: events}
	offerSvc := &offers.Service{Store: offerRepo, Clock: menu.SystemClock{}, Events: events, Tracer: otel.Tracer("offers")}

	router := httpx.NewRouter(logger)
	router.Handle("/metrics", promhttp.Handler())
	(&httpx.RestaurantsHandler{Service: admin}).Register(router)
	(&httpx.MenusHandler{Service: admin, Pricer: pricer, Idempotency: &redisx.Idempotency{Client: rdb}}).Register(router)
	(&httpx.OffersHandler{Service: offerSvc}).Register(router)

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	prod.WaitClosed()
	cancel()
	if err := tp.Shutdown(ctx2); err != nil {
		logger.Warn().Err(err).Msg("tracer shutdown")
	}
}
