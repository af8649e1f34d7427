package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-hotel-booking/internal/booking"
	"github.com/ariefcatur/go-hotel-booking/internal/config"
	"github.com/ariefcatur/go-hotel-booking/internal/httpx"
	kafkax "github.com/ariefcatur/go-hotel-booking/internal/kafka"
	"github.com/ariefcatur/go-hotel-booking/internal/kv"
	"github.com/ariefcatur/go-hotel-booking/internal/logging"
	"github.com/ariefcatur/go-hotel-booking/internal/postgres"
	"github.com/ariefcatur/go-hotel-booking/internal/redisx"
	"github.com/ariefcatur/go-hotel-booking/internal/sqlite"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	l, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if err := run(cfg, l); err != nil {
		l.Error("api stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, l *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageBackend, err)
	}
	defer closeStorage()
	l.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	svc := &booking.Service{
		Store:       booking.NewStore(storage, l.Named("store")),
		ServiceName: cfg.ServiceName,
		Log:         l.Named("booking"),
	}

	var producers []*kafkax.Producer
	if cfg.KafkaEnabled {
		pCreated := kafkax.NewProducer(cfg.KafkaBrokers, booking.TopicReservationCreated, 1024, l)
		pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, booking.TopicReservationCancelled, 1024, l)
		pCreated.Start(ctx)
		pCancelled.Start(ctx)
		svc.ProducerCreated, svc.ProducerCancelled = pCreated, pCancelled
		producers = append(producers, pCreated, pCancelled)
	}

	router := httpx.NewRouter(l.Named("http"))
	(&httpx.BookingHandler{Service: svc, Log: l.Named("http")}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		l.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	l.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		l.Warn("http shutdown", zap.Error(err))
	}
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.Config) (booking.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return kv.NewMemory(), func() {}, nil
	case config.BackendRedis:
		rdb, err := redisx.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return redisx.NewStorage(rdb), func() { _ = rdb.Close() }, nil
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store := &postgres.KV{DB: pool}
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
