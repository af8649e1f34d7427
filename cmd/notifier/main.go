package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ariefcatur/go-hotel-booking/internal/booking"
	"github.com/ariefcatur/go-hotel-booking/internal/config"
	kafkax "github.com/ariefcatur/go-hotel-booking/internal/kafka"
	"github.com/ariefcatur/go-hotel-booking/internal/logging"
	"github.com/ariefcatur/go-hotel-booking/internal/notifier"
	"github.com/ariefcatur/go-hotel-booking/internal/redisx"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &notifier.Service{
		Log:         l.Named("notifier"),
		ServiceName: cfg.ServiceName + "-notifier",
	}
	// Without Redis every redelivered event is notified again.
	if rdb, err := redisx.Connect(ctx, cfg.RedisAddr); err != nil {
		l.Warn("redis unavailable, dedup disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		svc.Dedup = redisx.NewDedup(rdb)
	}

	var wg sync.WaitGroup
	for _, topic := range []string{booking.TopicReservationCreated, booking.TopicReservationCancelled} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, topic, cfg.NotifierWorkers, l)
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			l.Info("consumer started", zap.String("topic", topic), zap.String("group", cfg.NotifierGroup), zap.Int("workers", cfg.NotifierWorkers))
			if err := cons.Start(ctx, svc.HandleReservationEvent); err != nil {
				l.Error("consumer exit", zap.String("topic", topic), zap.Error(err))
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	l.Info("shutting down consumers")
	cancel()
	wg.Wait()
}
