package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Message = kafka.Message

// Handler returns nil only when the message is processed and its offset may
// be committed. A failing message is retried until it succeeds or the
// consumer stops, so later offsets of its partition are never committed
// past it.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
	backoff time.Duration
	log     *zap.Logger
}

func NewConsumer(brokers []string, group, topic string, workers int, l *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	if workers <= 0 {
		workers = 1
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Consumer{
		r:       r,
		workers: workers,
		backoff: 200 * time.Millisecond,
		log:     l.With(zap.String("topic", topic), zap.String("group", group)),
	}
}

// workerFor pins a partition to one worker so its offsets are handled and
// committed in order.
func workerFor(partition, workers int) int {
	if partition < 0 {
		partition = -partition
	}
	return partition % workers
}

// handle runs h until it succeeds and reports whether the offset may be
// committed. It gives up only when ctx is done.
func handle(ctx context.Context, h Handler, m kafka.Message, backoff time.Duration, l *zap.Logger) bool {
	wait := backoff
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		l.Error("handle message",
			zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset),
			zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		if wait < 10*time.Second {
			wait *= 2
		}
	}
}

// Start fetches messages and fans them out to the worker pool until ctx is
// cancelled. A cancelled ctx is a clean exit and returns nil.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	// Workers stuck retrying must see the stop even when Start exits on a
	// fetch error.
	ctx, cancel := context.WithCancel(ctx)

	queues := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(id int, jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				if !handle(ctx, h, m, c.backoff, c.log.With(zap.Int("worker", id))) {
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.log.Warn("commit message", zap.Int("worker", id), zap.Int64("offset", m.Offset), zap.Error(err))
				}
			}
		}(i, queues[i])
	}
	defer wg.Wait()
	defer func() {
		cancel()
		for _, q := range queues {
			close(q)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case queues[workerFor(m.Partition, c.workers)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}
