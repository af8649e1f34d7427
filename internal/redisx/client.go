package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Connect creates a client and pings it.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := New(addr)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// Storage is a key-value substrate on plain Redis strings.
type Storage struct {
	rdb *redis.Client
}

func NewStorage(rdb *redis.Client) *Storage { return &Storage{rdb: rdb} }

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores without expiry; reservations live until cancelled.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

// Dedup remembers processed event ids per service.
type Dedup struct {
	rdb *redis.Client
}

func NewDedup(rdb *redis.Client) *Dedup { return &Dedup{rdb: rdb} }

func (d *Dedup) Seen(ctx context.Context, service, id string) (bool, error) {
	n, err := d.rdb.Exists(ctx, fmt.Sprintf(KeyDedup, service, id)).Result()
	return n > 0, err
}

// Mark records id as processed; call it only once handling succeeded.
func (d *Dedup) Mark(ctx context.Context, service, id string) error {
	return d.rdb.Set(ctx, fmt.Sprintf(KeyDedup, service, id), "1", TTLDedup).Err()
}
