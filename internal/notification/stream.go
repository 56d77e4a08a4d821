package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const (
	alertStreamKey    = "alerts:stream"
	alertStreamMaxLen = 10000
)

// StreamConfig configures the Redis alert stream backend.
type StreamConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// StreamNotifier appends every alert to a capped Redis stream so other
// consumers (dashboards, replayers) can tail the alert history.
type StreamNotifier struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (s *StreamNotifier) Client() *goredis.Client { return s.client }

// NewStreamNotifier creates the stream backend and pings the server.
func NewStreamNotifier(cfg StreamConfig) (*StreamNotifier, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &StreamNotifier{client: client}, nil
}

func (s *StreamNotifier) Send(ctx context.Context, alert Alert) error {
	if alert.SentAt.IsZero() {
		alert.SentAt = time.Now().UTC()
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("redis stream: marshal: %w", err)
	}

	err = s.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: alertStreamKey,
		MaxLen: alertStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"symbol": alert.Symbol,
			"signal": alert.Signal,
			"data":   payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis stream: xadd: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *StreamNotifier) Close() error {
	return s.client.Close()
}
