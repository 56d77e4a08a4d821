// Package notification defines the outbound alert contract and the
// delivery backends that fan alerts out to subscribers and sinks.
package notification

import (
	"context"
	"log"
	"time"
)

// Alert is one deliverable signal notification for one subscriber.
type Alert struct {
	SubscriberID int64     `json:"subscriber_id"`
	Symbol       string    `json:"symbol"`
	Signal       string    `json:"signal"`
	Price        float64   `json:"price"`
	Description  string    `json:"description"`
	Visual       string    `json:"visual,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

// Notifier delivers an alert to one backend.
type Notifier interface {
	Send(ctx context.Context, a Alert) error
}

// LogNotifier writes alerts to the process log. Debugging sink.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, a Alert) error {
	log.Printf("[notify] subscriber=%d %s %s price=%.5f", a.SubscriberID, a.Symbol, a.Signal, a.Price)
	return nil
}

// Fanout delivers to every backend and returns the first error after all
// have been attempted. One failing sink must not starve the others.
type Fanout struct {
	Backends []Notifier
}

func (f *Fanout) Send(ctx context.Context, a Alert) error {
	var firstErr error
	for _, n := range f.Backends {
		if err := n.Send(ctx, a); err != nil {
			log.Printf("[notify] backend error: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
