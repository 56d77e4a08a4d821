// Package alerts runs the per-subscription alert schedulers: each active
// subscription gets a worker that periodically classifies its instrument
// and dispatches a notification when the signal changes or the price moves
// past the configured threshold.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"forex-botv1/internal/history"
	"forex-botv1/internal/indicator"
	"forex-botv1/internal/model"
	"forex-botv1/internal/notification"
	"forex-botv1/internal/signal"
	"forex-botv1/internal/subscription"
)

// ErrUsage marks malformed subscriber input (non-numeric interval).
var ErrUsage = errors.New("alerts: invalid argument")

// Config tunes the alert pipeline.
type Config struct {
	Period    int     // indicator lookback
	Threshold float64 // absolute price move that re-fires an unchanged signal
	Symbols   []string
}

// alertState is the per-subscription dedup state: the last signal and price
// that actually produced an alert.
type alertState struct {
	lastSignal signal.Signal
	lastPrice  float64
	hasPrice   bool
}

// Service owns the subscription registry, the worker pool and the alert
// dedup state. All exported methods are safe for concurrent use.
type Service struct {
	cfg      Config
	registry *subscription.Registry
	store    *history.Store
	notifier notification.Notifier

	ctx context.Context

	mu      sync.Mutex
	workers map[subscription.Key]struct{}
	state   map[subscription.Key]*alertState

	// Optional hooks for metrics and the alert journal.
	OnAlert       func(notification.Alert)
	OnWorker      func(delta int)
	OnNotifyError func()
}

// New creates the alert service. ctx bounds the lifetime of every worker.
func New(ctx context.Context, cfg Config, store *history.Store, notifier notification.Notifier) *Service {
	return &Service{
		cfg:      cfg,
		registry: subscription.New(cfg.Symbols),
		store:    store,
		notifier: notifier,
		ctx:      ctx,
		workers:  make(map[subscription.Key]struct{}),
		state:    make(map[subscription.Key]*alertState),
	}
}

// Subscribe registers (or re-tunes) a subscription from raw subscriber input
// and guarantees a worker is running for it. intervalText is whole seconds.
func (s *Service) Subscribe(subscriberID int64, instrumentText, intervalText string) error {
	symbol, ok := s.resolveSymbol(instrumentText)
	if !ok {
		return fmt.Errorf("%w: %q", subscription.ErrUnsupportedInstrument, instrumentText)
	}

	secs, err := strconv.Atoi(strings.TrimSpace(intervalText))
	if err != nil {
		return fmt.Errorf("%w: interval %q is not a number", ErrUsage, intervalText)
	}

	entry, err := s.registry.Subscribe(subscriberID, symbol, time.Duration(secs)*time.Second)
	if err != nil {
		return err
	}

	s.ensureWorker(subscription.Key{SubscriberID: subscriberID, Symbol: entry.Symbol})
	return nil
}

// Unsubscribe deactivates a subscription. The worker observes the cleared
// flag on its next cycle and exits; no alert fires after that cycle.
func (s *Service) Unsubscribe(subscriberID int64, instrumentText string) error {
	symbol, ok := s.resolveSymbol(instrumentText)
	if !ok {
		return fmt.Errorf("%w: %q", subscription.ErrNotSubscribed, instrumentText)
	}
	return s.registry.Unsubscribe(subscriberID, symbol)
}

// List returns the subscriber's active subscriptions.
func (s *Service) List(subscriberID int64) []subscription.Entry {
	return s.registry.List(subscriberID)
}

// Status renders a fresh classification for each of the subscriber's active
// pairs, independent of the alert schedule and dedup state.
func (s *Service) Status(subscriberID int64) string {
	entries := s.registry.List(subscriberID)
	if len(entries) == 0 {
		return "No active subscriptions. Use /subscribe PAIR INTERVAL_SECONDS."
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		inst := model.Instrument{Symbol: e.Symbol}
		res := s.classify(e.Symbol)
		if !res.Ready() {
			lines = append(lines, fmt.Sprintf("⏳ %s: not enough data yet", inst.Display()))
			continue
		}
		lines = append(lines, res.Description)
	}
	return strings.Join(lines, "\n\n")
}

// InstrumentSignal returns a fresh classification for one instrument.
func (s *Service) InstrumentSignal(instrumentText string) (signal.Result, error) {
	symbol, ok := s.resolveSymbol(instrumentText)
	if !ok {
		return signal.Result{}, fmt.Errorf("%w: %q", subscription.ErrUnsupportedInstrument, instrumentText)
	}
	return s.classify(symbol), nil
}

// classify snapshots the price history and runs the indicator pipeline.
func (s *Service) classify(symbol string) signal.Result {
	prices := s.store.Snapshot(symbol)
	snap := indicator.Compute(prices, s.cfg.Period)
	inst := model.Instrument{Symbol: symbol}
	return signal.Classify(inst.Display(), snap)
}

// resolveSymbol maps subscriber input ("eurusd", "EURUSD", "frxEURUSD") to
// the feed symbol, case-insensitively.
func (s *Service) resolveSymbol(text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, sym := range s.cfg.Symbols {
		bare := strings.TrimPrefix(sym, "frx")
		if strings.EqualFold(text, sym) || strings.EqualFold(text, bare) {
			return sym, true
		}
	}
	return "", false
}
