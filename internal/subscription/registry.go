// Package subscription tracks which subscriber wants alerts for which
// instrument at what interval, together with the per-pair liveness flag the
// alert workers poll for cooperative cancellation.
package subscription

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrUnsupportedInstrument is returned for pairs outside the configured set.
	ErrUnsupportedInstrument = errors.New("unsupported instrument")

	// ErrInvalidInterval is returned for non-positive polling intervals.
	ErrInvalidInterval = errors.New("interval must be a positive number of seconds")

	// ErrNotSubscribed is returned when unsubscribing a pair that has no
	// active subscription. Informational, not fatal.
	ErrNotSubscribed = errors.New("not subscribed")
)

// Key identifies one (subscriber, instrument) subscription.
type Key struct {
	SubscriberID int64
	Symbol       string
}

// Entry is the externally visible view of one subscription.
type Entry struct {
	Symbol   string
	Interval time.Duration
}

type record struct {
	interval time.Duration
	active   bool
}

// Registry is the synchronized subscription table shared by the command
// front end and the alert workers. Entries are only ever deactivated, never
// removed; the table lives for the process lifetime.
type Registry struct {
	mu        sync.Mutex
	supported map[string]struct{}
	subs      map[Key]*record
}

// New creates a Registry accepting subscriptions for the given symbols.
func New(symbols []string) *Registry {
	supported := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		supported[s] = struct{}{}
	}
	return &Registry{
		supported: supported,
		subs:      make(map[Key]*record),
	}
}

// Supported reports whether symbol is in the configured instrument set.
func (r *Registry) Supported(symbol string) bool {
	_, ok := r.supported[symbol]
	return ok
}

// Subscribe stores or overwrites the subscription for (subscriberID, symbol)
// and marks it live. Re-subscribing an existing pair updates the interval in
// place and revives an unsubscribed one.
func (r *Registry) Subscribe(subscriberID int64, symbol string, interval time.Duration) (Entry, error) {
	if !r.Supported(symbol) {
		return Entry{}, ErrUnsupportedInstrument
	}
	if interval <= 0 {
		return Entry{}, ErrInvalidInterval
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := Key{SubscriberID: subscriberID, Symbol: symbol}
	rec := r.subs[k]
	if rec == nil {
		rec = &record{}
		r.subs[k] = rec
	}
	rec.interval = interval
	rec.active = true
	return Entry{Symbol: symbol, Interval: interval}, nil
}

// Unsubscribe clears the liveness flag. The worker observes the flag at its
// next wakeup, so cancellation completes within one interval period.
func (r *Registry) Unsubscribe(subscriberID int64, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.subs[Key{SubscriberID: subscriberID, Symbol: symbol}]
	if rec == nil || !rec.active {
		return ErrNotSubscribed
	}
	rec.active = false
	return nil
}

// Lookup returns the current interval and liveness for a pair. Workers call
// this every cycle instead of caching the interval, so a re-subscribe takes
// effect on the next wakeup.
func (r *Registry) Lookup(k Key) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.subs[k]
	if rec == nil {
		return 0, false
	}
	return rec.interval, rec.active
}

// List returns the active subscriptions for one subscriber, ordered by symbol.
func (r *Registry) List(subscriberID int64) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for k, rec := range r.subs {
		if k.SubscriberID == subscriberID && rec.active {
			out = append(out, Entry{Symbol: k.Symbol, Interval: rec.interval})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
