package alerts

import (
	"context"
	"log"
	"log/slog"
	"time"

	"forex-botv1/internal/logger"
	"forex-botv1/internal/notification"
	"forex-botv1/internal/subscription"
)

const sendTimeout = 15 * time.Second

// ensureWorker starts a worker for the key unless one is already running.
// Idempotent: re-subscribing an active subscription only re-tunes the
// interval, the running worker picks it up on its next cycle.
func (s *Service) ensureWorker(k subscription.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.workers[k]; running {
		return
	}
	s.workers[k] = struct{}{}
	if s.OnWorker != nil {
		s.OnWorker(1)
	}
	go s.runWorker(k)
}

// runWorker is one subscription's alert loop. It re-reads the registry every
// cycle so interval changes and unsubscribes take effect within one period.
func (s *Service) runWorker(k subscription.Key) {
	log.Printf("[alerts] worker started subscriber=%d symbol=%s", k.SubscriberID, k.Symbol)
	defer func() {
		s.mu.Lock()
		delete(s.workers, k)
		s.mu.Unlock()
		if s.OnWorker != nil {
			s.OnWorker(-1)
		}
		log.Printf("[alerts] worker stopped subscriber=%d symbol=%s", k.SubscriberID, k.Symbol)

		// A re-subscribe racing this shutdown may have found the old worker
		// entry and skipped spawning. Re-check after deregistering.
		if s.ctx.Err() == nil {
			if _, active := s.registry.Lookup(k); active {
				s.ensureWorker(k)
			}
		}
	}()

	for {
		interval, active := s.registry.Lookup(k)
		if !active || s.ctx.Err() != nil {
			return
		}

		s.poll(k)

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// poll runs one alert cycle: classify, compare against the dedup state and
// dispatch when the signal changed or the price moved past the threshold.
func (s *Service) poll(k subscription.Key) {
	res := s.classify(k.Symbol)
	if !res.Ready() {
		return
	}

	s.mu.Lock()
	st := s.state[k]
	if st == nil {
		st = &alertState{}
		s.state[k] = st
	}
	fire := st.lastSignal != res.Signal ||
		(st.hasPrice && abs(res.Price-st.lastPrice) >= s.cfg.Threshold)
	if fire {
		// Update before dispatch so a slow send cannot double-fire.
		st.lastSignal = res.Signal
		st.lastPrice = res.Price
		st.hasPrice = true
	}
	s.mu.Unlock()

	if !fire {
		return
	}

	alert := notification.Alert{
		SubscriberID: k.SubscriberID,
		Symbol:       k.Symbol,
		Signal:       string(res.Signal),
		Price:        res.Price,
		Description:  res.Description,
		Visual:       res.Visual,
		SentAt:       time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(s.ctx, sendTimeout)
	defer cancel()
	ctx = logger.WithTraceID(ctx, logger.GenerateTraceID(k.Symbol, alert.SentAt))
	if err := s.notifier.Send(ctx, alert); err != nil {
		attrs := append([]any{
			slog.Int64("subscriber", k.SubscriberID),
			slog.String("symbol", k.Symbol),
			slog.Any("err", err),
		}, logger.LogWithTrace(ctx)...)
		slog.Error("alert send failed", attrs...)
		if s.OnNotifyError != nil {
			s.OnNotifyError()
		}
		return
	}
	if s.OnAlert != nil {
		s.OnAlert(alert)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
