// Package feed streams live forex ticks from the Deriv websocket API and
// pushes normalized ticks to the rest of the pipeline.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"forex-botv1/internal/model"
)

const (
	defaultEndpoint  = "wss://ws.binaryws.com/websockets/v3"
	initialBackoff   = 1 * time.Second
	maxBackoff       = 30 * time.Second
	handshakeTimeout = 10 * time.Second
)

// Config holds configuration for the Deriv feed client.
type Config struct {
	Endpoint string // websocket endpoint, default wss://ws.binaryws.com/websockets/v3
	AppID    string // Deriv application ID, appended as ?app_id=
	APIToken string // passed through on subscribe requests
	Symbols  []string
}

// Client connects to the Deriv feed, subscribes to every configured symbol
// and reconnects with exponential backoff when the stream drops.
type Client struct {
	cfg Config

	// Hooks for metrics and the pipeline. OnTick must not block.
	OnTick       func(model.Tick)
	OnReconnect  func()
	OnParseError func()
}

// New creates a feed client.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	return &Client{cfg: cfg}
}

// subscribeRequest is the per-symbol tick subscription frame.
type subscribeRequest struct {
	Ticks       string            `json:"ticks"`
	Subscribe   int               `json:"subscribe"`
	Passthrough map[string]string `json:"passthrough,omitempty"`
}

// tickFrame mirrors the subset of the feed message carrying a tick.
type tickFrame struct {
	Tick *struct {
		Symbol string  `json:"symbol"`
		Quote  float64 `json:"quote"`
	} `json:"tick"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Run connects and streams ticks until ctx is cancelled. Connection drops
// trigger a reconnect with capped exponential backoff; a healthy session
// resets the backoff.
func (c *Client) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Printf("[feed] session ended: %v, reconnecting in %s", err, backoff)
		if c.OnReconnect != nil {
			c.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if time.Since(start) > maxBackoff {
			backoff = initialBackoff
		} else if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// runOnce dials, subscribes every symbol and reads frames until the
// connection fails or ctx is cancelled.
func (c *Client) runOnce(ctx context.Context) error {
	endpoint, err := c.dialURL()
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("feed: dial: %w", err)
	}
	defer conn.Close()
	log.Printf("[feed] connected, subscribing %d symbols", len(c.cfg.Symbols))

	// Unblock ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for _, sym := range c.cfg.Symbols {
		if err := conn.WriteJSON(c.subscribePayload(sym)); err != nil {
			return fmt.Errorf("feed: subscribe %s: %w", sym, err)
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed: read: %w", err)
		}

		tick, ok, err := parseTick(raw)
		if err != nil {
			log.Printf("[feed] parse error: %v", err)
			if c.OnParseError != nil {
				c.OnParseError()
			}
			continue
		}
		if !ok {
			continue // heartbeat or subscription echo
		}
		if c.OnTick != nil {
			c.OnTick(tick)
		}
	}
}

func (c *Client) dialURL() (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("feed: endpoint: %w", err)
	}
	q := u.Query()
	q.Set("app_id", c.cfg.AppID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) subscribePayload(symbol string) subscribeRequest {
	req := subscribeRequest{Ticks: symbol, Subscribe: 1}
	if c.cfg.APIToken != "" {
		req.Passthrough = map[string]string{"token": c.cfg.APIToken}
	}
	return req
}

// parseTick converts a raw feed frame into a model.Tick. ok is false for
// frames that are valid but carry no tick.
func parseTick(raw []byte) (model.Tick, bool, error) {
	var frame tickFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return model.Tick{}, false, fmt.Errorf("unmarshal frame: %w", err)
	}
	if frame.Error != nil {
		return model.Tick{}, false, fmt.Errorf("feed error %s: %s", frame.Error.Code, frame.Error.Message)
	}
	if frame.Tick == nil {
		return model.Tick{}, false, nil
	}
	if frame.Tick.Symbol == "" {
		return model.Tick{}, false, fmt.Errorf("tick missing symbol")
	}

	return model.Tick{
		Symbol: frame.Tick.Symbol,
		Quote:  frame.Tick.Quote,
		TickTS: time.Now().UTC(),
	}, true, nil
}
