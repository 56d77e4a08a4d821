package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"forex-botv1/internal/model"
)

func TestParseTick(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    model.Tick
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "tick frame",
			raw:    `{"tick":{"symbol":"frxEURUSD","quote":1.08123}}`,
			want:   model.Tick{Symbol: "frxEURUSD", Quote: 1.08123},
			wantOK: true,
		},
		{
			name:   "subscription echo without tick",
			raw:    `{"msg_type":"authorize","echo_req":{}}`,
			wantOK: false,
		},
		{
			name:    "feed error frame",
			raw:     `{"error":{"code":"InvalidSymbol","message":"Symbol frxXXX invalid"}}`,
			wantErr: true,
		},
		{
			name:    "tick missing symbol",
			raw:     `{"tick":{"quote":1.1}}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			raw:     `{"tick":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := parseTick([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseTick(%s): expected error, got ok=%v tick=%+v", tt.raw, ok, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTick(%s): unexpected error: %v", tt.raw, err)
			}
			if ok != tt.wantOK {
				t.Fatalf("parseTick(%s): ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Symbol != tt.want.Symbol || got.Quote != tt.want.Quote {
				t.Errorf("parseTick(%s) = %+v, want symbol=%s quote=%v", tt.raw, got, tt.want.Symbol, tt.want.Quote)
			}
			if got.TickTS.IsZero() {
				t.Errorf("parseTick(%s): TickTS not set", tt.raw)
			}
		})
	}
}

func TestSubscribePayload(t *testing.T) {
	c := New(Config{APIToken: "secret", Symbols: []string{"frxEURUSD"}})
	req := c.subscribePayload("frxEURUSD")
	if req.Ticks != "frxEURUSD" {
		t.Errorf("Ticks = %q, want frxEURUSD", req.Ticks)
	}
	if req.Subscribe != 1 {
		t.Errorf("Subscribe = %d, want 1", req.Subscribe)
	}
	if req.Passthrough["token"] != "secret" {
		t.Errorf("Passthrough = %v, want token=secret", req.Passthrough)
	}

	anon := New(Config{})
	if got := anon.subscribePayload("frxGBPUSD"); got.Passthrough != nil {
		t.Errorf("anonymous Passthrough = %v, want nil", got.Passthrough)
	}
}

func TestDialURLAppendsAppID(t *testing.T) {
	c := New(Config{AppID: "1089"})
	u, err := c.dialURL()
	if err != nil {
		t.Fatalf("dialURL: %v", err)
	}
	if !strings.HasPrefix(u, defaultEndpoint) {
		t.Errorf("dialURL = %q, want prefix %q", u, defaultEndpoint)
	}
	if !strings.Contains(u, "app_id=1089") {
		t.Errorf("dialURL = %q, missing app_id", u)
	}
}

// TestRunOnceStreamsTicks spins a local websocket server that checks the
// subscribe frames and then emits ticks.
func TestRunOnceStreamsTicks(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("app_id"); got != "1089" {
			t.Errorf("app_id = %q, want 1089", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub subscribeRequest
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		if sub.Ticks != "frxEURUSD" || sub.Subscribe != 1 {
			t.Errorf("subscribe frame = %+v", sub)
		}

		conn.WriteMessage(websocket.TextMessage, []byte(`{"msg_type":"tick_echo"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"tick":{"symbol":"frxEURUSD","quote":1.1001}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"tick":{"symbol":"frxEURUSD","quote":1.1002}}`))

		// Hold the connection open until the client goes away.
		conn.ReadMessage()
	}))
	defer srv.Close()

	c := New(Config{
		Endpoint: "ws" + strings.TrimPrefix(srv.URL, "http"),
		AppID:    "1089",
		Symbols:  []string{"frxEURUSD"},
	})

	ticks := make(chan model.Tick, 8)
	c.OnTick = func(tk model.Tick) { ticks <- tk }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		c.runOnce(ctx)
		close(done)
	}()

	for i, want := range []float64{1.1001, 1.1002} {
		select {
		case tk := <-ticks:
			if tk.Symbol != "frxEURUSD" || tk.Quote != want {
				t.Errorf("tick %d = %+v, want quote %v", i, tk, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for tick %d", i)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runOnce did not return after cancel")
	}
}
