package telegram

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"forex-botv1/internal/alerts"
	"forex-botv1/internal/history"
	"forex-botv1/internal/notification"
	sqlitestore "forex-botv1/internal/store/sqlite"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantCmd  string
		wantArgs []string
	}{
		{"/start", "/start", nil},
		{"/subscribe EURUSD 60", "/subscribe", []string{"EURUSD", "60"}},
		{"/subscribe@forex_bot EURUSD 60", "/subscribe", []string{"EURUSD", "60"}},
		{"  /list  ", "/list", nil},
		{"", "", nil},
		{"hello there", "hello", []string{"there"}},
	}

	for _, tt := range tests {
		cmd, args := splitCommand(tt.in)
		if cmd != tt.wantCmd {
			t.Errorf("splitCommand(%q) cmd = %q, want %q", tt.in, cmd, tt.wantCmd)
		}
		if len(args) != len(tt.wantArgs) {
			t.Errorf("splitCommand(%q) args = %v, want %v", tt.in, args, tt.wantArgs)
			continue
		}
		for i := range args {
			if args[i] != tt.wantArgs[i] {
				t.Errorf("splitCommand(%q) args = %v, want %v", tt.in, args, tt.wantArgs)
				break
			}
		}
	}
}

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	symbols := []string{"frxEURUSD", "frxGBPUSD"}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := history.New(symbols, 50)
	svc := alerts.New(ctx, alerts.Config{Period: 14, Threshold: 0.0005, Symbols: symbols}, store, notification.LogNotifier{})
	return NewBot(NewClient("unused"), svc, nil, symbols, "assets")
}

func TestHandleHistoryReplies(t *testing.T) {
	b := newTestBot(t)
	if got := b.handleHistory(1); !strings.Contains(got, "not enabled") {
		t.Errorf("nil journal reply = %q", got)
	}

	journal, err := sqlitestore.NewJournal(filepath.Join(t.TempDir(), "alerts.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	t.Cleanup(func() { journal.Close() })
	b.journal = journal

	if got := b.handleHistory(1); !strings.Contains(got, "No alerts delivered yet") {
		t.Errorf("empty history reply = %q", got)
	}

	sent := time.Date(2026, 8, 28, 9, 30, 0, 0, time.UTC)
	if err := journal.Record(notification.Alert{
		SubscriberID: 1, Symbol: "frxEURUSD", Signal: "BUY",
		Price: 1.08123, Description: "d", SentAt: sent,
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got := b.handleHistory(1)
	if !strings.Contains(got, "EURUSD BUY @ 1.08123") || !strings.Contains(got, "08-28 09:30") {
		t.Errorf("history reply = %q", got)
	}
}

func TestHandleSubscribeReplies(t *testing.T) {
	b := newTestBot(t)

	if got := b.handleSubscribe(1, []string{"EURUSD"}); !strings.HasPrefix(got, "Usage:") {
		t.Errorf("missing arg reply = %q", got)
	}
	if got := b.handleSubscribe(1, []string{"USDJPY", "60"}); !strings.Contains(got, "Unsupported pair") {
		t.Errorf("unsupported reply = %q", got)
	}
	if got := b.handleSubscribe(1, []string{"EURUSD", "soon"}); !strings.Contains(got, "whole number of seconds") {
		t.Errorf("bad interval reply = %q", got)
	}
	if got := b.handleSubscribe(1, []string{"eurusd", "60"}); !strings.Contains(got, "Subscribed to EURUSD") {
		t.Errorf("success reply = %q", got)
	}
}

func TestHandleUnsubscribeReplies(t *testing.T) {
	b := newTestBot(t)

	if got := b.handleUnsubscribe(1, nil); !strings.HasPrefix(got, "Usage:") {
		t.Errorf("missing arg reply = %q", got)
	}
	if got := b.handleUnsubscribe(1, []string{"EURUSD"}); !strings.Contains(got, "not subscribed") {
		t.Errorf("not subscribed reply = %q", got)
	}

	if got := b.handleSubscribe(1, []string{"EURUSD", "60"}); !strings.Contains(got, "Subscribed") {
		t.Fatalf("subscribe reply = %q", got)
	}
	if got := b.handleUnsubscribe(1, []string{"eurusd"}); !strings.Contains(got, "Unsubscribed from EURUSD") {
		t.Errorf("success reply = %q", got)
	}
}

func TestHandleListReplies(t *testing.T) {
	b := newTestBot(t)

	if got := b.handleList(1); !strings.Contains(got, "No active subscriptions") {
		t.Errorf("empty reply = %q", got)
	}

	b.handleSubscribe(1, []string{"EURUSD", "60"})
	b.handleSubscribe(1, []string{"GBPUSD", "120"})

	got := b.handleList(1)
	if !strings.Contains(got, "EURUSD → 60s") || !strings.Contains(got, "GBPUSD → 120s") {
		t.Errorf("list reply = %q", got)
	}
}

func TestDisplayNames(t *testing.T) {
	b := newTestBot(t)
	got := b.displayNames()
	if len(got) != 2 || got[0] != "EURUSD" || got[1] != "GBPUSD" {
		t.Errorf("displayNames = %v", got)
	}
}

func TestVisualPath(t *testing.T) {
	if got := visualPath("assets", "buy"); got != "assets/buy.png" {
		t.Errorf("visualPath = %q", got)
	}
}
