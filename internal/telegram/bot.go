package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"forex-botv1/internal/alerts"
	"forex-botv1/internal/model"
	sqlitestore "forex-botv1/internal/store/sqlite"
	"forex-botv1/internal/subscription"
)

const pollTimeoutSec = 30

// Bot wires inbound Telegram commands to the alert service.
type Bot struct {
	client    *Client
	service   *alerts.Service
	journal   *sqlitestore.Journal // nil disables /history
	symbols   []string
	assetsDir string
}

// NewBot creates the command front end. symbols are the raw feed symbols the
// keyboard offers; assetsDir holds the signal chart images.
func NewBot(client *Client, service *alerts.Service, journal *sqlitestore.Journal, symbols []string, assetsDir string) *Bot {
	return &Bot{
		client:    client,
		service:   service,
		journal:   journal,
		symbols:   symbols,
		assetsDir: assetsDir,
	}
}

// Run long-polls getUpdates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	log.Printf("[telegram] bot started")
	var offset int64
	for {
		if ctx.Err() != nil {
			log.Printf("[telegram] bot stopped")
			return
		}

		updates, err := b.client.GetUpdates(ctx, offset, pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[telegram] bot stopped")
				return
			}
			log.Printf("[telegram] getUpdates error: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd Update) {
	switch {
	case upd.Callback != nil:
		b.handleCallback(ctx, upd.Callback)
	case upd.Message != nil && upd.Message.Text != "":
		b.handleCommand(ctx, upd.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *Message) {
	cmd, args := splitCommand(msg.Text)
	chatID := msg.Chat.ID

	switch cmd {
	case "/start":
		b.reply(ctx, chatID, b.sendStart(ctx, chatID))
	case "/subscribe":
		b.reply(ctx, chatID, b.handleSubscribe(chatID, args))
	case "/unsubscribe":
		b.reply(ctx, chatID, b.handleUnsubscribe(chatID, args))
	case "/list":
		b.reply(ctx, chatID, b.handleList(chatID))
	case "/status":
		b.reply(ctx, chatID, b.service.Status(chatID))
	case "/history":
		b.reply(ctx, chatID, b.handleHistory(chatID))
	default:
		b.reply(ctx, chatID, "Unknown command. Try /start, /subscribe, /unsubscribe, /list, /status or /history.")
	}
}

// reply sends text unless the handler already replied (empty string).
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	if err := b.client.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("[telegram] send reply: %v", err)
	}
}

// sendStart sends the welcome message with the signal keyboard. It returns
// an empty string because it performs its own send.
func (b *Bot) sendStart(ctx context.Context, chatID int64) string {
	var row []InlineKeyboardButton
	for _, sym := range b.symbols {
		inst := model.Instrument{Symbol: sym}
		row = append(row, InlineKeyboardButton{
			Text:         inst.Display() + " Signal",
			CallbackData: "signal:" + sym,
		})
	}
	kb := InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		row,
		{{Text: "Refresh", CallbackData: "refresh"}},
	}}

	text := "Welcome to the forex signal bot.\n" +
		"Tap a pair for the current signal, or use:\n" +
		"/subscribe PAIR INTERVAL_SECONDS\n" +
		"/unsubscribe PAIR\n" +
		"/list — your subscriptions\n" +
		"/status — signals for your pairs\n" +
		"/history — your recent alerts"
	if err := b.client.SendMessageWithKeyboard(ctx, chatID, text, kb); err != nil {
		log.Printf("[telegram] send start: %v", err)
	}
	return ""
}

func (b *Bot) handleSubscribe(chatID int64, args []string) string {
	if len(args) != 2 {
		return "Usage: /subscribe PAIR INTERVAL_SECONDS"
	}
	err := b.service.Subscribe(chatID, args[0], args[1])
	switch {
	case err == nil:
		return fmt.Sprintf("Subscribed to %s alerts every %ss.", strings.ToUpper(args[0]), args[1])
	case errors.Is(err, subscription.ErrUnsupportedInstrument):
		return fmt.Sprintf("Unsupported pair %q. Supported: %s.", args[0], strings.Join(b.displayNames(), ", "))
	case errors.Is(err, subscription.ErrInvalidInterval), errors.Is(err, alerts.ErrUsage):
		return "Interval must be a positive whole number of seconds."
	default:
		log.Printf("[telegram] subscribe: %v", err)
		return "Subscription failed, please try again."
	}
}

func (b *Bot) handleUnsubscribe(chatID int64, args []string) string {
	if len(args) != 1 {
		return "Usage: /unsubscribe PAIR"
	}
	err := b.service.Unsubscribe(chatID, args[0])
	switch {
	case err == nil:
		return fmt.Sprintf("Unsubscribed from %s.", strings.ToUpper(args[0]))
	case errors.Is(err, subscription.ErrNotSubscribed):
		return fmt.Sprintf("You are not subscribed to %s.", strings.ToUpper(args[0]))
	default:
		log.Printf("[telegram] unsubscribe: %v", err)
		return "Unsubscribe failed, please try again."
	}
}

func (b *Bot) handleList(chatID int64) string {
	entries := b.service.List(chatID)
	if len(entries) == 0 {
		return "No active subscriptions. Use /subscribe PAIR INTERVAL_SECONDS."
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		inst := model.Instrument{Symbol: e.Symbol}
		lines = append(lines, fmt.Sprintf("%s → %ds", inst.Display(), int(e.Interval/time.Second)))
	}
	return "Your subscriptions:\n" + strings.Join(lines, "\n")
}

func (b *Bot) handleHistory(chatID int64) string {
	if b.journal == nil {
		return "Alert history is not enabled."
	}
	recent, err := b.journal.Recent(chatID, 5)
	if err != nil {
		log.Printf("[telegram] history: %v", err)
		return "Could not load your alert history."
	}
	if len(recent) == 0 {
		return "No alerts delivered yet."
	}
	lines := make([]string, 0, len(recent))
	for _, a := range recent {
		inst := model.Instrument{Symbol: a.Symbol}
		lines = append(lines, fmt.Sprintf("%s  %s %s @ %.5f",
			a.SentAt.Format("01-02 15:04"), inst.Display(), a.Signal, a.Price))
	}
	return "Your last alerts:\n" + strings.Join(lines, "\n")
}

func (b *Bot) handleCallback(ctx context.Context, cb *CallbackQuery) {
	if err := b.client.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		log.Printf("[telegram] answer callback: %v", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, "signal:"):
		b.sendSignal(ctx, chatID, strings.TrimPrefix(cb.Data, "signal:"))
	case cb.Data == "refresh":
		b.sendStart(ctx, chatID)
	}
}

// sendSignal replies with the current signal for one pair, as a chart photo
// when one matches the signal direction.
func (b *Bot) sendSignal(ctx context.Context, chatID int64, symbol string) {
	res, err := b.service.InstrumentSignal(symbol)
	if err != nil {
		b.reply(ctx, chatID, "Unknown pair.")
		return
	}
	inst := model.Instrument{Symbol: symbol}
	if !res.Ready() {
		b.reply(ctx, chatID, fmt.Sprintf("⏳ %s: not enough data yet", inst.Display()))
		return
	}
	if res.Visual != "" {
		path := visualPath(b.assetsDir, res.Visual)
		if err := b.client.SendPhoto(ctx, chatID, path, res.Description); err != nil {
			log.Printf("[telegram] send photo: %v", err)
			b.reply(ctx, chatID, res.Description)
		}
		return
	}
	b.reply(ctx, chatID, res.Description)
}

func (b *Bot) displayNames() []string {
	out := make([]string, 0, len(b.symbols))
	for _, sym := range b.symbols {
		inst := model.Instrument{Symbol: sym}
		out = append(out, inst.Display())
	}
	return out
}

func visualPath(dir, visual string) string {
	return dir + "/" + visual + ".png"
}

// splitCommand parses "/cmd@botname arg arg" into the bare command and args.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "", nil
	}
	cmd := fields[0]
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	return cmd, fields[1:]
}
