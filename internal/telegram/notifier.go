package telegram

import (
	"context"
	"log"
	"os"

	"forex-botv1/internal/notification"
)

// Notifier delivers alerts to subscribers over Telegram. When the alert
// carries a visual tag and a matching chart image exists, the alert goes
// out as a photo with the description as caption; otherwise plain text.
type Notifier struct {
	client    *Client
	assetsDir string
}

// NewNotifier creates a Telegram alert backend.
func NewNotifier(client *Client, assetsDir string) *Notifier {
	return &Notifier{client: client, assetsDir: assetsDir}
}

func (n *Notifier) Send(ctx context.Context, a notification.Alert) error {
	if a.Visual != "" {
		path := visualPath(n.assetsDir, a.Visual)
		if _, err := os.Stat(path); err == nil {
			if err := n.client.SendPhoto(ctx, a.SubscriberID, path, a.Description); err == nil {
				return nil
			}
			log.Printf("[telegram] photo alert failed, falling back to text")
		}
	}
	return n.client.SendMessage(ctx, a.SubscriberID, a.Description)
}
