// Package notify tells participants what they owe once a receipt is
// confirmed. Delivery is best effort: each recipient is retried on its own
// and failures never reach the confirmation.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/jomsplit/internal/models"
	"github.com/mmynk/jomsplit/internal/money"
)

// ErrPermanent marks a failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent delivery failure")

// Channel is how a message reaches its recipient.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one notification for one participant.
type Message struct {
	ReceiptID string  `json:"receipt_id"`
	Channel   Channel `json:"channel"`
	To        string  `json:"to"`
	Name      string  `json:"name,omitempty"`
	Subject   string  `json:"subject"`
	Body      string  `json:"body"`
}

// Notifier delivers a single message.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log. Used when no webhook is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, msg Message) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Notification",
		"receipt_id", msg.ReceiptID,
		"channel", msg.Channel,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

// Compose builds the messages for a confirmed receipt: one per consumer other
// than the owner that has a contact. ownerName signs the message.
func Compose(cr *models.ConfirmedReceipt, ownerName string) []Message {
	var msgs []Message
	for _, c := range cr.Consumers {
		if c.UserID == cr.OwnerID || c.Contact == "" || models.IsPlaceholderEmail(c.Contact) {
			continue
		}
		msgs = append(msgs, Render(&cr.Receipt, ownerName, c))
	}
	return msgs
}

// Render formats the bill split message for one consumer.
func Render(r *models.Receipt, ownerName string, c models.ReceiptConsumer) Message {
	channel := ChannelSMS
	if strings.Contains(c.Contact, "@") {
		channel = ChannelEmail
	}
	if ownerName == "" {
		ownerName = "A friend"
	}
	title := r.Name
	if title == "" {
		title = "a receipt"
	}

	var b strings.Builder
	name := c.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "%s split %s with you", ownerName, title)
	if r.Date != "" {
		fmt.Fprintf(&b, " on %s", r.Date)
	}
	fmt.Fprintf(&b, ".\n\nYour share: %s\n", money.Display(c.TotalPaid, r.Currency))

	if len(c.Breakdown) > 0 {
		b.WriteString("\nItems:\n")
		for _, s := range c.Breakdown {
			itemName := s.ItemID
			if item, ok := r.Item(s.ItemID); ok && item.Name != "" {
				itemName = item.Name
			}
			fmt.Fprintf(&b, "- %s: %s\n", itemName, money.Display(s.Value, r.Currency))
		}
	}
	b.WriteString("\nTotal bill: " + money.Display(r.NettAmount, r.Currency) + "\n")

	return Message{
		ReceiptID: r.ID,
		Channel:   channel,
		To:        c.Contact,
		Name:      c.Name,
		Subject:   fmt.Sprintf("%s: you owe %s", title, money.Display(c.TotalPaid, r.Currency)),
		Body:      b.String(),
	}
}
