package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bansync/core/timeout"

	"go.uber.org/zap"
)

// Alert colors.
const (
	ColorCreated = "#2ecc71"
	ColorRemoved = "#e74c3c"
	ColorSummary = "#e67e22"
)

// Alert is a human-facing notification.
type Alert struct {
	Title       string
	Description string
	Color       string
	Thumbnail   string
}

// Notifier delivers alerts to a channel string. Delivery is fire-and-forget:
// implementations log failures and never report them to the caller.
type Notifier interface {
	Notify(ctx context.Context, channel string, alert Alert)
}

// Sender delivers one alert to a scheme-specific destination.
type Sender interface {
	Send(ctx context.Context, destination string, alert Alert) error
}

// Dispatcher routes `<scheme>:<destination>` channel strings to senders.
type Dispatcher struct {
	senders map[string]Sender
	timeout time.Duration
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher with the slack sender and, when a token is
// configured, the telegram sender.
func NewDispatcher(cfg Config, logger *zap.Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		senders: map[string]Sender{"slack": NewSlackSender()},
		timeout: cfg.Timeout,
		logger:  logger,
	}

	if cfg.TelegramToken != "" {
		tg, err := NewTelegramSender(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram sender: %w", err)
		}
		d.senders["telegram"] = tg
	}

	return d, nil
}

// Register adds or replaces the sender for a scheme.
func (d *Dispatcher) Register(scheme string, s Sender) {
	if d.senders == nil {
		d.senders = map[string]Sender{}
	}
	d.senders[scheme] = s
}

// Notify implements Notifier. An empty channel is a no-op.
func (d *Dispatcher) Notify(ctx context.Context, channel string, alert Alert) {
	if channel == "" {
		return
	}

	logger := d.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	scheme, dest, ok := strings.Cut(channel, ":")
	if !ok || dest == "" {
		logger.Warn("Invalid notification channel", zap.String("channel", channel))
		return
	}

	sender, ok := d.senders[scheme]
	if !ok {
		logger.Warn("No sender for notification channel", zap.String("scheme", scheme))
		return
	}

	limit := d.timeout
	if limit <= 0 {
		limit = 10 * time.Second
	}

	res := timeout.Run(ctx, limit, func(ctx context.Context) error {
		return sender.Send(ctx, dest, alert)
	})
	if _, err := res.Unwrap(); err != nil {
		logger.Error("Failed to deliver notification",
			zap.String("scheme", scheme),
			zap.String("title", alert.Title),
			zap.Stringer("outcome", res.Outcome),
			zap.Error(err))
	}
}

// Nop discards every alert.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, string, Alert) {}
