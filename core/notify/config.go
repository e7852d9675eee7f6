package notify

import "time"

// Config holds notification channel settings.
type Config struct {
	// TelegramToken enables `telegram:<chat-id>` channels when set.
	TelegramToken string `mapstructure:"telegram_token" default:""`
	// Timeout bounds a single delivery.
	Timeout time.Duration `mapstructure:"timeout" default:"10s"`
}
