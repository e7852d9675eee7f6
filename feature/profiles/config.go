package profiles

import "time"

// Config holds profile refresher and profile API settings.
type Config struct {
	// BaseURL is the player summaries endpoint.
	BaseURL string `mapstructure:"base_url" default:"https://api.steampowered.com/ISteamUser/GetPlayerSummaries/v2/"`
	// APIKey is sent as the `key` query parameter.
	APIKey string `mapstructure:"api_key" default:""`
	// BatchSize is the number of ids per API call.
	BatchSize int `mapstructure:"batch_size" default:"10"`
	// StaleAfter is the age after which a profile is refreshed.
	StaleAfter time.Duration `mapstructure:"stale_after" default:"168h"`
	// Attempts is the per-batch attempt cap for timed out calls.
	Attempts int `mapstructure:"attempts" default:"3"`
	// Timeout bounds one API call.
	Timeout time.Duration `mapstructure:"timeout" default:"300s"`
	// WriteTimeout bounds one user update.
	WriteTimeout time.Duration `mapstructure:"write_timeout" default:"30s"`
}
