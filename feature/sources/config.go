package sources

import "time"

// Config holds provider fetch settings.
type Config struct {
	// File is the YAML source catalogue loaded by `migrate`.
	File string `mapstructure:"file" default:"sources.yaml"`
	// FetchAttempts is the retry cap for one page fetch.
	FetchAttempts int `mapstructure:"fetch_attempts" default:"5"`
	// FetchDelay is the fixed pause between page fetch attempts.
	FetchDelay time.Duration `mapstructure:"fetch_delay" default:"5s"`
	// RequestTimeout bounds one HTTP request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"60s"`
	// PageSize is the number of records yielded per batch by bucket dumps.
	PageSize int `mapstructure:"page_size" default:"500"`
}
