package jobs

import "time"

// Config holds the job intervals used by `start`. A zero interval disables
// the timer for that job; it can still be triggered over HTTP.
type Config struct {
	Import     time.Duration `mapstructure:"import" default:"1h"`
	Profiles   time.Duration `mapstructure:"profiles" default:"30m"`
	Reputation time.Duration `mapstructure:"reputation" default:"15m"`
	Export     time.Duration `mapstructure:"export" default:"15m"`
	// RunOnStart runs every scheduled job once when the scheduler starts.
	RunOnStart bool `mapstructure:"run_on_start" default:"false"`
}

// Intervals maps job names to their configured interval.
func (c Config) Intervals() map[string]time.Duration {
	return map[string]time.Duration{
		NameImport:     c.Import,
		NameProfiles:   c.Profiles,
		NameReputation: c.Reputation,
		NameExport:     c.Export,
	}
}
