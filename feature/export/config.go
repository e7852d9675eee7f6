package export

// Config holds export settings.
type Config struct {
	// NotifyCap is the pending-change count per list at which individual
	// alerts are replaced by one summary alert.
	NotifyCap int `mapstructure:"notify_cap" default:"50"`
	// Prefix is the object prefix used by bucket-export targets.
	Prefix string `mapstructure:"prefix" default:"exports"`
}
