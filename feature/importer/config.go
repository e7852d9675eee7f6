package importer

// Config holds importer settings.
type Config struct {
	// Concurrency is the number of save workers.
	Concurrency int `mapstructure:"concurrency" default:"2"`
	// QueueSize is the number of saves that may wait for a worker.
	QueueSize int `mapstructure:"queue_size" default:"100"`
	// DryRun plans orphan removal but leaves the orphans in place.
	DryRun bool `mapstructure:"dry_run" default:"false"`
}
