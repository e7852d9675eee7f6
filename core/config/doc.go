// Package config provides configuration management for bansync.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections owned by the packages that use them:
//   - Server: admin HTTP port and API key
//   - Database: MySQL (or SQLite) connection details
//   - Storage: S3/MinIO credentials and bucket
//   - Log: logging level and format
//   - Sources, Import: provider fetch retry settings and importer pool size
//   - Profiles: profile API endpoint, batch size, staleness, attempts and timeouts
//   - Export: notification cap and export object prefix
//   - Notify: notification channel credentials
//   - Schedule: job intervals for the long-running `start` command
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Import.Concurrency)
package config
