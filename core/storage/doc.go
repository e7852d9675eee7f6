// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small Client interface so that both AWS S3
// and self-hosted MinIO work, and so that storage interactions can be mocked in
// tests (see core/storage/mocks).
//
// # Consumers
//
//   - feature/sources: the bucket-dump provider reads JSON ban dumps with GetObject.
//   - feature/export: the bucket-export target writes and removes per-user export objects.
//   - feature/integrity: verifies the configured bucket is reachable.
//   - cmd migrate: creates the bucket when missing.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
