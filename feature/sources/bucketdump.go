package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	"bansync/core/models"
	"bansync/core/retry"
	"bansync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// BucketDump reads a list from a JSON array object in the bucket. list.URL is
// the object name.
type BucketDump struct {
	client storage.Client
	bucket string
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewBucketDump creates a bucket-dump provider.
func NewBucketDump(client storage.Client, bucket string, cfg Config, logger *zap.Logger) *BucketDump {
	return &BucketDump{client: client, bucket: bucket, cfg: cfg, logger: logger, now: time.Now}
}

// Fetch implements Provider.
func (b *BucketDump) Fetch(ctx context.Context, list models.BanSourceList) iter.Seq2[[]RawBan, error] {
	return func(yield func([]RawBan, error) bool) {
		recs, err := retry.Value(ctx, func(ctx context.Context) ([]map[string]any, error) {
			return b.read(ctx, list.URL)
		},
			retry.WithAttempts(b.cfg.FetchAttempts),
			retry.WithDelay(b.cfg.FetchDelay),
			retry.WithLogger(b.logger.With(zap.String("list_id", list.ID))),
			retry.WithName("read dump"),
		)
		if err != nil {
			yield(nil, fmt.Errorf("failed to read dump of %s: %w", list.ID, err))
			return
		}

		size := b.cfg.PageSize
		if size <= 0 {
			size = 500
		}

		now := b.now()
		for start := 0; start < len(recs); start += size {
			end := min(start+size, len(recs))
			batch := normalizeAll(list.ID, recs[start:end], now, b.logger)
			if len(batch) > 0 && !yield(batch, nil) {
				return
			}
		}
	}
}

func (b *BucketDump) read(ctx context.Context, object string) ([]map[string]any, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	dec := json.NewDecoder(obj)
	dec.UseNumber()
	var recs []map[string]any
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", object, err)
	}
	return recs, nil
}
