package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"time"

	"bansync/core/models"
	"bansync/core/retry"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// feedPage is one page of a json-feed source.
type feedPage struct {
	Bans []map[string]any `json:"bans"`
	Next string           `json:"next"`
}

// JSONFeed reads paged JSON feeds over HTTP. list.URL is the first page; each page
// names the next one until `next` is empty.
type JSONFeed struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewJSONFeed creates a json-feed provider.
func NewJSONFeed(cfg Config, logger *zap.Logger) *JSONFeed {
	return &JSONFeed{cfg: cfg, logger: logger, now: time.Now}
}

// Fetch implements Provider.
func (f *JSONFeed) Fetch(ctx context.Context, list models.BanSourceList) iter.Seq2[[]RawBan, error] {
	return func(yield func([]RawBan, error) bool) {
		url := list.URL
		for page := 1; url != ""; page++ {
			p, err := retry.Value(ctx, func(ctx context.Context) (*feedPage, error) {
				return f.getPage(ctx, url)
			},
				retry.WithAttempts(f.cfg.FetchAttempts),
				retry.WithDelay(f.cfg.FetchDelay),
				retry.WithLogger(f.logger.With(zap.String("list_id", list.ID), zap.Int("page", page))),
				retry.WithName("fetch page"),
			)
			if err != nil {
				yield(nil, fmt.Errorf("failed to fetch page %d of %s: %w", page, list.ID, err))
				return
			}

			batch := normalizeAll(list.ID, p.Bans, f.now(), f.logger)
			if len(batch) > 0 && !yield(batch, nil) {
				return
			}
			url = p.Next
		}
	}
}

func (f *JSONFeed) getPage(ctx context.Context, url string) (*feedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Get(url)
	if f.cfg.RequestTimeout > 0 {
		agent.Timeout(f.cfg.RequestTimeout)
	}
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("failed to prepare request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", code, url)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var p feedPage
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	return &p, nil
}

func normalizeAll(listID string, recs []map[string]any, now time.Time, logger *zap.Logger) []RawBan {
	out := make([]RawBan, 0, len(recs))
	for i, rec := range recs {
		raw, err := Normalize(listID, rec, now)
		if err != nil {
			logger.Warn("Skipping ban record",
				zap.String("list_id", listID),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		out = append(out, raw)
	}
	return out
}
