package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"bansync/core/models"
	"bansync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Target publishes users to one kind of export list. Both calls must be
// idempotent.
type Target interface {
	Create(ctx context.Context, list models.BanSourceList, user models.User) error
	Delete(ctx context.Context, list models.BanSourceList, user models.User) error
}

// Targets maps provider types to targets.
type Targets map[string]Target

// Get returns the target for list.Provider.
func (t Targets) Get(list models.BanSourceList) (Target, error) {
	target, ok := t[list.Provider]
	if !ok {
		return nil, fmt.Errorf("no export target %q for list %s", list.Provider, list.ID)
	}
	return target, nil
}

// entry is the object body written for a published user.
type entry struct {
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	ProfileURL       string    `json:"profile_url"`
	Avatar           string    `json:"avatar"`
	ReputationPoints int       `json:"reputation_points"`
	ReputationRank   *int      `json:"reputation_rank"`
	ExportedAt       time.Time `json:"exported_at"`
}

// BucketTarget writes one JSON object per published user under
// `<prefix>/<list id>/<user id>.json`.
type BucketTarget struct {
	client storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// NewBucketTarget creates a bucket-export target.
func NewBucketTarget(client storage.Client, bucket, prefix string) *BucketTarget {
	return &BucketTarget{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// ObjectName returns the object key of user in list.
func (b *BucketTarget) ObjectName(listID, userID string) string {
	return path.Join(b.prefix, listID, userID+".json")
}

// Create implements Target.
func (b *BucketTarget) Create(ctx context.Context, list models.BanSourceList, user models.User) error {
	body, err := json.Marshal(entry{
		UserID:           user.ID,
		Name:             user.Name,
		ProfileURL:       user.ProfileURL,
		Avatar:           user.AvatarFull,
		ReputationPoints: user.ReputationPoints,
		ReputationRank:   user.ReputationRank,
		ExportedAt:       b.now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return err
	}

	_, err = b.client.PutObject(ctx, b.bucket, b.ObjectName(list.ID, user.ID),
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to write export object: %w", err)
	}
	return nil
}

// Delete implements Target. A missing object counts as deleted.
func (b *BucketTarget) Delete(ctx context.Context, list models.BanSourceList, user models.User) error {
	err := b.client.RemoveObject(ctx, b.bucket, b.ObjectName(list.ID, user.ID), minio.RemoveObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to remove export object: %w", err)
	}
	return nil
}
