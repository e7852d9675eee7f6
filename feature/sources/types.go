package sources

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"bansync/core/models"
	"bansync/core/utils"
)

// ErrInvalidRecord marks a feed record that cannot be imported.
var ErrInvalidRecord = errors.New("invalid ban record")

// RawBan is a ban as reported by a source, already normalized.
type RawBan struct {
	ID        string
	ListID    string
	UserID    string
	Created   time.Time
	Expires   *time.Time
	Expired   bool
	Reason    string
	RawReason string
	RawNote   string
}

// Ban converts the record to its persisted form.
func (r RawBan) Ban() models.Ban {
	return models.Ban{
		ID:        r.ID,
		ListID:    r.ListID,
		UserID:    r.UserID,
		Created:   r.Created,
		Expires:   r.Expires,
		Expired:   r.Expired,
		Reason:    r.Reason,
		RawReason: r.RawReason,
		RawNote:   r.RawNote,
	}
}

// Provider pulls the full current contents of one list. Each yielded slice is
// one batch; a yielded error ends the sequence.
type Provider interface {
	Fetch(ctx context.Context, list models.BanSourceList) iter.Seq2[[]RawBan, error]
}

// Registry maps provider types to providers.
type Registry map[string]Provider

// Get returns the provider for list.Provider.
func (r Registry) Get(list models.BanSourceList) (Provider, error) {
	p, ok := r[list.Provider]
	if !ok {
		return nil, fmt.Errorf("no provider %q for list %s", list.Provider, list.ID)
	}
	return p, nil
}

// Normalize converts a loosely typed feed record into a RawBan for listID.
// A record is expired when the feed says so or its expiry is not in the future.
func Normalize(listID string, rec map[string]any, now time.Time) (RawBan, error) {
	raw := RawBan{
		ID:        utils.ToString(rec["id"]),
		ListID:    listID,
		UserID:    utils.ToString(rec["user_id"]),
		Expires:   utils.ToTime(rec["expires"]),
		Expired:   utils.ToBool(rec["expired"]),
		Reason:    utils.ToString(rec["reason"]),
		RawReason: utils.ToString(rec["raw_reason"]),
		RawNote:   utils.ToString(rec["raw_note"]),
	}

	if raw.ID == "" || raw.UserID == "" {
		return RawBan{}, fmt.Errorf("%w: missing id or user_id", ErrInvalidRecord)
	}

	if created := utils.ToTime(rec["created"]); created != nil {
		raw.Created = *created
	}
	if raw.Expires != nil && !raw.Expires.After(now) {
		raw.Expired = true
	}

	return raw, nil
}
