package sources

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bansync/core/models"
	"bansync/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestNormalize(t *testing.T) {
	past := fixedNow.Add(-time.Hour).Unix()
	future := fixedNow.Add(time.Hour).Unix()

	tests := []struct {
		name        string
		rec         map[string]any
		wantExpired bool
		wantErr     bool
	}{
		{"permanent", map[string]any{"id": "1", "user_id": "u"}, false, false},
		{"flagged expired", map[string]any{"id": "1", "user_id": "u", "expired": "true"}, true, false},
		{"expiry passed", map[string]any{"id": "1", "user_id": "u", "expires": json.Number("0")}, false, false},
		{"expiry in past", map[string]any{"id": "1", "user_id": "u", "expires": past}, true, false},
		{"expiry in future", map[string]any{"id": "1", "user_id": "u", "expires": future}, false, false},
		{"numeric ids", map[string]any{"id": json.Number("42"), "user_id": json.Number("76561198000000001")}, false, false},
		{"missing user", map[string]any{"id": "1"}, false, true},
		{"missing id", map[string]any{"user_id": "u"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Normalize("L", tt.rec, fixedNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "L", raw.ListID)
			assert.Equal(t, tt.wantExpired, raw.Expired)
		})
	}

	raw, err := Normalize("L", map[string]any{"id": json.Number("42"), "user_id": json.Number("76561198000000001")}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "76561198000000001", raw.UserID)
}

func TestJSONFeed_FollowsPagesAndRetries(t *testing.T) {
	var calls atomic.Int64
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.URL.Query().Get("page") == "2" {
			_, _ = io.WriteString(w, `{"bans":[{"id":"b3","user_id":"u2"}],"next":""}`)
			return
		}
		_, _ = io.WriteString(w, `{"bans":[{"id":"b1","user_id":"u1","created":1700000000},{"id":"bad"},{"id":"b2","user_id":"u1","reason":"aimbot"}],"next":"`+srv.URL+`?page=2"}`)
	}))
	defer srv.Close()

	feed := NewJSONFeed(Config{FetchAttempts: 3, FetchDelay: time.Millisecond, RequestTimeout: 5 * time.Second}, zap.NewNop())

	var pages [][]RawBan
	for batch, err := range feed.Fetch(context.Background(), models.BanSourceList{ID: "L", URL: srv.URL}) {
		require.NoError(t, err)
		pages = append(pages, batch)
	}

	require.Len(t, pages, 2)
	require.Len(t, pages[0], 2)
	assert.Equal(t, "b1", pages[0][0].ID)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), pages[0][0].Created)
	assert.Equal(t, "aimbot", pages[0][1].Reason)
	assert.Equal(t, "b3", pages[1][0].ID)
	assert.Equal(t, int64(3), calls.Load())
}

func TestJSONFeed_YieldsErrorAfterAttempts(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	feed := NewJSONFeed(Config{FetchAttempts: 2, FetchDelay: time.Millisecond}, zap.NewNop())

	var gotErr error
	for _, err := range feed.Fetch(context.Background(), models.BanSourceList{ID: "L", URL: srv.URL}) {
		gotErr = err
	}

	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "unexpected status 500")
	assert.Equal(t, int64(2), calls.Load())
}

func TestBucketDump_ChunksRecords(t *testing.T) {
	client := new(mocks.Client)
	body := `[{"id":"1","user_id":"a"},{"id":"2","user_id":"b"},{"id":"3","user_id":"c"}]`
	client.On("GetObject", mock.Anything, "bucket", "dumps/l.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(body)), nil)

	dump := NewBucketDump(client, "bucket", Config{FetchAttempts: 1, PageSize: 2}, zap.NewNop())

	var sizes []int
	for batch, err := range dump.Fetch(context.Background(), models.BanSourceList{ID: "L", URL: "dumps/l.json"}) {
		require.NoError(t, err)
		sizes = append(sizes, len(batch))
	}

	assert.Equal(t, []int{2, 1}, sizes)
	client.AssertExpectations(t)
}

func TestBucketDump_MissingObject(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", "missing.json", mock.Anything).
		Return(nil, errors.New("NoSuchKey"))

	dump := NewBucketDump(client, "bucket", Config{FetchAttempts: 2, FetchDelay: time.Millisecond}, zap.NewNop())

	var gotErr error
	for _, err := range dump.Fetch(context.Background(), models.BanSourceList{ID: "L", URL: "missing.json"}) {
		gotErr = err
	}
	assert.ErrorContains(t, gotErr, "NoSuchKey")
	client.AssertNumberOfCalls(t, "GetObject", 2)
}

func TestRegistry_Get(t *testing.T) {
	r := Registry{models.ProviderJSONFeed: NewJSONFeed(Config{}, zap.NewNop())}

	_, err := r.Get(models.BanSourceList{ID: "a", Provider: models.ProviderJSONFeed})
	assert.NoError(t, err)

	_, err = r.Get(models.BanSourceList{ID: "b", Provider: "ftp"})
	assert.Error(t, err)
}

func TestParseCatalogue(t *testing.T) {
	lists, err := ParseCatalogue([]byte(`
lists:
  - id: community
    name: Community
    provider: json-feed
    url: https://bans.example.org/api
    notification_channel: slack:https://hooks.example/x
  - id: public
    provider: bucket-export
    min_points: 3
`))
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "slack:https://hooks.example/x", lists[0].NotificationChannel)
	assert.Equal(t, 3, lists[1].MinPoints)

	_, err = ParseCatalogue([]byte("lists:\n  - id: a\n    provider: ftp\n"))
	assert.Error(t, err)

	_, err = ParseCatalogue([]byte("lists:\n  - id: a\n    provider: json-feed\n  - id: a\n    provider: json-feed\n"))
	assert.Error(t, err)
}
