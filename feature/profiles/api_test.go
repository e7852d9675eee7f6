package profiles

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bansync/core/timeout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Summaries(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"response":{"players":[{"steamid":"1","personaname":"alice","profileurl":"https://p/1","avatar":"s","avatarmedium":"m","avatarfull":"f"}]}}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: 5 * time.Second})
	got, err := c.Summaries(context.Background(), []string{"1", "2"})
	require.NoError(t, err)

	assert.Equal(t, "key=secret&steamids=1%2C2", gotQuery)
	require.Len(t, got, 1)
	assert.Equal(t, Profile{ID: "1", Name: "alice", ProfileURL: "https://p/1", Avatar: "s", AvatarMedium: "m", AvatarFull: "f"}, got[0])
}

func TestHTTPClient_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(Config{BaseURL: srv.URL}).Summaries(context.Background(), []string{"1"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestHTTPClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(Config{BaseURL: srv.URL}).Summaries(context.Background(), []string{"1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func slowServer(t *testing.T, delay time.Duration) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		_, _ = io.WriteString(w, `{"response":{"players":[]}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_TimeoutIsDeadline(t *testing.T) {
	srv := slowServer(t, 300*time.Millisecond)

	c := NewHTTPClient(Config{BaseURL: srv.URL, Timeout: 30 * time.Millisecond})
	_, err := c.Summaries(context.Background(), []string{"1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClient_ClientTimeoutCountsAsTimedOut(t *testing.T) {
	srv := slowServer(t, 300*time.Millisecond)
	c := NewHTTPClient(Config{BaseURL: srv.URL, Timeout: 30 * time.Millisecond})

	// The client gives up well before the outer limit.
	res := timeout.Do(context.Background(), 5*time.Second, func(context.Context) ([]Profile, error) {
		return c.Summaries(context.Background(), []string{"1"})
	})
	assert.Equal(t, timeout.TimedOut, res.Outcome)
	assert.ErrorIs(t, res.Err, timeout.ErrTimeout)
}
