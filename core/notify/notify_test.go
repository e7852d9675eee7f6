package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSender struct {
	mu    sync.Mutex
	dests []string
	sent  []Alert
	err   error
	delay time.Duration
}

func (r *recordingSender) Send(ctx context.Context, destination string, alert Alert) error {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dests = append(r.dests, destination)
	r.sent = append(r.sent, alert)
	return r.err
}

func TestDispatcher_RoutesByScheme(t *testing.T) {
	rec := &recordingSender{}
	d := &Dispatcher{logger: zap.NewNop()}
	d.Register("test", rec)

	d.Notify(context.Background(), "test:room-1", Alert{Title: "hello"})

	require.Len(t, rec.sent, 1)
	assert.Equal(t, "room-1", rec.dests[0])
	assert.Equal(t, "hello", rec.sent[0].Title)
}

func TestDispatcher_SkipsEmptyAndUnknownChannels(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := &recordingSender{}
	d := &Dispatcher{logger: zap.New(core)}
	d.Register("test", rec)

	d.Notify(context.Background(), "", Alert{})
	d.Notify(context.Background(), "nocolon", Alert{})
	d.Notify(context.Background(), "other:x", Alert{})

	assert.Empty(t, rec.sent)
	assert.Equal(t, 2, logs.Len())
}

func TestDispatcher_LogsFailuresWithoutReturning(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	d := &Dispatcher{logger: zap.New(core)}
	d.Register("test", &recordingSender{err: errors.New("webhook down")})

	d.Notify(context.Background(), "test:x", Alert{Title: "t"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Failed to deliver notification", logs.All()[0].Message)
}

func TestDispatcher_BoundsSlowSenders(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	d := &Dispatcher{logger: zap.New(core), timeout: 20 * time.Millisecond}
	d.Register("test", &recordingSender{delay: time.Second})

	start := time.Now()
	d.Notify(context.Background(), "test:x", Alert{})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "timed_out", logs.All()[0].ContextMap()["outcome"])
}

func TestSlackSender_BuildsAttachment(t *testing.T) {
	var gotURL string
	var gotMsg *slack.WebhookMessage
	s := &SlackSender{post: func(_ context.Context, url string, msg *slack.WebhookMessage) error {
		gotURL, gotMsg = url, msg
		return nil
	}}

	err := s.Send(context.Background(), "https://hooks.example/abc", Alert{
		Title: "Ban exported", Description: "user 1", Color: ColorCreated, Thumbnail: "https://img/1.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.example/abc", gotURL)
	require.Len(t, gotMsg.Attachments, 1)
	att := gotMsg.Attachments[0]
	assert.Equal(t, ColorCreated, att.Color)
	assert.Equal(t, "Ban exported", att.Title)
	assert.Equal(t, "user 1", att.Text)
	assert.Equal(t, "https://img/1.png", att.ThumbURL)
}

type fakeBot struct {
	params *telego.SendMessageParams
}

func (f *fakeBot) SendMessage(_ context.Context, p *telego.SendMessageParams) (*telego.Message, error) {
	f.params = p
	return &telego.Message{}, nil
}

func TestTelegramSender_SendsEscapedHTML(t *testing.T) {
	bot := &fakeBot{}
	s := &TelegramSender{bot: bot}

	err := s.Send(context.Background(), "-100123", Alert{Title: "a<b", Description: "x & y"})
	require.NoError(t, err)

	assert.Equal(t, int64(-100123), bot.params.ChatID.ID)
	assert.Equal(t, "HTML", bot.params.ParseMode)
	assert.Equal(t, "<b>a&lt;b</b>\nx &amp; y", bot.params.Text)
}

func TestTelegramSender_RejectsBadChatID(t *testing.T) {
	s := &TelegramSender{bot: &fakeBot{}}
	err := s.Send(context.Background(), "general", Alert{})
	assert.Error(t, err)
}
