package notify

import (
	"context"

	"github.com/slack-go/slack"
)

// SlackSender posts alerts to incoming webhooks as a single attachment.
type SlackSender struct {
	post func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// NewSlackSender creates a sender backed by slack.PostWebhookContext.
func NewSlackSender() *SlackSender {
	return &SlackSender{post: slack.PostWebhookContext}
}

// Send implements Sender. destination is the webhook URL.
func (s *SlackSender) Send(ctx context.Context, destination string, alert Alert) error {
	return s.post(ctx, destination, slackMessage(alert))
}

func slackMessage(alert Alert) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Attachments: []slack.Attachment{{
			Color:    alert.Color,
			Title:    alert.Title,
			Text:     alert.Description,
			ThumbURL: alert.Thumbnail,
		}},
	}
}
