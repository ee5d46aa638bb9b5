package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// ChannelReport is the channel user reports are forwarded to.
const ChannelReport = "report"

// Notifier delivers a preformatted text message to a named channel.
type Notifier interface {
	Notify(ctx context.Context, channel string, text string) error
}

type slackNotifier struct {
	webhooks map[string]string
	client   *http.Client
}

// NewSlackNotifier maps channel names to incoming-webhook URLs.
func NewSlackNotifier(webhooks map[string]string, timeout time.Duration) Notifier {
	return &slackNotifier{
		webhooks: webhooks,
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *slackNotifier) Notify(ctx context.Context, channel string, text string) error {
	url, ok := n.webhooks[channel]
	if !ok || url == "" {
		slog.Warn("webhook channel not configured, dropping message", slog.String("channel", channel))
		return nil
	}

	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookCustomHTTPContext(ctx, url, n.client, msg); err != nil {
		return fmt.Errorf("failed to post %s webhook: %w", channel, err)
	}
	return nil
}
