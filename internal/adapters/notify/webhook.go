package notify

import (
	"context"
	"net/http"

	"github.com/okian/goalwatch/internal/domain/model"
)

// WebhookSink posts the full result as JSON.
type WebhookSink struct {
	client *http.Client
	url    string
}

// NewWebhookSink creates a sink posting to url.
func NewWebhookSink(client *http.Client, url string) *WebhookSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSink{client: client, url: url}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Send(ctx context.Context, r model.AnalysisResult) error {
	return postJSON(ctx, s.client, s.url, r)
}
