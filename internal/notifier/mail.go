package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"livestock-farm-api-server/config"
)

// MailMessage is the payload posted to the mail webhook. Template rendering
// happens on the other side of the webhook.
type MailMessage struct {
	Email    string                 `json:"email"`
	Subject  string                 `json:"subject"`
	Template string                 `json:"template"`
	Vars     map[string]interface{} `json:"vars,omitempty"`
}

// MailClient forwards outbound mail to the configured webhook.
type MailClient struct {
	client     *resty.Client
	webhookURL string
	fromName   string
	logger     *zap.Logger
}

func NewMailClient(cfg config.MailConfig, logger *zap.Logger) *MailClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2)

	return &MailClient{
		client:     client,
		webhookURL: cfg.WebhookURL,
		fromName:   cfg.FromName,
		logger:     logger,
	}
}

// Send posts the message to the webhook. A missing webhook URL disables mail
// silently.
func (m *MailClient) Send(ctx context.Context, msg MailMessage) error {
	if m.webhookURL == "" {
		return nil
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"fromName": m.fromName,
			"email":    msg.Email,
			"subject":  msg.Subject,
			"template": msg.Template,
			"vars":     msg.Vars,
		}).
		Post(m.webhookURL)
	if err != nil {
		return fmt.Errorf("mail webhook request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail webhook returned status %d", resp.StatusCode())
	}
	return nil
}
