package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// EmailNotifier mails each message to a fixed inbox through Resend.
type EmailNotifier struct {
	client *resend.Client
	from   string
	to     string
	logger *zap.Logger
}

func NewEmailNotifier(apiKey, from, to string, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
		logger: logger,
	}
}

func (n *EmailNotifier) Publish(ctx context.Context, message string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: "New feedback received",
		Text:    message,
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	n.logger.Debug("Notification email sent", zap.String("email_id", sent.Id))
	return nil
}
