package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes messages to the application log. It stands in when no
// delivery channel is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(ctx context.Context, message string) error {
	n.logger.Info("Notification", zap.String("message", message))
	return nil
}
