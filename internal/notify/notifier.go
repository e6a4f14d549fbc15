// Package notify delivers feedback alerts to the people watching the inbox.
package notify

import "context"

// Notifier publishes a message to a notification channel.
type Notifier interface {
	Publish(ctx context.Context, message string) error
}
