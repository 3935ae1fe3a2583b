package port

import "context"

// Notifier delivers a single text payload to a chat sink.
type Notifier interface {
	Send(ctx context.Context, message string) error
}
