package mailer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Discard logs messages instead of sending them
type Discard struct {
	Logger *slog.Logger
}

// Send logs m and returns a made up message id
func (d *Discard) Send(ctx context.Context, m Message) (string, error) {

	id := "dry-run-" + uuid.NewString()

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "discarding message",
		slog.String("message_id", id),
		slog.String("source", m.Source),
		slog.String("reply_to", m.ReplyTo),
		slog.String("to", m.To),
		slog.String("subject", m.Subject),
		slog.String("charset", m.charset()),
		slog.Int("body_length", len(m.Body)),
	)

	return id, nil
}
