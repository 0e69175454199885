package notify

import (
	"context"
	"log/slog"
)

// Sender delivers booking confirmations. Sending is best-effort: callers
// ignore the returned error and implementations log failures themselves, so
// a broken mail path can never fail or roll back a booking.
type Sender interface {
	SendConfirmation(ctx context.Context, email, subject, body string) error
}

// LogSender writes confirmations to the log instead of delivering them.
// Stands in for a real mail transport in local and test environments.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log.With(slog.String("component", "notify"))}
}

func (s *LogSender) SendConfirmation(_ context.Context, email, subject, body string) error {
	s.log.Info("Confirmation sent",
		slog.String("email", email),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
