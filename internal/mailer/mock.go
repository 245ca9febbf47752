package mailer

import (
	"context"
	"log/slog"
	"time"
)

// MockMailer logs outbound email and always succeeds. It is intended for
// development and testing purposes.
type MockMailer struct {
	logger *slog.Logger
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer(logger *slog.Logger) *MockMailer {
	return &MockMailer{logger: logger}
}

// Name returns the mailer name.
func (m *MockMailer) Name() string {
	return "mock"
}

// Send logs the message details and simulates a 10ms sending delay.
func (m *MockMailer) Send(ctx context.Context, msg *Message) error {
	// Simulate sending delay.
	time.Sleep(10 * time.Millisecond)

	m.logger.InfoContext(ctx, "mock mailer: email sent",
		slog.String("from", msg.From),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
