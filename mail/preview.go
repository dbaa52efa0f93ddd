package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogSender replaces the Mailer when smtp is disabled. It keeps the last
// message per recipient in memory and logs only the recipient and a preview
// id. Development use only.
type LogSender struct {
	app    string
	logger *slog.Logger

	mu       sync.Mutex
	messages map[string]Preview
}

// Preview is a message held by LogSender.
type Preview struct {
	ID      string
	Message Message
	Sent    time.Time
}

func NewLogSender(app string, logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{
		app:      app,
		logger:   logger.With("component", "mail_preview"),
		messages: make(map[string]Preview),
	}
}

func (s *LogSender) SendOtp(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := RenderOtp(s.app, email, code, ttl)
	if err != nil {
		return err
	}
	p := Preview{ID: uuid.NewString(), Message: msg, Sent: time.Now()}

	s.mu.Lock()
	s.messages[email] = p
	s.mu.Unlock()

	s.logger.Info("otp email held for preview", "email", email, "preview_id", p.ID)
	return nil
}

// Preview returns the last message sent to email.
func (s *LogSender) Preview(email string) (Preview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.messages[email]
	return p, ok
}
