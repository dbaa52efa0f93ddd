package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/caasmo/accounts/config"
	"github.com/domodwyer/mailyak/v3"
	"golang.org/x/time/rate"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends transactional emails over SMTP. Outbound messages are
// throttled by a token bucket.
type Mailer struct {
	addr        string
	auth        smtp.Auth
	fromName    string
	fromAddress string
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// New creates a Mailer from the smtp config section.
func New(cfg config.Smtp, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail: smtp host cannot be empty")
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("mail: from address cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Mailer{
		addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth:        auth,
		fromName:    cfg.FromName,
		fromAddress: cfg.FromAddress,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger.With("component", "mailer"),
	}, nil
}

// SendOtp emails a one-time password reset code. The code is only written to
// the message body.
func (m *Mailer) SendOtp(ctx context.Context, email, code string, ttl time.Duration) error {
	msg, err := RenderOtp(m.fromName, email, code, ttl)
	if err != nil {
		return err
	}
	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	m.logger.Info("sent otp email", "email", email)
	return nil
}

func (m *Mailer) send(ctx context.Context, msg Message) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	mail := mailyak.New(m.addr, m.auth)
	mail.To(msg.To)
	mail.From(m.fromAddress)
	mail.FromName(m.fromName)
	mail.Subject(msg.Subject)
	mail.Plain().Set(msg.Text)
	mail.HTML().Set(msg.HTML)

	body, err := mail.MimeBuf()
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}
	return m.deliver(ctx, msg.To, body.Bytes())
}

// deliver runs the SMTP exchange on a connection bound to ctx: when ctx
// ends the connection deadline expires, so the exchange returns and the
// connection is closed.
func (m *Mailer) deliver(ctx context.Context, to string, body []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	host, _, _ := net.SplitHostPort(m.addr)
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return ctxErr(ctx, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return ctxErr(ctx, err)
		}
	}
	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				return ctxErr(ctx, err)
			}
		}
	}
	if err := c.Mail(m.fromAddress); err != nil {
		return ctxErr(ctx, err)
	}
	if err := c.Rcpt(to); err != nil {
		return ctxErr(ctx, err)
	}
	w, err := c.Data()
	if err != nil {
		return ctxErr(ctx, err)
	}
	if _, err := w.Write(body); err != nil {
		return ctxErr(ctx, err)
	}
	if err := w.Close(); err != nil {
		return ctxErr(ctx, err)
	}
	return ctxErr(ctx, c.Quit())
}

// ctxErr reports the context error in place of the i/o timeout it caused.
func ctxErr(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

var otpHTML = template.Must(template.New("otp").Parse(`<h1>Password reset</h1>
<p>Use this code to reset your {{.App}} password:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
<p>The code expires in {{.Minutes}} minutes. If you did not ask for a reset, ignore this email.</p>
`))

// RenderOtp builds the otp email for recipient.
func RenderOtp(app, recipient, code string, ttl time.Duration) (Message, error) {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	data := struct {
		App     string
		Code    string
		Minutes int
	}{app, code, minutes}

	var html bytes.Buffer
	if err := otpHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render otp email: %w", err)
	}

	return Message{
		To:      recipient,
		Subject: fmt.Sprintf("Your %s password reset code", app),
		Text: fmt.Sprintf("Use this code to reset your %s password: %s\n\nThe code expires in %d minutes. If you did not ask for a reset, ignore this email.\n",
			app, code, minutes),
		HTML: html.String(),
	}, nil
}
