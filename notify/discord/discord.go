package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/notify"
	"golang.org/x/time/rate"
)

const (
	// discordMaxMessageLength is the character limit of a Discord message.
	discordMaxMessageLength = 2000
	discordMessageFormat    = "[%s] from *%s*:\n> %s\n"

	defaultSendTimeout = 10 * time.Second
)

type payload struct {
	Content string `json:"content"`
}

// Notifier posts notifications to a Discord webhook. Send never blocks on
// the network: the post runs in its own goroutine with a timeout detached
// from the caller.
type Notifier struct {
	webhookURL  string
	sendTimeout time.Duration
	logger      *slog.Logger
	httpClient  *http.Client
	limiter     *rate.Limiter
}

func New(cfg config.Discord, logger *slog.Logger) (*Notifier, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("discord: WebhookURL is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("discord: logger is required")
	}
	timeout := cfg.SendTimeout.Duration
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &Notifier{
		webhookURL:  cfg.WebhookURL,
		sendTimeout: timeout,
		logger:      logger,
		httpClient:  &http.Client{},
		limiter:     rate.NewLimiter(rate.Every(2*time.Second), 5),
	}, nil
}

func (dn *Notifier) formatMessage(n notify.Notification) string {
	content := fmt.Sprintf(discordMessageFormat, n.Type.String(), n.Source, n.Message)

	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []string
	for _, k := range keys {
		v := n.Fields[k]
		if k == "" || v == nil {
			continue
		}
		s := fmt.Sprintf("%v", v)
		if s == "" {
			continue
		}
		fields = append(fields, fmt.Sprintf("> %s: `%s`\n", k, s))
	}
	if len(fields) > 0 {
		content += "\n**Fields**:\n" + strings.Join(fields, "")
	}

	if len(content) > discordMaxMessageLength {
		return content[:discordMaxMessageLength-3] + "..."
	}
	return content
}

// Send drops the notification when the webhook rate limit is exhausted.
func (dn *Notifier) Send(_ context.Context, n notify.Notification) error {
	if !dn.limiter.Allow() {
		dn.logger.Warn("discord: rate limit reached, dropping notification",
			"source", n.Source, "message", n.Message)
		return nil
	}

	body, err := json.Marshal(payload{Content: dn.formatMessage(n)})
	if err != nil {
		return fmt.Errorf("discord: failed to marshal payload: %w", err)
	}

	go dn.post(body, n.Source)
	return nil
}

func (dn *Notifier) post(body []byte, source string) {
	ctx, cancel := context.WithTimeout(context.Background(), dn.sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dn.webhookURL, bytes.NewReader(body))
	if err != nil {
		dn.logger.Error("discord: failed to create request", "source", source, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := dn.httpClient.Do(req)
	if err != nil {
		dn.logger.Error("discord: failed to send", "source", source, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		dn.logger.Error("discord: non-2xx status", "status_code", resp.StatusCode, "source", source)
		return
	}
	dn.logger.Debug("discord: notification sent", "source", source)
}
