// Package notify delivers screening results to configured channels.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"orion-screener/internal/config"
	"orion-screener/internal/models"
	"orion-screener/pkg/utils"
)

// Channel defines the interface for a notification channel.
type Channel interface {
	Name() string
	Send(ctx context.Context, batch MatchBatch) error
}

// MatchBatch is the payload delivered after a screening run: the
// matched results plus the batch statistics.
type MatchBatch struct {
	Strategy  string                   `json:"strategy"`
	Timestamp time.Time                `json:"timestamp"`
	Stats     models.ScreeningStats    `json:"stats"`
	Matches   []models.ScreeningResult `json:"matches"`
}

// Service fans matched results out to all enabled channels.
type Service struct {
	channels []Channel
	logger   zerolog.Logger
}

// NewService creates a notification service from configuration.
func NewService(cfg config.NotificationConfig, logger zerolog.Logger) *Service {
	svc := &Service{logger: logger}

	if !cfg.Enabled {
		return svc
	}
	if cfg.Webhook.Enabled {
		svc.channels = append(svc.channels, NewWebhookChannel(cfg.Webhook))
	}
	if cfg.Email.Enabled {
		svc.channels = append(svc.channels, NewEmailChannel(cfg.Email))
	}

	return svc
}

// Enabled reports whether any channel is configured.
func (s *Service) Enabled() bool {
	return len(s.channels) > 0
}

// NotifyMatches delivers the matched results of a batch. Channel
// failures are logged and do not affect one another.
func (s *Service) NotifyMatches(ctx context.Context, stats models.ScreeningStats, results []models.ScreeningResult) {
	matches := make([]models.ScreeningResult, 0, len(results))
	for _, r := range results {
		if r.Matches {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return
	}

	batch := MatchBatch{
		Strategy:  stats.Strategy,
		Timestamp: time.Now(),
		Stats:     stats,
		Matches:   matches,
	}

	for _, ch := range s.channels {
		if err := ch.Send(ctx, batch); err != nil {
			s.logger.Warn().Err(err).Str("channel", ch.Name()).Msg("Notification delivery failed")
		}
	}
}

// WebhookChannel sends notifications via HTTP webhook.
type WebhookChannel struct {
	url    string
	client *http.Client
	retry  utils.RetryConfig
}

// NewWebhookChannel creates a webhook notification channel.
func NewWebhookChannel(cfg config.WebhookConfig) *WebhookChannel {
	return &WebhookChannel{
		url:    cfg.URL,
		client: &http.Client{Timeout: 10 * time.Second},
		retry:  utils.DefaultRetryConfig(),
	}
}

func (w *WebhookChannel) Name() string {
	return "webhook"
}

// Send posts the batch as JSON, retrying transient failures with
// exponential backoff.
func (w *WebhookChannel) Send(ctx context.Context, batch MatchBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	return utils.Retry(ctx, w.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("creating webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			return fmt.Errorf("sending webhook: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil
	})
}

// EmailChannel sends notifications via SMTP.
type EmailChannel struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
}

// NewEmailChannel creates an email notification channel.
func NewEmailChannel(cfg config.EmailConfig) *EmailChannel {
	return &EmailChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
	}
}

func (e *EmailChannel) Name() string {
	return "email"
}

func (e *EmailChannel) Send(ctx context.Context, batch MatchBatch) error {
	subject := fmt.Sprintf("[orion] %d match(es) for strategy %s", len(batch.Matches), batch.Strategy)
	body := formatMatchBody(batch)

	msg := strings.Join([]string{
		"From: " + e.from,
		"To: " + strings.Join(e.to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	return smtp.SendMail(addr, auth, e.from, e.to, []byte(msg))
}

func formatMatchBody(batch MatchBatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Strategy %s matched %d of %d symbols (%.1fs)\n\n",
		batch.Strategy, batch.Stats.Matched, batch.Stats.Attempted, batch.Stats.Duration.Seconds())

	for _, m := range batch.Matches {
		fmt.Fprintf(&b, "%s  strength=%.2f  conditions=%s\n",
			m.Symbol, m.SignalStrength, strings.Join(m.ConditionsMet, ","))
		if m.Option != nil {
			fmt.Fprintf(&b, "  put %.2f exp %s yield=%.1f%%\n",
				m.Option.Contract.Strike,
				m.Option.Contract.Expiry.Format("2006-01-02"),
				m.Option.Yield*100)
		}
	}
	return b.String()
}
