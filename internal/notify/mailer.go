package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/wneessen/go-mail"

	"planboard.app/server/core/config"
)

const fallbackPlainText = "Please view this email in an HTML-capable email client."

// Message is one outbound email. The plain-text alternative is derived
// from HTML when Text is empty.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type smtpMailer struct {
	cfg    config.SMTPConfig
	client *mail.Client
	logger *slog.Logger
}

// NewSMTPMailer dials lazily: each Send opens its own connection.
func NewSMTPMailer(cfg config.SMTPConfig, logger *slog.Logger) (Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Enabled() {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &smtpMailer{cfg: cfg, client: client, logger: logger}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("missing recipient")
	}

	out := mail.NewMsg()
	if err := out.FromFormat(m.cfg.SenderName, m.cfg.SenderEmail); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextHTML, msg.HTML)

	text := msg.Text
	if text == "" {
		text = PlainText(msg.HTML)
	}
	out.AddAlternativeString(mail.TypeTextPlain, text)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	m.logger.InfoContext(ctx, "email sent", "subject", msg.Subject)
	return nil
}

var (
	blockBreaks = regexp.MustCompile(`(?i)<\s*(br\s*/?|/p|/div|/h[1-6]|/li|/tr)\s*>`)
	blankRuns   = regexp.MustCompile(`\n\s*\n+`)
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
)

// PlainText strips markup from an HTML body. Block-level closers become
// line breaks so paragraphs survive.
func PlainText(body string) string {
	withBreaks := blockBreaks.ReplaceAllString(body, "\n")
	stripped := bluemonday.StrictPolicy().Sanitize(withBreaks)
	stripped = html.UnescapeString(stripped)

	lines := strings.Split(stripped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	text := strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
	if text == "" {
		return fallbackPlainText
	}
	return text
}
