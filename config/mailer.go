package config

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	mail "github.com/go-mail/mail/v2"
)

// MailMessage is a transport-independent outgoing email.
type MailMessage struct {
	From    string
	Sender  string
	To      []string
	ReplyTo []string
	Subject string
	Text    string
	HTML    string
}

// MailTransport delivers a message or reports why it could not.
type MailTransport interface {
	Name() string
	Send(ctx context.Context, msg MailMessage) error
}

// MailSettings holds SMTP and HTTP API credentials read from the environment.
type MailSettings struct {
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	From          string // e.g. "Structura <no-reply@your.org>"
	SkipTLSVerify bool
	APIURL        string
	APIKey        string
	APITimeout    time.Duration
}

// LoadMailSettings reads the mail configuration at call time so .env values are honoured.
func LoadMailSettings() MailSettings {
	return MailSettings{
		SMTPHost:      envStr("SMTP_HOST", ""),
		SMTPPort:      envInt("SMTP_PORT", 587),
		SMTPUser:      envStr("SMTP_USER", ""),
		SMTPPass:      envStr("SMTP_PASS", ""),
		From:          envStr("SMTP_FROM", ""),
		SkipTLSVerify: envBool("SMTP_SKIP_TLS_VERIFY", false),
		APIURL:        envStr("MAIL_API_URL", ""),
		APIKey:        envStr("MAIL_API_KEY", ""),
		APITimeout:    envDuration("MAIL_API_TIMEOUT", 15*time.Second),
	}
}

// NewMailTransport returns the HTTP API transport when MAIL_API_URL is set and SMTP otherwise.
func NewMailTransport(s MailSettings) MailTransport {
	if s.APIURL != "" {
		return &APITransport{
			URL:    s.APIURL,
			APIKey: s.APIKey,
			Client: &http.Client{Timeout: s.APITimeout},
		}
	}
	return &SMTPTransport{
		Host:          s.SMTPHost,
		Port:          s.SMTPPort,
		User:          s.SMTPUser,
		Pass:          s.SMTPPass,
		SkipTLSVerify: s.SkipTLSVerify,
	}
}

// SMTPTransport sends through an SMTP relay with mandatory STARTTLS.
type SMTPTransport struct {
	Host          string
	Port          int
	User          string
	Pass          string
	SkipTLSVerify bool
}

func (t *SMTPTransport) Name() string { return "smtp" }

func (t *SMTPTransport) Send(ctx context.Context, msg MailMessage) error {
	if len(msg.To) == 0 {
		return nil
	}
	if t.Host == "" || msg.From == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	if msg.Sender != "" && msg.Sender != msg.From {
		m.SetHeader("Sender", msg.Sender)
	}
	m.SetHeader("To", msg.To...)
	if len(msg.ReplyTo) > 0 {
		m.SetHeader("Reply-To", msg.ReplyTo...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	d := mail.NewDialer(t.Host, t.Port, t.User, t.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         t.Host,
		InsecureSkipVerify: t.SkipTLSVerify, // dev only
	}
	d.Timeout = 30 * time.Second

	return d.DialAndSend(m)
}

// APITransport posts messages as JSON to an HTTP mail API (Resend-style payload).
type APITransport struct {
	URL    string
	APIKey string
	Client *http.Client
}

type apiMailPayload struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	Text    string            `json:"text"`
	HTML    string            `json:"html,omitempty"`
	ReplyTo []string          `json:"reply_to,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

func (t *APITransport) Name() string { return "api" }

func (t *APITransport) Send(ctx context.Context, msg MailMessage) error {
	if len(msg.To) == 0 {
		return nil
	}
	if msg.From == "" {
		return fmt.Errorf("mail api: sender not configured (SMTP_FROM)")
	}

	payload := apiMailPayload{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	if msg.Sender != "" && msg.Sender != msg.From {
		payload.Headers = map[string]string{"Sender": msg.Sender}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mail api: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mail api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.APIKey)
	}

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("mail api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail api: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
