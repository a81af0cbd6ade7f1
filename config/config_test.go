package config

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPITransportPostsPayload(t *testing.T) {
	var (
		gotAuth    string
		gotPayload apiMailPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	transport := &APITransport{URL: srv.URL, APIKey: "key-123", Client: srv.Client()}
	err := transport.Send(context.Background(), MailMessage{
		From:    `"Paolo" <pm@example.com>`,
		Sender:  "no-reply@structura.test",
		To:      []string{"sv@example.com"},
		ReplyTo: []string{"pm@example.com"},
		Subject: "Hello",
		Text:    "Body",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer key-123", gotAuth)
	assert.Equal(t, []string{"sv@example.com"}, gotPayload.To)
	assert.Equal(t, []string{"pm@example.com"}, gotPayload.ReplyTo)
	assert.Equal(t, "no-reply@structura.test", gotPayload.Headers["Sender"])
}

func TestAPITransportReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "domain not verified", http.StatusForbidden)
	}))
	defer srv.Close()

	transport := &APITransport{URL: srv.URL, Client: srv.Client()}
	err := transport.Send(context.Background(), MailMessage{From: "a@example.com", To: []string{"b@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
	assert.Contains(t, err.Error(), "domain not verified")
}

func TestSMTPTransportRequiresConfiguration(t *testing.T) {
	err := (&SMTPTransport{}).Send(context.Background(), MailMessage{From: "a@example.com", To: []string{"b@example.com"}})
	assert.Error(t, err)

	// No recipients is a no-op even without configuration.
	assert.NoError(t, (&SMTPTransport{}).Send(context.Background(), MailMessage{}))
}

func TestNewMailTransportPrefersAPI(t *testing.T) {
	assert.Equal(t, "api", NewMailTransport(MailSettings{APIURL: "https://mail.test/send"}).Name())
	assert.Equal(t, "smtp", NewMailTransport(MailSettings{SMTPHost: "smtp.test"}).Name())
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT", "0")
	t.Setenv("LOGIN_RATE_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_ENABLED", "off")

	cfg := LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.Limit)
	assert.Equal(t, 30*time.Second, cfg.Window)
	assert.Equal(t, "rl", cfg.Prefix)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("MAIL_WORKERS", "nope")
	t.Setenv("JWT_EXPIRE_HOURS", "-3")
	t.Setenv("EMAIL_LOGO_URLS", "https://a.test/1.png; https://a.test/2.png,\n ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.test, ,https://admin.test")
	t.Setenv("FRONTEND_URL", "https://app.test/")

	assert.Equal(t, 2, MailWorkers())
	assert.Equal(t, 24*time.Hour, JWTTTL())
	assert.Equal(t, []string{"https://a.test/1.png", "https://a.test/2.png"}, EmailLogoURLs())
	assert.Equal(t, []string{"https://app.test", "https://admin.test"}, AllowedOrigins())
	assert.Equal(t, "https://app.test", FrontendURL())
}

func TestNewLoggerFollowsLogWriter(t *testing.T) {
	logger := NewLogger("[test] ")

	var buf bytes.Buffer
	prev := LogWriter
	LogWriter = &buf
	t.Cleanup(func() { LogWriter = prev })

	logger.Printf("hello %d", 1)
	assert.Contains(t, buf.String(), "[test] ")
	assert.Contains(t, buf.String(), "hello 1")
}
