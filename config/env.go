package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

// IsProduction reports whether ENVIRONMENT=production.
func IsProduction() bool {
	return strings.EqualFold(os.Getenv("ENVIRONMENT"), "production")
}

// AppName is the product name used in emails.
func AppName() string {
	return envStr("APP_NAME", "Structura")
}

// FrontendURL is the base URL of the web/mobile frontend without a trailing slash.
func FrontendURL() string {
	return strings.TrimRight(envStr("FRONTEND_URL", ""), "/")
}

// AllowedOrigins parses CORS_ALLOWED_ORIGINS (comma separated).
func AllowedOrigins() []string {
	raw := envStr("CORS_ALLOWED_ORIGINS", "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// MailWorkers is the number of invitation delivery workers.
func MailWorkers() int {
	return envInt("MAIL_WORKERS", 2)
}

// MailQueueSize bounds the pending invitation queue.
func MailQueueSize() int {
	return envInt("MAIL_QUEUE_SIZE", 100)
}

// JWTTTL is the access token lifetime from JWT_EXPIRE_HOURS.
func JWTTTL() time.Duration {
	hours := envInt("JWT_EXPIRE_HOURS", 24)
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// EmailLogoURLs lists the logo images shown at the top of HTML emails (EMAIL_LOGO_URLS,
// separated by commas, semicolons or newlines).
func EmailLogoURLs() []string {
	raw := envStr("EMAIL_LOGO_URLS", "")
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r':
			return true
		}
		return false
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
