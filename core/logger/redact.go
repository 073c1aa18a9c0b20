package logger

import (
	"regexp"
	"strings"
	"sync"
)

const redacted = "***"

// botTokenPattern matches Telegram bot tokens, which telebot errors embed in
// request URLs.
var botTokenPattern = regexp.MustCompile(`\d{5,}:[A-Za-z0-9_-]{30,}`)

var secrets struct {
	mu     sync.RWMutex
	values []string
}

// RegisterSecret masks value in every string field written from now on.
// Values shorter than four characters are ignored.
func RegisterSecret(value string) {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return
	}
	secrets.mu.Lock()
	defer secrets.mu.Unlock()
	for _, v := range secrets.values {
		if v == value {
			return
		}
	}
	secrets.values = append(secrets.values, value)
}

// Redact replaces registered secrets and bot tokens in s.
func Redact(s string) string {
	if s == "" {
		return s
	}
	secrets.mu.RLock()
	for _, v := range secrets.values {
		s = strings.ReplaceAll(s, v, redacted)
	}
	secrets.mu.RUnlock()
	return botTokenPattern.ReplaceAllString(s, redacted)
}
