package logger

import (
	"strings"
	"testing"
)

func TestRedactBotToken(t *testing.T) {
	err := `Post "https://api.telegram.org/bot123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw/sendMessage": EOF`
	got := Redact(err)
	if strings.Contains(got, "AAHdqTcv") {
		t.Fatalf("token leaked: %s", got)
	}
	if !strings.Contains(got, "/bot***/sendMessage") {
		t.Fatalf("unexpected redaction: %s", got)
	}
}

func TestRedactRegisteredSecret(t *testing.T) {
	RegisterSecret("hunter2-redis")
	RegisterSecret("ab")
	got := Redact("auth failed for hunter2-redis, ab")
	if got != "auth failed for ***, ab" {
		t.Fatalf("Redact = %q", got)
	}
}
