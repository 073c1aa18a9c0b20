package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadFirstExistingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "auth")
	dir := t.TempDir()
	write(t, dir, TokenFile, "123:abc\n")
	write(t, dir, AuthUsersFile, "-1001\n\n# family\n42\n")

	s, err := Load([]string{missing, dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Dir != dir || s.Token != "123:abc" {
		t.Fatalf("unexpected secrets %+v", s)
	}
	if !reflect.DeepEqual(s.AuthChats, []int64{-1001, 42}) {
		t.Fatalf("chats = %v", s.AuthChats)
	}
}

func TestLoadToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := Load([]string{dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Token != "" || len(s.AuthChats) != 0 {
		t.Fatalf("expected empty secrets, got %+v", s)
	}
}

func TestLoadNoDir(t *testing.T) {
	_, err := Load([]string{filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, ErrNoDir) {
		t.Fatalf("expected ErrNoDir, got %v", err)
	}
}

func TestLoadRejectsBadChatID(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, AuthUsersFile, "42\nalice\n")
	if _, err := Load([]string{dir}); err == nil {
		t.Fatalf("expected parse error")
	}
}
