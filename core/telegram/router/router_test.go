package router

import (
	"errors"
	"fmt"
	"testing"
)

type codedError struct{ code string }

func (e *codedError) Error() string { return "coded" }
func (e *codedError) Code() string  { return e.code }

type plainError struct{}

func (plainError) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&codedError{code: "validation quantity"}, "VALIDATION_QUANTITY"},
		{fmt.Errorf("wrapped: %w", &codedError{code: "not_found"}), "NOT_FOUND"},
		{&codedError{}, "CODEDERROR"},
		{plainError{}, "PLAINERROR"},
		{errors.New("x"), "ERRORSTRING"},
	}
	for _, tc := range cases {
		if got := deriveErrorCode(tc.err); got != tc.want {
			t.Fatalf("deriveErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"":           "unknown",
		"/Start":     "start",
		" add item ": "add_item",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Fatalf("normalizeHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
