package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

// wrapped avoids formatting the inner error; telebot's FloodError needs its
// unexported cause to print.
type wrapped struct{ inner error }

func (w wrapped) Error() string { return "wrapped" }
func (w wrapped) Unwrap() error { return w.inner }

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"dial", dial, true},
		{"url dial", &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: dial}, true},
		{"flood", tele.FloodError{RetryAfter: 3}, true},
		{"wrapped flood", wrapped{tele.FloodError{RetryAfter: 1}}, true},
		{"canceled", context.Canceled, false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Fatalf("%s: ShouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	d, ok := RetryAfter(wrapped{tele.FloodError{RetryAfter: 7}})
	if !ok || d != 7*time.Second {
		t.Fatalf("RetryAfter = %s, %v", d, ok)
	}
	if _, ok := RetryAfter(errors.New("x")); ok {
		t.Fatalf("plain error must not carry a delay")
	}
}
