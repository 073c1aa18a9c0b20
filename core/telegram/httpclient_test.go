package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
)

type flakyTransport struct {
	failures int
	calls    int
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}")), Request: req}, nil
}

func TestRetryTransportRecovers(t *testing.T) {
	base := &flakyTransport{failures: 2}
	rt := &retryTransport{base: base, maxRetries: 3}
	req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot1:x/sendMessage", strings.NewReader("text=hi"))
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if base.calls != 3 {
		t.Fatalf("calls = %d", base.calls)
	}
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &flakyTransport{failures: 10}
	rt := &retryTransport{base: base, maxRetries: 1}
	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/bot1:x/getMe", nil)
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatalf("expected error")
	}
	if base.calls != 2 {
		t.Fatalf("calls = %d", base.calls)
	}
}

func TestTelegramMethod(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://api.telegram.org/bot1:secret/getUpdates", nil)
	if got := telegramMethod(req); got != "getUpdates" {
		t.Fatalf("method = %q", got)
	}
}

type onceBody struct{ io.Reader }

func (onceBody) Close() error { return nil }

func TestRetryTransportStopsOnOneShotBody(t *testing.T) {
	base := &flakyTransport{failures: 10}
	rt := &retryTransport{base: base, maxRetries: 3}
	req, _ := http.NewRequest(http.MethodPost, "https://api.telegram.org/bot1:x/sendPhoto", nil)
	req.Body = onceBody{strings.NewReader("multipart")}
	_, err := rt.RoundTrip(req)
	if !errors.Is(err, errNotReplayable) {
		t.Fatalf("err = %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("calls = %d", base.calls)
	}
}
