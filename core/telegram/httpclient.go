package telegram

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/foodpod-bot/foodpod/core/logger"
	"github.com/foodpod-bot/foodpod/core/telegram/netutil"
)

const (
	apiDialTimeout   = 5 * time.Second
	apiTLSTimeout    = 5 * time.Second
	apiIdleTimeout   = 30 * time.Second
	apiClientTimeout = 30 * time.Second
	apiKeepAlive     = 30 * time.Second
	apiRetries       = 3
	apiRetryBackoff  = 2 * time.Second
)

// errNotReplayable stops retries of requests whose body cannot be re-read.
var errNotReplayable = errors.New("telegram: request body cannot be replayed")

// BuildHTTPClient returns the Bot API client: pooled keep-alive connections
// and transport-level retries of dial, DNS and timeout failures. There is no
// response header timeout because getUpdates is held open for the poll.
func BuildHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: apiDialTimeout, KeepAlive: apiKeepAlive}
	return &http.Client{
		Timeout: apiClientTimeout,
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       apiIdleTimeout,
				TLSHandshakeTimeout:   apiTLSTimeout,
				ExpectContinueTimeout: time.Second,
			},
			maxRetries: apiRetries,
			backoff:    apiRetryBackoff,
		},
	}
}

// retryTransport repeats a round trip that failed before any response
// arrived. HTTP error statuses are returned as they are.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	ctx := req.Context()

	resp, err := base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.maxRetries && netutil.ShouldRetry(err); attempt++ {
		delay := t.backoff * time.Duration(attempt)
		logger.Debug(ctx, "tg", "http.retry",
			slog.String("status", "retry"),
			slog.String("method", telegramMethod(req)),
			slog.Int("attempts", attempt),
			slog.Duration("delay", delay),
			slog.String("err", err.Error()),
		)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		next, rerr := replay(req)
		if rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		resp, err = base.RoundTrip(next)
	}
	return resp, err
}

// replay clones req with a fresh body.
func replay(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	switch {
	case req.GetBody != nil:
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		next.Body = body
	case req.Body != nil && req.Body != http.NoBody:
		return nil, errNotReplayable
	}
	return next, nil
}

// telegramMethod returns the API method of a Bot API URL without the token.
func telegramMethod(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	return path.Base(req.URL.Path)
}
