package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foodpod-bot/foodpod/core/logger"
	"github.com/foodpod-bot/foodpod/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

// Stats counts finished jobs since the dispatcher started.
type Stats struct {
	Sent    uint64
	Retried uint64
	Failed  uint64
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
// Jobs of one chat always land on the same worker, so they are delivered in
// enqueue order.
type Dispatcher struct {
	opts   Options
	shards []chan job
	next   atomic.Uint64
	mu     sync.RWMutex
	closed bool
	once   sync.Once
	wg     sync.WaitGroup

	sent, retried, failed atomic.Uint64
}

// NewDispatcher starts opts.Workers workers; zero options get defaults.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts:   opts,
		shards: make([]chan job, opts.Workers),
	}
	perShard := max(opts.QueueSize/opts.Workers, 1)
	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan job, perShard)
		go d.worker(d.shards[i])
	}
	return d
}

// shard picks the worker queue for ctx's chat; chatless jobs are spread round robin.
func (d *Dispatcher) shard(ctx context.Context) chan job {
	n := uint64(len(d.shards))
	if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
		if chatID < 0 {
			chatID = -chatID
		}
		return d.shards[uint64(chatID)%n]
	}
	return d.shards[d.next.Add(1)%n]
}

// Enqueue schedules run for asynchronous execution. run may be called
// several times when the error it returns is retryable.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.shard(ctx) <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stats returns the job counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{Sent: d.sent.Load(), Retried: d.retried.Load(), Failed: d.failed.Load()}
}

// Close stops accepting jobs and waits until the queued ones are delivered.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		for _, ch := range d.shards {
			close(ch)
		}
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) worker(jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		d.handle(j)
	}
}

func (d *Dispatcher) handle(j job) {
	start := time.Now()
	attempts, err := d.deliver(j)
	attrs := append(j.attrs(),
		slog.Int("attempts", attempts),
		slog.Duration("elapsed", time.Since(start)),
	)
	if attempts > 1 {
		d.retried.Add(1)
	}
	if err != nil {
		d.failed.Add(1)
		logger.Error(j.ctx, component, "send.fail", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.String("err_code", classifyError(err)),
		)...)
		return
	}
	d.sent.Add(1)
	logger.Debug(j.ctx, component, "send.ok", append(attrs, slog.String("status", "ok"))...)
}

// deliver runs j until it succeeds, fails permanently, runs out of attempts
// or exceeds MaxDuration.
func (d *Dispatcher) deliver(j job) (int, error) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	limit := d.opts.MaxRetries + 1
	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return attempt - 1, errors.Join(err, cerr)
		}
		if err = j.run(); err == nil {
			return attempt, nil
		}
		if attempt == limit || !netutil.ShouldRetry(err) {
			return attempt, err
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		if after, ok := netutil.RetryAfter(err); ok && after > delay {
			delay = after
		}
		logger.Debug(j.ctx, component, "send.retry", append(j.attrs(),
			slog.String("status", "retry"),
			slog.Int("attempts", attempt),
			slog.Duration("delay", delay),
			slog.String("err", err.Error()),
		)...)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func (j job) attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

// classifyError names the failure family of a send error for err_code.
func classifyError(err error) string {
	var (
		dnsErr   *net.DNSError
		opErr    *net.OpError
		netErr   net.Error
		alertErr tls.AlertError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return "dial"
	case errors.As(err, &alertErr):
		return "tls"
	}

	switch status := httpStatus(err); {
	case status == http.StatusTooManyRequests:
		return "flood"
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}

// httpStatus extracts the Bot API status code from telebot errors or from
// the trailing "(code)" telebot appends to error descriptions.
func httpStatus(err error) int {
	var (
		apiErr   *tele.Error
		floodErr tele.FloodError
		groupErr tele.GroupError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.As(err, &floodErr):
		return http.StatusTooManyRequests
	case errors.As(err, &groupErr):
		return http.StatusBadRequest
	}

	msg := err.Error()
	open, end := strings.LastIndex(msg, "("), strings.LastIndex(msg, ")")
	if open < 0 || end <= open+1 {
		return 0
	}
	code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : end]))
	if convErr != nil {
		return 0
	}
	return code
}
