package sender

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/foodpod-bot/foodpod/core/logger"

	tele "gopkg.in/telebot.v4"
)

func TestDispatcherKeepsChatOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 4, QueueSize: 400})
	ctx := logger.WithUpdateMeta(context.Background(), 1, 7, -1001)

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 50; i++ {
		i := i
		if err := d.Enqueue(ctx, "send.text", "sendMessage", func() error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	d.Close()

	if len(got) != 50 {
		t.Fatalf("delivered %d jobs", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: %v", i, got)
		}
	}
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	attempts := 0
	done := make(chan struct{})
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		attempts++
		if attempts < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("refused")}
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not succeed, attempts=%d", attempts)
	}
	d.Close()
	if got := d.Stats(); got != (Stats{Sent: 1, Retried: 1}) {
		t.Fatalf("stats = %+v", got)
	}
}

func TestDispatcherCountsPermanentFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	attempts := 0
	_ = d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		attempts++
		return errors.New("bad request (400)")
	})
	d.Close()
	if attempts != 1 {
		t.Fatalf("permanent error retried %d times", attempts)
	}
	if st := d.Stats(); st.Failed != 1 || st.Retried != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestDispatcherClosed(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()
	if err := d.Enqueue(context.Background(), "a", "b", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestClassifyError(t *testing.T) {
	if kind := classifyError(&net.OpError{Op: "dial", Err: errors.New("x")}); kind != "dial" {
		t.Fatalf("dial kind = %q", kind)
	}
	if kind := classifyError(errors.New("Internal Server Error (502)")); kind != "http_5xx" {
		t.Fatalf("5xx kind = %q", kind)
	}
	if kind := classifyError(tele.FloodError{RetryAfter: 3}); kind != "flood" {
		t.Fatalf("flood kind = %q", kind)
	}
	if kind := classifyError(errors.New("no status")); kind != "unknown" {
		t.Fatalf("unknown kind = %q", kind)
	}
}
