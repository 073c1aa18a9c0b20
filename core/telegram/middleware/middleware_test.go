package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/foodpod-bot/foodpod/core/logger"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"
)

type fakeContext struct {
	tele.Context
	update    tele.Update
	store     map[string]any
	responded bool
	sent      []any
}

func newFakeContext(upd tele.Update) *fakeContext {
	return &fakeContext{update: upd, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update { return f.update }

func (f *fakeContext) Sender() *tele.User {
	switch {
	case f.update.Callback != nil:
		return f.update.Callback.Sender
	case f.update.Message != nil:
		return f.update.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	switch {
	case f.update.Callback != nil && f.update.Callback.Message != nil:
		return f.update.Callback.Message.Chat
	case f.update.Message != nil:
		return f.update.Message.Chat
	}
	return nil
}

func (f *fakeContext) Callback() *tele.Callback { return f.update.Callback }
func (f *fakeContext) Text() string { return "" }
func (f *fakeContext) Get(key string) any { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }
func (f *fakeContext) Respond(...*tele.CallbackResponse) error {
	f.responded = true
	return nil
}
func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}
func (f *fakeContext) EditOrSend(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func message(chatID, userID int64) tele.Update {
	return tele.Update{ID: 1, Message: &tele.Message{
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: chatID},
	}}
}

func callbackUpdate(chatID, userID int64) tele.Update {
	return tele.Update{ID: 2, Callback: &tele.Callback{
		Sender:  &tele.User{ID: userID},
		Message: &tele.Message{Chat: &tele.Chat{ID: chatID}},
		Data:    "-100:sb:Fridge",
	}}
}

func TestAllowChats(t *testing.T) {
	rejected := 0
	mw := AllowChats(AllowOptions{
		Allowed:  func(id int64) bool { return id == 42 },
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	called := 0
	h := mw(func(tele.Context) error { called++; return nil })

	if err := h(newFakeContext(message(42, 1))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != 1 || rejected != 0 {
		t.Fatalf("allowed chat: called=%d rejected=%d", called, rejected)
	}

	fc := newFakeContext(callbackUpdate(7, 1))
	_ = h(fc)
	if called != 1 || rejected != 1 {
		t.Fatalf("foreign chat: called=%d rejected=%d", called, rejected)
	}
	if !fc.responded {
		t.Fatalf("rejected callback must be answered")
	}
}

func TestAllowChatsLogsRejectAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logg := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := AllowChats(AllowOptions{Allowed: func(int64) bool { return false }})(func(tele.Context) error { return nil })

	fc := newFakeContext(callbackUpdate(7, 1))
	tghelpers.StoreContext(fc, logger.WithLogger(context.Background(), logg))
	_ = h(fc)

	out := buf.String()
	if !strings.Contains(out, `"event":"access.unauthorized"`) || !strings.Contains(out, `"level":"INFO"`) {
		t.Fatalf("expected info-level reject, got %s", out)
	}
}

func TestAdminOnly(t *testing.T) {
	called := false
	h := AdminOnlyMiddleware(AdminOptions{AdminID: 5})(func(tele.Context) error { called = true; return nil })
	_ = h(newFakeContext(message(1, 6)))
	if called {
		t.Fatalf("non-admin passed")
	}
	_ = h(newFakeContext(message(1, 5)))
	if !called {
		t.Fatalf("admin rejected")
	}
}

func TestRateLimitExclusions(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		_ = h(newFakeContext(callbackUpdate(1, 9)))
	}
	_ = h(newFakeContext(message(1, 9)))
	_ = h(newFakeContext(message(1, 9)))
	if calls != 4 || limited != 1 {
		t.Fatalf("calls=%d limited=%d", calls, limited)
	}
}

func TestRecoverTurnsPanicIntoError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newFakeContext(message(1, 1)))
	if err == nil || err.Error() != "panic: boom" {
		t.Fatalf("unexpected error %v", err)
	}

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(newFakeContext(message(1, 1))); !errors.Is(err, want) {
		t.Fatalf("error not passed through: %v", err)
	}
}

func TestMetricsCounters(t *testing.T) {
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("one"); err != nil {
			return err
		}
		if err := c.Send("two", &tele.ReplyMarkup{ForceReply: true}); err != nil {
			return err
		}
		return c.EditOrSend("three", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	fc := newFakeContext(message(1, 1))
	if err := h(fc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := GetCounters(fc)
	want := Counters{Messages: 2, Edits: 1, Keyboard: true, Prompt: true}
	if got != want {
		t.Fatalf("counters = %+v, want %+v", got, want)
	}
	if GetCounters(newFakeContext(message(1, 1))) != (Counters{}) {
		t.Fatalf("uninstrumented context must report zero counters")
	}
}

func TestReceiptLogDeduplicates(t *testing.T) {
	r := &receiptLog{ttl: time.Minute, seen: make(map[int]time.Time)}
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	if !r.first(7, now) {
		t.Fatalf("first receipt rejected")
	}
	if r.first(7, now.Add(time.Second)) {
		t.Fatalf("duplicate receipt accepted")
	}
	if !r.first(7, now.Add(2*time.Minute)) {
		t.Fatalf("expired receipt still remembered")
	}
}
