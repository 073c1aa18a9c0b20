package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/foodpod-bot/foodpod/core/logger"
	"github.com/foodpod-bot/foodpod/core/telegram/callbacks"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// receiptLog remembers recently logged update ids. The middleware chain may
// run on several route branches for one update.
type receiptLog struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[int]time.Time
}

var receipts = &receiptLog{ttl: 10 * time.Second, seen: make(map[int]time.Time)}

// first reports whether updateID has not been logged within ttl.
func (r *receiptLog) first(updateID int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, at := range r.seen {
		if now.Sub(at) > r.ttl {
			delete(r.seen, id)
		}
	}
	if _, dup := r.seen[updateID]; dup {
		return false
	}
	r.seen[updateID] = now
	return true
}

// LoggerMiddleware caches the request context and writes one sampled
// update.received line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if logger.ShouldSampleDebug("update.received") && receipts.first(c.Update().ID, time.Now()) {
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", receiptAttrs(c)...)
		}
		return next(c)
	}
}

// receiptAttrs describes who sent the update and what it carries.
func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		attrs = append(attrs,
			slog.String("username", logger.SanitizeLimit(user.Username, 64)),
			slog.String("lang", user.LanguageCode),
		)
	}

	upd := c.Update()
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		attrs = append(attrs,
			slog.String("kind", "callback"),
			slog.String("cb_key", logger.SanitizeLimit(key, 128)),
			slog.String("payload", logger.SanitizeLimit(payload, 256)),
		)
	case upd.Message != nil:
		kind := "text"
		if upd.Message.ReplyTo != nil {
			kind = "answer"
		}
		attrs = append(attrs,
			slog.String("kind", kind),
			slog.String("payload", logger.SanitizeLimit(c.Text(), 256)),
		)
	}
	return attrs
}
