package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/foodpod-bot/foodpod/core/logger"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"
	"github.com/foodpod-bot/foodpod/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary writes the single handler.handled line of a routed update.
type summary struct {
	handler string
	start   time.Time
	// status replaces the ok/fail derived from the handler error.
	status string
	extras []slog.Attr
}

func newSummary(handler string, extras ...slog.Attr) summary {
	return summary{handler: handler, start: time.Now(), extras: extras}
}

// run calls h with the handler name attached to the request context.
func (s summary) run(c tele.Context, h tele.HandlerFunc) error {
	tghelpers.WithHandler(c, s.handler)
	err := h(c)
	s.log(c, err)
	return err
}

// skip records an update no handler took.
func (s summary) skip(c tele.Context) {
	s.status = "skip"
	s.log(c, nil)
}

func (s summary) log(c tele.Context, err error) {
	ctx := tghelpers.WithHandler(c, s.handler)
	replies := middleware.GetCounters(c)

	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	status := s.status
	if status == "" {
		status = outcome
	}

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", s.handler),
		slog.String("outcome", outcome),
		slog.Int("messages", replies.Messages),
		slog.Int("edits", replies.Edits),
		slog.Bool("kb", replies.Keyboard),
		slog.Bool("prompt", replies.Prompt),
		slog.Duration("duration", time.Since(s.start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", append(attrs, s.extras...)...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var c interface{ Code() string }
	if errors.As(err, &c) {
		code := strings.TrimSpace(c.Code())
		if code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil {
		return strings.ToUpper(strings.ReplaceAll(t.Name(), " ", "_"))
	}
	return "UNKNOWN_ERROR"
}
