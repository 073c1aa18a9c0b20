package helpers

import (
	"context"
	"strconv"

	"github.com/foodpod-bot/foodpod/core/logger"

	tele "gopkg.in/telebot.v4"
)

// requestKey holds the request context on tele.Context.
const requestKey = "request_ctx"

// IDs returns the update, chat and user ids of c; missing parts are zero.
func IDs(c tele.Context) (updateID int, chatID, userID int64) {
	updateID = c.Update().ID
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	return updateID, chatID, userID
}

// StoreContext replaces the request context of c.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(requestKey, ctx)
	}
}

// ContextFrom returns the request context stored on c.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(requestKey).(context.Context)
	return ctx, ok
}

// BuildContext returns the request context of an update: rid, update, user
// and chat ids, and the Food Pod of the chat. The first call caches it on c.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	updateID, chatID, userID := IDs(c)

	ctx := logger.WithRID(context.Background(), logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	if chatID != 0 {
		ctx = logger.WithPod(ctx, strconv.FormatInt(chatID, 10))
	}
	StoreContext(c, ctx)
	return ctx
}

// WithHandler adds the handler name to the request context of c.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
