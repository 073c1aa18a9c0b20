package middleware

import (
	"log/slog"

	"github.com/foodpod-bot/foodpod/core/logger"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware ensures that only the admin user can invoke downstream handlers.
// A zero AdminID disables the check.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID == 0 {
				return next(c)
			}
			if user := c.Sender(); user == nil || user.ID != opts.AdminID {
				logger.Warn(tghelpers.BuildContext(c), "tg", "access.admin_reject",
					slog.String("status", "skip"),
				)
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

// AllowOptions configures AllowChats.
type AllowOptions struct {
	// Allowed reports whether a chat id may talk to the bot.
	Allowed  func(chatID int64) bool
	OnReject tele.HandlerFunc
}

// AllowChats drops updates from chats the allow-list does not accept.
// Callback queries are answered so the client stops its spinner.
func AllowChats(opts AllowOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.Allowed == nil {
				return next(c)
			}
			chat := c.Chat()
			if chat != nil && opts.Allowed(chat.ID) {
				return next(c)
			}
			attrs := []slog.Attr{slog.String("status", "skip")}
			if chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.Info(tghelpers.BuildContext(c), "tg", "access.unauthorized", attrs...)
			if c.Callback() != nil {
				_ = c.Respond()
			}
			if opts.OnReject != nil && chat != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
