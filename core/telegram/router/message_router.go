package router

import (
	tg "github.com/foodpod-bot/foodpod/core/telegram"
	"github.com/foodpod-bot/foodpod/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation consumes free text that is not a command, typically answers
// to a pending prompt of the chat.
type Conversation interface {
	HandleText(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	// AdminID guards AdminOnly commands reached through an alias.
	AdminID        int64
	UnknownCommand tele.HandlerFunc
	UnknownText    tele.HandlerFunc
}

// TextRoutes builds the handler for plain text. Aliases of registered commands
// are resolved here; other "/..." text goes to UnknownCommand and everything
// else to the conversation.
func TextRoutes(conv Conversation, reg *tg.Registry, opts TextOptions) []tg.Route {
	admin := middleware.AdminOnlyMiddleware(middleware.AdminOptions{AdminID: opts.AdminID})

	handler := func(c tele.Context) error {
		text := c.Text()

		if tg.IsCommand(text) {
			if reg != nil {
				if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
					h := cmd.Handler
					if cmd.AdminOnly {
						h = admin(h)
					}
					return newSummary(normalizeHandlerName(key)).run(c, h)
				}
			}
			if opts.UnknownCommand != nil {
				return newSummary("unknown_command").run(c, opts.UnknownCommand)
			}
			newSummary("unknown_command").skip(c)
			return nil
		}

		if conv != nil {
			return newSummary("conversation").run(c, conv.HandleText)
		}
		if opts.UnknownText != nil {
			return newSummary("unknown_text").run(c, opts.UnknownText)
		}
		newSummary("unknown_text").skip(c)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}
