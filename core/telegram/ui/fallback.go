package ui

import (
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Fallbacks holds the replies used when an update cannot be mapped to a
// command, a callback handler, or an authorized chat. Empty texts stay silent.
type Fallbacks struct {
	UnknownCommand  string
	UnknownCallback string
	Unauthorized    string
}

// UnknownCommandHandler replies to commands that are not registered.
func (f Fallbacks) UnknownCommandHandler() tele.HandlerFunc {
	return replyText(f.UnknownCommand)
}

// UnauthorizedHandler replies to chats outside the allow-list.
func (f Fallbacks) UnauthorizedHandler() tele.HandlerFunc {
	return replyText(f.Unauthorized)
}

// UnknownCallbackHandler answers callbacks without a handler with a toast.
func (f Fallbacks) UnknownCallbackHandler() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.Respond(c, f.UnknownCallback)
	}
}

func replyText(text string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if text == "" {
			return nil
		}
		return tghelpers.SendText(c, text)
	}
}
