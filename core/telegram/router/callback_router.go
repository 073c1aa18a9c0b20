package router

import (
	"log/slog"

	tg "github.com/foodpod-bot/foodpod/core/telegram"
	"github.com/foodpod-bot/foodpod/core/telegram/callbacks"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"
	"github.com/foodpod-bot/foodpod/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry.
// Callbacks the handler did not answer are acknowledged afterwards.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key, _ := callbacks.ParseCallbackData(c.Callback())
		sum := newSummary("callback."+normalizeHandlerName(key), slog.String("cb_key", key))
		defer func() {
			if !tghelpers.Answered(c) {
				_ = c.Respond()
			}
		}()

		if h, ok := reg.GetCallback(key); ok && h != nil {
			return sum.run(c, h)
		}

		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		sum.status = "skip"
		sum.extras = append(sum.extras, slog.String("cause", "not_found"))
		if fallback == nil {
			sum.log(c, nil)
			return nil
		}
		return sum.run(c, fallback)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
