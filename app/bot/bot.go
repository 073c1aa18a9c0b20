// Package bot is the Telegram shell of the Food Pod: commands, buttons,
// free-text answers and the daily report, all delegated to the dialog engine.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/foodpod-bot/foodpod/app/callback"
	appconfig "github.com/foodpod-bot/foodpod/app/config"
	"github.com/foodpod-bot/foodpod/app/dialog"
	"github.com/foodpod-bot/foodpod/app/view"
	"github.com/foodpod-bot/foodpod/core/logger"
	"github.com/foodpod-bot/foodpod/core/scheduler"
	tg "github.com/foodpod-bot/foodpod/core/telegram"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"
	"github.com/foodpod-bot/foodpod/core/telegram/middleware"
	"github.com/foodpod-bot/foodpod/core/telegram/router"
	"github.com/foodpod-bot/foodpod/core/telegram/sender"
	"github.com/foodpod-bot/foodpod/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

const (
	component  = "bot"
	reportJob  = "daily_report"
	stopBudget = 10 * time.Second
)

// Bot wires the dialog engine to Telegram.
type Bot struct {
	cfg       *appconfig.Config
	engine    *dialog.Engine
	registry  *tg.Registry
	sched     *scheduler.Scheduler
	outbox    *sender.Dispatcher
	fallbacks ui.Fallbacks
}

// New builds the shell and registers every command and button kind.
func New(cfg *appconfig.Config, engine *dialog.Engine) (*Bot, error) {
	if cfg == nil || engine == nil {
		return nil, fmt.Errorf("bot: config and engine are required")
	}
	b := &Bot{
		cfg:      cfg,
		engine:   engine,
		registry: tg.NewRegistry(),
		fallbacks: ui.Fallbacks{
			UnknownCommand:  view.UnknownCommand,
			UnknownCallback: view.UnsupportedAction,
			Unauthorized:    view.Unauthorized,
		},
	}
	if err := b.register(); err != nil {
		return nil, err
	}
	return b, nil
}

// Registry exposes the command and callback registry.
func (b *Bot) Registry() *tg.Registry {
	return b.registry
}

func (b *Bot) register() error {
	b.registry.RegisterCommand("/start", tg.Command{Handler: b.handleStart, Description: "Register this chat as a Food Pod"})
	b.registry.RegisterCommand("/pods", tg.Command{Handler: b.handlePods, Description: "Open the storage menu", Aliases: []string{"menu"}})
	b.registry.RegisterCommand("/stop", tg.Command{Handler: b.handleStop, Description: "Cancel the pending question"})
	b.registry.RegisterCommand("/check", tg.Command{Handler: b.handleCheck, Description: "List expired or expiring items"})
	b.registry.RegisterCommand("/info", tg.Command{Handler: b.handleInfo, Description: "Show storage backend status", AdminOnly: true})

	for _, kind := range callback.Kinds() {
		if err := b.registry.RegisterCallback(string(kind), b.handleButton); err != nil {
			return fmt.Errorf("bot: %w", err)
		}
	}
	b.registry.SetCallbackNotFound(b.fallbacks.UnknownCallbackHandler())
	return nil
}

// TelegramRunOptions assembles the runtime: middleware chain, routes,
// error reporting and the daily report lifecycle.
func (b *Bot) TelegramRunOptions() (tg.RunOptions, error) {
	core := b.cfg.CoreConfig()
	routes := router.CommandRoutes(b.registry, router.CommandRouteOptions{AdminID: core.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(b.registry, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(b, b.registry, router.TextOptions{
		AdminID:        core.Telegram.AdminID,
		UnknownCommand: b.fallbacks.UnknownCommandHandler(),
	})...)

	return tg.RunOptions{
		Config:   core,
		Registry: b.registry,
		Middlewares: tg.DefaultMiddlewares(core, tg.MiddlewareOptions{
			Allow: middleware.AllowOptions{
				Allowed:  b.cfg.Authorized,
				OnReject: b.rejectUnauthorized,
			},
		}),
		Routes:  routes,
		OnError: b.onError,
		OnStart: b.onStart,
		OnStop:  b.onStop,
	}, nil
}

func (b *Bot) onStart(ctx context.Context, rt tg.Runtime) error {
	b.cfg.LogSummary(ctx)
	b.outbox = rt.Dispatcher
	if b.cfg.Notify.Disabled {
		return nil
	}
	n := &notifier{engine: b.engine, send: chatSender(rt.Bot)}
	sched := scheduler.New(b.cfg.Notify.Location)
	if err := sched.Add(reportJob, b.cfg.Notify.Spec, n.run); err != nil {
		return fmt.Errorf("bot: schedule report: %w", err)
	}
	sched.Start()
	b.sched = sched
	return nil
}

func (b *Bot) onStop(context.Context, tg.Runtime) error {
	if b.sched == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopBudget)
	defer cancel()
	return b.sched.Stop(ctx)
}

// onError reports handler errors to the chat they came from.
func (b *Bot) onError(err error, c tele.Context) {
	if c == nil {
		logger.Error(context.Background(), component, "bot.error", slog.String("err", err.Error()))
		return
	}
	ctx := tghelpers.BuildContext(c)
	logger.Error(ctx, component, "bot.error",
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	if c.Chat() == nil {
		logger.Warn(ctx, component, "bot.error.unreported", slog.String("cause", "no chat"))
		return
	}
	if sendErr := tghelpers.SendText(c, view.ErrorOccurred(err)); sendErr != nil {
		logger.Warn(ctx, component, "bot.error.unreported", slog.String("err", sendErr.Error()))
	}
}

// podID names the Food Pod of the chat an update came from.
func podID(c tele.Context) (string, bool) {
	chat := c.Chat()
	if chat == nil {
		return "", false
	}
	return strconv.FormatInt(chat.ID, 10), true
}
