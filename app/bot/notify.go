package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/foodpod-bot/foodpod/app/dialog"
	"github.com/foodpod-bot/foodpod/app/view"
	"github.com/foodpod-bot/foodpod/core/logger"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// reportSender delivers one report screen to a chat.
type reportSender func(ctx context.Context, chatID int64, s view.Screen) error

// chatSender sends through the shared dispatcher of the running bot.
func chatSender(bot *tele.Bot) reportSender {
	return func(ctx context.Context, chatID int64, s view.Screen) error {
		rm, err := markup(s)
		if err != nil {
			return err
		}
		ctx = logger.WithUpdateMeta(ctx, 0, 0, chatID)
		return tghelpers.SendChatMD(ctx, bot, &tele.Chat{ID: chatID}, s.Text, rm)
	}
}

// notifier sends the daily expiry report. It only reads: pending dialogs
// of the pods are left as they are.
type notifier struct {
	engine *dialog.Engine
	send   reportSender
}

func (n *notifier) run(ctx context.Context) error {
	pods, err := n.engine.Inventory().Pods(ctx)
	if err != nil {
		return fmt.Errorf("list pods: %w", err)
	}

	var errs []error
	sent := 0
	for _, pod := range pods {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := n.notify(logger.WithPod(ctx, pod), pod)
		if err != nil {
			logger.Warn(logger.WithPod(ctx, pod), component, "report.fail", slog.String("err", err.Error()))
			errs = append(errs, fmt.Errorf("pod %s: %w", pod, err))
			continue
		}
		if ok {
			sent++
		}
	}
	logger.Info(ctx, component, "report.summary",
		slog.Int("pods", len(pods)),
		slog.Int("sent", sent),
		slog.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

func (n *notifier) notify(ctx context.Context, pod string) (bool, error) {
	chatID, err := strconv.ParseInt(pod, 10, 64)
	if err != nil {
		return false, fmt.Errorf("pod id is not a chat id: %w", err)
	}
	screen, ok, err := n.engine.Report(ctx, pod)
	if err != nil || !ok {
		return false, err
	}
	return true, n.send(ctx, chatID, screen)
}
