package bot

import (
	"log/slog"

	"github.com/foodpod-bot/foodpod/app/callback"
	"github.com/foodpod-bot/foodpod/app/view"
	"github.com/foodpod-bot/foodpod/core/logger"
	tg "github.com/foodpod-bot/foodpod/core/telegram"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// rejectUnauthorized answers commands from chats outside the allow-list and
// ignores everything else they send.
func (b *Bot) rejectUnauthorized(c tele.Context) error {
	if c.Message() == nil || !tg.IsCommand(c.Text()) {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	attrs := []slog.Attr{slog.String("command", tg.CommandName(c.Text()))}
	if user := c.Sender(); user != nil {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
	}
	logger.Info(ctx, component, "bot.unauthorized", attrs...)
	return b.fallbacks.UnauthorizedHandler()(c)
}

func (b *Bot) handleStart(c tele.Context) error {
	pod, ok := podID(c)
	if !ok {
		return nil
	}
	ctx := logger.WithPod(tghelpers.BuildContext(c), pod)
	name := ""
	if user := c.Sender(); user != nil {
		name = user.Username
		if name == "" {
			name = user.FirstName
		}
	}
	if err := tghelpers.SendText(c, view.Welcome(name)); err != nil {
		return err
	}
	existed, err := b.engine.Register(ctx, pod)
	if err != nil {
		return err
	}
	if existed {
		return tghelpers.SendText(c, view.AlreadyRegistered)
	}
	return tghelpers.SendText(c, view.Registered)
}

// registeredPod resolves the pod of c and replies NotRegistered when /start
// was never sent from this chat.
func (b *Bot) registeredPod(c tele.Context) (string, bool, error) {
	pod, ok := podID(c)
	if !ok {
		return "", false, nil
	}
	registered, err := b.engine.Registered(tghelpers.BuildContext(c), pod)
	if err != nil {
		return "", false, err
	}
	if !registered {
		return "", false, tghelpers.SendText(c, view.NotRegistered)
	}
	return pod, true, nil
}

func (b *Bot) handlePods(c tele.Context) error {
	pod, ok, err := b.registeredPod(c)
	if !ok {
		return err
	}
	out, err := b.engine.OpenMenu(tghelpers.BuildContext(c), pod)
	if err != nil {
		return err
	}
	return render(c, out)
}

func (b *Bot) handleStop(c tele.Context) error {
	pod, ok, err := b.registeredPod(c)
	if !ok {
		return err
	}
	out, err := b.engine.Stop(tghelpers.BuildContext(c), pod)
	if err != nil {
		return err
	}
	return render(c, out)
}

func (b *Bot) handleCheck(c tele.Context) error {
	pod, ok, err := b.registeredPod(c)
	if !ok {
		return err
	}
	out, err := b.engine.Check(tghelpers.BuildContext(c), pod)
	if err != nil {
		return err
	}
	return render(c, out)
}

func (b *Bot) handleInfo(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	info, err := b.engine.Inventory().Info(ctx)
	if err != nil {
		logger.Warn(ctx, component, "bot.info", slog.String("status", "degraded"), slog.String("err", err.Error()))
	}
	if b.outbox != nil {
		st := b.outbox.Stats()
		info += "\n" + view.OutboxStats(st.Sent, st.Retried, st.Failed)
	}
	return tghelpers.SendText(c, info)
}

// handleButton serves every registered button kind.
func (b *Bot) handleButton(c tele.Context) error {
	pod, ok := podID(c)
	if !ok || c.Callback() == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	btn, err := callback.Decode(c.Callback().Data)
	if err != nil {
		logger.Warn(ctx, component, "bot.callback.malformed",
			slog.String("status", "skip"),
			slog.String("payload", logger.SanitizeLimit(c.Callback().Data, 64)),
			slog.String("err", err.Error()),
		)
		return tghelpers.Respond(c, view.UnsupportedAction)
	}
	out, err := b.engine.HandleButton(ctx, pod, btn)
	if err != nil {
		return err
	}
	return render(c, out)
}

// HandleText feeds non-command text to the pending dialog of the chat.
func (b *Bot) HandleText(c tele.Context) error {
	pod, ok := podID(c)
	if !ok {
		return nil
	}
	out, err := b.engine.HandleText(tghelpers.BuildContext(c), pod, c.Text())
	if err != nil {
		return err
	}
	return render(c, out)
}
