package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/foodpod-bot/foodpod/app/inventory"
	"github.com/foodpod-bot/foodpod/app/view"
	"github.com/foodpod-bot/foodpod/core/logger"
)

const component = "dialog"

// Mode tells the transport how to deliver an Outcome.
type Mode int

const (
	// ModeNone sends nothing.
	ModeNone Mode = iota
	// ModeEdit replaces the message that carried the pressed button.
	ModeEdit
	// ModeSend posts a new message.
	ModeSend
	// ModePrompt posts a new message that asks for a text reply.
	ModePrompt
)

// Outcome is the visible result of one event.
type Outcome struct {
	Mode   Mode
	Screen view.Screen
	// Toast is shown as the callback answer, if any.
	Toast string
}

// errIgnored marks events that leave the dialog untouched and produce no reply.
var errIgnored = errors.New("dialog: event ignored")

// Engine runs transitions against an Inventory. It is safe for concurrent
// use; events of the same pod are applied one at a time.
type Engine struct {
	inv   *inventory.Inventory
	locks *podLocks
}

// New returns an engine over inv.
func New(inv *inventory.Inventory) *Engine {
	return &Engine{inv: inv, locks: newPodLocks()}
}

// Inventory exposes the underlying inventory.
func (e *Engine) Inventory() *inventory.Inventory {
	return e.inv
}

// Current loads the pending dialog of pod. Unreadable records read as Idle.
func (e *Engine) Current(ctx context.Context, pod string) (Dialog, error) {
	rec, err := e.inv.PendingDialog(ctx, pod)
	if err != nil {
		return Dialog{}, fmt.Errorf("load dialog: %w", err)
	}
	d, err := ParseRecord(rec)
	if err != nil {
		logger.Warn(ctx, component, "dialog.record.invalid",
			slog.String("name", rec.Name),
			slog.String("arg", rec.Arg),
			slog.String("err", err.Error()),
		)
		return Idle(), nil
	}
	return d, nil
}

type transition func(ctx context.Context, cur Dialog) (Dialog, Outcome, error)

// run applies fn under the pod lock. The resulting dialog is persisted when
// always is set or when it differs from the current one.
func (e *Engine) run(ctx context.Context, pod, event string, always bool, fn transition) (Outcome, error) {
	ctx = logger.WithPod(ctx, pod)
	unlock := e.locks.lock(pod)
	defer unlock()

	start := time.Now()
	cur, err := e.Current(ctx, pod)
	if err != nil {
		return Outcome{}, err
	}

	next, out, err := fn(ctx, cur)
	switch {
	case errors.Is(err, errIgnored):
		logger.Warn(ctx, component, "dialog.unrecognized",
			slog.String("op", event),
			slog.String("state", cur.State.String()),
		)
		return out, nil
	case errors.Is(err, inventory.ErrNotFound):
		logger.Info(ctx, component, "dialog.gone",
			slog.String("op", event),
			slog.String("state", cur.State.String()),
			slog.String("err", err.Error()),
		)
		next, out, err = e.gone(ctx, pod, event)
		if err != nil {
			return Outcome{}, err
		}
	case err != nil:
		return Outcome{}, err
	}

	if always || next != cur {
		if err := e.inv.SetPendingDialog(ctx, pod, next.Record()); err != nil {
			return Outcome{}, fmt.Errorf("save dialog: %w", err)
		}
	}
	logger.Debug(ctx, component, "dialog.transition",
		slog.String("op", event),
		slog.String("state", cur.State.String()),
		slog.String("next_state", next.State.String()),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return out, nil
}

// gone resets the pod to its storage list after it referenced a deleted entry.
func (e *Engine) gone(ctx context.Context, pod, event string) (Dialog, Outcome, error) {
	storages, err := e.inv.Storages(ctx, pod)
	if err != nil {
		return Dialog{}, Outcome{}, err
	}
	mode := ModeEdit
	if event == eventText {
		mode = ModeSend
	}
	return Idle(), Outcome{Mode: mode, Screen: view.StorageList(pod, storages).WithNotice(view.GoneNotice)}, nil
}

// invalid logs rejected user input and re-renders the prompt of cur.
func invalid(ctx context.Context, cur Dialog, err error, screen func(problem string) view.Screen) (Dialog, Outcome, error) {
	var ve *inventory.ValidationError
	if !errors.As(err, &ve) {
		return cur, Outcome{}, err
	}
	logger.Info(ctx, component, "dialog.invalid_input",
		slog.String("state", cur.State.String()),
		slog.String("err_code", ve.Code()),
		slog.String("cause", ve.Reason),
	)
	return cur, Outcome{Mode: ModePrompt, Screen: screen(ve.Reason)}, nil
}

// Register adds pod to the registry and reports whether it already existed.
func (e *Engine) Register(ctx context.Context, pod string) (bool, error) {
	existed, err := e.inv.RegisterPod(ctx, pod)
	if err != nil {
		return false, err
	}
	if !existed {
		logger.Info(logger.WithPod(ctx, pod), component, "pod.registered", slog.String("status", "ok"))
	}
	return existed, nil
}

// Registered reports whether pod went through Register.
func (e *Engine) Registered(ctx context.Context, pod string) (bool, error) {
	return e.inv.IsPodRegistered(ctx, pod)
}

// OpenMenu closes any dialog and sends the storage list.
func (e *Engine) OpenMenu(ctx context.Context, pod string) (Outcome, error) {
	return e.run(ctx, pod, "pods", true, func(ctx context.Context, _ Dialog) (Dialog, Outcome, error) {
		storages, err := e.inv.Storages(ctx, pod)
		if err != nil {
			return Dialog{}, Outcome{}, err
		}
		return Idle(), Outcome{Mode: ModeSend, Screen: view.StorageList(pod, storages)}, nil
	})
}

// Stop resets the pod to Idle.
func (e *Engine) Stop(ctx context.Context, pod string) (Outcome, error) {
	return e.run(ctx, pod, "stop", true, func(context.Context, Dialog) (Dialog, Outcome, error) {
		return Idle(), Outcome{Mode: ModeSend, Screen: view.Screen{Text: view.DialogStopped}}, nil
	})
}

// Check sends the expired or expiring list of the pod.
func (e *Engine) Check(ctx context.Context, pod string) (Outcome, error) {
	return e.run(ctx, pod, "check", true, func(ctx context.Context, _ Dialog) (Dialog, Outcome, error) {
		screen, err := e.checkList(ctx, pod)
		if err != nil {
			return Dialog{}, Outcome{}, err
		}
		return Dialog{State: StateCheck}, Outcome{Mode: ModeSend, Screen: screen}, nil
	})
}

// Report renders the daily notification for pod without touching its
// dialog. ok is false when nothing is expired or expiring.
func (e *Engine) Report(ctx context.Context, pod string) (view.Screen, bool, error) {
	bad, err := e.inv.ExpiringOrBadItems(ctx, pod)
	if err != nil {
		return view.Screen{}, false, err
	}
	if len(bad) == 0 {
		return view.Screen{}, false, nil
	}
	return view.CheckList(pod, bad).WithNotice(view.ReportHeader), true, nil
}

func (e *Engine) checkList(ctx context.Context, pod string) (view.Screen, error) {
	bad, err := e.inv.ExpiringOrBadItems(ctx, pod)
	if err != nil {
		return view.Screen{}, err
	}
	return view.CheckList(pod, bad), nil
}

func (e *Engine) storageList(ctx context.Context, pod string) (view.Screen, error) {
	storages, err := e.inv.Storages(ctx, pod)
	if err != nil {
		return view.Screen{}, err
	}
	return view.StorageList(pod, storages), nil
}

// itemList renders storage, or fails with inventory.ErrNotFound if it was deleted.
func (e *Engine) itemList(ctx context.Context, pod, storage string) (view.Screen, error) {
	storages, err := e.inv.Storages(ctx, pod)
	if err != nil {
		return view.Screen{}, err
	}
	if !slices.Contains(storages, storage) {
		return view.Screen{}, fmt.Errorf("storage %q: %w", storage, inventory.ErrNotFound)
	}
	items, err := e.inv.ItemDetails(ctx, pod, storage)
	if err != nil {
		return view.Screen{}, err
	}
	return view.ItemList(pod, storage, items, e.inv.Today()), nil
}
