package dialog

import (
	"context"
	"log/slog"

	"github.com/foodpod-bot/foodpod/app/callback"
	"github.com/foodpod-bot/foodpod/app/view"
	"github.com/foodpod-bot/foodpod/core/logger"
)

// HandleButton applies a pressed inline button. Every applied transition
// persists the resulting dialog, even when it did not change.
func (e *Engine) HandleButton(ctx context.Context, pod string, b callback.Button) (Outcome, error) {
	if b.Pod != pod {
		logger.Warn(logger.WithPod(ctx, pod), component, "dialog.unrecognized",
			slog.String("op", b.Kind.String()),
			slog.String("cause", "button rendered for another pod"),
		)
		return Outcome{Toast: view.UnsupportedAction}, nil
	}
	if b.Kind == callback.KindNoop {
		return Outcome{}, nil
	}
	return e.run(ctx, pod, b.Kind.String(), true, func(ctx context.Context, cur Dialog) (Dialog, Outcome, error) {
		return e.button(ctx, pod, cur, b)
	})
}

func edit(s view.Screen) Outcome { return Outcome{Mode: ModeEdit, Screen: s} }

func prompt(s view.Screen) Outcome { return Outcome{Mode: ModePrompt, Screen: s} }

// viewing returns the dialog of a pod looking at an item opened from origin.
func viewing(storage string, origin callback.Origin) Dialog {
	if origin == callback.OriginCheck {
		return Dialog{State: StateCheck}
	}
	return Browse(storage)
}

func (e *Engine) button(ctx context.Context, pod string, cur Dialog, b callback.Button) (Dialog, Outcome, error) {
	switch b.Kind {
	case callback.KindStorage:
		screen, err := e.itemList(ctx, pod, b.Storage)
		if err != nil {
			return cur, Outcome{}, err
		}
		return Browse(b.Storage), edit(screen), nil

	case callback.KindAdd:
		switch b.Target {
		case callback.AddStorage:
			return Dialog{State: StateNewStorage}, prompt(view.PromptNewStorage("")), nil
		case callback.AddItem:
			if _, err := e.itemList(ctx, pod, b.Storage); err != nil {
				return cur, Outcome{}, err
			}
			return Dialog{State: StateNewItem, Storage: b.Storage}, prompt(view.PromptNewItem(b.Storage, "")), nil
		}

	case callback.KindModifyItem:
		if _, err := e.inv.Item(ctx, pod, b.Storage, b.Item); err != nil {
			return cur, Outcome{}, err
		}
		next := Dialog{State: StateModifyItem, Storage: b.Storage, Item: b.Item}
		return next, prompt(view.PromptQuantity(b.Storage, b.Item, "")), nil

	case callback.KindDelete:
		return e.deleteButton(ctx, pod, cur, b)

	case callback.KindDeleteStorageConfirm:
		if err := e.inv.DeleteStorage(ctx, pod, b.Storage); err != nil {
			return cur, Outcome{}, err
		}
		screen, err := e.storageList(ctx, pod)
		if err != nil {
			return cur, Outcome{}, err
		}
		return Idle(), edit(screen.WithNotice(view.StorageDeleted(b.Storage))), nil

	case callback.KindDeleteItemConfirm:
		if err := e.inv.DeleteItem(ctx, pod, b.Storage, b.Item); err != nil {
			return cur, Outcome{}, err
		}
		screen, err := e.itemList(ctx, pod, b.Storage)
		if err != nil {
			return cur, Outcome{}, err
		}
		// A delete confirmation always ends the dialog, like the storage case
		// above. The list buttons carry their storage, so nothing needs browse.
		return Idle(), edit(screen.WithNotice(view.ItemDeleted(b.Item))), nil

	case callback.KindExpired:
		if _, err := e.itemList(ctx, pod, b.Storage); err != nil {
			return cur, Outcome{}, err
		}
		expired, err := e.inv.ExpiredItems(ctx, pod, b.Storage)
		if err != nil {
			return cur, Outcome{}, err
		}
		return Browse(b.Storage), edit(view.ExpiredList(pod, b.Storage, expired)), nil

	case callback.KindBack:
		return e.backButton(ctx, pod, cur, b)

	case callback.KindItem:
		return e.itemDetail(ctx, pod, cur, b.Storage, b.Item, b.Origin)

	case callback.KindItemCheck:
		switch b.Target {
		case callback.CheckList:
			screen, err := e.checkList(ctx, pod)
			if err != nil {
				return cur, Outcome{}, err
			}
			return Dialog{State: StateCheck}, edit(screen), nil
		case callback.CheckItem:
			return e.itemDetail(ctx, pod, cur, b.Storage, b.Item, callback.OriginCheck)
		}

	case callback.KindNoop:
		return cur, Outcome{}, errIgnored
	}
	return cur, Outcome{Toast: view.UnsupportedAction}, errIgnored
}

func (e *Engine) itemDetail(ctx context.Context, pod string, cur Dialog, storage, item string, origin callback.Origin) (Dialog, Outcome, error) {
	d, err := e.inv.Item(ctx, pod, storage, item)
	if err != nil {
		return cur, Outcome{}, err
	}
	return viewing(storage, origin), edit(view.ItemDetail(pod, d, origin, e.inv.Today())), nil
}

func (e *Engine) deleteButton(ctx context.Context, pod string, cur Dialog, b callback.Button) (Dialog, Outcome, error) {
	switch b.Target {
	case callback.DeleteStorage:
		if _, err := e.itemList(ctx, pod, b.Storage); err != nil {
			return cur, Outcome{}, err
		}
		n, err := e.inv.ItemCount(ctx, pod, b.Storage)
		if err != nil {
			return cur, Outcome{}, err
		}
		return Browse(b.Storage), edit(view.ConfirmDeleteStorage(pod, b.Storage, n)), nil

	case callback.DeleteItem:
		if _, err := e.inv.Item(ctx, pod, b.Storage, b.Item); err != nil {
			return cur, Outcome{}, err
		}
		return viewing(b.Storage, b.Origin), edit(view.ConfirmDeleteItem(pod, b.Storage, b.Item, b.Origin)), nil

	case callback.DeleteExpired:
		n, err := e.inv.ClearExpired(ctx, pod, b.Storage)
		if err != nil {
			return cur, Outcome{}, err
		}
		logger.Info(ctx, component, "dialog.expired.cleared",
			slog.String("storage", b.Storage),
			slog.Int("items", n),
		)
		screen, err := e.itemList(ctx, pod, b.Storage)
		if err != nil {
			return cur, Outcome{}, err
		}
		return Browse(b.Storage), edit(screen.WithNotice(view.ExpiredCleared(n))), nil
	}
	return cur, Outcome{Toast: view.UnsupportedAction}, errIgnored
}

func (e *Engine) backButton(ctx context.Context, pod string, cur Dialog, b callback.Button) (Dialog, Outcome, error) {
	switch b.Target {
	case callback.BackBot:
		return Idle(), edit(view.Farewell()), nil

	case callback.BackStorages:
		screen, err := e.storageList(ctx, pod)
		if err != nil {
			return cur, Outcome{}, err
		}
		return Idle(), edit(screen), nil

	case callback.BackItemList:
		screen, err := e.itemList(ctx, pod, b.Storage)
		if err != nil {
			return cur, Outcome{}, err
		}
		return Browse(b.Storage), edit(screen), nil

	case callback.BackItem:
		return e.itemDetail(ctx, pod, cur, b.Storage, b.Item, b.Origin)
	}
	return cur, Outcome{Toast: view.UnsupportedAction}, errIgnored
}
