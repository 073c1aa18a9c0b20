package dialog

import (
	"context"
	"errors"

	"github.com/foodpod-bot/foodpod/app/callback"
	"github.com/foodpod-bot/foodpod/app/inventory"
	"github.com/foodpod-bot/foodpod/app/view"
)

const eventText = "text"

// HandleText feeds a free-text message to the pod's pending dialog.
// Rejected input re-renders the same prompt and leaves state and data as they were.
func (e *Engine) HandleText(ctx context.Context, pod, text string) (Outcome, error) {
	return e.run(ctx, pod, eventText, false, func(ctx context.Context, cur Dialog) (Dialog, Outcome, error) {
		switch cur.State {
		case StateNewStorage:
			return e.textNewStorage(ctx, pod, cur, text)
		case StateNewItem:
			return e.textNewItem(ctx, pod, cur, text)
		case StateModifyItem:
			return e.textQuantity(ctx, pod, cur, text)
		case StateModifyItem2:
			return e.textExpiry(ctx, pod, cur, text)
		case StateIdle, StateBrowse, StateCheck:
			return cur, Outcome{}, errIgnored
		}
		return cur, Outcome{}, errIgnored
	})
}

// buttonFit turns a name that would overflow callback data into a validation error.
func buttonFit(field, pod, storage, item string) error {
	if err := callback.Fits(pod, storage, item); err != nil {
		return &inventory.ValidationError{Field: field, Reason: "the name is too long to fit in a button, try a shorter one"}
	}
	return nil
}

func (e *Engine) textNewStorage(ctx context.Context, pod string, cur Dialog, text string) (Dialog, Outcome, error) {
	name, err := inventory.NormalizeName("storage", text)
	if err == nil {
		err = buttonFit("storage", pod, name, "")
	}
	if err == nil {
		err = e.inv.AddStorage(ctx, pod, name)
		if errors.Is(err, inventory.ErrExists) {
			err = &inventory.ValidationError{Field: "storage", Reason: "a storage with this name already exists"}
		}
	}
	if err != nil {
		return invalid(ctx, cur, err, view.PromptNewStorage)
	}
	screen, err := e.storageList(ctx, pod)
	if err != nil {
		return cur, Outcome{}, err
	}
	return Idle(), Outcome{Mode: ModeSend, Screen: screen.WithNotice(view.StorageAdded(name))}, nil
}

func (e *Engine) textNewItem(ctx context.Context, pod string, cur Dialog, text string) (Dialog, Outcome, error) {
	reprompt := func(problem string) view.Screen { return view.PromptNewItem(cur.Storage, problem) }
	name, err := inventory.NormalizeName("item", text)
	if err == nil {
		err = buttonFit("item", pod, cur.Storage, name)
	}
	if err == nil {
		err = e.inv.AddItem(ctx, pod, cur.Storage, name)
		if errors.Is(err, inventory.ErrExists) {
			err = &inventory.ValidationError{Field: "item", Reason: "an item with this name already exists here"}
		}
	}
	if err != nil {
		return invalid(ctx, cur, err, reprompt)
	}
	next := Dialog{State: StateModifyItem, Storage: cur.Storage, Item: name}
	return next, Outcome{Mode: ModePrompt, Screen: view.PromptQuantity(cur.Storage, name, "")}, nil
}

func (e *Engine) textQuantity(ctx context.Context, pod string, cur Dialog, text string) (Dialog, Outcome, error) {
	reprompt := func(problem string) view.Screen { return view.PromptQuantity(cur.Storage, cur.Item, problem) }
	qty, err := inventory.ParseQuantity(text)
	if err != nil {
		return invalid(ctx, cur, err, reprompt)
	}
	if err := e.inv.SetQuantity(ctx, pod, cur.Storage, cur.Item, qty); err != nil {
		return cur, Outcome{}, err
	}
	next := Dialog{State: StateModifyItem2, Storage: cur.Storage, Item: cur.Item}
	return next, Outcome{Mode: ModePrompt, Screen: view.PromptExpiry(cur.Storage, cur.Item, "")}, nil
}

func (e *Engine) textExpiry(ctx context.Context, pod string, cur Dialog, text string) (Dialog, Outcome, error) {
	reprompt := func(problem string) view.Screen { return view.PromptExpiry(cur.Storage, cur.Item, problem) }
	date, err := inventory.ParseDate(text)
	if err != nil {
		return invalid(ctx, cur, err, reprompt)
	}
	if err := e.inv.SetExpiry(ctx, pod, cur.Storage, cur.Item, date); err != nil {
		return cur, Outcome{}, err
	}
	d, err := e.inv.Item(ctx, pod, cur.Storage, cur.Item)
	if err != nil {
		return cur, Outcome{}, err
	}
	screen := view.ItemDetail(pod, d, callback.OriginList, e.inv.Today()).WithNotice(view.ItemSaved(cur.Item))
	return Idle(), Outcome{Mode: ModeSend, Screen: screen}, nil
}
