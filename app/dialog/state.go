// Package dialog is the per-pod conversation state machine: it maps the
// pending dialog plus a button press or text message to the next dialog, the
// store mutation and the screen to show.
package dialog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/foodpod-bot/foodpod/app/inventory"
)

// State is what the pod's next event is interpreted against.
type State int

const (
	// StateIdle has no open dialog; text is ignored.
	StateIdle State = iota
	// StateBrowse is viewing one storage.
	StateBrowse
	// StateCheck is viewing the expired or expiring list of the pod.
	StateCheck
	// StateNewStorage waits for a storage name.
	StateNewStorage
	// StateNewItem waits for an item name.
	StateNewItem
	// StateModifyItem waits for a quantity.
	StateModifyItem
	// StateModifyItem2 waits for an expiry date.
	StateModifyItem2
)

var stateNames = [...]string{
	StateIdle:        inventory.DialogNone,
	StateBrowse:      "browse",
	StateCheck:       "check",
	StateNewStorage:  "new_storage",
	StateNewItem:     "new_item",
	StateModifyItem:  "modify_item",
	StateModifyItem2: "modify_item2",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Dialog is a state with its typed payload.
type Dialog struct {
	State   State
	Storage string
	Item    string
}

// Idle is the initial dialog of every pod.
func Idle() Dialog { return Dialog{State: StateIdle} }

// Browse is the dialog of a pod looking at storage.
func Browse(storage string) Dialog { return Dialog{State: StateBrowse, Storage: storage} }

const argSep = "@"

// ErrBadRecord is returned for persisted dialogs that cannot be interpreted.
var ErrBadRecord = errors.New("dialog: unreadable pending dialog")

// Record converts d to the persisted Name/Arg form.
func (d Dialog) Record() inventory.PendingDialog {
	arg := inventory.DialogNone
	switch d.State {
	case StateIdle, StateCheck, StateNewStorage:
	case StateBrowse, StateNewItem:
		arg = d.Storage
	case StateModifyItem, StateModifyItem2:
		arg = d.Storage + argSep + d.Item
	}
	return inventory.PendingDialog{Name: d.State.String(), Arg: arg}
}

// ParseRecord is the inverse of Record.
func ParseRecord(p inventory.PendingDialog) (Dialog, error) {
	state := State(-1)
	for i, name := range stateNames {
		if name == p.Name {
			state = State(i)
			break
		}
	}
	switch state {
	case StateIdle, StateCheck, StateNewStorage:
		return Dialog{State: state}, nil
	case StateBrowse, StateNewItem:
		if p.Arg == "" || p.Arg == inventory.DialogNone {
			break
		}
		return Dialog{State: state, Storage: p.Arg}, nil
	case StateModifyItem, StateModifyItem2:
		storage, item, ok := strings.Cut(p.Arg, argSep)
		if !ok || storage == "" || item == "" {
			break
		}
		return Dialog{State: state, Storage: storage, Item: item}, nil
	}
	return Dialog{}, fmt.Errorf("%w: %q/%q", ErrBadRecord, p.Name, p.Arg)
}
