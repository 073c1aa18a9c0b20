// Package inventory defines the Food Pod data model and the storage contract
// shared by every backend, plus the expiry queries built on top of it.
package inventory

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a pod, storage or item does not exist.
	ErrNotFound = errors.New("inventory: not found")
	// ErrExists is returned when a storage or item name is already taken.
	ErrExists = errors.New("inventory: already exists")
)

// DialogNone is the command name and argument of a pod with no open dialog.
const DialogNone = "none"

// PendingDialog is the persisted per-pod dialog record.
type PendingDialog struct {
	Name string
	Arg  string
}

// IdleDialog returns the default record {"none","none"}.
func IdleDialog() PendingDialog {
	return PendingDialog{Name: DialogNone, Arg: DialogNone}
}

// Store is the key-value backed repository of pods, storages and items.
// Each method is a single logical operation; no method spans pods.
type Store interface {
	// RegisterPod adds pod to the registry and reports whether it was already there.
	RegisterPod(ctx context.Context, pod string) (existed bool, err error)
	IsPodRegistered(ctx context.Context, pod string) (bool, error)
	Pods(ctx context.Context) ([]string, error)

	// PendingDialog returns IdleDialog for pods that never stored one.
	PendingDialog(ctx context.Context, pod string) (PendingDialog, error)
	SetPendingDialog(ctx context.Context, pod string, d PendingDialog) error

	AddStorage(ctx context.Context, pod, name string) error
	Storages(ctx context.Context, pod string) ([]string, error)
	// DeleteStorage removes every item of the storage, then the storage itself.
	DeleteStorage(ctx context.Context, pod, name string) error

	// AddItem creates the item with quantity 0 and SentinelExpiry.
	AddItem(ctx context.Context, pod, storage, name string) error
	DeleteItem(ctx context.Context, pod, storage, name string) error
	Items(ctx context.Context, pod, storage string) ([]string, error)
	ItemCount(ctx context.Context, pod, storage string) (int, error)

	Quantity(ctx context.Context, pod, storage, item string) (int, error)
	SetQuantity(ctx context.Context, pod, storage, item string, qty int) error
	Expiry(ctx context.Context, pod, storage, item string) (time.Time, error)
	SetExpiry(ctx context.Context, pod, storage, item string, date time.Time) error

	// Info returns a human readable backend description. When the backend
	// cannot be reached it returns BackendUnavailableMessage and the error.
	Info(ctx context.Context) (string, error)
	Close() error
}

// BackendUnavailableMessage is shown to users when the backend cannot be reached.
const BackendUnavailableMessage = "🚨 Error contacting the database backend"
