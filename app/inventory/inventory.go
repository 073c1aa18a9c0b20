package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ExpiringWindowDays is how far ahead ExpiringOrBadItems looks.
const ExpiringWindowDays = 2

// ExpiredItem is an entry of a single storage's expired list.
type ExpiredItem struct {
	Name        string
	DaysExpired int
}

// BadItem is an expired or soon-to-expire item found across a pod.
type BadItem struct {
	Name        string
	Storage     string
	DaysExpired int
}

// ItemDetail is a snapshot of one item record.
type ItemDetail struct {
	Storage  string
	Name     string
	Quantity int
	Expiry   time.Time
}

// Inventory adds the date-aware queries to a Store. All comparisons use
// the configured location, never a per-item timezone.
type Inventory struct {
	Store
	now func() time.Time
	loc *time.Location
}

// Option customises an Inventory.
type Option func(*Inventory)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(inv *Inventory) {
		if now != nil {
			inv.now = now
		}
	}
}

// WithLocation sets the timezone that defines "today".
func WithLocation(loc *time.Location) Option {
	return func(inv *Inventory) {
		if loc != nil {
			inv.loc = loc
		}
	}
}

// New wraps store.
func New(store Store, opts ...Option) *Inventory {
	inv := &Inventory{Store: store, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Location returns the timezone used for date comparisons.
func (inv *Inventory) Location() *time.Location {
	return inv.loc
}

// Today returns the current civil date in the configured location.
func (inv *Inventory) Today() time.Time {
	return CivilDate(inv.now(), inv.loc)
}

// Item loads quantity and expiry of one item.
func (inv *Inventory) Item(ctx context.Context, pod, storage, item string) (ItemDetail, error) {
	qty, err := inv.Quantity(ctx, pod, storage, item)
	if err != nil {
		return ItemDetail{}, err
	}
	exp, err := inv.Expiry(ctx, pod, storage, item)
	if err != nil {
		return ItemDetail{}, err
	}
	return ItemDetail{Storage: storage, Name: item, Quantity: qty, Expiry: exp}, nil
}

// ItemDetails loads every item of storage in list order.
func (inv *Inventory) ItemDetails(ctx context.Context, pod, storage string) ([]ItemDetail, error) {
	names, err := inv.Items(ctx, pod, storage)
	if err != nil {
		return nil, err
	}
	out := make([]ItemDetail, 0, len(names))
	for _, name := range names {
		d, err := inv.Item(ctx, pod, storage, name)
		if err != nil {
			return nil, fmt.Errorf("item %s/%s: %w", storage, name, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// ExpiredItems lists items of storage with quantity > 0 whose expiry is
// strictly before today, most overdue first.
func (inv *Inventory) ExpiredItems(ctx context.Context, pod, storage string) ([]ExpiredItem, error) {
	details, err := inv.ItemDetails(ctx, pod, storage)
	if err != nil {
		return nil, err
	}
	today := inv.Today()
	var out []ExpiredItem
	for _, d := range details {
		days := DaysExpired(today, d.Expiry)
		if d.Quantity > 0 && days > 0 {
			out = append(out, ExpiredItem{Name: d.Name, DaysExpired: days})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysExpired > out[j].DaysExpired })
	return out, nil
}

// ExpiringOrBadItems lists items across every storage of pod with quantity > 0
// that are expired or expire within ExpiringWindowDays, most overdue first.
func (inv *Inventory) ExpiringOrBadItems(ctx context.Context, pod string) ([]BadItem, error) {
	storages, err := inv.Storages(ctx, pod)
	if err != nil {
		return nil, err
	}
	today := inv.Today()
	var out []BadItem
	for _, storage := range storages {
		details, err := inv.ItemDetails(ctx, pod, storage)
		if err != nil {
			return nil, err
		}
		for _, d := range details {
			days := DaysExpired(today, d.Expiry)
			if d.Quantity > 0 && days >= -ExpiringWindowDays {
				out = append(out, BadItem{Name: d.Name, Storage: storage, DaysExpired: days})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysExpired > out[j].DaysExpired })
	return out, nil
}

// ClearExpired sets the quantity of every expired item of storage to 0 and
// returns how many items were cleared.
func (inv *Inventory) ClearExpired(ctx context.Context, pod, storage string) (int, error) {
	expired, err := inv.ExpiredItems(ctx, pod, storage)
	if err != nil {
		return 0, err
	}
	for _, e := range expired {
		if err := inv.SetQuantity(ctx, pod, storage, e.Name, 0); err != nil {
			return 0, fmt.Errorf("clear %s/%s: %w", storage, e.Name, err)
		}
	}
	return len(expired), nil
}
