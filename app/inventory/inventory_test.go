package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodpod-bot/foodpod/app/inventory"
	"github.com/foodpod-bot/foodpod/app/inventory/memstore"
)

const pod = "-1001"

func fixedClock(day string) func() time.Time {
	d, err := time.Parse(inventory.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return d.Add(10 * time.Hour) }
}

func newInventory(t *testing.T, today string) *inventory.Inventory {
	t.Helper()
	return inventory.New(memstore.New(), inventory.WithClock(fixedClock(today)), inventory.WithLocation(time.UTC))
}

// seedItem creates storage (if needed) and an item with the given quantity and expiry.
func seedItem(t *testing.T, inv *inventory.Inventory, storage, item string, qty int, expiry string) {
	t.Helper()
	ctx := context.Background()
	if err := inv.AddStorage(ctx, pod, storage); err != nil && !errors.Is(err, inventory.ErrExists) {
		t.Fatalf("add storage: %v", err)
	}
	if err := inv.AddItem(ctx, pod, storage, item); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := inv.SetQuantity(ctx, pod, storage, item, qty); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	d, err := inventory.ParseDate(expiry)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := inv.SetExpiry(ctx, pod, storage, item, d); err != nil {
		t.Fatalf("set expiry: %v", err)
	}
}

func TestExpiredItemsSortedAndSkipEmpty(t *testing.T) {
	inv := newInventory(t, "2024-05-10")
	seedItem(t, inv, "Fridge", "Milk", 1, "2024-05-08")
	seedItem(t, inv, "Fridge", "Eggs", 0, "2024-04-01")
	seedItem(t, inv, "Fridge", "Cheese", 3, "2024-05-01")
	seedItem(t, inv, "Fridge", "Butter", 2, "2024-05-10")
	seedItem(t, inv, "Fridge", "Ham", 2, "2024-05-09")

	got, err := inv.ExpiredItems(context.Background(), pod, "Fridge")
	if err != nil {
		t.Fatalf("expired: %v", err)
	}
	want := []inventory.ExpiredItem{{"Cheese", 9}, {"Milk", 2}, {"Ham", 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExpiringOrBadItemsWindow(t *testing.T) {
	inv := newInventory(t, "2024-05-10")
	seedItem(t, inv, "Fridge", "Milk", 1, "2024-05-10")
	seedItem(t, inv, "Fridge", "Yogurt", 1, "2024-05-12")
	seedItem(t, inv, "Fridge", "Jam", 1, "2024-05-13")
	seedItem(t, inv, "Pantry", "Rice", 1, "2024-05-07")
	seedItem(t, inv, "Pantry", "Flour", 0, "2024-05-07")

	got, err := inv.ExpiringOrBadItems(context.Background(), pod)
	if err != nil {
		t.Fatalf("bad items: %v", err)
	}
	want := []inventory.BadItem{
		{Name: "Rice", Storage: "Pantry", DaysExpired: 3},
		{Name: "Milk", Storage: "Fridge", DaysExpired: 0},
		{Name: "Yogurt", Storage: "Fridge", DaysExpired: -2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExpiryTodayBoundary(t *testing.T) {
	inv := newInventory(t, "2024-05-10")
	seedItem(t, inv, "Fridge", "Milk", 1, "2024-05-10")
	ctx := context.Background()

	expired, err := inv.ExpiredItems(ctx, pod, "Fridge")
	if err != nil {
		t.Fatalf("expired: %v", err)
	}
	if len(expired) != 0 {
		t.Fatalf("item expiring today must not be expired, got %v", expired)
	}
	bad, err := inv.ExpiringOrBadItems(ctx, pod)
	if err != nil {
		t.Fatalf("bad items: %v", err)
	}
	if len(bad) != 1 || bad[0].DaysExpired != 0 {
		t.Fatalf("expected Milk with 0 days, got %v", bad)
	}
}

func TestTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2024, 5, 10, 22, 0, 0, 0, time.UTC)
	inv := inventory.New(memstore.New(), inventory.WithClock(func() time.Time { return now }), inventory.WithLocation(loc))
	if got := inventory.FormatDate(inv.Today()); got != "2024-05-11" {
		t.Fatalf("expected 2024-05-11, got %s", got)
	}
}

func TestClearExpired(t *testing.T) {
	inv := newInventory(t, "2024-05-10")
	seedItem(t, inv, "Fridge", "Milk", 1, "2024-05-08")
	seedItem(t, inv, "Fridge", "Cheese", 3, "2024-05-11")
	ctx := context.Background()

	n, err := inv.ClearExpired(ctx, pod, "Fridge")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 cleared item, got %d", n)
	}
	if qty, _ := inv.Quantity(ctx, pod, "Fridge", "Milk"); qty != 0 {
		t.Fatalf("expected Milk cleared, got %d", qty)
	}
	if qty, _ := inv.Quantity(ctx, pod, "Fridge", "Cheese"); qty != 3 {
		t.Fatalf("expected Cheese untouched, got %d", qty)
	}
	if expired, _ := inv.ExpiredItems(ctx, pod, "Fridge"); len(expired) != 0 {
		t.Fatalf("expected no expired items after clear, got %v", expired)
	}
}

func TestNewItemDefaults(t *testing.T) {
	inv := newInventory(t, "2024-05-10")
	ctx := context.Background()
	if err := inv.AddStorage(ctx, pod, "Fridge"); err != nil {
		t.Fatalf("add storage: %v", err)
	}
	if err := inv.AddItem(ctx, pod, "Fridge", "Milk"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	d, err := inv.Item(ctx, pod, "Fridge", "Milk")
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if d.Quantity != 0 || !d.Expiry.Equal(inventory.SentinelExpiry) {
		t.Fatalf("unexpected defaults: %+v", d)
	}
}
