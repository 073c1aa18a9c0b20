// Package storetest holds the behaviour every inventory.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/foodpod-bot/foodpod/app/inventory"
)

// Factory returns an empty store; cleanup is registered on t.
type Factory func(t *testing.T) inventory.Store

// Run exercises the Store contract against a fresh store per subtest.
func Run(t *testing.T, newStore Factory) {
	t.Run("RegisterPodIdempotent", func(t *testing.T) { testRegisterPod(t, newStore(t)) })
	t.Run("PendingDialog", func(t *testing.T) { testPendingDialog(t, newStore(t)) })
	t.Run("StorageOrderAndUniqueness", func(t *testing.T) { testStorages(t, newStore(t)) })
	t.Run("DeleteStorageCascades", func(t *testing.T) { testDeleteStorage(t, newStore(t)) })
	t.Run("Items", func(t *testing.T) { testItems(t, newStore(t)) })
	t.Run("PodsAreIsolated", func(t *testing.T) { testIsolation(t, newStore(t)) })
	t.Run("Info", func(t *testing.T) { testInfo(t, newStore(t)) })
	t.Run("ReservedNamesRejected", func(t *testing.T) { testReservedNames(t, newStore(t)) })
}

func testRegisterPod(t *testing.T, s inventory.Store) {
	ctx := context.Background()
	existed, err := s.RegisterPod(ctx, "42")
	if err != nil || existed {
		t.Fatalf("first register: existed=%v err=%v", existed, err)
	}
	existed, err = s.RegisterPod(ctx, "42")
	if err != nil || !existed {
		t.Fatalf("second register: existed=%v err=%v", existed, err)
	}
	pods, err := s.Pods(ctx)
	if err != nil {
		t.Fatalf("pods: %v", err)
	}
	if len(pods) != 1 || pods[0] != "42" {
		t.Fatalf("expected exactly one pod, got %v", pods)
	}
	ok, err := s.IsPodRegistered(ctx, "42")
	if err != nil || !ok {
		t.Fatalf("expected registered pod, got %v (%v)", ok, err)
	}
	ok, _ = s.IsPodRegistered(ctx, "43")
	if ok {
		t.Fatalf("unknown pod reported as registered")
	}
}

func testPendingDialog(t *testing.T, s inventory.Store) {
	ctx := context.Background()
	d, err := s.PendingDialog(ctx, "42")
	if err != nil {
		t.Fatalf("pending dialog: %v", err)
	}
	if d != inventory.IdleDialog() {
		t.Fatalf("expected idle default, got %+v", d)
	}
	want := inventory.PendingDialog{Name: "modify_item", Arg: "Fridge@Milk"}
	if err := s.SetPendingDialog(ctx, "42", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	if d, _ = s.PendingDialog(ctx, "42"); d != want {
		t.Fatalf("expected %+v, got %+v", want, d)
	}
}

func testStorages(t *testing.T, s inventory.Store) {
	ctx := context.Background()
	names := []string{"Fridge", "Pantry", "Freezer", "Attic"}
	for _, n := range names {
		if err := s.AddStorage(ctx, "42", n); err != nil {
			t.Fatalf("add %s: %v", n, err)
		}
	}
	if err := s.AddStorage(ctx, "42", "Pantry"); !errors.Is(err, inventory.ErrExists) {
		t.Fatalf("expected ErrExists for duplicate, got %v", err)
	}
	got, err := s.Storages(ctx, "42")
	if err != nil {
		t.Fatalf("storages: %v", err)
	}
	if !slices.Equal(got, names) {
		t.Fatalf("expected %v, got %v", names, got)
	}
}

func testDeleteStorage(t *testing.T, s inventory.Store) {
	ctx := context.Background()
	for _, n := range []string{"Fridge", "Pantry"} {
		if err := s.AddStorage(ctx, "42", n); err != nil {
			t.Fatalf("add storage: %v", err)
		}
	}
	for _, item := range []string{"Milk", "Eggs", "Butter"} {
		if err := s.AddItem(ctx, "42", "Fridge", item); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	if err := s.AddItem(ctx, "42", "Pantry", "Rice"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := s.DeleteStorage(ctx, "42", "Fridge"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, err := s.Items(ctx, "42", "Fridge")
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items after delete, got %v", items)
	}
	if _, err := s.Quantity(ctx, "42", "Fridge", "Milk"); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("expected item record removed, got %v", err)
	}
	storages, _ := s.Storages(ctx, "42")
	if !slices.Equal(storages, []string{"Pantry"}) {
		t.Fatalf("expected [Pantry], got %v", storages)
	}
	if n, _ := s.ItemCount(ctx, "42", "Pantry"); n != 1 {
		t.Fatalf("sibling storage touched: %d items", n)
	}
	if err := s.DeleteStorage(ctx, "42", "Fridge"); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	// A recreated storage starts empty.
	if err := s.AddStorage(ctx, "42", "Fridge"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if n, _ := s.ItemCount(ctx, "42", "Fridge"); n != 0 {
		t.Fatalf("expected empty recreated storage, got %d", n)
	}
}

func testItems(t *testing.T, s inventory.Store) {
	ctx := context.Background()
	if err := s.AddItem(ctx, "42", "Fridge", "Milk"); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing storage, got %v", err)
	}
	if err := s.AddStorage(ctx, "42", "Fridge"); err != nil {
		t.Fatalf("add storage: %v", err)
	}
	for _, item := range []string{"Milk", "Eggs", "Butter"} {
		if err := s.AddItem(ctx, "42", "Fridge", item); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	if err := s.AddItem(ctx, "42", "Fridge", "Eggs"); !errors.Is(err, inventory.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	qty, err := s.Quantity(ctx, "42", "Fridge", "Milk")
	if err != nil || qty != 0 {
		t.Fatalf("expected default quantity 0, got %d (%v)", qty, err)
	}
	exp, err := s.Expiry(ctx, "42", "Fridge", "Milk")
	if err != nil || !exp.Equal(inventory.SentinelExpiry) {
		t.Fatalf("expected sentinel expiry, got %v (%v)", exp, err)
	}
	if err := s.SetQuantity(ctx, "42", "Fridge", "Milk", 2); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	want := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.SetExpiry(ctx, "42", "Fridge", "Milk", want); err != nil {
		t.Fatalf("set expiry: %v", err)
	}
	if qty, _ = s.Quantity(ctx, "42", "Fridge", "Milk"); qty != 2 {
		t.Fatalf("expected 2, got %d", qty)
	}
	if exp, _ = s.Expiry(ctx, "42", "Fridge", "Milk"); !exp.Equal(want) {
		t.Fatalf("expected %v, got %v", want, exp)
	}
	if err := s.SetQuantity(ctx, "42", "Fridge", "Bread", 1); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown item, got %v", err)
	}
	if err := s.DeleteItem(ctx, "42", "Fridge", "Eggs"); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	items, _ := s.Items(ctx, "42", "Fridge")
	if !slices.Equal(items, []string{"Milk", "Butter"}) {
		t.Fatalf("expected [Milk Butter], got %v", items)
	}
	if n, _ := s.ItemCount(ctx, "42", "Fridge"); n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
	if err := s.DeleteItem(ctx, "42", "Fridge", "Eggs"); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testIsolation(t *testing.T, s inventory.Store) {
	ctx := context.Background()
	if err := s.AddStorage(ctx, "1", "Fridge"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddStorage(ctx, "2", "Fridge"); err != nil {
		t.Fatalf("same name in another pod must be allowed: %v", err)
	}
	if err := s.AddItem(ctx, "1", "Fridge", "Milk"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if n, _ := s.ItemCount(ctx, "2", "Fridge"); n != 0 {
		t.Fatalf("pods share items: %d", n)
	}
}

func testInfo(t *testing.T, s inventory.Store) {
	info, err := s.Info(context.Background())
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info == "" || info == inventory.BackendUnavailableMessage {
		t.Fatalf("unexpected info %q", info)
	}
}

func testReservedNames(t *testing.T, s inventory.Store) {
	ctx := context.Background()
	if err := s.AddStorage(ctx, "42", "Fridge"); err != nil {
		t.Fatalf("add storage: %v", err)
	}
	if err := s.AddItem(ctx, "42", "Fridge", "Milk"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	for _, name := range []string{"item_list", "storage_list", "global_command"} {
		var ve *inventory.ValidationError
		if err := s.AddItem(ctx, "42", "Fridge", name); !errors.As(err, &ve) {
			t.Fatalf("item %q: expected ValidationError, got %v", name, err)
		}
		if err := s.AddStorage(ctx, "42", name); !errors.As(err, &ve) {
			t.Fatalf("storage %q: expected ValidationError, got %v", name, err)
		}
	}
	items, err := s.Items(ctx, "42", "Fridge")
	if err != nil || !slices.Equal(items, []string{"Milk"}) {
		t.Fatalf("items = %v (%v)", items, err)
	}
	if _, err := s.Quantity(ctx, "42", "Fridge", "Milk"); err != nil {
		t.Fatalf("quantity after rejected names: %v", err)
	}
	storages, err := s.Storages(ctx, "42")
	if err != nil || !slices.Equal(storages, []string{"Fridge"}) {
		t.Fatalf("storages = %v (%v)", storages, err)
	}
}
