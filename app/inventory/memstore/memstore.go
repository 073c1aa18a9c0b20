// Package memstore is an in-process inventory.Store for development and tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/foodpod-bot/foodpod/app/inventory"
)

type storageKey struct{ pod, storage string }

type itemKey struct{ pod, storage, item string }

type record struct {
	quantity int
	expiry   time.Time
}

// Store keeps everything in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	pods     []string
	dialogs  map[string]inventory.PendingDialog
	storages map[string][]string
	items    map[storageKey][]string
	records  map[itemKey]record
}

var _ inventory.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		dialogs:  make(map[string]inventory.PendingDialog),
		storages: make(map[string][]string),
		items:    make(map[storageKey][]string),
		records:  make(map[itemKey]record),
	}
}

func (s *Store) RegisterPod(_ context.Context, pod string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.pods, pod) {
		return true, nil
	}
	s.pods = append(s.pods, pod)
	return false, nil
}

func (s *Store) IsPodRegistered(_ context.Context, pod string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.pods, pod), nil
}

func (s *Store) Pods(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.pods), nil
}

func (s *Store) PendingDialog(_ context.Context, pod string) (inventory.PendingDialog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.dialogs[pod]; ok {
		return d, nil
	}
	return inventory.IdleDialog(), nil
}

func (s *Store) SetPendingDialog(_ context.Context, pod string, d inventory.PendingDialog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogs[pod] = d
	return nil
}

func (s *Store) AddStorage(_ context.Context, pod, name string) error {
	if err := inventory.ValidateName("storage", name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.storages[pod], name) {
		return fmt.Errorf("storage %q: %w", name, inventory.ErrExists)
	}
	s.storages[pod] = append(s.storages[pod], name)
	return nil
}

func (s *Store) Storages(_ context.Context, pod string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.storages[pod]), nil
}

func (s *Store) DeleteStorage(_ context.Context, pod, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.Index(s.storages[pod], name)
	if idx < 0 {
		return fmt.Errorf("storage %q: %w", name, inventory.ErrNotFound)
	}
	sk := storageKey{pod, name}
	for _, item := range s.items[sk] {
		delete(s.records, itemKey{pod, name, item})
	}
	delete(s.items, sk)
	s.storages[pod] = slices.Delete(s.storages[pod], idx, idx+1)
	return nil
}

func (s *Store) AddItem(_ context.Context, pod, storage, name string) error {
	if err := inventory.ValidateName("item", name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.storages[pod], storage) {
		return fmt.Errorf("storage %q: %w", storage, inventory.ErrNotFound)
	}
	sk := storageKey{pod, storage}
	if slices.Contains(s.items[sk], name) {
		return fmt.Errorf("item %q: %w", name, inventory.ErrExists)
	}
	s.items[sk] = append(s.items[sk], name)
	s.records[itemKey{pod, storage, name}] = record{expiry: inventory.SentinelExpiry}
	return nil
}

func (s *Store) DeleteItem(_ context.Context, pod, storage, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk := storageKey{pod, storage}
	idx := slices.Index(s.items[sk], name)
	if idx < 0 {
		return fmt.Errorf("item %q: %w", name, inventory.ErrNotFound)
	}
	s.items[sk] = slices.Delete(s.items[sk], idx, idx+1)
	delete(s.records, itemKey{pod, storage, name})
	return nil
}

func (s *Store) Items(_ context.Context, pod, storage string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items[storageKey{pod, storage}]), nil
}

func (s *Store) ItemCount(_ context.Context, pod, storage string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items[storageKey{pod, storage}]), nil
}

func (s *Store) record(pod, storage, item string) (record, error) {
	r, ok := s.records[itemKey{pod, storage, item}]
	if !ok {
		return record{}, fmt.Errorf("item %q: %w", item, inventory.ErrNotFound)
	}
	return r, nil
}

func (s *Store) Quantity(_ context.Context, pod, storage, item string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.record(pod, storage, item)
	return r.quantity, err
}

func (s *Store) SetQuantity(_ context.Context, pod, storage, item string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.record(pod, storage, item)
	if err != nil {
		return err
	}
	r.quantity = qty
	s.records[itemKey{pod, storage, item}] = r
	return nil
}

func (s *Store) Expiry(_ context.Context, pod, storage, item string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.record(pod, storage, item)
	return r.expiry, err
}

func (s *Store) SetExpiry(_ context.Context, pod, storage, item string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.record(pod, storage, item)
	if err != nil {
		return err
	}
	r.expiry = inventory.CivilDate(date, nil)
	s.records[itemKey{pod, storage, item}] = r
	return nil
}

func (s *Store) Info(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("memory backend: %d pods, %d items", len(s.pods), len(s.records)), nil
}

func (s *Store) Close() error { return nil }
