// Package redisstore implements inventory.Store on Redis lists, sets and hashes.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foodpod-bot/foodpod/app/inventory"
	"github.com/foodpod-bot/foodpod/core/logger"
)

// Store is the Redis backend. Every method issues single-key commands, or one
// MULTI/EXEC batch where a record spans several keys.
type Store struct {
	rdb *redis.Client
}

var _ inventory.Store = (*Store)(nil)

// New wraps an already configured client; Close closes it.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) RegisterPod(ctx context.Context, pod string) (bool, error) {
	added, err := s.rdb.SAdd(ctx, podsKey, pod).Result()
	if err != nil {
		return false, fmt.Errorf("register pod: %w", err)
	}
	return added == 0, nil
}

func (s *Store) IsPodRegistered(ctx context.Context, pod string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, podsKey, pod).Result()
	if err != nil {
		return false, fmt.Errorf("check pod: %w", err)
	}
	return ok, nil
}

func (s *Store) Pods(ctx context.Context) ([]string, error) {
	pods, err := s.rdb.SMembers(ctx, podsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	slices.Sort(pods)
	return pods, nil
}

func (s *Store) PendingDialog(ctx context.Context, pod string) (inventory.PendingDialog, error) {
	vals, err := s.rdb.HMGet(ctx, dialogKey(pod), fieldName, fieldArg).Result()
	if err != nil {
		return inventory.PendingDialog{}, fmt.Errorf("get dialog: %w", err)
	}
	d := inventory.IdleDialog()
	if name, ok := vals[0].(string); ok && name != "" {
		d.Name = name
	}
	if arg, ok := vals[1].(string); ok && arg != "" {
		d.Arg = arg
	}
	return d, nil
}

func (s *Store) SetPendingDialog(ctx context.Context, pod string, d inventory.PendingDialog) error {
	if err := s.rdb.HSet(ctx, dialogKey(pod), fieldName, d.Name, fieldArg, d.Arg).Err(); err != nil {
		return fmt.Errorf("set dialog: %w", err)
	}
	return nil
}

func (s *Store) AddStorage(ctx context.Context, pod, name string) error {
	if err := inventory.ValidateName("storage", name); err != nil {
		return err
	}
	list, err := s.Storages(ctx, pod)
	if err != nil {
		return err
	}
	if slices.Contains(list, name) {
		return fmt.Errorf("storage %q: %w", name, inventory.ErrExists)
	}
	if err := s.rdb.RPush(ctx, storageListKey(pod), name).Err(); err != nil {
		return fmt.Errorf("add storage: %w", err)
	}
	return nil
}

func (s *Store) Storages(ctx context.Context, pod string) ([]string, error) {
	list, err := s.rdb.LRange(ctx, storageListKey(pod), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list storages: %w", err)
	}
	return list, nil
}

func (s *Store) DeleteStorage(ctx context.Context, pod, name string) error {
	list, err := s.Storages(ctx, pod)
	if err != nil {
		return err
	}
	if !slices.Contains(list, name) {
		return fmt.Errorf("storage %q: %w", name, inventory.ErrNotFound)
	}
	items, err := s.Items(ctx, pod, name)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(items)+1)
	for _, item := range items {
		keys = append(keys, itemKey(pod, name, item))
	}
	keys = append(keys, itemListKey(pod, name))

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		p.LRem(ctx, storageListKey(pod), 0, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	logger.Debug(ctx, "store", "store.storage.delete",
		slog.String("storage", name),
		slog.Int("items", len(items)),
	)
	return nil
}

func (s *Store) AddItem(ctx context.Context, pod, storage, name string) error {
	if err := inventory.ValidateName("item", name); err != nil {
		return err
	}
	list, err := s.Storages(ctx, pod)
	if err != nil {
		return err
	}
	if !slices.Contains(list, storage) {
		return fmt.Errorf("storage %q: %w", storage, inventory.ErrNotFound)
	}
	items, err := s.Items(ctx, pod, storage)
	if err != nil {
		return err
	}
	if slices.Contains(items, name) {
		return fmt.Errorf("item %q: %w", name, inventory.ErrExists)
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, itemListKey(pod, storage), name)
		p.HSet(ctx, itemKey(pod, storage, name),
			fieldQuantity, 0,
			fieldExpire, inventory.FormatDate(inventory.SentinelExpiry),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, pod, storage, name string) error {
	var removed *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		removed = p.LRem(ctx, itemListKey(pod, storage), 0, name)
		p.Del(ctx, itemKey(pod, storage, name))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("item %q: %w", name, inventory.ErrNotFound)
	}
	return nil
}

func (s *Store) Items(ctx context.Context, pod, storage string) ([]string, error) {
	list, err := s.rdb.LRange(ctx, itemListKey(pod, storage), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return list, nil
}

func (s *Store) ItemCount(ctx context.Context, pod, storage string) (int, error) {
	n, err := s.rdb.LLen(ctx, itemListKey(pod, storage)).Result()
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return int(n), nil
}

func (s *Store) field(ctx context.Context, pod, storage, item, field string) (string, error) {
	v, err := s.rdb.HGet(ctx, itemKey(pod, storage, item), field).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("item %q: %w", item, inventory.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", field, err)
	}
	return v, nil
}

func (s *Store) setField(ctx context.Context, pod, storage, item, field string, value any) error {
	key := itemKey(pod, storage, item)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	if n == 0 {
		return fmt.Errorf("item %q: %w", item, inventory.ErrNotFound)
	}
	if err := s.rdb.HSet(ctx, key, field, value).Err(); err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	return nil
}

func (s *Store) Quantity(ctx context.Context, pod, storage, item string) (int, error) {
	v, err := s.field(ctx, pod, storage, item, fieldQuantity)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("item %q: bad quantity %q: %w", item, v, err)
	}
	return n, nil
}

func (s *Store) SetQuantity(ctx context.Context, pod, storage, item string, qty int) error {
	return s.setField(ctx, pod, storage, item, fieldQuantity, qty)
}

func (s *Store) Expiry(ctx context.Context, pod, storage, item string) (time.Time, error) {
	v, err := s.field(ctx, pod, storage, item, fieldExpire)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(inventory.DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("item %q: bad expiry %q: %w", item, v, err)
	}
	return d, nil
}

func (s *Store) SetExpiry(ctx context.Context, pod, storage, item string, date time.Time) error {
	return s.setField(ctx, pod, storage, item, fieldExpire, inventory.FormatDate(date))
}

// Info reports the server address and key count. Connection failures are
// logged and turned into inventory.BackendUnavailableMessage.
func (s *Store) Info(ctx context.Context) (string, error) {
	opts := s.rdb.Options()
	keys, err := s.rdb.DBSize(ctx).Result()
	if err != nil {
		logger.Error(ctx, "redis", "redis.info",
			slog.String("status", "fail"),
			slog.String("addr", opts.Addr),
			slog.String("err", err.Error()),
		)
		return inventory.BackendUnavailableMessage, fmt.Errorf("redis info: %w", err)
	}
	pods, err := s.rdb.SCard(ctx, podsKey).Result()
	if err != nil {
		return inventory.BackendUnavailableMessage, fmt.Errorf("redis info: %w", err)
	}
	return fmt.Sprintf("🔧 Redis backend %s (db %d): %d keys, %d pods", opts.Addr, opts.DB, keys, pods), nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
