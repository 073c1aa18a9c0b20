package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// UpgradeLegacy converts a pod registry written as a list into the set the
// store reads. It reports how many list entries were moved; zero means the
// key was already a set or absent. The conversion runs under WATCH so a
// concurrent writer makes it fail instead of losing a registration.
func (s *Store) UpgradeLegacy(ctx context.Context) (int, error) {
	moved := 0
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		kind, err := tx.Type(ctx, podsKey).Result()
		if err != nil {
			return err
		}
		if kind != "list" {
			return nil
		}
		pods, err := tx.LRange(ctx, podsKey, 0, -1).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, podsKey)
			if len(pods) > 0 {
				members := make([]any, len(pods))
				for i, pod := range pods {
					members[i] = pod
				}
				p.SAdd(ctx, podsKey, members...)
			}
			return nil
		})
		if err == nil {
			moved = len(pods)
		}
		return err
	}, podsKey)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, fmt.Errorf("upgrade pod registry: %s changed during conversion", podsKey)
	}
	if err != nil {
		return 0, fmt.Errorf("upgrade pod registry: %w", err)
	}
	return moved, nil
}
