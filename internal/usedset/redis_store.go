package usedset

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps per-session usage in a Redis set, shared across process
// instances and surviving restarts. Redis set commands are atomic, so no
// additional locking is needed here.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "tarot:used:",
	}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) Used(ctx context.Context, sessionID string) (map[int]struct{}, error) {
	members, err := r.client.SMembers(ctx, r.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("usedset: smembers: %w", err)
	}

	out := make(map[int]struct{}, len(members))
	for _, m := range members {
		idx, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("usedset: non-integer member %q for session %s", m, sessionID)
		}
		out[idx] = struct{}{}
	}
	return out, nil
}

func (r *RedisStore) Add(ctx context.Context, sessionID string, index int) error {
	if err := r.client.SAdd(ctx, r.key(sessionID), index).Err(); err != nil {
		return fmt.Errorf("usedset: sadd: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("usedset: del: %w", err)
	}
	return nil
}
