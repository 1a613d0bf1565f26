package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Preferences are kept for a year past last write; a viewer who has
// not embedded a player in that long starts fresh.
const redisTTL = 365 * 24 * time.Hour

// Redis scopes keys by viewer id so every browser profile keeps its
// own caption and volume preferences. Failures degrade to the zero
// value: a Redis outage means default preferences, not a dead player.
type Redis struct {
	client *redis.Client
	viewer string
}

// NewRedis opens a client against addr and verifies connectivity. On
// failure it returns nil and logs a warning; callers fall back to
// Memory.
func NewRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("persist: redis unavailable, preferences will not survive restarts", "addr", addr, "error", err)
		client.Close()
		return nil
	}
	return client
}

// ForViewer returns a Store writing under the given viewer id.
func ForViewer(client *redis.Client, viewerID string) *Redis {
	return &Redis{client: client, viewer: viewerID}
}

func (r *Redis) key(k string) string {
	return "viewer:" + r.viewer + ":" + k
}

func (r *Redis) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		slog.Warn("persist: redis get failed", "key", key, "error", err)
		return "", false
	}
	return v, true
}

func (r *Redis) Set(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), value, redisTTL).Err(); err != nil {
		slog.Warn("persist: redis set failed", "key", key, "error", err)
	}
}

func (r *Redis) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		slog.Warn("persist: redis delete failed", "key", key, "error", err)
	}
}
