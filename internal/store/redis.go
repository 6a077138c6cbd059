package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortn/internal/shortener"
)

const idTakenReply = "IDTAKEN"

// upsertScript assigns ARGV[1] to url ARGV[2] over two hashes:
// KEYS[1] maps id -> url and KEYS[2] maps url -> id.
var upsertScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], ARGV[1])
if current and current ~= ARGV[2] then
	return redis.error_reply('` + idTakenReply + ` id already assigned')
end
local old = redis.call('HGET', KEYS[2], ARGV[2])
if old then
	redis.call('HDEL', KEYS[1], old)
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('HSET', KEYS[2], ARGV[2], ARGV[1])
return ARGV[1]
`)

// RedisStore is a Redis implementation of shortener.Store.
type RedisStore struct {
	client *redis.Client
	idsKey string // hash: id -> url
	urlKey string // hash: url -> id
	opts   Options
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client, opts Options) *RedisStore {
	return &RedisStore{
		client: client,
		idsKey: "links:ids",
		urlKey: "links:urls",
		opts:   opts,
	}
}

// EnsureSchema verifies connectivity; Redis needs no provisioning.
func (r *RedisStore) EnsureSchema(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return shortener.E("store.RedisStore.EnsureSchema", shortener.KindStoreUnavailable, err)
	}

	return nil
}

func (r *RedisStore) Put(ctx context.Context, url string) (shortener.ID, error) {
	return shortener.Assign(ctx, "store.RedisStore.Put", r.opts.NewID, r.opts.IDRetries, url, r.upsert)
}

func (r *RedisStore) upsert(ctx context.Context, id shortener.ID, url string) (shortener.ID, error) {
	assigned, err := upsertScript.Run(ctx, r.client, []string{r.idsKey, r.urlKey}, string(id), url).Text()
	if err != nil {
		if strings.HasPrefix(err.Error(), idTakenReply) {
			return "", fmt.Errorf("id %q: %w", id, shortener.ErrIDCollision)
		}

		return "", err
	}

	return shortener.ID(assigned), nil
}

func (r *RedisStore) Get(ctx context.Context, id shortener.ID) (string, error) {
	const op = "store.RedisStore.Get"

	url, err := r.client.HGet(ctx, r.idsKey, string(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", shortener.E(op, shortener.KindNotFound, err)
		}

		return "", shortener.E(op, shortener.KindStoreUnavailable, err)
	}

	return url, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Compile-time check.
var _ shortener.Store = (*RedisStore)(nil)
