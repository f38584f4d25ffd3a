package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGroups stores each group as a Redis hash next to a generation counter. Dropping a
// group bumps the counter and deletes the hash in one transaction; writes go through a script
// that checks the counter first. The hash expires ttl after its last write.
type RedisGroups struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// setIfCurrent writes ARGV[2]=ARGV[3] into the hash KEYS[2] when the counter KEYS[1] (absent
// means 0) still equals ARGV[1].
var setIfCurrent = redis.NewScript(`
local cur = redis.call("GET", KEYS[1]) or "0"
if cur ~= ARGV[1] then
	return 0
end
redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
redis.call("PEXPIRE", KEYS[2], ARGV[4])
return 1
`)

// NewRedisClient parses url (with or without the redis:// scheme) and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if !strings.Contains(url, "://") {
		url = "redis://" + url
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisGroups(client *redis.Client, prefix string, ttl time.Duration) *RedisGroups {
	return &RedisGroups{client: client, prefix: prefix, ttl: ttl}
}

func (g *RedisGroups) hashKey(group string) string {
	return g.prefix + "data:" + group
}

func (g *RedisGroups) genKey(group string) string {
	return g.prefix + "gen:" + group
}

// genTTL outlives every hash, so a counter never resets while a value it guards is stored.
func (g *RedisGroups) genTTL() time.Duration {
	if d := 2 * g.ttl; d > 24*time.Hour {
		return d
	}
	return 24 * time.Hour
}

func (g *RedisGroups) Get(ctx context.Context, group, key string) ([]byte, bool) {
	val, err := g.client.HGet(ctx, g.hashKey(group), key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "Redis cache read failed", "component", "cache", "error", err)
		}
		return nil, false
	}
	return val, true
}

func (g *RedisGroups) Generation(ctx context.Context, group string) (uint64, bool) {
	gen, err := g.client.Get(ctx, g.genKey(group)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		slog.WarnContext(ctx, "Redis cache generation read failed", "component", "cache", "error", err)
		return 0, false
	}
	return gen, true
}

func (g *RedisGroups) Set(ctx context.Context, group, key string, gen uint64, value []byte) {
	keys := []string{g.genKey(group), g.hashKey(group)}
	err := setIfCurrent.Run(ctx, g.client, keys,
		strconv.FormatUint(gen, 10), key, value, g.ttl.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.WarnContext(ctx, "Redis cache write failed", "component", "cache", "error", err)
	}
}

func (g *RedisGroups) DropGroup(ctx context.Context, group string) {
	gk := g.genKey(group)
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, gk)
		pipe.Expire(ctx, gk, g.genTTL())
		pipe.Del(ctx, g.hashKey(group))
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Redis cache invalidation failed", "component", "cache", "group", group, "error", err)
	}
}

func (g *RedisGroups) Close() error {
	return g.client.Close()
}
