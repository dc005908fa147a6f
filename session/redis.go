package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-rental-storefront/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "storefront:session:"

// Cmdable is the part of the redis client the store uses.
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps sessions as JSON values. Each key expires maxAge after the
// session was created, or when the refresh token does if sooner, so refreshing
// an access token never extends the session.
type RedisStore struct {
	rdb    Cmdable
	maxAge time.Duration
	now    func() time.Time
}

func NewRedisStore(rdb Cmdable, maxAge time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, maxAge: maxAge, now: time.Now}
}

// ConnectRedis opens a client and pings it.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("[session ConnectRedis] failed to ping redis at %s: %w", addr, err)
	}
	log.Info().Str("address", addr).Int("db", db).Msg("redis session store connected")
	return rdb, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (State, error) {
	if id == "" {
		return State{}, ErrNotFound
	}
	data, err := r.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, apperrors.Wrapf(err, "[session RedisStore.Get] key %s", redisKeyPrefix+id)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("[session RedisStore.Get] failed to decode session: %w", err)
	}
	return state, nil
}

func (r *RedisStore) Upsert(ctx context.Context, id string, state State) error {
	if id == "" {
		return fmt.Errorf("[session RedisStore.Upsert] %w: empty session id", apperrors.ErrInvalidID)
	}

	ttl, alive := r.ttl(state)
	if !alive {
		return r.Delete(ctx, id)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("[session RedisStore.Upsert] failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+id, data, ttl).Err(); err != nil {
		return apperrors.Wrapf(err, "[session RedisStore.Upsert] key %s", redisKeyPrefix+id)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return apperrors.Wrapf(err, "[session RedisStore.Delete] key %s", redisKeyPrefix+id)
	}
	return nil
}

// ttl is the key expiry. A zero ttl with alive set means no expiry.
func (r *RedisStore) ttl(state State) (ttl time.Duration, alive bool) {
	return state.Remaining(r.now(), r.maxAge)
}
