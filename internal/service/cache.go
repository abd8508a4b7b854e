package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/commerce-admin/internal/model/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	storeCacheKey           = "commerce:store"
	storeCacheGenerationKey = "commerce:store:generation"
)

// StoreCache keeps the store aggregate in Redis. A nil client disables it;
// Redis failures are logged and treated as misses.
//
// Every Invalidate bumps a generation counter. A reader takes the generation
// before loading the store and Set only writes if it is unchanged, so a load
// that raced a committed change is never cached.
type StoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStoreCache caches entries for ttlSeconds.
func NewStoreCache(client *redis.Client, ttlSeconds int) *StoreCache {
	return &StoreCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func (c *StoreCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached store, or false on a miss.
func (c *StoreCache) Get(ctx context.Context) (*store.Store, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.client.Get(ctx, storeCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("store cache read failed")
		}
		return nil, false
	}

	var st store.Store
	if err := json.Unmarshal(raw, &st); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("discarding undecodable cached store")
		return nil, false
	}

	return &st, true
}

// Generation returns the current invalidation generation. ok is false when
// the cache is disabled or unreadable; Set must then be skipped.
func (c *StoreCache) Generation(ctx context.Context) (gen int64, ok bool) {
	if !c.enabled() {
		return 0, false
	}

	gen, err := c.client.Get(ctx, storeCacheGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("store cache generation read failed")
		return 0, false
	}
	return gen, true
}

// Set caches st if no invalidation happened since gen was read.
func (c *StoreCache) Set(ctx context.Context, st *store.Store, gen int64) {
	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(st)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("store cache encode failed")
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, storeCacheGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleStore
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, storeCacheKey, raw, c.ttl)
			return nil
		})
		return err
	}, storeCacheGenerationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleStore), errors.Is(err, redis.TxFailedErr):
		zerolog.Ctx(ctx).Debug().Msg("skipping cache write for a store changed since it was read")
	default:
		zerolog.Ctx(ctx).Warn().Err(err).Msg("store cache write failed")
	}
}

var errStaleStore = errors.New("store changed since it was read")

// Invalidate drops the cached store and bumps the generation.
func (c *StoreCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, storeCacheGenerationKey)
		pipe.Del(ctx, storeCacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidating store cache: %w", err)
	}
	return nil
}
