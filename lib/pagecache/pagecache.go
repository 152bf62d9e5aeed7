// Package pagecache stores fetched pages so repeated scrapes within a short
// window do not hit the site again.
package pagecache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"fightstats-backend/lib/telemetry"

	"github.com/redis/go-redis/v9"
)

const (
	report_cache_get = "pagecache.get"
	report_cache_set = "pagecache.set"
)

// Cache is a best-effort page store, failures are reported and treated as misses.
type Cache interface {
	Get(ctx context.Context, url string) ([]byte, bool)
	Set(ctx context.Context, url string, page []byte)
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool) {
	return nil, false
}

func (Nop) Set(context.Context, string, []byte) {}

type Config struct {
	// Addr is the redis address, an empty address disables the cache.
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// Prefix defaults to "fightstats:page:".
	Prefix string `json:"prefix"`
	// TTL in seconds, defaults to 6 hours.
	TTL int `json:"ttl"`
}

type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	tel    telemetry.API
}

// NewRedis connects to the configured redis server.
func NewRedis(ctx context.Context, config Config, tel telemetry.API) (*Redis, error) {
	if config.Prefix == "" {
		config.Prefix = "fightstats:page:"
	}
	ttl := time.Duration(config.TTL) * time.Second
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err),
			rdb.Close(),
		)
	}

	return &Redis{
		rdb:    rdb,
		prefix: config.Prefix,
		ttl:    ttl,
		tel:    tel,
	}, nil
}

// Open returns a Redis cache when an address is configured and Nop otherwise.
func Open(ctx context.Context, config Config, tel telemetry.API) (Cache, func() error, error) {
	if config.Addr == "" {
		return Nop{}, func() error { return nil }, nil
	}
	cache, err := NewRedis(ctx, config, tel)
	if err != nil {
		return nil, nil, err
	}
	return cache, cache.Close, nil
}

func (r *Redis) key(url string) string {
	sum := sha1.Sum([]byte(url))
	return r.prefix + hex.EncodeToString(sum[:])
}

func (r *Redis) Get(ctx context.Context, url string) ([]byte, bool) {
	page, err := r.rdb.Get(ctx, r.key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.tel.ReportWarning(report_cache_get, url, err)
		return nil, false
	}
	return page, true
}

func (r *Redis) Set(ctx context.Context, url string, page []byte) {
	err := r.rdb.Set(ctx, r.key(url), page, r.ttl).Err()
	if err != nil {
		r.tel.ReportWarning(report_cache_set, url, err)
	}
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
