package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/carebridge/carebridge-backend/internal/platform/envutil"
	"github.com/carebridge/carebridge-backend/internal/platform/logger"
)

// DrugInfoCache memoizes drug lookups. Drug facts change slowly and
// the upstream knowledge model is the most expensive call in the
// pipeline, so even a short TTL pays for itself.
type DrugInfoCache interface {
	Get(ctx context.Context, drugName string) (DrugInfo, bool)
	Set(ctx context.Context, drugName string, info DrugInfo)
	Close() error
}

type redisDrugInfoCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewDrugInfoCache connects to Redis from the environment. A missing
// REDIS_ADDR returns (nil, nil): caching is optional, not required.
func NewDrugInfoCache(log *logger.Logger) (DrugInfoCache, error) {
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil, nil
	}

	ttl := time.Duration(envutil.Int("DRUG_INFO_CACHE_TTL_SECONDS", 24*3600)) * time.Second

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisDrugInfoCache{
		log: log.With("service", "DrugInfoCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(drugName string) string {
	return "druginfo:" + strings.ToLower(strings.TrimSpace(drugName))
}

func (c *redisDrugInfoCache) Get(ctx context.Context, drugName string) (DrugInfo, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(drugName)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("drug info cache read failed", "error", err)
		}
		return DrugInfo{}, false
	}
	var info DrugInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		c.log.Warn("drug info cache entry corrupt, ignoring", "error", err)
		return DrugInfo{}, false
	}
	return info, true
}

func (c *redisDrugInfoCache) Set(ctx context.Context, drugName string, info DrugInfo) {
	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(drugName), raw, c.ttl).Err(); err != nil {
		c.log.Warn("drug info cache write failed", "error", err)
	}
}

func (c *redisDrugInfoCache) Close() error {
	return c.rdb.Close()
}
