package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"casetrail/internal/domain"
	"casetrail/internal/semantic"
	"casetrail/pkg/platform/sentinel"
)

// VerdictCache memoizes validated oracle verdicts in redis. The context
// builder is deterministic, so the SHA-256 of the context text is a stable
// key: an unchanged case never needs a second remote call inside the TTL.
// Only validated verdicts go in; raw oracle output is never cached.
type VerdictCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewVerdictCache(rdb *redis.Client, ttl time.Duration) *VerdictCache {
	return &VerdictCache{rdb: rdb, ttl: ttl}
}

// Find returns the cached verdict for a context, sentinel.ErrNotFound on a
// miss, or an error wrapping sentinel.ErrUnavailable when redis is unreachable.
func (c *VerdictCache) Find(ctx context.Context, sc semantic.Context) (*domain.Verdict, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(sc)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("verdict cache get: %w: %v", sentinel.ErrUnavailable, err)
	}

	var v domain.Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

// Save stores a validated verdict under the context's key.
func (c *VerdictCache) Save(ctx context.Context, sc semantic.Context, v domain.Verdict) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("verdict cache marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(sc), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("verdict cache set: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func cacheKey(sc semantic.Context) string {
	sum := sha256.Sum256([]byte(sc.Text))
	return "casetrail:verdict:" + hex.EncodeToString(sum[:])
}
