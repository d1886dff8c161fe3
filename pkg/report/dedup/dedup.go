// Package dedup suppresses duplicate failure reports. Retried tests and
// keyword-level retry loops can fire the same assertion failure several times
// within one build; only the first occurrence is worth a row.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper answers whether a failure fingerprint was already reported.
type Deduper interface {
	// Seen records the fingerprint and reports whether it had been recorded
	// before within the suppression window.
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Close() error
}

// Fingerprint derives the suppression key for a failure: same build, same
// test, same error text collapse to one record.
func Fingerprint(buildID, testName, errorMessage string) string {
	h := sha256.New()
	h.Write([]byte(buildID))
	h.Write([]byte{0})
	h.Write([]byte(testName))
	h.Write([]byte{0})
	h.Write([]byte(errorMessage))
	return hex.EncodeToString(h.Sum(nil))
}

// Redis implements Deduper with SETNX + TTL, so state self-cleans and no
// cross-process coordination beyond Redis itself is needed.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultTTL covers one nightly build comfortably.
const DefaultTTL = 6 * time.Hour

func NewRedis(addr, password string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &Redis{client: rdb, ttl: ttl}
}

func (r *Redis) Seen(ctx context.Context, fingerprint string) (bool, error) {
	set, err := r.client.SetNX(ctx, "failure_dedup:"+fingerprint, 1, r.ttl).Result()
	if err != nil {
		return false, err
	}
	// SETNX succeeded -> first sighting.
	return !set, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
