package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/storefront/internal/stock"
)

const reportKey = "inventory:report"

// DefaultReportTTL bounds report staleness; mutations also invalidate
// eagerly, so in practice a cached report rarely lives this long.
const DefaultReportTTL = 30 * time.Second

// ReportCache keeps the rendered inventory report in Redis. All failures
// are soft: callers fall through to rebuilding the report from the store.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &ReportCache{client: client, ttl: ttl}
}

// Get returns the cached report, or false on miss or error.
func (c *ReportCache) Get(ctx context.Context) (*stock.Report, bool) {
	data, err := c.client.Get(ctx, reportKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[Cache] Failed to read inventory report: %v", err)
		}
		return nil, false
	}

	var report stock.Report
	if err := json.Unmarshal(data, &report); err != nil {
		log.Printf("[Cache] Corrupt cached inventory report, dropping: %v", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return &report, true
}

// Set stores a freshly built report.
func (c *ReportCache) Set(ctx context.Context, report *stock.Report) {
	data, err := json.Marshal(report)
	if err != nil {
		log.Printf("[Cache] Failed to marshal inventory report: %v", err)
		return
	}
	if err := c.client.Set(ctx, reportKey, data, c.ttl).Err(); err != nil {
		log.Printf("[Cache] Failed to cache inventory report: %v", err)
	}
}

// Invalidate drops the cached report after a stock mutation.
func (c *ReportCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, reportKey).Err(); err != nil {
		log.Printf("[Cache] Failed to invalidate inventory report: %v", err)
	}
}
