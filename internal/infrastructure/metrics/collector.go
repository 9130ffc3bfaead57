package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/monban-project/monban/pkg/cache"
	"github.com/monban-project/monban/pkg/cache/memorycache"
)

// Collector collects and aggregates metrics for the application.
type Collector struct {
	// Authorization metrics
	decisions sync.Map // map[string]*uint64 - "resource:action:decision" -> count
	filtered  sync.Map // map[string]*uint64 - resource -> dropped element count

	// HTTP metrics
	httpRequests sync.Map // map[string]*uint64 - route -> count
	httpErrors   sync.Map // map[string]*uint64 - route -> error count
	httpDuration sync.Map // map[string]*durationValue - route -> total duration in seconds

	// Cache reference (optional, for querying cache-specific metrics)
	cache cache.Cache
}

// durationValue holds duration with mutex for thread-safe updates.
type durationValue struct {
	mu           sync.Mutex
	totalSeconds float64
}

// CacheMetrics holds object cache performance metrics.
type CacheMetrics struct {
	Hits        uint64
	Misses      uint64
	HitRate     float64
	KeysCurrent int64
	MemoryBytes int64
	Evictions   uint64
}

// AuthorizationMetrics holds authorization decision metrics.
type AuthorizationMetrics struct {
	DecisionCounts map[string]uint64 // "resource:action:decision" -> count
	FilteredCounts map[string]uint64 // resource -> dropped element count
}

// HTTPMetrics holds HTTP request metrics.
type HTTPMetrics struct {
	RequestCounts        map[string]uint64
	ErrorCounts          map[string]uint64
	TotalDurationSeconds map[string]float64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetCache sets the cache instance for collecting cache metrics.
func (c *Collector) SetCache(cache cache.Cache) {
	c.cache = cache
}

// RecordDecision records the outcome of one authorization check.
func (c *Collector) RecordDecision(resource, action string, allowed bool) {
	counter := c.getOrCreateCounter(&c.decisions, decisionKey(resource, action, allowed))
	atomic.AddUint64(counter, 1)
}

// RecordFiltered records elements dropped from a collection result.
func (c *Collector) RecordFiltered(resource string, removed int) {
	if removed <= 0 {
		return
	}
	counter := c.getOrCreateCounter(&c.filtered, resource)
	atomic.AddUint64(counter, uint64(removed))
}

// RecordRequest records an HTTP request.
func (c *Collector) RecordRequest(route string) {
	counter := c.getOrCreateCounter(&c.httpRequests, route)
	atomic.AddUint64(counter, 1)
}

// RecordError records an HTTP error response.
func (c *Collector) RecordError(route string) {
	counter := c.getOrCreateCounter(&c.httpErrors, route)
	atomic.AddUint64(counter, 1)
}

// RecordDuration records the duration of an HTTP request in seconds.
func (c *Collector) RecordDuration(route string, durationSeconds float64) {
	val, _ := c.httpDuration.LoadOrStore(route, &durationValue{})
	dv := val.(*durationValue)

	dv.mu.Lock()
	dv.totalSeconds += durationSeconds
	dv.mu.Unlock()
}

// GetCacheMetrics returns current object cache metrics.
func (c *Collector) GetCacheMetrics() *CacheMetrics {
	if c.cache == nil {
		return &CacheMetrics{}
	}

	metrics := c.cache.Metrics()
	if metrics == nil {
		return &CacheMetrics{}
	}

	result := &CacheMetrics{
		Hits:      metrics.Hits,
		Misses:    metrics.Misses,
		HitRate:   metrics.HitRate(),
		Evictions: metrics.KeysEvicted,
	}

	if memCache, ok := c.cache.(*memorycache.Cache); ok {
		result.KeysCurrent = int64(memCache.Len())
		result.MemoryBytes = memCache.Size()
	}

	return result
}

// GetAuthorizationMetrics returns current authorization metrics.
func (c *Collector) GetAuthorizationMetrics() *AuthorizationMetrics {
	result := &AuthorizationMetrics{
		DecisionCounts: make(map[string]uint64),
		FilteredCounts: make(map[string]uint64),
	}

	c.decisions.Range(func(key, value interface{}) bool {
		result.DecisionCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})
	c.filtered.Range(func(key, value interface{}) bool {
		result.FilteredCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})

	return result
}

// GetHTTPMetrics returns current HTTP metrics.
func (c *Collector) GetHTTPMetrics() *HTTPMetrics {
	result := &HTTPMetrics{
		RequestCounts:        make(map[string]uint64),
		ErrorCounts:          make(map[string]uint64),
		TotalDurationSeconds: make(map[string]float64),
	}

	c.httpRequests.Range(func(key, value interface{}) bool {
		result.RequestCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})
	c.httpErrors.Range(func(key, value interface{}) bool {
		result.ErrorCounts[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})
	c.httpDuration.Range(func(key, value interface{}) bool {
		dv := value.(*durationValue)
		dv.mu.Lock()
		result.TotalDurationSeconds[key.(string)] = dv.totalSeconds
		dv.mu.Unlock()
		return true
	})

	return result
}

// getOrCreateCounter gets or creates a counter for the given key.
func (c *Collector) getOrCreateCounter(m *sync.Map, key string) *uint64 {
	val, _ := m.LoadOrStore(key, new(uint64))
	return val.(*uint64)
}

func decisionKey(resource, action string, allowed bool) string {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	if action == "" {
		action = "*"
	}
	return fmt.Sprintf("%s:%s:%s", resource, action, decision)
}
