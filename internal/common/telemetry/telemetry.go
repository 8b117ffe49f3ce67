// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"sync"
	"time"

	"github.com/jmcardoso/fieldops/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	lookupTotal     *expvar.Int
	lookupCacheHits *expvar.Int
	lookupErrors    *expvar.Map

	upstreamCallTotal *expvar.Int
	upstreamLatencyMS *expvar.Int

	cacheFaultTotal *expvar.Map
)

func ensureInit() {
	initOnce.Do(func() {
		lookupTotal = expvar.NewInt("fieldops_lookup_total")
		lookupCacheHits = expvar.NewInt("fieldops_lookup_cache_hits")
		lookupErrors = expvar.NewMap("fieldops_lookup_errors")

		upstreamCallTotal = expvar.NewInt("fieldops_upstream_calls_total")
		upstreamLatencyMS = expvar.NewInt("fieldops_upstream_latency_ms")

		cacheFaultTotal = expvar.NewMap("fieldops_cache_faults")
	})
}

// RecordLookup counts a completed lookup and whether the cache answered it.
func RecordLookup(cacheHit bool) {
	ensureInit()
	lookupTotal.Add(1)
	if cacheHit {
		lookupCacheHits.Add(1)
	}
}

// RecordLookupError counts a failed lookup by error kind.
func RecordLookupError(kind string) {
	ensureInit()
	if kind == "" {
		kind = "unknown"
	}
	lookupErrors.Add(kind, 1)
}

// RecordUpstreamCall accumulates allocation-endpoint call counts and latency.
func RecordUpstreamCall(duration time.Duration) {
	ensureInit()
	upstreamCallTotal.Add(1)
	upstreamLatencyMS.Add(duration.Milliseconds())
}

// RecordCacheFault counts a swallowed storage failure by operation.
func RecordCacheFault(op string) {
	ensureInit()
	if op == "" {
		op = "unknown"
	}
	cacheFaultTotal.Add(op, 1)
}

// StartSpan logs span boundaries at debug level and returns a completion
// callback accepting extra attributes.
func StartSpan(ctx context.Context, name string) (context.Context, func(attrs ...interface{})) {
	ensureInit()
	sp := &span{name: name, start: time.Now()}
	ctx = context.WithValue(ctx, spanKey{}, sp)
	logger := common.Logger()
	logger.Debug("trace: start", "span", name)
	return ctx, func(attrs ...interface{}) {
		duration := time.Since(sp.start)
		logger.Debug("trace: end", append([]interface{}{"span", name, "dur", duration}, attrs...)...)
	}
}
