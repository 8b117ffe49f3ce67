// File path: internal/workorder/orchestrator.go
package workorder

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/jmcardoso/fieldops/internal/cache"
	"github.com/jmcardoso/fieldops/internal/common"
	"github.com/jmcardoso/fieldops/internal/common/telemetry"
	"github.com/jmcardoso/fieldops/internal/portal"
)

const defaultHistoryLimit = 20

// Phase is the externally visible state of the lookup flow.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseFetching   Phase = "fetching"
	PhaseExtracting Phase = "extracting"
	PhaseCaching    Phase = "caching"
	PhaseDone       Phase = "done"
	PhaseError      Phase = "error"
)

var workOrderID = regexp.MustCompile(`^\d{8}$`)

// Result is a completed lookup: the record plus whether the cache answered.
type Result struct {
	Record Record `json:"record"`
	Cached bool   `json:"cached"`
}

// Orchestrator coordinates cache lookup, upstream fetch, extraction, cache
// write and the history projection. At most one lookup is in flight at a
// time; a concurrent second call fails fast with ErrLookupInFlight.
type Orchestrator struct {
	store  *cache.Store
	client portal.Client

	mu           sync.Mutex
	busy         bool
	phase        Phase
	historyLimit int
}

// Option adjusts orchestrator construction.
type Option func(*Orchestrator)

// WithHistoryLimit caps the history projection.
func WithHistoryLimit(limit int) Option {
	return func(o *Orchestrator) {
		if limit > 0 {
			o.historyLimit = limit
		}
	}
}

// New wires the orchestrator to its cache store and portal client.
func New(store *cache.Store, client portal.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:        store,
		client:       client,
		phase:        PhaseIdle,
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Phase reports the current lookup phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

// Lookup resolves a work order: cache first, then exactly one upstream fetch
// on a miss. Validation failures and upstream failures end the flow in the
// error phase; a cache write failure does not — the freshly computed record
// is still delivered.
func (o *Orchestrator) Lookup(ctx context.Context, id string, creds portal.Credentials) (*Result, error) {
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, ErrLookupInFlight
	}
	o.busy = true
	o.phase = PhaseValidating
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.busy = false
		o.mu.Unlock()
	}()

	logger := common.Logger()
	ctx, done := telemetry.StartSpan(ctx, "workorder.lookup")
	defer done("id", id)

	id = strings.TrimSpace(id)
	if err := validate(id, creds); err != nil {
		o.setPhase(PhaseError)
		telemetry.RecordLookupError("validation")
		return nil, err
	}

	if blob, ok := o.store.Get(id); ok {
		var rec Record
		if err := json.Unmarshal(blob, &rec); err == nil {
			o.setPhase(PhaseDone)
			telemetry.RecordLookup(true)
			logger.Debug("workorder: cache hit", "id", id)
			return &Result{Record: rec, Cached: true}, nil
		}
		// Undecodable cached record: treat as a miss and recompute.
		logger.Warn("workorder: cached record undecodable, refetching", "id", id)
	}

	o.setPhase(PhaseFetching)
	alloc, err := o.client.Allocate(ctx, id, creds)
	if err != nil {
		o.setPhase(PhaseError)
		telemetry.RecordLookupError("upstream")
		logger.Warn("workorder: fetch failed", "id", id, "error", err)
		return nil, err
	}

	o.setPhase(PhaseExtracting)
	rec := NewRecord(id, alloc)

	o.setPhase(PhaseCaching)
	if blob, err := json.Marshal(rec); err != nil {
		logger.Error("workorder: record encode failed, skipping cache write", "id", id, "error", err)
	} else {
		// Best effort; the store already logged any backend fault.
		_ = o.store.Put(id, blob)
	}

	o.setPhase(PhaseDone)
	telemetry.RecordLookup(false)
	logger.Info("workorder: lookup complete", "id", id, "service_type", rec.ServiceType)
	return &Result{Record: rec, Cached: false}, nil
}

// History projects the cache store: non-expired records, most recently
// written first, capped. It is derived and non-authoritative.
func (o *Orchestrator) History() []Record {
	ids := o.store.ListRecent(o.historyLimit)
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		blob, ok := o.store.Get(id)
		if !ok {
			continue
		}
		var rec Record
		if err := json.Unmarshal(blob, &rec); err != nil {
			common.Logger().Warn("workorder: history entry undecodable", "id", id, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

func validate(id string, creds portal.Credentials) error {
	if id == "" {
		return &ValidationError{Reason: "work order id required"}
	}
	if !workOrderID.MatchString(id) {
		return &ValidationError{Reason: "work order id must be 8 digits"}
	}
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return &ValidationError{Reason: "portal credentials missing"}
	}
	return nil
}
