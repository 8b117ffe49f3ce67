// File path: internal/cache/store.go
package cache

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jmcardoso/fieldops/internal/common"
	"github.com/jmcardoso/fieldops/internal/common/telemetry"
)

// Entry is the persisted envelope around one cached record. Timestamps are
// epoch milliseconds; the JSON field names match the durable layout the
// dashboard has always written.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Expira    int64           `json:"expira"`
}

// Store is the keyed TTL cache for work-order records. Expiry is enforced
// lazily on read; nothing sweeps in the background. All mutations persist the
// whole blob through the backend, best effort: a backend fault is logged and
// counted but never propagated into the lookup flow.
type Store struct {
	mu      sync.Mutex
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	entries map[string]Entry
}

// Option adjusts store construction.
type Option func(*Store)

// WithClock overrides the time source, used by tests to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore loads the persisted blob through the backend and builds the
// in-memory index. A missing or corrupt blob degrades to an empty store.
func NewStore(backend Backend, ttl time.Duration, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("cache backend required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		backend: backend,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	logger := common.Logger()
	blob, err := backend.Load()
	if err != nil {
		logger.Warn("cache: load failed, starting empty", "error", err)
		telemetry.RecordCacheFault("load")
		return s, nil
	}
	if len(blob) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(blob, &s.entries); err != nil {
		logger.Warn("cache: corrupt blob discarded", "error", err)
		telemetry.RecordCacheFault("decode")
		s.entries = make(map[string]Entry)
	}
	return s, nil
}

// TTL reports the configured entry lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached record for the id. An entry past its expiry is
// deleted on the spot and reported as absent.
func (s *Store) Get(id string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if s.now().UnixMilli() >= entry.Expira {
		delete(s.entries, id)
		s.persistLocked()
		return nil, false
	}
	return entry.Data, true
}

// Put creates or overwrites the entry for the id with a fresh expiry and
// persists the whole store. The returned error is the backend fault, already
// logged; callers are free to ignore it.
func (s *Store) Put(id string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nowMS := s.now().UnixMilli()
	s.entries[id] = Entry{
		Data:      data,
		Timestamp: nowMS,
		Expira:    nowMS + s.ttl.Milliseconds(),
	}
	return s.persistLocked()
}

// ListRecent returns the ids of non-expired entries, most recently written
// first, truncated to limit. Expired entries touched during the listing are
// purged as a side effect.
func (s *Store) ListRecent(limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	nowMS := s.now().UnixMilli()
	purged := false
	ids := make([]string, 0, len(s.entries))
	for id, entry := range s.entries {
		if nowMS >= entry.Expira {
			delete(s.entries, id)
			purged = true
			continue
		}
		ids = append(ids, id)
	}
	if purged {
		s.persistLocked()
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.entries[ids[i]], s.entries[ids[j]]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		return ids[i] < ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// Len reports the number of entries currently indexed, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) persistLocked() error {
	blob, err := json.Marshal(s.entries)
	if err != nil {
		common.Logger().Error("cache: encode failed", "error", err)
		telemetry.RecordCacheFault("encode")
		return err
	}
	if err := s.backend.Save(blob); err != nil {
		common.Logger().Warn("cache: save failed", "error", err)
		telemetry.RecordCacheFault("save")
		return err
	}
	return nil
}
