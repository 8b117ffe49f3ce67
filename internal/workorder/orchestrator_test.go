// File path: internal/workorder/orchestrator_test.go
package workorder

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jmcardoso/fieldops/internal/cache"
	"github.com/jmcardoso/fieldops/internal/portal"
)

type memoryBackend struct {
	blob      []byte
	saveCalls int
}

func (b *memoryBackend) Load() ([]byte, error) { return b.blob, nil }

func (b *memoryBackend) Save(blob []byte) error {
	b.saveCalls++
	b.blob = append([]byte(nil), blob...)
	return nil
}

type mockPortal struct {
	mu       sync.Mutex
	alloc    *portal.Allocation
	err      error
	calls    int
	blocking chan struct{}
}

func (m *mockPortal) Allocate(ctx context.Context, id string, creds portal.Credentials) (*portal.Allocation, error) {
	m.mu.Lock()
	m.calls++
	blocking := m.blocking
	m.mu.Unlock()
	if blocking != nil {
		<-blocking
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.alloc, nil
}

func (m *mockPortal) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var testCreds = portal.Credentials{Username: "tech1", Password: "pw"}

func sampleAllocation() *portal.Allocation {
	return &portal.Allocation{
		Descricao:       "Acesso: 123456789 Caixas: 2 Tipo Caixa: PDO mural Entrega Telefone: sim SLID: AB12CD",
		Endereco:        "[Rua X - - Lisboa]",
		Latitude:        38.72,
		Longitude:       -9.13,
		CorFibra:        "Fibra Azul Clara",
		TipoServico:     "instalacao",
		DataAgendamento: "2026-08-24",
		Horario:         "09:00-12:00",
		Estado:          "agendado",
	}
}

func newTestOrchestrator(t *testing.T, client portal.Client, clock *fakeClock) (*Orchestrator, *memoryBackend, *cache.Store) {
	t.Helper()
	backend := &memoryBackend{}
	store, err := cache.NewStore(backend, cache.DefaultTTL, cache.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return New(store, client), backend, store
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestLookupMissFetchesExtractsAndCaches(t *testing.T) {
	client := &mockPortal{alloc: sampleAllocation()}
	orch, backend, _ := newTestOrchestrator(t, client, newFakeClock())

	result, err := orch.Lookup(context.Background(), "12345678", testCreds)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if result.Cached {
		t.Fatal("first lookup must not be cached")
	}
	if client.callCount() != 1 {
		t.Fatalf("fetch count = %d, want 1", client.callCount())
	}
	if backend.saveCalls != 1 {
		t.Fatalf("cache writes = %d, want 1", backend.saveCalls)
	}
	rec := result.Record
	if rec.Address != "Rua X, Lisboa" {
		t.Fatalf("address = %q", rec.Address)
	}
	if rec.Access != "123456789" || rec.BoxCount != "2" || rec.BoxType != "PDO mural" {
		t.Fatalf("unexpected derived fields: %+v", rec)
	}
	if rec.SLID != "AB12CD" {
		t.Fatalf("slid = %q", rec.SLID)
	}
	if rec.FiberColor == nil || rec.FiberColor.Name != "azul" {
		t.Fatalf("fiber color = %+v", rec.FiberColor)
	}
	if orch.Phase() != PhaseDone {
		t.Fatalf("phase = %s", orch.Phase())
	}
}

func TestSecondLookupWithinTTLHitsCache(t *testing.T) {
	client := &mockPortal{alloc: sampleAllocation()}
	clock := newFakeClock()
	orch, _, _ := newTestOrchestrator(t, client, clock)

	first, err := orch.Lookup(context.Background(), "12345678", testCreds)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	clock.Advance(24 * time.Hour)
	second, err := orch.Lookup(context.Background(), "12345678", testCreds)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if !second.Cached {
		t.Fatal("second lookup must be served from cache")
	}
	if client.callCount() != 1 {
		t.Fatalf("fetch count = %d, want 1", client.callCount())
	}
	if !reflect.DeepEqual(first.Record, second.Record) {
		t.Fatalf("records differ:\n%+v\n%+v", first.Record, second.Record)
	}
}

func TestStaleEntryPurgedAndRefetched(t *testing.T) {
	client := &mockPortal{alloc: sampleAllocation()}
	clock := newFakeClock()
	orch, _, store := newTestOrchestrator(t, client, clock)

	if _, err := orch.Lookup(context.Background(), "12345678", testCreds); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	clock.Advance(cache.DefaultTTL)
	result, err := orch.Lookup(context.Background(), "12345678", testCreds)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if result.Cached {
		t.Fatal("stale entry must not be served")
	}
	if client.callCount() != 2 {
		t.Fatalf("fetch count = %d, want 2", client.callCount())
	}
	if store.Len() != 1 {
		t.Fatalf("store len = %d, want 1 fresh entry", store.Len())
	}
}

func TestUpstreamErrorLeavesCacheUnchanged(t *testing.T) {
	client := &mockPortal{err: &portal.UpstreamError{StatusCode: 200, Message: "not found"}}
	orch, backend, store := newTestOrchestrator(t, client, newFakeClock())

	_, err := orch.Lookup(context.Background(), "12345678", testCreds)
	var upstream *portal.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Message != "not found" {
		t.Fatalf("message = %q, want verbatim upstream message", upstream.Message)
	}
	if backend.saveCalls != 0 {
		t.Fatalf("cache writes = %d, want 0", backend.saveCalls)
	}
	if store.Len() != 0 {
		t.Fatalf("store len = %d, want 0", store.Len())
	}
	if orch.Phase() != PhaseError {
		t.Fatalf("phase = %s", orch.Phase())
	}
}

func TestValidationBlocksBeforeNetwork(t *testing.T) {
	cases := []struct {
		name  string
		id    string
		creds portal.Credentials
	}{
		{"empty id", "", testCreds},
		{"short id", "1234567", testCreds},
		{"non-numeric id", "1234567a", testCreds},
		{"missing username", "12345678", portal.Credentials{Password: "pw"}},
		{"missing password", "12345678", portal.Credentials{Username: "tech1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &mockPortal{alloc: sampleAllocation()}
			orch, _, _ := newTestOrchestrator(t, client, newFakeClock())
			_, err := orch.Lookup(context.Background(), tc.id, tc.creds)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if client.callCount() != 0 {
				t.Fatalf("fetch count = %d, want 0", client.callCount())
			}
		})
	}
}

func TestSecondLookupWhileInFlightIsRejected(t *testing.T) {
	release := make(chan struct{})
	client := &mockPortal{alloc: sampleAllocation(), blocking: release}
	orch, _, _ := newTestOrchestrator(t, client, newFakeClock())

	started := make(chan struct{})
	finished := make(chan error, 1)
	go func() {
		close(started)
		_, err := orch.Lookup(context.Background(), "12345678", testCreds)
		finished <- err
	}()
	<-started
	// Wait for the first lookup to reach the blocked fetch.
	for orch.Phase() != PhaseFetching {
		time.Sleep(time.Millisecond)
	}

	_, err := orch.Lookup(context.Background(), "87654321", testCreds)
	if !errors.Is(err, ErrLookupInFlight) {
		t.Fatalf("expected ErrLookupInFlight, got %v", err)
	}

	close(release)
	if err := <-finished; err != nil {
		t.Fatalf("first lookup: %v", err)
	}
}

func TestCacheWriteFailureStillDeliversRecord(t *testing.T) {
	client := &mockPortal{alloc: sampleAllocation()}
	backend := &failingBackend{}
	store, err := cache.NewStore(backend, cache.DefaultTTL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	orch := New(store, client)

	result, err := orch.Lookup(context.Background(), "12345678", testCreds)
	if err != nil {
		t.Fatalf("lookup must succeed despite cache write failure: %v", err)
	}
	if result.Record.Access != "123456789" {
		t.Fatalf("record = %+v", result.Record)
	}
	if orch.Phase() != PhaseDone {
		t.Fatalf("phase = %s", orch.Phase())
	}
}

type failingBackend struct{}

func (b *failingBackend) Load() ([]byte, error) { return nil, nil }

func (b *failingBackend) Save([]byte) error { return errors.New("quota exceeded") }

func TestHistoryProjectsRecentRecords(t *testing.T) {
	client := &mockPortal{alloc: sampleAllocation()}
	clock := newFakeClock()
	orch, _, _ := newTestOrchestrator(t, client, clock)

	for _, id := range []string{"10000001", "10000002", "10000003"} {
		if _, err := orch.Lookup(context.Background(), id, testCreds); err != nil {
			t.Fatalf("lookup %s: %v", id, err)
		}
		clock.Advance(time.Second)
	}
	history := orch.History()
	if len(history) != 3 {
		t.Fatalf("history len = %d", len(history))
	}
	if history[0].ID != "10000003" || history[2].ID != "10000001" {
		t.Fatalf("unexpected history order: %v, %v, %v", history[0].ID, history[1].ID, history[2].ID)
	}
}

func TestHistoryExcludesExpired(t *testing.T) {
	client := &mockPortal{alloc: sampleAllocation()}
	clock := newFakeClock()
	orch, _, _ := newTestOrchestrator(t, client, clock)

	if _, err := orch.Lookup(context.Background(), "10000001", testCreds); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	clock.Advance(cache.DefaultTTL)
	if history := orch.History(); len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}
}
