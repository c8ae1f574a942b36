package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/aggregator"
	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/exceptions"
	"portal_final_backend/internal/contacts/namelookup"
	"portal_final_backend/internal/contacts/normalize"
	"portal_final_backend/internal/contacts/ports"
	"portal_final_backend/internal/contacts/scheduler"
	"portal_final_backend/platform/logger"
)

// fakeStore is a minimal in-memory ports.Store: every raw contact gets its
// own fresh aggregate, since these tests only care about how many get
// processed and in what pending state, not about clustering.
type fakeStore struct {
	mu          sync.Mutex
	rawContacts map[uuid.UUID]domain.RawContact
	aggregates  map[uuid.UUID]domain.Aggregate
	org         uuid.UUID
}

func newFakeStore(org uuid.UUID) *fakeStore {
	return &fakeStore{
		rawContacts: make(map[uuid.UUID]domain.RawContact),
		aggregates:  make(map[uuid.UUID]domain.Aggregate),
		org:         org,
	}
}

func (s *fakeStore) addPending(n int) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		s.rawContacts[id] = domain.RawContact{ID: id, OrganizationID: s.org}
		ids = append(ids, id)
	}
	return ids
}

func (s *fakeStore) Begin(ctx context.Context) (ports.Tx, error) { return &fakeTx{s: s}, nil }

type fakeTx struct{ s *fakeStore }

func (t *fakeTx) Commit(ctx context.Context) error          { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error        { return nil }
func (t *fakeTx) YieldIfContended(ctx context.Context) error { return nil }
func (t *fakeTx) RawContacts() ports.RawContacts             { return &fakeRawContacts{s: t.s} }
func (t *fakeTx) DataRows() ports.DataRows                   { return &fakeDataRows{} }
func (t *fakeTx) Aggregates() ports.Aggregates                { return &fakeAggregates{s: t.s} }
func (t *fakeTx) NameLookup() ports.NameLookup               { return &fakeNameLookup{} }
func (t *fakeTx) Exceptions() exceptions.Store               { return &fakeExceptions{} }
func (t *fakeTx) PhoneIndex() ports.PhoneIndex               { return &fakePhoneIndex{} }
func (t *fakeTx) EmailIndex() ports.EmailIndex               { return &fakeEmailIndex{} }

type fakeRawContacts struct{ s *fakeStore }

func (r *fakeRawContacts) Get(ctx context.Context, id uuid.UUID) (domain.RawContact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.rawContacts[id], nil
}

func (r *fakeRawContacts) SetAggregateID(ctx context.Context, id uuid.UUID, aggregateID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rc := r.s.rawContacts[id]
	rc.AggregateID = &aggregateID
	r.s.rawContacts[id] = rc
	return nil
}

func (r *fakeRawContacts) ClearAggregateID(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rc := r.s.rawContacts[id]
	rc.AggregateID = nil
	r.s.rawContacts[id] = rc
	return nil
}

func (r *fakeRawContacts) Members(ctx context.Context, aggregateID uuid.UUID) ([]domain.RawContact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.RawContact
	for _, rc := range r.s.rawContacts {
		if rc.AggregateID != nil && *rc.AggregateID == aggregateID {
			out = append(out, rc)
		}
	}
	return out, nil
}

func (r *fakeRawContacts) PendingDefault(ctx context.Context, organizationID uuid.UUID) (ports.PendingCursor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []domain.RawContact
	for _, rc := range r.s.rawContacts {
		if rc.AggregateID == nil && rc.OrganizationID == organizationID {
			rows = append(rows, rc)
		}
	}
	return &fakeCursor{rows: rows, total: len(rows)}, nil
}

type fakeCursor struct {
	rows  []domain.RawContact
	pos   int
	total int
}

func (c *fakeCursor) Total() int { return c.total }
func (c *fakeCursor) Next(ctx context.Context) (domain.RawContact, bool, error) {
	if c.pos >= len(c.rows) {
		return domain.RawContact{}, false, nil
	}
	rc := c.rows[c.pos]
	c.pos++
	return rc, true, nil
}
func (c *fakeCursor) Close(ctx context.Context) error { return nil }

type fakeDataRows struct{}

// ForRawContact sleeps briefly as an artificial per-row store delay, so a
// pass over many raw contacts lasts long enough for Interrupt to land
// mid-pass.
func (r *fakeDataRows) ForRawContact(ctx context.Context, rawContactID uuid.UUID) ([]domain.DataRow, error) {
	time.Sleep(time.Millisecond)
	return nil, nil
}

type fakeAggregates struct{ s *fakeStore }

func (r *fakeAggregates) Get(ctx context.Context, id uuid.UUID) (domain.Aggregate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.aggregates[id], nil
}

func (r *fakeAggregates) Create(ctx context.Context, organizationID uuid.UUID) (domain.Aggregate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := domain.Aggregate{ID: uuid.New(), OrganizationID: organizationID}
	r.s.aggregates[a.ID] = a
	return a, nil
}

func (r *fakeAggregates) Update(ctx context.Context, agg domain.Aggregate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.aggregates[agg.ID] = agg
	return nil
}

func (r *fakeAggregates) DeleteIfEmpty(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rc := range r.s.rawContacts {
		if rc.AggregateID != nil && *rc.AggregateID == id {
			return nil
		}
	}
	delete(r.s.aggregates, id)
	return nil
}

type fakeNameLookup struct{}

func (r *fakeNameLookup) ReplaceForRawContact(ctx context.Context, rawContactID uuid.UUID, entries []namelookup.Entry) error {
	return nil
}
func (r *fakeNameLookup) MatchAggregated(ctx context.Context, organizationID uuid.UUID, names []string) ([]ports.MatchRow, error) {
	return nil, nil
}
func (r *fakeNameLookup) ExactType(ctx context.Context, organizationID uuid.UUID, name string, t namelookup.Type) ([]ports.MatchRow, error) {
	return nil, nil
}

type fakeExceptions struct{}

func (r *fakeExceptions) ForRawContact(ctx context.Context, rawContactID uuid.UUID) ([]exceptions.Exception, error) {
	return nil, nil
}

type fakePhoneIndex struct{}

func (r *fakePhoneIndex) Lookup(ctx context.Context, organizationID uuid.UUID, e164 string) ([]ports.AggregatedHit, error) {
	return nil, nil
}

type fakeEmailIndex struct{}

func (r *fakeEmailIndex) Lookup(ctx context.Context, organizationID uuid.UUID, address string) ([]ports.AggregatedHit, error) {
	return nil, nil
}

func TestScheduler_AggregateContactTxJoinsCallerOwnedTransaction(t *testing.T) {
	org := uuid.New()
	store := newFakeStore(org)
	ids := store.addPending(1)

	agg := aggregator.New(aggregator.Thresholds{Primary: 28, Secondary: 20, Suggest: 10}, normalize.DefaultNicknameClusters)
	sch := scheduler.New(store, agg, nil, logger.New("test"), time.Hour, org)

	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	aggID, err := sch.AggregateContactTx(context.Background(), tx, ids[0])
	if err != nil {
		t.Fatalf("aggregate contact tx: %v", err)
	}
	if aggID == uuid.Nil {
		t.Fatal("expected a non-nil aggregate id")
	}

	// The raw contact is visible as aggregated within the caller's own
	// in-flight transaction, before that transaction is committed.
	got, err := tx.RawContacts().Get(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AggregateID == nil || *got.AggregateID != aggID {
		t.Fatal("expected the raw contact to carry the new aggregate id inside the caller's transaction")
	}

	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestScheduler_ScheduleRunsAPassAfterTheDebounceDelay(t *testing.T) {
	org := uuid.New()
	store := newFakeStore(org)
	ids := store.addPending(3)

	agg := aggregator.New(aggregator.Thresholds{Primary: 28, Secondary: 20, Suggest: 10}, normalize.DefaultNicknameClusters)
	sch := scheduler.New(store, agg, nil, logger.New("test"), 20*time.Millisecond, org)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sch.Run(ctx)
	defer sch.Stop()

	sch.Schedule()
	time.Sleep(200 * time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, id := range ids {
		if store.rawContacts[id].AggregateID == nil {
			t.Fatalf("expected raw contact %v to be aggregated after the debounced pass ran", id)
		}
	}
}

func TestScheduler_InterruptStopsAPassEarly(t *testing.T) {
	org := uuid.New()
	store := newFakeStore(org)
	ids := store.addPending(50)

	agg := aggregator.New(aggregator.Thresholds{Primary: 28, Secondary: 20, Suggest: 10}, normalize.DefaultNicknameClusters)
	sch := scheduler.New(store, agg, nil, logger.New("test"), 10*time.Millisecond, org)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sch.Run(ctx)
	defer sch.Stop()

	sch.Schedule()
	time.Sleep(15 * time.Millisecond)
	sch.Interrupt()
	time.Sleep(100 * time.Millisecond)

	store.mu.Lock()
	processed := 0
	for _, id := range ids {
		if store.rawContacts[id].AggregateID != nil {
			processed++
		}
	}
	store.mu.Unlock()

	if processed >= len(ids) {
		t.Fatal("expected interruption to leave at least some raw contacts unaggregated")
	}

	// A later pass picks up exactly the remainder, proving no contact was
	// lost or double-processed by the interrupted run.
	sch.Schedule()
	time.Sleep(300 * time.Millisecond)

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, id := range ids {
		if store.rawContacts[id].AggregateID == nil {
			t.Fatalf("expected raw contact %v to be aggregated after the follow-up pass", id)
		}
	}
}
