package aggregator_test

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/exceptions"
	"portal_final_backend/internal/contacts/namelookup"
	"portal_final_backend/internal/contacts/ports"
)

// fakeStore is an in-memory ports.Store used to exercise the aggregator
// without a database. It has no real transaction isolation: Begin returns a
// view over the same maps, and Commit/Rollback are no-ops, which is
// sufficient for single-goroutine tests that never roll back on purpose.
type fakeStore struct {
	rawContacts map[uuid.UUID]domain.RawContact
	dataRows    map[uuid.UUID][]domain.DataRow
	aggregates  map[uuid.UUID]domain.Aggregate
	nameLookup  map[uuid.UUID][]namelookup.Entry
	exceptions  []exceptions.Exception

	// order records raw contact ids in insertion order, so Members returns
	// members in a stable order.
	order []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rawContacts: make(map[uuid.UUID]domain.RawContact),
		dataRows:    make(map[uuid.UUID][]domain.DataRow),
		aggregates:  make(map[uuid.UUID]domain.Aggregate),
		nameLookup:  make(map[uuid.UUID][]namelookup.Entry),
	}
}

func (s *fakeStore) addRawContact(rc domain.RawContact, rows []domain.DataRow) {
	if _, ok := s.rawContacts[rc.ID]; !ok {
		s.order = append(s.order, rc.ID)
	}
	s.rawContacts[rc.ID] = rc
	s.dataRows[rc.ID] = rows
}

func (s *fakeStore) Begin(ctx context.Context) (ports.Tx, error) {
	return &fakeTx{s: s}, nil
}

type fakeTx struct{ s *fakeStore }

func (t *fakeTx) Commit(ctx context.Context) error          { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error        { return nil }
func (t *fakeTx) YieldIfContended(ctx context.Context) error { return nil }
func (t *fakeTx) RawContacts() ports.RawContacts            { return &fakeRawContacts{s: t.s} }
func (t *fakeTx) DataRows() ports.DataRows                  { return &fakeDataRows{s: t.s} }
func (t *fakeTx) Aggregates() ports.Aggregates               { return &fakeAggregates{s: t.s} }
func (t *fakeTx) NameLookup() ports.NameLookup              { return &fakeNameLookup{s: t.s} }
func (t *fakeTx) Exceptions() exceptions.Store              { return &fakeExceptions{s: t.s} }
func (t *fakeTx) PhoneIndex() ports.PhoneIndex              { return &fakePhoneIndex{s: t.s} }
func (t *fakeTx) EmailIndex() ports.EmailIndex              { return &fakeEmailIndex{s: t.s} }

type fakeRawContacts struct{ s *fakeStore }

func (r *fakeRawContacts) Get(ctx context.Context, id uuid.UUID) (domain.RawContact, error) {
	return r.s.rawContacts[id], nil
}

func (r *fakeRawContacts) SetAggregateID(ctx context.Context, id uuid.UUID, aggregateID uuid.UUID) error {
	rc := r.s.rawContacts[id]
	rc.AggregateID = &aggregateID
	r.s.rawContacts[id] = rc
	return nil
}

func (r *fakeRawContacts) ClearAggregateID(ctx context.Context, id uuid.UUID) error {
	rc := r.s.rawContacts[id]
	rc.AggregateID = nil
	r.s.rawContacts[id] = rc
	return nil
}

func (r *fakeRawContacts) Members(ctx context.Context, aggregateID uuid.UUID) ([]domain.RawContact, error) {
	var out []domain.RawContact
	for _, id := range r.s.order {
		rc := r.s.rawContacts[id]
		if rc.AggregateID != nil && *rc.AggregateID == aggregateID {
			out = append(out, rc)
		}
	}
	return out, nil
}

func (r *fakeRawContacts) PendingDefault(ctx context.Context, organizationID uuid.UUID) (ports.PendingCursor, error) {
	var rows []domain.RawContact
	for _, rc := range r.s.rawContacts {
		if rc.AggregateID == nil && rc.AggregationMode == domain.AggregationModeDefault {
			rows = append(rows, rc)
		}
	}
	return &fakeCursor{rows: rows, total: len(rows)}, nil
}

type fakeCursor struct {
	rows []domain.RawContact
	pos  int
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

type fakeDataRows struct{ s *fakeStore }

func (r *fakeDataRows) ForRawContact(ctx context.Context, rawContactID uuid.UUID) ([]domain.DataRow, error) {
	return r.s.dataRows[rawContactID], nil
}

type fakeAggregates struct{ s *fakeStore }

func (r *fakeAggregates) Get(ctx context.Context, id uuid.UUID) (domain.Aggregate, error) {
	return r.s.aggregates[id], nil
}

func (r *fakeAggregates) Create(ctx context.Context, organizationID uuid.UUID) (domain.Aggregate, error) {
	a := domain.Aggregate{ID: uuid.New(), OrganizationID: organizationID}
	r.s.aggregates[a.ID] = a
	return a, nil
}

func (r *fakeAggregates) Update(ctx context.Context, agg domain.Aggregate) error {
	r.s.aggregates[agg.ID] = agg
	return nil
}

func (r *fakeAggregates) DeleteIfEmpty(ctx context.Context, id uuid.UUID) error {
	for _, rc := range r.s.rawContacts {
		if rc.AggregateID != nil && *rc.AggregateID == id {
			return nil
		}
	}
	delete(r.s.aggregates, id)
	return nil
}

type fakeNameLookup struct{ s *fakeStore }

func (r *fakeNameLookup) ReplaceForRawContact(ctx context.Context, rawContactID uuid.UUID, entries []namelookup.Entry) error {
	r.s.nameLookup[rawContactID] = entries
	return nil
}

func (r *fakeNameLookup) MatchAggregated(ctx context.Context, organizationID uuid.UUID, names []string) ([]ports.MatchRow, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []ports.MatchRow
	for rawContactID, entries := range r.s.nameLookup {
		rc, ok := r.s.rawContacts[rawContactID]
		if !ok || rc.AggregateID == nil {
			continue
		}
		for _, e := range entries {
			if wanted[e.NormalizedName] {
				out = append(out, ports.MatchRow{AggregateID: *rc.AggregateID, RawContactID: rawContactID, Name: e.NormalizedName, Type: e.Type})
			}
		}
	}
	return out, nil
}

func (r *fakeNameLookup) ExactType(ctx context.Context, organizationID uuid.UUID, name string, t namelookup.Type) ([]ports.MatchRow, error) {
	var out []ports.MatchRow
	for rawContactID, entries := range r.s.nameLookup {
		rc, ok := r.s.rawContacts[rawContactID]
		if !ok || rc.AggregateID == nil {
			continue
		}
		for _, e := range entries {
			if e.NormalizedName == name && e.Type == t {
				out = append(out, ports.MatchRow{AggregateID: *rc.AggregateID, RawContactID: rawContactID, Name: e.NormalizedName, Type: e.Type})
			}
		}
	}
	return out, nil
}

type fakeExceptions struct{ s *fakeStore }

func (r *fakeExceptions) ForRawContact(ctx context.Context, rawContactID uuid.UUID) ([]exceptions.Exception, error) {
	var out []exceptions.Exception
	for _, e := range r.s.exceptions {
		if e.RawContactID1 == rawContactID || e.RawContactID2 == rawContactID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePhoneIndex struct{ s *fakeStore }

func (r *fakePhoneIndex) Lookup(ctx context.Context, organizationID uuid.UUID, e164 string) ([]ports.AggregatedHit, error) {
	var out []ports.AggregatedHit
	for rawContactID, rows := range r.s.dataRows {
		rc, ok := r.s.rawContacts[rawContactID]
		if !ok || rc.AggregateID == nil {
			continue
		}
		for _, row := range rows {
			if row.MimeType == domain.MimeTypePhone && row.Value() == e164 {
				out = append(out, ports.AggregatedHit{AggregateID: *rc.AggregateID, RawContactID: rawContactID})
			}
		}
	}
	return out, nil
}

type fakeEmailIndex struct{ s *fakeStore }

func (r *fakeEmailIndex) Lookup(ctx context.Context, organizationID uuid.UUID, address string) ([]ports.AggregatedHit, error) {
	var out []ports.AggregatedHit
	for rawContactID, rows := range r.s.dataRows {
		rc, ok := r.s.rawContacts[rawContactID]
		if !ok || rc.AggregateID == nil {
			continue
		}
		for _, row := range rows {
			if row.MimeType == domain.MimeTypeEmail && strings.EqualFold(row.Value(), address) {
				out = append(out, ports.AggregatedHit{AggregateID: *rc.AggregateID, RawContactID: rawContactID})
			}
		}
	}
	return out, nil
}
