// Package ports declares the persistence boundary the aggregation core
// depends on. The repository package implements Store against Postgres;
// the aggregator, scheduler, and suggestions packages only ever see these
// interfaces, so they can be exercised in tests against an in-memory fake.
package ports

import (
	"context"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/exceptions"
	"portal_final_backend/internal/contacts/namelookup"
)

// Store is the top-level persistence handle: it opens transactions and
// gives access to each sub-store within one.
type Store interface {
	// Begin opens a new transaction.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single transaction's view of every sub-store, plus the
// concurrency primitive the background pass uses between raw contacts.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// YieldIfContended releases the write lock briefly if readers are
	// waiting on it, then reacquires it. A no-op under backends without a
	// distinguishable reader/writer contention signal.
	YieldIfContended(ctx context.Context) error

	RawContacts() RawContacts
	DataRows() DataRows
	Aggregates() Aggregates
	NameLookup() NameLookup
	Exceptions() exceptions.Store
	PhoneIndex() PhoneIndex
	EmailIndex() EmailIndex
}

// RawContacts is the raw_contact sub-store.
type RawContacts interface {
	Get(ctx context.Context, id uuid.UUID) (domain.RawContact, error)
	// SetAggregateID writes back the raw contact's aggregate_id.
	SetAggregateID(ctx context.Context, id uuid.UUID, aggregateID uuid.UUID) error
	// ClearAggregateID sets aggregate_id back to NULL, used by
	// mark_contact_for_aggregation.
	ClearAggregateID(ctx context.Context, id uuid.UUID) error
	// Members returns every raw contact currently pointing at aggregateID.
	Members(ctx context.Context, aggregateID uuid.UUID) ([]domain.RawContact, error)
	// PendingDefault returns raw contacts with aggregate_id IS NULL and
	// aggregation_mode = DEFAULT, for the background pass, along with the
	// total count found at the time the cursor was opened.
	PendingDefault(ctx context.Context, organizationID uuid.UUID) (PendingCursor, error)
}

// PendingCursor is a forward-only cursor over raw contacts awaiting
// aggregation.
type PendingCursor interface {
	Total() int
	Next(ctx context.Context) (domain.RawContact, bool, error)
	Close(ctx context.Context) error
}

// DataRows is the typed-data sub-store.
type DataRows interface {
	ForRawContact(ctx context.Context, rawContactID uuid.UUID) ([]domain.DataRow, error)
}

// Aggregates is the aggregate sub-store.
type Aggregates interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Aggregate, error)
	Create(ctx context.Context, organizationID uuid.UUID) (domain.Aggregate, error)
	Update(ctx context.Context, agg domain.Aggregate) error
	// DeleteIfEmpty removes the aggregate if it has no remaining members.
	DeleteIfEmpty(ctx context.Context, id uuid.UUID) error
}

// NameLookup is the NameLookupEntry sub-store.
type NameLookup interface {
	// ReplaceForRawContact wipes and rewrites every entry for rawContactID
	// in one step (invariant 5 in the domain package: entries are replaced
	// wholesale).
	ReplaceForRawContact(ctx context.Context, rawContactID uuid.UUID, entries []namelookup.Entry) error
	// MatchAggregated returns every entry whose normalized_name is in names
	// and whose owning raw contact already has a non-null aggregate_id.
	MatchAggregated(ctx context.Context, organizationID uuid.UUID, names []string) ([]MatchRow, error)
	// ExactType returns entries with normalized_name = name and the given
	// tag, restricted to aggregated raw contacts (used for NICKNAME lookup).
	ExactType(ctx context.Context, organizationID uuid.UUID, name string, t namelookup.Type) ([]MatchRow, error)
}

// MatchRow is one hit from a NameLookup lookup: the candidate's own tag and
// normalized name, plus the aggregate it resolved to.
type MatchRow struct {
	AggregateID  uuid.UUID
	RawContactID uuid.UUID
	Name         string
	Type         namelookup.Type
}

// PhoneIndex resolves canonicalised phone numbers to aggregated raw
// contacts.
type PhoneIndex interface {
	Lookup(ctx context.Context, organizationID uuid.UUID, e164 string) ([]AggregatedHit, error)
}

// EmailIndex resolves case-insensitive email addresses to aggregated raw
// contacts.
type EmailIndex interface {
	Lookup(ctx context.Context, organizationID uuid.UUID, address string) ([]AggregatedHit, error)
}

// AggregatedHit is a data-row-level identifier match: some member of
// AggregateID has a Phone or Email row equal to the value queried.
type AggregatedHit struct {
	AggregateID  uuid.UUID
	RawContactID uuid.UUID
}
