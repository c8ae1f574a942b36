// Package domain holds the data model of the contact aggregation engine:
// raw contacts, their typed data rows, and the aggregates they are
// clustered into. These types are pure data — the record-linkage logic
// that operates on them lives in the sibling normalize/namelookup/matcher/
// aggregator packages.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregationMode controls whether the background pass and the single-contact
// entry point are allowed to touch a raw contact.
type AggregationMode int

const (
	// AggregationModeDefault is the normal mode: the raw contact participates
	// in the background pass and is matched against other contacts.
	AggregationModeDefault AggregationMode = iota
	// AggregationModeImmediate is set by ingest when a raw contact must be
	// aggregated synchronously, inside the caller's own transaction, instead
	// of waiting for the debounced background pass.
	AggregationModeImmediate
	// AggregationModeDisabled excludes the raw contact from aggregation
	// entirely; it never receives an aggregate_id.
	AggregationModeDisabled
)

// RawContact is a single address-book entry from one source account.
type RawContact struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID

	// AggregateID is nil while the contact is pending aggregation.
	AggregateID *uuid.UUID

	AggregationMode AggregationMode

	// DisplayNameCache is the raw contact's own display name, as cached by
	// ingest from its StructuredName data row. Used by DeriveFields to pick
	// the aggregate-level display name but never written by the
	// aggregation core itself.
	DisplayNameCache string

	// AccountName identifies the source account this contact came from
	// (e.g. "gmail:alice@x.com"). Used only to break photo ties.
	AccountName string

	CustomRingtone    *string
	SendToVoicemail   *bool
	LastTimeContacted *time.Time
	TimesContacted    int
	Starred           bool

	// IsRestricted marks package-scoped visibility; restricted contacts
	// never populate an aggregate's fallback primary slots.
	IsRestricted bool
}

// MimeType enumerates the typed-data kinds the matcher understands.
// Unrecognised mimetypes are silently ignored rather than rejected.
type MimeType int

const (
	MimeTypeUnknown MimeType = iota
	MimeTypeStructuredName
	MimeTypeEmail
	MimeTypePhone
	MimeTypeNickname
	MimeTypePhoto
)

// DataRow is a typed attribute attached to a raw contact.
//
// Data1/Data2 are deliberately opaque, mirroring the source schema:
//   - StructuredName: Data1 = given name, Data2 = family name
//   - Email:          Data2 = address
//   - Phone:          Data2 = number
//   - Nickname:       Data2 = nickname
//   - Photo:          Data2 = unused; the row's ID is the photo reference
type DataRow struct {
	ID             uuid.UUID
	RawContactID   uuid.UUID
	OrganizationID uuid.UUID
	MimeType       MimeType
	Data1          string
	Data2          string
	IsPrimary      bool
}

// GivenName returns the StructuredName given-name field (Data1).
func (d DataRow) GivenName() string { return d.Data1 }

// FamilyName returns the StructuredName family-name field (Data2).
func (d DataRow) FamilyName() string { return d.Data2 }

// Value returns Data2, used by Email, Phone, and Nickname rows which store
// their single meaningful value there.
func (d DataRow) Value() string { return d.Data2 }

// Aggregate is the derived cluster representing one real person, projected
// from the current member raw contacts. It exists iff at least one raw
// contact references it.
type Aggregate struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID

	DisplayName string
	PhotoID     *uuid.UUID

	OptimalPrimaryPhoneID    *uuid.UUID
	OptimalPrimaryPhoneRestricted bool
	FallbackPrimaryPhoneID   *uuid.UUID

	OptimalPrimaryEmailID    *uuid.UUID
	OptimalPrimaryEmailRestricted bool
	FallbackPrimaryEmailID   *uuid.UUID

	// SingleIsRestricted is true iff the aggregate has exactly one member
	// and that member is restricted.
	SingleIsRestricted bool

	// Rolled-up options, recomputed by DeriveFields from the member raw
	// contacts' own fields.
	SendToVoicemail   bool
	CustomRingtone    *string
	LastTimeContacted *time.Time
	TimesContacted    int
	Starred           bool
}

// Invariants the engine preserves. They are not enforced at runtime; they
// describe what "aggregation is correct" means. Invariants 3 and 4 are
// exercised by the KEEP_IN/KEEP_OUT scenario tests in aggregator_test.go,
// and the deletion half of invariant 2 by derive_test.go.
//
//  1. Every raw contact with AggregationMode == Default eventually has a
//     non-nil AggregateID, once a schedule-triggered pass has run to
//     completion against it.
//  2. An aggregate exists iff at least one raw contact references it;
//     the last member leaving an aggregate deletes it.
//  3. KEEP_IN(x, y), once both are aggregated, implies equal AggregateID.
//  4. KEEP_OUT(x, y) implies distinct AggregateID.
//  5. NameLookupEntries for a raw contact are replaced wholesale, never
//     partially updated.
//  6. Only AggregationMode == Default contacts are selected by the
//     background pass.
