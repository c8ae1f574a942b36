// Package exceptions models user-authored KEEP_IN/KEEP_OUT overrides that
// force two raw contacts to merge or stay split regardless of what the
// matcher would otherwise decide.
package exceptions

import (
	"context"

	"github.com/google/uuid"
)

// KeepType is the kind of override a user has recorded for a raw contact
// pair.
type KeepType int

const (
	// KeepIn forces the two raw contacts into the same aggregate.
	KeepIn KeepType = iota
	// KeepOut forbids the two raw contacts from ever sharing an aggregate.
	KeepOut
)

// Exception is a single user-authored override between two raw contacts.
// The pair is unordered: an Exception naming (x, y) applies equally when
// looked up by either id.
type Exception struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	RawContactID1  uuid.UUID
	RawContactID2  uuid.UUID
	Type           KeepType
}

// PeerOf returns the raw contact on the other side of the exception from
// rawContactID. Panics if rawContactID is not one of the two endpoints.
func (e Exception) PeerOf(rawContactID uuid.UUID) uuid.UUID {
	switch rawContactID {
	case e.RawContactID1:
		return e.RawContactID2
	case e.RawContactID2:
		return e.RawContactID1
	default:
		panic("exceptions: rawContactID is not an endpoint of this exception")
	}
}

// Store is the persistence boundary for exceptions, implemented by the
// repository layer.
type Store interface {
	// ForRawContact returns every exception naming rawContactID, in either
	// endpoint position.
	ForRawContact(ctx context.Context, rawContactID uuid.UUID) ([]Exception, error)
}
