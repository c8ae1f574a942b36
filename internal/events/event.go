// Package events re-exports the platform event bus and declares the
// contact-aggregation domain events published across module boundaries.
package events

import (
	platformevents "portal_final_backend/platform/events"

	"github.com/google/uuid"
)

// Event, Handler, HandlerFunc, Bus, and BaseEvent are re-exported from the
// platform layer so internal modules only need to import this package.
type (
	Event       = platformevents.Event
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
	Bus         = platformevents.Bus
	BaseEvent   = platformevents.BaseEvent
)

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// =============================================================================
// Contact Aggregation Domain Events
// =============================================================================

// ContactMarkedForAggregation is published by the ingest path (external to
// this module) whenever a raw contact needs (re)aggregation. The module
// subscribes to it to debounce a background pass.
type ContactMarkedForAggregation struct {
	BaseEvent
	RawContactID   uuid.UUID `json:"rawContactId"`
	OrganizationID uuid.UUID `json:"organizationId"`
}

func (e ContactMarkedForAggregation) EventName() string {
	return "contacts.raw_contact.marked_for_aggregation"
}

// AggregateChanged is published whenever a raw contact joins, leaves, or
// creates an aggregate, so downstream consumers (e.g. a UI notifier) can
// refresh derived views without polling.
type AggregateChanged struct {
	BaseEvent
	AggregateID   uuid.UUID  `json:"aggregateId"`
	RawContactID  uuid.UUID  `json:"rawContactId"`
	PreviousAggID *uuid.UUID `json:"previousAggregateId,omitempty"`
}

func (e AggregateChanged) EventName() string { return "contacts.aggregate.changed" }

// AggregationPassCompleted is published after a scheduler pass finishes,
// whether it ran to completion or was interrupted.
type AggregationPassCompleted struct {
	BaseEvent
	Processed   int  `json:"processed"`
	Total       int  `json:"total"`
	Interrupted bool `json:"interrupted"`
}

func (e AggregationPassCompleted) EventName() string { return "contacts.aggregation.pass_completed" }
