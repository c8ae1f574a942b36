// Package transport declares the request/response DTOs for the contact
// aggregation HTTP surface.
package transport

import "github.com/google/uuid"

// AggregateContactResponse is returned after a synchronous single-contact
// aggregation.
type AggregateContactResponse struct {
	AggregateID uuid.UUID `json:"aggregateId"`
}

// ScheduleRequest requests a debounced background pass for an organization.
type ScheduleRequest struct {
	OrganizationID uuid.UUID `json:"organizationId" validate:"required"`
}

// SuggestionsResponse lists candidate aggregates for a merge-suggestion UI,
// already ordered by descending match score.
type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggestion is one ranked aggregate suggestion.
type Suggestion struct {
	AggregateID uuid.UUID `json:"aggregateId"`
	DisplayName string    `json:"displayName"`
}
