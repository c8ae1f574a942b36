// Package service composes the aggregation core's read-side and
// membership-maintenance operations (the ones that don't belong on
// Scheduler, which owns the single-contact and background-pass aggregation
// entry points) for the HTTP handler.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/aggregator"
	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/normalize"
	"portal_final_backend/internal/contacts/ports"
	"portal_final_backend/internal/contacts/suggestions"
	"portal_final_backend/internal/contacts/transport"
)

// Service exposes read-side and membership-maintenance operations over the
// aggregation core's store.
type Service struct {
	store          ports.Store
	thresholds     aggregator.Thresholds
	clusters       normalize.ClusterTable
	maxSuggestions int
}

// New returns a Service.
func New(store ports.Store, thresholds aggregator.Thresholds, clusters normalize.ClusterTable, maxSuggestions int) *Service {
	return &Service{store: store, thresholds: thresholds, clusters: clusters, maxSuggestions: maxSuggestions}
}

// Suggestions runs the aggregation-suggestion query for aggregateID and
// returns the ranked candidates as DTOs.
func (s *Service) Suggestions(ctx context.Context, aggregateID uuid.UUID) ([]transport.Suggestion, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ids, err := suggestions.Query(ctx, tx, aggregateID, s.maxSuggestions, s.thresholds.Suggest, s.clusters)
	if err != nil {
		return nil, fmt.Errorf("service: suggestion query: %w", err)
	}

	out := make([]transport.Suggestion, 0, len(ids))
	for _, id := range ids {
		agg, err := tx.Aggregates().Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, transport.Suggestion{AggregateID: agg.ID, DisplayName: agg.DisplayName})
	}

	return out, tx.Commit(ctx)
}

// MarkForAggregation clears aggregate_id, wipes name-lookup rows, deletes
// the now-orphaned aggregate if any, and returns the raw contact's
// aggregation mode.
func (s *Service) MarkForAggregation(ctx context.Context, rawContactID uuid.UUID) (domain.AggregationMode, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return domain.AggregationModeDisabled, fmt.Errorf("service: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rc, err := tx.RawContacts().Get(ctx, rawContactID)
	if err != nil {
		return domain.AggregationModeDisabled, fmt.Errorf("service: load raw contact: %w", err)
	}
	if rc.AggregationMode == domain.AggregationModeDisabled {
		return domain.AggregationModeDisabled, tx.Commit(ctx)
	}

	previous := rc.AggregateID
	if err := tx.NameLookup().ReplaceForRawContact(ctx, rawContactID, nil); err != nil {
		return domain.AggregationModeDisabled, fmt.Errorf("service: clear name lookup: %w", err)
	}
	if previous != nil {
		if err := tx.RawContacts().ClearAggregateID(ctx, rawContactID); err != nil {
			return domain.AggregationModeDisabled, fmt.Errorf("service: clear aggregate id: %w", err)
		}
		if err := tx.Aggregates().DeleteIfEmpty(ctx, *previous); err != nil {
			return domain.AggregationModeDisabled, fmt.Errorf("service: delete orphaned aggregate: %w", err)
		}
	}

	return rc.AggregationMode, tx.Commit(ctx)
}

// UpdateAggregateData recomputes an aggregate's derived fields without
// changing membership.
func (s *Service) UpdateAggregateData(ctx context.Context, aggregateID uuid.UUID) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("service: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := aggregator.DeriveFields(ctx, tx, aggregateID); err != nil {
		return fmt.Errorf("service: derive fields: %w", err)
	}
	return tx.Commit(ctx)
}
