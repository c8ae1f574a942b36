package aggregator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/ports"
)

// PromotePrimaries examines the joining raw contact's is_primary Phone/Email
// rows and fills the aggregate's optimal and fallback primary slots where
// they are still empty.
func PromotePrimaries(ctx context.Context, tx ports.Tx, aggregateID uuid.UUID, rc domain.RawContact, rows []domain.DataRow) error {
	agg, err := tx.Aggregates().Get(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("promote primaries: load aggregate: %w", err)
	}

	changed := false
	for _, row := range rows {
		if !row.IsPrimary {
			continue
		}
		switch row.MimeType {
		case domain.MimeTypePhone:
			changed = fillSlots(&agg.OptimalPrimaryPhoneID, &agg.OptimalPrimaryPhoneRestricted, &agg.FallbackPrimaryPhoneID, row.ID, rc.IsRestricted) || changed
		case domain.MimeTypeEmail:
			changed = fillSlots(&agg.OptimalPrimaryEmailID, &agg.OptimalPrimaryEmailRestricted, &agg.FallbackPrimaryEmailID, row.ID, rc.IsRestricted) || changed
		}
	}

	if !changed {
		return nil
	}
	return tx.Aggregates().Update(ctx, agg)
}

// fillSlots fills optimalID (and records the candidate's restricted flag)
// if empty, and fallbackID if empty and the candidate is unrestricted.
// Returns whether either slot was filled.
func fillSlots(optimalID **uuid.UUID, optimalRestricted *bool, fallbackID **uuid.UUID, candidateID uuid.UUID, isRestricted bool) bool {
	changed := false
	if *optimalID == nil {
		id := candidateID
		*optimalID = &id
		*optimalRestricted = isRestricted
		changed = true
	}
	if *fallbackID == nil && !isRestricted {
		id := candidateID
		*fallbackID = &id
		changed = true
	}
	return changed
}

// RefreshVisibility recomputes single_is_restricted: true iff the aggregate
// was newly created and its sole member is restricted, cleared once it
// gains a second member or any unrestricted member.
func RefreshVisibility(ctx context.Context, tx ports.Tx, aggregateID uuid.UUID) error {
	members, err := tx.RawContacts().Members(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("refresh visibility: load members: %w", err)
	}
	if len(members) == 0 {
		return nil
	}

	agg, err := tx.Aggregates().Get(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("refresh visibility: load aggregate: %w", err)
	}

	singleRestricted := len(members) == 1 && members[0].IsRestricted
	if singleRestricted == agg.SingleIsRestricted {
		return nil
	}

	agg.SingleIsRestricted = singleRestricted
	return tx.Aggregates().Update(ctx, agg)
}
