package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/normalize"
	"portal_final_backend/internal/contacts/ports"
)

// DeriveFields recomputes an aggregate's rolled-up fields from its current
// members. It does not touch membership or primary slots.
func DeriveFields(ctx context.Context, tx ports.Tx, aggregateID uuid.UUID) error {
	members, err := tx.RawContacts().Members(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("derive fields: load members: %w", err)
	}
	if len(members) == 0 {
		return tx.Aggregates().DeleteIfEmpty(ctx, aggregateID)
	}

	agg, err := tx.Aggregates().Get(ctx, aggregateID)
	if err != nil {
		return fmt.Errorf("derive fields: load aggregate: %w", err)
	}

	agg.DisplayName = bestDisplayName(members, agg.DisplayName)
	agg.SendToVoicemail = rollUpSendToVoicemail(members)
	agg.CustomRingtone = rollUpCustomRingtone(members)
	agg.LastTimeContacted = rollUpLastTimeContacted(members)
	agg.TimesContacted = rollUpTimesContacted(members)
	agg.Starred = rollUpStarred(members)

	if photoID, err := bestPhoto(ctx, tx, members); err != nil {
		return fmt.Errorf("derive fields: photo: %w", err)
	} else if photoID != nil {
		agg.PhotoID = photoID
	}

	return tx.Aggregates().Update(ctx, agg)
}

// bestDisplayName picks the member display name with greatest complexity.
// If every member's cached name is empty, the prior value is kept unchanged.
func bestDisplayName(members []domain.RawContact, prior string) string {
	best := ""
	for _, m := range members {
		if m.DisplayNameCache == "" {
			continue
		}
		if best == "" || normalize.CompareComplexity(m.DisplayNameCache, best) > 0 {
			best = m.DisplayNameCache
		}
	}
	if best == "" {
		return prior
	}
	return best
}

// rollUpSendToVoicemail is true iff at least one member has a non-null value
// and every non-null value is true; with no non-null values it is false.
func rollUpSendToVoicemail(members []domain.RawContact) bool {
	any := false
	for _, m := range members {
		if m.SendToVoicemail == nil {
			continue
		}
		any = true
		if !*m.SendToVoicemail {
			return false
		}
	}
	return any
}

// rollUpCustomRingtone returns the first non-null ringtone in member
// iteration order.
func rollUpCustomRingtone(members []domain.RawContact) *string {
	for _, m := range members {
		if m.CustomRingtone != nil {
			return m.CustomRingtone
		}
	}
	return nil
}

func rollUpLastTimeContacted(members []domain.RawContact) *time.Time {
	var max *time.Time
	for _, m := range members {
		if m.LastTimeContacted == nil {
			continue
		}
		if max == nil || m.LastTimeContacted.After(*max) {
			t := *m.LastTimeContacted
			max = &t
		}
	}
	return max
}

// rollUpTimesContacted takes the max across members, not the sum. Preserved
// as-is from the source behaviour this engine is modeled on, even though a
// sum would intuitively seem more correct for a merged contact.
func rollUpTimesContacted(members []domain.RawContact) int {
	max := 0
	for _, m := range members {
		if m.TimesContacted > max {
			max = m.TimesContacted
		}
	}
	return max
}

func rollUpStarred(members []domain.RawContact) bool {
	for _, m := range members {
		if m.Starred {
			return true
		}
	}
	return false
}

// bestPhoto chooses the Photo data row whose owning raw contact has the
// lexicographically smallest (case-insensitive) account name. Returns nil
// if no member has a photo.
func bestPhoto(ctx context.Context, tx ports.Tx, members []domain.RawContact) (*uuid.UUID, error) {
	var bestID *uuid.UUID
	bestAccount := ""

	for _, m := range members {
		rows, err := tx.DataRows().ForRawContact(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.MimeType != domain.MimeTypePhoto {
				continue
			}
			account := strings.ToLower(m.AccountName)
			if bestID == nil || account < bestAccount {
				id := row.ID
				bestID = &id
				bestAccount = account
			}
			break
		}
	}

	return bestID, nil
}
