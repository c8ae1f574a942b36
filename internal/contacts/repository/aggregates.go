package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"portal_final_backend/internal/contacts/domain"
)

type aggregatesRepo struct {
	tx pgx.Tx
}

func (r *aggregatesRepo) Get(ctx context.Context, id uuid.UUID) (domain.Aggregate, error) {
	const query = `
		SELECT id, organization_id, display_name, photo_id,
		       optimal_primary_phone_id, optimal_primary_phone_restricted, fallback_primary_phone_id,
		       optimal_primary_email_id, optimal_primary_email_restricted, fallback_primary_email_id,
		       single_is_restricted, send_to_voicemail, custom_ringtone, last_time_contacted,
		       times_contacted, starred
		FROM contact_aggregates
		WHERE id = $1`

	var a domain.Aggregate
	err := r.tx.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.OrganizationID, &a.DisplayName, &a.PhotoID,
		&a.OptimalPrimaryPhoneID, &a.OptimalPrimaryPhoneRestricted, &a.FallbackPrimaryPhoneID,
		&a.OptimalPrimaryEmailID, &a.OptimalPrimaryEmailRestricted, &a.FallbackPrimaryEmailID,
		&a.SingleIsRestricted, &a.SendToVoicemail, &a.CustomRingtone, &a.LastTimeContacted,
		&a.TimesContacted, &a.Starred,
	)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("repository: get aggregate: %w", err)
	}
	return a, nil
}

func (r *aggregatesRepo) Create(ctx context.Context, organizationID uuid.UUID) (domain.Aggregate, error) {
	const query = `
		INSERT INTO contact_aggregates (id, organization_id, display_name)
		VALUES ($1, $2, '')
		RETURNING id, organization_id, display_name`

	a := domain.Aggregate{ID: uuid.New(), OrganizationID: organizationID}
	err := r.tx.QueryRow(ctx, query, a.ID, organizationID).Scan(&a.ID, &a.OrganizationID, &a.DisplayName)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("repository: create aggregate: %w", err)
	}
	return a, nil
}

func (r *aggregatesRepo) Update(ctx context.Context, agg domain.Aggregate) error {
	const query = `
		UPDATE contact_aggregates SET
			display_name = $2,
			photo_id = $3,
			optimal_primary_phone_id = $4,
			optimal_primary_phone_restricted = $5,
			fallback_primary_phone_id = $6,
			optimal_primary_email_id = $7,
			optimal_primary_email_restricted = $8,
			fallback_primary_email_id = $9,
			single_is_restricted = $10,
			send_to_voicemail = $11,
			custom_ringtone = $12,
			last_time_contacted = $13,
			times_contacted = $14,
			starred = $15
		WHERE id = $1`

	_, err := r.tx.Exec(ctx, query,
		agg.ID, agg.DisplayName, agg.PhotoID,
		agg.OptimalPrimaryPhoneID, agg.OptimalPrimaryPhoneRestricted, agg.FallbackPrimaryPhoneID,
		agg.OptimalPrimaryEmailID, agg.OptimalPrimaryEmailRestricted, agg.FallbackPrimaryEmailID,
		agg.SingleIsRestricted, agg.SendToVoicemail, agg.CustomRingtone, agg.LastTimeContacted,
		agg.TimesContacted, agg.Starred,
	)
	if err != nil {
		return fmt.Errorf("repository: update aggregate: %w", err)
	}
	return nil
}

func (r *aggregatesRepo) DeleteIfEmpty(ctx context.Context, id uuid.UUID) error {
	const query = `
		DELETE FROM contact_aggregates
		WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM raw_contacts WHERE aggregate_id = $1)`
	_, err := r.tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("repository: delete empty aggregate: %w", err)
	}
	return nil
}
