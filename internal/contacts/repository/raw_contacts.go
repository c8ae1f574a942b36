package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/ports"
)

type rawContactsRepo struct {
	tx pgx.Tx
}

func (r *rawContactsRepo) Get(ctx context.Context, id uuid.UUID) (domain.RawContact, error) {
	const query = `
		SELECT id, organization_id, aggregate_id, aggregation_mode, display_name_cache,
		       account_name, custom_ringtone, send_to_voicemail, last_time_contacted,
		       times_contacted, starred, is_restricted
		FROM raw_contacts
		WHERE id = $1`

	var rc domain.RawContact
	var mode int
	err := r.tx.QueryRow(ctx, query, id).Scan(
		&rc.ID, &rc.OrganizationID, &rc.AggregateID, &mode, &rc.DisplayNameCache,
		&rc.AccountName, &rc.CustomRingtone, &rc.SendToVoicemail, &rc.LastTimeContacted,
		&rc.TimesContacted, &rc.Starred, &rc.IsRestricted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RawContact{}, fmt.Errorf("repository: raw contact %s: %w", id, err)
	}
	if err != nil {
		return domain.RawContact{}, fmt.Errorf("repository: get raw contact: %w", err)
	}
	rc.AggregationMode = domain.AggregationMode(mode)
	return rc, nil
}

func (r *rawContactsRepo) SetAggregateID(ctx context.Context, id uuid.UUID, aggregateID uuid.UUID) error {
	const query = `UPDATE raw_contacts SET aggregate_id = $2 WHERE id = $1`
	_, err := r.tx.Exec(ctx, query, id, aggregateID)
	if err != nil {
		return fmt.Errorf("repository: set aggregate id: %w", err)
	}
	return nil
}

func (r *rawContactsRepo) ClearAggregateID(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE raw_contacts SET aggregate_id = NULL WHERE id = $1`
	_, err := r.tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("repository: clear aggregate id: %w", err)
	}
	return nil
}

func (r *rawContactsRepo) Members(ctx context.Context, aggregateID uuid.UUID) ([]domain.RawContact, error) {
	const query = `
		SELECT id, organization_id, aggregate_id, aggregation_mode, display_name_cache,
		       account_name, custom_ringtone, send_to_voicemail, last_time_contacted,
		       times_contacted, starred, is_restricted
		FROM raw_contacts
		WHERE aggregate_id = $1
		ORDER BY id`

	rows, err := r.tx.Query(ctx, query, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("repository: members: %w", err)
	}
	defer rows.Close()

	var out []domain.RawContact
	for rows.Next() {
		var rc domain.RawContact
		var mode int
		if err := rows.Scan(
			&rc.ID, &rc.OrganizationID, &rc.AggregateID, &mode, &rc.DisplayNameCache,
			&rc.AccountName, &rc.CustomRingtone, &rc.SendToVoicemail, &rc.LastTimeContacted,
			&rc.TimesContacted, &rc.Starred, &rc.IsRestricted,
		); err != nil {
			return nil, fmt.Errorf("repository: scan member: %w", err)
		}
		rc.AggregationMode = domain.AggregationMode(mode)
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *rawContactsRepo) PendingDefault(ctx context.Context, organizationID uuid.UUID) (ports.PendingCursor, error) {
	const countQuery = `
		SELECT count(*) FROM raw_contacts
		WHERE organization_id = $1 AND aggregate_id IS NULL AND aggregation_mode = 0`
	var total int
	if err := r.tx.QueryRow(ctx, countQuery, organizationID).Scan(&total); err != nil {
		return nil, fmt.Errorf("repository: count pending: %w", err)
	}

	const query = `
		SELECT id, organization_id, aggregate_id, aggregation_mode, display_name_cache,
		       account_name, custom_ringtone, send_to_voicemail, last_time_contacted,
		       times_contacted, starred, is_restricted
		FROM raw_contacts
		WHERE organization_id = $1 AND aggregate_id IS NULL AND aggregation_mode = 0
		ORDER BY id`
	rows, err := r.tx.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("repository: open pending cursor: %w", err)
	}

	return &pendingCursor{rows: rows, total: total}, nil
}

// pendingCursor adapts a pgx.Rows to ports.PendingCursor.
type pendingCursor struct {
	rows  pgx.Rows
	total int
}

func (c *pendingCursor) Total() int { return c.total }

func (c *pendingCursor) Next(ctx context.Context) (domain.RawContact, bool, error) {
	if !c.rows.Next() {
		return domain.RawContact{}, false, c.rows.Err()
	}
	var rc domain.RawContact
	var mode int
	err := c.rows.Scan(
		&rc.ID, &rc.OrganizationID, &rc.AggregateID, &mode, &rc.DisplayNameCache,
		&rc.AccountName, &rc.CustomRingtone, &rc.SendToVoicemail, &rc.LastTimeContacted,
		&rc.TimesContacted, &rc.Starred, &rc.IsRestricted,
	)
	if err != nil {
		return domain.RawContact{}, false, fmt.Errorf("repository: scan pending row: %w", err)
	}
	rc.AggregationMode = domain.AggregationMode(mode)
	return rc, true, nil
}

func (c *pendingCursor) Close(ctx context.Context) error {
	c.rows.Close()
	return nil
}
