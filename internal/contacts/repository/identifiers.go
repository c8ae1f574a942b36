package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"portal_final_backend/internal/contacts/ports"
)

type phoneIndexRepo struct {
	tx pgx.Tx
}

// Lookup restricts to aggregated raw contacts with a Phone data row whose
// normalized value equals e164. Phone data rows store mimetype=3
// (domain.MimeTypePhone) with the E.164 value already written into Data2 by
// ingest; this index queries that directly rather than maintaining a
// separate table.
func (r *phoneIndexRepo) Lookup(ctx context.Context, organizationID uuid.UUID, e164 string) ([]ports.AggregatedHit, error) {
	const query = `
		SELECT rc.aggregate_id, d.raw_contact_id
		FROM contact_data_rows d
		JOIN raw_contacts rc ON rc.id = d.raw_contact_id
		WHERE rc.organization_id = $1 AND rc.aggregate_id IS NOT NULL
		  AND d.mimetype = 3 AND d.data2 = $2`

	rows, err := r.tx.Query(ctx, query, organizationID, e164)
	if err != nil {
		return nil, fmt.Errorf("repository: phone lookup: %w", err)
	}
	defer rows.Close()

	var out []ports.AggregatedHit
	for rows.Next() {
		var h ports.AggregatedHit
		if err := rows.Scan(&h.AggregateID, &h.RawContactID); err != nil {
			return nil, fmt.Errorf("repository: scan phone hit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type emailIndexRepo struct {
	tx pgx.Tx
}

// Lookup is exact, case-insensitive address equality (mimetype=2,
// domain.MimeTypeEmail) against aggregated raw contacts.
func (r *emailIndexRepo) Lookup(ctx context.Context, organizationID uuid.UUID, address string) ([]ports.AggregatedHit, error) {
	const query = `
		SELECT rc.aggregate_id, d.raw_contact_id
		FROM contact_data_rows d
		JOIN raw_contacts rc ON rc.id = d.raw_contact_id
		WHERE rc.organization_id = $1 AND rc.aggregate_id IS NOT NULL
		  AND d.mimetype = 2 AND lower(d.data2) = lower($2)`

	rows, err := r.tx.Query(ctx, query, organizationID, address)
	if err != nil {
		return nil, fmt.Errorf("repository: email lookup: %w", err)
	}
	defer rows.Close()

	var out []ports.AggregatedHit
	for rows.Next() {
		var h ports.AggregatedHit
		if err := rows.Scan(&h.AggregateID, &h.RawContactID); err != nil {
			return nil, fmt.Errorf("repository: scan email hit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
