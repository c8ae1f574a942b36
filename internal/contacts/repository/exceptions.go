package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"portal_final_backend/internal/contacts/exceptions"
)

type exceptionsRepo struct {
	tx pgx.Tx
}

func (r *exceptionsRepo) ForRawContact(ctx context.Context, rawContactID uuid.UUID) ([]exceptions.Exception, error) {
	const query = `
		SELECT id, organization_id, raw_contact_id_1, raw_contact_id_2, keep_type
		FROM aggregation_exceptions
		WHERE raw_contact_id_1 = $1 OR raw_contact_id_2 = $1`

	rows, err := r.tx.Query(ctx, query, rawContactID)
	if err != nil {
		return nil, fmt.Errorf("repository: exceptions: %w", err)
	}
	defer rows.Close()

	var out []exceptions.Exception
	for rows.Next() {
		var e exceptions.Exception
		var keepType int
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.RawContactID1, &e.RawContactID2, &keepType); err != nil {
			return nil, fmt.Errorf("repository: scan exception: %w", err)
		}
		e.Type = exceptions.KeepType(keepType)
		out = append(out, e)
	}
	return out, rows.Err()
}
