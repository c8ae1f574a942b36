package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"portal_final_backend/internal/contacts/domain"
)

type dataRowsRepo struct {
	tx pgx.Tx
}

func (r *dataRowsRepo) ForRawContact(ctx context.Context, rawContactID uuid.UUID) ([]domain.DataRow, error) {
	const query = `
		SELECT id, raw_contact_id, organization_id, mimetype, data1, data2, is_primary
		FROM contact_data_rows
		WHERE raw_contact_id = $1
		ORDER BY id`

	rows, err := r.tx.Query(ctx, query, rawContactID)
	if err != nil {
		return nil, fmt.Errorf("repository: data rows: %w", err)
	}
	defer rows.Close()

	var out []domain.DataRow
	for rows.Next() {
		var dr domain.DataRow
		var mimeType int
		if err := rows.Scan(&dr.ID, &dr.RawContactID, &dr.OrganizationID, &mimeType, &dr.Data1, &dr.Data2, &dr.IsPrimary); err != nil {
			return nil, fmt.Errorf("repository: scan data row: %w", err)
		}
		dr.MimeType = domain.MimeType(mimeType)
		out = append(out, dr)
	}
	return out, rows.Err()
}
