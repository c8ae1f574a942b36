package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"portal_final_backend/internal/contacts/namelookup"
	"portal_final_backend/internal/contacts/ports"
)

type nameLookupRepo struct {
	tx pgx.Tx
}

func (r *nameLookupRepo) ReplaceForRawContact(ctx context.Context, rawContactID uuid.UUID, entries []namelookup.Entry) error {
	const deleteQuery = `DELETE FROM name_lookup_entries WHERE raw_contact_id = $1`
	if _, err := r.tx.Exec(ctx, deleteQuery, rawContactID); err != nil {
		return fmt.Errorf("repository: clear name lookup: %w", err)
	}

	const insertQuery = `INSERT INTO name_lookup_entries (raw_contact_id, normalized_name, tag) VALUES ($1, $2, $3)`
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(insertQuery, rawContactID, e.NormalizedName, int(e.Type))
	}
	if batch.Len() == 0 {
		return nil
	}

	br := r.tx.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("repository: insert name lookup entry: %w", err)
		}
	}
	return nil
}

func (r *nameLookupRepo) MatchAggregated(ctx context.Context, organizationID uuid.UUID, names []string) ([]ports.MatchRow, error) {
	if len(names) == 0 {
		return nil, nil
	}
	const query = `
		SELECT a.raw_contact_id, rc.aggregate_id, a.normalized_name, a.tag
		FROM name_lookup_entries a
		JOIN raw_contacts rc ON rc.id = a.raw_contact_id
		WHERE rc.organization_id = $1 AND rc.aggregate_id IS NOT NULL AND a.normalized_name = ANY($2)`

	rows, err := r.tx.Query(ctx, query, organizationID, names)
	if err != nil {
		return nil, fmt.Errorf("repository: match aggregated: %w", err)
	}
	defer rows.Close()

	var out []ports.MatchRow
	for rows.Next() {
		var m ports.MatchRow
		var tag int
		if err := rows.Scan(&m.RawContactID, &m.AggregateID, &m.Name, &tag); err != nil {
			return nil, fmt.Errorf("repository: scan match row: %w", err)
		}
		m.Type = namelookup.Type(tag)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *nameLookupRepo) ExactType(ctx context.Context, organizationID uuid.UUID, name string, t namelookup.Type) ([]ports.MatchRow, error) {
	const query = `
		SELECT a.raw_contact_id, rc.aggregate_id, a.normalized_name, a.tag
		FROM name_lookup_entries a
		JOIN raw_contacts rc ON rc.id = a.raw_contact_id
		WHERE rc.organization_id = $1 AND rc.aggregate_id IS NOT NULL
		  AND a.normalized_name = $2 AND a.tag = $3`

	rows, err := r.tx.Query(ctx, query, organizationID, name, int(t))
	if err != nil {
		return nil, fmt.Errorf("repository: exact type lookup: %w", err)
	}
	defer rows.Close()

	var out []ports.MatchRow
	for rows.Next() {
		var m ports.MatchRow
		var tag int
		if err := rows.Scan(&m.RawContactID, &m.AggregateID, &m.Name, &tag); err != nil {
			return nil, fmt.Errorf("repository: scan exact type row: %w", err)
		}
		m.Type = namelookup.Type(tag)
		out = append(out, m)
	}
	return out, rows.Err()
}
