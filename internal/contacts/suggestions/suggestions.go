// Package suggestions implements the aggregation-suggestion query: given an
// aggregate, find other aggregates that plausibly represent the same
// person, for a merge-suggestion UI.
package suggestions

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/matcher"
	"portal_final_backend/internal/contacts/namelookup"
	"portal_final_backend/internal/contacts/normalize"
	"portal_final_backend/internal/contacts/ports"
)

// Query runs the aggregation-suggestion lookup: keep_out the aggregate
// itself, run the primary-match name lookup (the same name-candidate step
// the aggregator uses, without the join/promote steps that follow it) for
// each of its members, and return up to max aggregate ids ordered by
// descending score.
func Query(ctx context.Context, tx ports.Tx, aggregateID uuid.UUID, max, suggestThreshold int, clusters normalize.ClusterTable) ([]uuid.UUID, error) {
	m := matcher.New()
	m.KeepOut(aggregateID)

	members, err := tx.RawContacts().Members(ctx, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("suggestions: load members: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	for _, member := range members {
		rows, err := tx.DataRows().ForRawContact(ctx, member.ID)
		if err != nil {
			return nil, fmt.Errorf("suggestions: load data rows: %w", err)
		}
		if err := matchOneMember(ctx, tx, m, member, rows, clusters); err != nil {
			return nil, err
		}
	}

	return m.PickBestMatches(max, suggestThreshold), nil
}

// matchOneMember mirrors the aggregator's primary-match step for a single
// raw contact, feeding hits into the shared matcher m instead of picking a
// final answer itself.
func matchOneMember(ctx context.Context, tx ports.Tx, m *matcher.Matcher, rc domain.RawContact, rows []domain.DataRow, clusters normalize.ClusterTable) error {
	var candidates []namelookup.Entry

	for _, row := range rows {
		switch row.MimeType {
		case domain.MimeTypeStructuredName:
			candidates = append(candidates, namelookup.BuildCandidates(rc.ID, row.GivenName(), row.FamilyName(), clusters, namelookup.ModeMatchCandidates)...)
		case domain.MimeTypeEmail:
			candidates = append(candidates, namelookup.EmailBasedCandidate(rc.ID, row.Value()))
		case domain.MimeTypeNickname:
			candidates = append(candidates, namelookup.NicknameCandidate(rc.ID, row.Value()))
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	names := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if !seen[c.NormalizedName] {
			seen[c.NormalizedName] = true
			names = append(names, c.NormalizedName)
		}
	}

	hits, err := tx.NameLookup().MatchAggregated(ctx, rc.OrganizationID, names)
	if err != nil {
		return fmt.Errorf("suggestions: match lookup: %w", err)
	}

	for _, hit := range hits {
		for _, c := range candidates {
			if c.NormalizedName == hit.Name {
				m.MatchName(hit.AggregateID, c.Type, c.NormalizedName, hit.Type, hit.Name, false)
			}
		}
	}
	return nil
}

// Reorder materializes an id-ordered slice of aggregates into the order
// given by ids. It is a thin projection, not a new data model. Aggregates
// not present in ids are dropped.
func Reorder(aggregates []domain.Aggregate, ids []uuid.UUID) []domain.Aggregate {
	byID := make(map[uuid.UUID]domain.Aggregate, len(aggregates))
	for _, a := range aggregates {
		byID[a.ID] = a
	}

	out := make([]domain.Aggregate, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// ReorderingCursor replays a set of aggregates, keyed by id, in score order.
// It holds the whole result set in memory, since the store returns rows
// ordered by id and the desired order is unrelated.
type ReorderingCursor struct {
	rows []domain.Aggregate
	pos  int
}

// NewReorderingCursor builds a cursor over byID's aggregates in the order
// given by ids.
func NewReorderingCursor(byID map[uuid.UUID]domain.Aggregate, ids []uuid.UUID) *ReorderingCursor {
	rows := make([]domain.Aggregate, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			rows = append(rows, a)
		}
	}
	return &ReorderingCursor{rows: rows}
}

// Next returns the next aggregate in score order, or ok=false when
// exhausted.
func (c *ReorderingCursor) Next() (domain.Aggregate, bool) {
	if c.pos >= len(c.rows) {
		return domain.Aggregate{}, false
	}
	a := c.rows[c.pos]
	c.pos++
	return a, true
}

// sortByScoreDesc is a small helper kept for tests that need to assert the
// reordering matches an expected score ranking independently computed.
func sortByScoreDesc(scores map[uuid.UUID]int, ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return scores[out[i]] > scores[out[j]] })
	return out
}
