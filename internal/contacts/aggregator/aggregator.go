// Package aggregator implements the single-raw-contact aggregation
// algorithm: given one raw contact, decide which aggregate it belongs to
// (joining an existing one or creating a fresh one), rebuild its name-lookup
// index, and recompute the aggregate's derived fields.
package aggregator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/domain"
	"portal_final_backend/internal/contacts/exceptions"
	"portal_final_backend/internal/contacts/matcher"
	"portal_final_backend/internal/contacts/namelookup"
	"portal_final_backend/internal/contacts/normalize"
	"portal_final_backend/internal/contacts/ports"
	"portal_final_backend/platform/phone"
)

// Aggregator drives the matcher against one transaction's view of the
// store. Not safe for concurrent use; callers serialize access via the
// scheduler's single-writer discipline (see the scheduler package).
type Aggregator struct {
	thresholds Thresholds
	clusters   normalize.ClusterTable
	matcher    *matcher.Matcher
}

// New returns an Aggregator configured with the given acceptance thresholds
// and nickname cluster table. Pass normalize.DefaultNicknameClusters unless
// a test needs a different table.
func New(thresholds Thresholds, clusters normalize.ClusterTable) *Aggregator {
	return &Aggregator{
		thresholds: thresholds,
		clusters:   clusters,
		matcher:    matcher.New(),
	}
}

// AggregateContact runs the nine-step algorithm for rawContactID inside tx,
// returning the aggregate it was assigned to.
func (a *Aggregator) AggregateContact(ctx context.Context, tx ports.Tx, rawContactID uuid.UUID) (uuid.UUID, error) {
	a.matcher.Clear()

	rc, err := tx.RawContacts().Get(ctx, rawContactID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("aggregator: load raw contact: %w", err)
	}

	rows, err := tx.DataRows().ForRawContact(ctx, rawContactID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("aggregator: load data rows: %w", err)
	}

	// Step 1: exception pre-check.
	chosen, chosenOK, err := a.applyExceptions(ctx, tx, rc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("aggregator: exceptions: %w", err)
	}

	var candidates []namelookup.Entry

	if !chosenOK {
		// Step 2: primary match on data.
		candidates, err = a.primaryMatch(ctx, tx, rc, rows)
		if err != nil {
			return uuid.Nil, fmt.Errorf("aggregator: primary match: %w", err)
		}
		if id, ok := a.matcher.PickBestMatch(a.thresholds.Primary); ok {
			chosen, chosenOK = id, true
		}
	}

	if !chosenOK {
		// Step 3: secondary match.
		id, ok, err := a.secondaryMatch(ctx, tx, candidates)
		if err != nil {
			return uuid.Nil, fmt.Errorf("aggregator: secondary match: %w", err)
		}
		if ok {
			chosen, chosenOK = id, true
		}
	}

	// Step 4: create or join.
	if !chosenOK {
		agg, err := tx.Aggregates().Create(ctx, rc.OrganizationID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("aggregator: create aggregate: %w", err)
		}
		chosen = agg.ID
	}

	// Step 5: rewrite the name-lookup index from scratch.
	insertEntries := buildInsertEntries(rawContactID, rows, a.clusters)
	if err := tx.NameLookup().ReplaceForRawContact(ctx, rawContactID, insertEntries); err != nil {
		return uuid.Nil, fmt.Errorf("aggregator: rewrite name lookup: %w", err)
	}

	// Step 6: write back raw_contact.aggregate_id.
	if err := tx.RawContacts().SetAggregateID(ctx, rawContactID, chosen); err != nil {
		return uuid.Nil, fmt.Errorf("aggregator: write back aggregate id: %w", err)
	}

	// Step 7: recompute aggregate-derived fields.
	if err := DeriveFields(ctx, tx, chosen); err != nil {
		return uuid.Nil, fmt.Errorf("aggregator: derive fields: %w", err)
	}

	// Step 8: promote primaries.
	if err := PromotePrimaries(ctx, tx, chosen, rc, rows); err != nil {
		return uuid.Nil, fmt.Errorf("aggregator: promote primaries: %w", err)
	}

	// Step 9: refresh visibility.
	if err := RefreshVisibility(ctx, tx, chosen); err != nil {
		return uuid.Nil, fmt.Errorf("aggregator: refresh visibility: %w", err)
	}

	return chosen, nil
}

// applyExceptions implements step 1. It returns (aggregateID, true) the
// moment it finds a KEEP_IN peer that is already aggregated; every
// KEEP_OUT peer that is aggregated is marked on the matcher regardless, so
// later steps honor it even when no KEEP_IN short-circuit fires.
func (a *Aggregator) applyExceptions(ctx context.Context, tx ports.Tx, rc domain.RawContact) (uuid.UUID, bool, error) {
	excs, err := tx.Exceptions().ForRawContact(ctx, rc.ID)
	if err != nil {
		return uuid.Nil, false, err
	}

	var chosen uuid.UUID
	found := false

	for _, exc := range excs {
		peerID := exc.PeerOf(rc.ID)
		peer, err := tx.RawContacts().Get(ctx, peerID)
		if err != nil {
			continue
		}
		if peer.AggregateID == nil {
			continue
		}

		switch exc.Type {
		case exceptions.KeepIn:
			if !found {
				chosen, found = *peer.AggregateID, true
			}
		case exceptions.KeepOut:
			a.matcher.KeepOut(*peer.AggregateID)
		}
	}

	return chosen, found, nil
}

// primaryMatch implements step 2: scan typed data rows, run identifier
// lookups, collect name candidates, and bulk-match them against the
// existing index with approximate=false.
func (a *Aggregator) primaryMatch(ctx context.Context, tx ports.Tx, rc domain.RawContact, rows []domain.DataRow) ([]namelookup.Entry, error) {
	var candidates []namelookup.Entry

	for _, row := range rows {
		switch row.MimeType {
		case domain.MimeTypeStructuredName:
			candidates = append(candidates, namelookup.BuildCandidates(rc.ID, row.GivenName(), row.FamilyName(), a.clusters, namelookup.ModeMatchCandidates)...)

		case domain.MimeTypePhone:
			e164 := phone.NormalizeE164(row.Value())
			hits, err := tx.PhoneIndex().Lookup(ctx, rc.OrganizationID, e164)
			if err != nil {
				return nil, err
			}
			for _, h := range hits {
				a.matcher.UpdateScoreWithPhoneMatch(h.AggregateID)
			}

		case domain.MimeTypeEmail:
			hits, err := tx.EmailIndex().Lookup(ctx, rc.OrganizationID, row.Value())
			if err != nil {
				return nil, err
			}
			for _, h := range hits {
				a.matcher.UpdateScoreWithEmailMatch(h.AggregateID)
			}
			candidates = append(candidates, namelookup.EmailBasedCandidate(rc.ID, row.Value()))

		case domain.MimeTypeNickname:
			normalized := normalize.Normalize(row.Value())
			hits, err := tx.NameLookup().ExactType(ctx, rc.OrganizationID, normalized, namelookup.Nickname)
			if err != nil {
				return nil, err
			}
			for _, h := range hits {
				a.matcher.UpdateScoreWithNicknameMatch(h.AggregateID)
			}
			candidates = append(candidates, namelookup.NicknameCandidate(rc.ID, row.Value()))
		}
	}

	if len(candidates) == 0 {
		return candidates, nil
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
		return nil, err
	}

	for _, hit := range hits {
		for _, c := range candidates {
			if c.NormalizedName != hit.Name {
				continue
			}
			a.matcher.MatchName(hit.AggregateID, c.Type, c.NormalizedName, hit.Type, hit.Name, false)
		}
	}

	return candidates, nil
}

// secondaryMatch implements step 3: for every aggregate whose name score
// trails the primary threshold but has a phone or email hit, reload its
// members' structured-name candidates and cross-match against every
// structured-name-derived original candidate, approximately. The cross-match
// is quadratic in the two candidate-list lengths and is not bounded.
func (a *Aggregator) secondaryMatch(ctx context.Context, tx ports.Tx, candidates []namelookup.Entry) (uuid.UUID, bool, error) {
	structured := make([]namelookup.Entry, 0, len(candidates))
	for _, c := range candidates {
		if namelookup.IsBasedOnStructuredName(c.Type) {
			structured = append(structured, c)
		}
	}
	if len(structured) == 0 {
		return uuid.Nil, false, nil
	}

	aggIDs := a.matcher.PrepareSecondaryMatchCandidates(a.thresholds.Primary)
	for _, aggID := range aggIDs {
		members, err := tx.RawContacts().Members(ctx, aggID)
		if err != nil {
			return uuid.Nil, false, err
		}
		for _, member := range members {
			memberRows, err := tx.DataRows().ForRawContact(ctx, member.ID)
			if err != nil {
				return uuid.Nil, false, err
			}
			for _, mr := range memberRows {
				if mr.MimeType != domain.MimeTypeStructuredName {
					continue
				}
				loaded := namelookup.BuildCandidates(member.ID, mr.GivenName(), mr.FamilyName(), a.clusters, namelookup.ModeMatchCandidates)
				for _, candidate := range structured {
					for _, le := range loaded {
						a.matcher.MatchName(aggID, candidate.Type, candidate.NormalizedName, le.Type, le.NormalizedName, true)
					}
				}
			}
		}
	}

	return a.matcher.PickBestMatch(a.thresholds.Secondary)
}

// buildInsertEntries implements step 5's candidate set: structured-name
// expansions only, no single-token fallback, no email/nickname candidates
// (EMAIL_BASED_NICKNAME is deliberately never persisted — it is rebuilt
// fresh from the Email row on every pass).
func buildInsertEntries(rawContactID uuid.UUID, rows []domain.DataRow, clusters normalize.ClusterTable) []namelookup.Entry {
	var entries []namelookup.Entry
	for _, row := range rows {
		if row.MimeType != domain.MimeTypeStructuredName {
			continue
		}
		entries = append(entries, namelookup.BuildCandidates(rawContactID, row.GivenName(), row.FamilyName(), clusters, namelookup.ModeInsertLookupData)...)
	}
	return entries
}
