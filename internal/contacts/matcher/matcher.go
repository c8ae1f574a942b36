// Package matcher scores candidate aggregates against a raw contact being
// aggregated. A Matcher is pass-local: one instance is reused across raw
// contacts in a background pass, cleared between them, never shared across
// goroutines.
package matcher

import (
	"sort"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/namelookup"
)

// entry is one aggregate's running scoreboard row.
type entry struct {
	nameScore   int
	phoneHit    bool
	emailHit    bool
	nicknameHit bool
	keptOut     bool
}

// Matcher is the per-pass scoreboard: aggregate_id -> name score + secondary
// hit bits. A flat map, no inheritance, no listener pattern.
type Matcher struct {
	entries map[uuid.UUID]*entry
}

// New returns a ready-to-use Matcher.
func New() *Matcher {
	return &Matcher{entries: make(map[uuid.UUID]*entry)}
}

// Clear resets the scoreboard for reuse against the next raw contact.
func (m *Matcher) Clear() {
	for k := range m.entries {
		delete(m.entries, k)
	}
}

func (m *Matcher) get(aggregateID uuid.UUID) *entry {
	e, ok := m.entries[aggregateID]
	if !ok {
		e = &entry{}
		m.entries[aggregateID] = e
	}
	return e
}

// KeepOut marks aggregateID ineligible for this raw contact. Further score
// updates against it are ignored and the final pickers skip it.
func (m *Matcher) KeepOut(aggregateID uuid.UUID) {
	m.get(aggregateID).keptOut = true
}

// MatchName looks up the scoring table entry for (candidateType, targetType)
// and, if approximate is set, attenuates it by the edit distance between the
// two normalized names, then raises aggregateID's running name score to the
// max of its current value and the computed score.
func (m *Matcher) MatchName(aggregateID uuid.UUID, candidateType namelookup.Type, candidateName string, targetType namelookup.Type, targetName string, approximate bool) {
	e := m.get(aggregateID)
	if e.keptOut {
		return
	}

	base := score(candidateType, targetType)
	if base == 0 {
		return
	}

	s := base
	if approximate {
		s = attenuate(base, candidateName, targetName)
		if s == 0 {
			return
		}
	}

	if s > e.nameScore {
		e.nameScore = s
	}
}

// attenuate scales base down by the proportion of edits needed to turn a
// into b relative to the longer string's length. A distance equal to or
// exceeding the longer string's length zeroes the score.
func attenuate(base int, a, b string) int {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return base
	}
	d := editDistance(ra, rb)
	if d >= maxLen {
		return 0
	}
	return base * (maxLen - d) / maxLen
}

// UpdateScoreWithPhoneMatch sets the phone-secondary bit on aggregateID.
func (m *Matcher) UpdateScoreWithPhoneMatch(aggregateID uuid.UUID) {
	e := m.get(aggregateID)
	if !e.keptOut {
		e.phoneHit = true
	}
}

// UpdateScoreWithEmailMatch sets the email-secondary bit on aggregateID.
func (m *Matcher) UpdateScoreWithEmailMatch(aggregateID uuid.UUID) {
	e := m.get(aggregateID)
	if !e.keptOut {
		e.emailHit = true
	}
}

// UpdateScoreWithNicknameMatch sets the nickname-secondary bit on
// aggregateID.
func (m *Matcher) UpdateScoreWithNicknameMatch(aggregateID uuid.UUID) {
	e := m.get(aggregateID)
	if !e.keptOut {
		e.nicknameHit = true
	}
}

// PrepareSecondaryMatchCandidates returns aggregates whose name score is
// below primaryThreshold but whose secondary bits (phone or email) indicate
// a strong identifier hit. These feed the secondary-data pass.
func (m *Matcher) PrepareSecondaryMatchCandidates(primaryThreshold int) []uuid.UUID {
	var out []uuid.UUID
	for id, e := range m.entries {
		if e.keptOut {
			continue
		}
		if e.nameScore >= primaryThreshold {
			continue
		}
		if e.phoneHit || e.emailHit {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i], out[j]) })
	return out
}

// PickBestMatch returns the aggregate with the highest name score at or
// above threshold, tie-broken by smallest aggregate id, and true. Returns
// the zero UUID and false if no eligible aggregate clears the threshold.
func (m *Matcher) PickBestMatch(threshold int) (uuid.UUID, bool) {
	var best uuid.UUID
	bestScore := -1
	found := false

	for id, e := range m.entries {
		if e.keptOut || e.nameScore < threshold {
			continue
		}
		if e.nameScore > bestScore || (e.nameScore == bestScore && idLess(id, best)) {
			best = id
			bestScore = e.nameScore
			found = true
		}
	}
	return best, found
}

// PickBestMatches returns up to k aggregates at or above threshold, ordered
// by descending score then ascending id, for the suggestion UI.
func (m *Matcher) PickBestMatches(k, threshold int) []uuid.UUID {
	type scored struct {
		id    uuid.UUID
		score int
	}
	var candidates []scored
	for id, e := range m.entries {
		if e.keptOut || e.nameScore < threshold {
			continue
		}
		candidates = append(candidates, scored{id, e.nameScore})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return idLess(candidates[i].id, candidates[j].id)
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	out := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}

func idLess(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
