package namelookup

import (
	"strings"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts/normalize"
)

// Entry is a single (raw_contact_id, normalized_name, tag) lookup row.
type Entry struct {
	RawContactID   uuid.UUID
	NormalizedName string
	Type           Type
}

// Mode selects which candidate set BuildCandidates produces.
type Mode int

const (
	// ModeMatchCandidates produces the full expansion used while matching a
	// raw contact against the existing index, including the single-token
	// GIVEN_NAME_ONLY/FAMILY_NAME_ONLY fallback.
	ModeMatchCandidates Mode = iota
	// ModeInsertLookupData produces the reduced expansion written back to
	// NameLookupEntry on re-index: the single-token fallback is dropped to
	// keep the index small.
	ModeInsertLookupData
)

// BuildCandidates expands a structured name (given, family) into the set of
// normalized-name candidates tagged by derivation. clusters supplies
// nickname substitutions for FULL_NAME_WITH_NICKNAME[_REVERSE]; pass nil to
// skip nickname expansion entirely.
func BuildCandidates(rawContactID uuid.UUID, given, family string, clusters normalize.ClusterTable, mode Mode) []Entry {
	ng := normalize.Normalize(given)
	nf := normalize.Normalize(family)

	var entries []Entry
	add := func(name string, t Type) {
		if name == "" {
			return
		}
		entries = append(entries, Entry{RawContactID: rawContactID, NormalizedName: name, Type: t})
	}

	if ng != "" && nf != "" {
		add(ng+" "+nf, FullName)
		add(nf+" "+ng, FullNameReverse)
		add(ng+nf, FullNameConcatenated)
		add(nf+ng, FullNameReverseConcatenated)
	}

	if mode == ModeMatchCandidates {
		add(ng, GivenNameOnly)
		add(ng, GivenNameOnlyAsNickname)
		add(nf, FamilyNameOnly)
		add(nf, FamilyNameOnlyAsNickname)
	}

	if clusters != nil && ng != "" && nf != "" {
		for _, nickname := range clusters.Cluster(ng) {
			if nickname == ng {
				continue
			}
			add(nickname+" "+nf, FullNameWithNickname)
			add(nf+" "+nickname, FullNameWithNicknameReverse)
		}
	}

	return entries
}

// NicknameCandidate builds the lookup entry for a free-form Nickname data
// row.
func NicknameCandidate(rawContactID uuid.UUID, nickname string) Entry {
	return Entry{RawContactID: rawContactID, NormalizedName: normalize.Normalize(nickname), Type: Nickname}
}

// EmailBasedCandidate derives an EMAIL_BASED_NICKNAME candidate from an
// email address's local-part. Never persisted as a NameLookupEntry row: the
// aggregator re-derives it from the Email data row on every pass instead.
func EmailBasedCandidate(rawContactID uuid.UUID, email string) Entry {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	return Entry{RawContactID: rawContactID, NormalizedName: normalize.Normalize(local), Type: EmailBasedNickname}
}
