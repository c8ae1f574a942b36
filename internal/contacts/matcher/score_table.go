package matcher

import "portal_final_backend/internal/contacts/namelookup"

// typeCount bounds the scoring table; namelookup.Type values are small
// contiguous ints starting at namelookup.TypeUnknown.
const typeCount = int(namelookup.EmailBasedNickname) + 1

// scoreTable[t1][t2] is the name-match score awarded when a candidate
// tagged t1 matches a target tagged t2. Filled symmetrically by add() so
// lookup order never matters: score(t1,t2) = score(t2,t1).
var scoreTable [typeCount][typeCount]int

func add(t1, t2 namelookup.Type, score int) {
	scoreTable[t1][t2] = score
	scoreTable[t2][t1] = score
}

func init() {
	// Exact full-name pairings score highest.
	add(namelookup.FullName, namelookup.FullName, 40)
	add(namelookup.FullNameReverse, namelookup.FullNameReverse, 40)
	add(namelookup.FullNameConcatenated, namelookup.FullNameConcatenated, 38)
	add(namelookup.FullNameReverseConcatenated, namelookup.FullNameReverseConcatenated, 38)
	add(namelookup.FullName, namelookup.FullNameConcatenated, 37)
	add(namelookup.FullNameReverse, namelookup.FullNameReverseConcatenated, 37)
	add(namelookup.FullName, namelookup.FullNameReverse, 34)
	add(namelookup.FullName, namelookup.FullNameReverseConcatenated, 32)
	add(namelookup.FullNameReverse, namelookup.FullNameConcatenated, 32)
	add(namelookup.FullNameConcatenated, namelookup.FullNameReverseConcatenated, 30)

	// Nickname-substituted full-name pairings sit between exact full-name
	// and single-field matches.
	add(namelookup.FullNameWithNickname, namelookup.FullNameWithNickname, 32)
	add(namelookup.FullNameWithNicknameReverse, namelookup.FullNameWithNicknameReverse, 32)
	add(namelookup.FullNameWithNickname, namelookup.FullNameWithNicknameReverse, 28)
	add(namelookup.FullNameWithNickname, namelookup.FullName, 30)
	add(namelookup.FullNameWithNicknameReverse, namelookup.FullNameReverse, 30)
	add(namelookup.FullNameWithNickname, namelookup.FullNameConcatenated, 26)
	add(namelookup.FullNameWithNicknameReverse, namelookup.FullNameReverseConcatenated, 26)

	// Free-form and email-derived nicknames.
	add(namelookup.Nickname, namelookup.Nickname, 22)
	add(namelookup.Nickname, namelookup.GivenNameOnlyAsNickname, 18)
	add(namelookup.Nickname, namelookup.FamilyNameOnlyAsNickname, 12)
	add(namelookup.Nickname, namelookup.FullNameWithNickname, 16)
	add(namelookup.Nickname, namelookup.FullNameWithNicknameReverse, 16)
	add(namelookup.EmailBasedNickname, namelookup.EmailBasedNickname, 20)
	add(namelookup.EmailBasedNickname, namelookup.FullName, 20)
	// An email local-part is built by squashing given+family together with
	// no separator, so an exact string match against FullNameConcatenated
	// scores 30, the same as a FullNameConcatenated/FullNameReverseConcatenated
	// pairing.
	add(namelookup.EmailBasedNickname, namelookup.FullNameConcatenated, 30)
	add(namelookup.EmailBasedNickname, namelookup.GivenNameOnly, 15)
	add(namelookup.EmailBasedNickname, namelookup.Nickname, 16)

	// Same-tag single-field matches score lowest: least specific, most
	// collision-prone.
	add(namelookup.GivenNameOnly, namelookup.GivenNameOnly, 8)
	add(namelookup.FamilyNameOnly, namelookup.FamilyNameOnly, 8)
	add(namelookup.GivenNameOnlyAsNickname, namelookup.GivenNameOnlyAsNickname, 10)
	add(namelookup.FamilyNameOnlyAsNickname, namelookup.FamilyNameOnlyAsNickname, 8)
	add(namelookup.GivenNameOnly, namelookup.FamilyNameOnly, 4)
}

// score returns the raw table lookup for the pair (t1, t2), 0 if no entry
// exists for that combination.
func score(t1, t2 namelookup.Type) int {
	if int(t1) < 0 || int(t1) >= typeCount || int(t2) < 0 || int(t2) >= typeCount {
		return 0
	}
	return scoreTable[t1][t2]
}
