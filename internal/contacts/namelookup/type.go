// Package namelookup builds and classifies the NameLookupEntry candidates
// the matcher scores against: the per-raw-contact index of normalized name
// keys tagged by the structured-name derivation that produced them.
package namelookup

// Type tags a NameLookupEntry with the derivation that produced its
// normalized_name, so the matcher's scoring table can weight pairs
// differently depending on which two derivations are being compared.
type Type int

const (
	TypeUnknown Type = iota
	// FullName is "given·family" joined by a separator.
	FullName
	// FullNameReverse is "family·given".
	FullNameReverse
	// FullNameConcatenated is "givenfamily" with no separator.
	FullNameConcatenated
	// FullNameReverseConcatenated is "familygiven" with no separator.
	FullNameReverseConcatenated
	// FullNameWithNickname substitutes a nickname for the given name.
	FullNameWithNickname
	// FullNameWithNicknameReverse substitutes a nickname for the given name,
	// reversed.
	FullNameWithNicknameReverse
	// GivenNameOnly is the given name alone.
	GivenNameOnly
	// GivenNameOnlyAsNickname is the given name alone, treated as if it were
	// itself a nickname (so it can match a peer's NICKNAME row).
	GivenNameOnlyAsNickname
	// FamilyNameOnly is the family name alone.
	FamilyNameOnly
	// FamilyNameOnlyAsNickname is the family name alone, treated as if it
	// were itself a nickname.
	FamilyNameOnlyAsNickname
	// Nickname is a free-form nickname data row.
	Nickname
	// EmailBasedNickname is the local-part of an email address, used as a
	// name-match candidate. Never stored as a NameLookupEntry on re-index
	// (rebuilt fresh from the email row during every aggregation pass).
	EmailBasedNickname
)

// IsBasedOnStructuredName reports whether t is derived from a StructuredName
// data row (given/family name), as opposed to a free-form Nickname row or an
// EmailBasedNickname. The secondary-match pass only cross-matches
// structured-name-derived candidates.
func IsBasedOnStructuredName(t Type) bool {
	switch t {
	case FullName, FullNameReverse, FullNameConcatenated, FullNameReverseConcatenated,
		FullNameWithNickname, FullNameWithNicknameReverse,
		GivenNameOnly, GivenNameOnlyAsNickname, FamilyNameOnly, FamilyNameOnlyAsNickname:
		return true
	default:
		return false
	}
}

// String returns the tag's name, used for logging and test failure messages.
func (t Type) String() string {
	switch t {
	case FullName:
		return "FULL_NAME"
	case FullNameReverse:
		return "FULL_NAME_REVERSE"
	case FullNameConcatenated:
		return "FULL_NAME_CONCATENATED"
	case FullNameReverseConcatenated:
		return "FULL_NAME_REVERSE_CONCATENATED"
	case FullNameWithNickname:
		return "FULL_NAME_WITH_NICKNAME"
	case FullNameWithNicknameReverse:
		return "FULL_NAME_WITH_NICKNAME_REVERSE"
	case GivenNameOnly:
		return "GIVEN_NAME_ONLY"
	case GivenNameOnlyAsNickname:
		return "GIVEN_NAME_ONLY_AS_NICKNAME"
	case FamilyNameOnly:
		return "FAMILY_NAME_ONLY"
	case FamilyNameOnlyAsNickname:
		return "FAMILY_NAME_ONLY_AS_NICKNAME"
	case Nickname:
		return "NICKNAME"
	case EmailBasedNickname:
		return "EMAIL_BASED_NICKNAME"
	default:
		return "UNKNOWN"
	}
}
