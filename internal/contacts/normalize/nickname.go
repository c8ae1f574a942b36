package normalize

// ClusterTable maps a canonical given name to the set of nicknames that
// should be treated as the same person's name. It is an injectable
// collaborator so tests can swap in a smaller table. A name is its own
// cluster member, so lookups are symmetric: "bob" and "robert" both
// resolve to the same set.
type ClusterTable interface {
	// Cluster returns every name (normalized) considered equivalent to
	// normalizedName, including normalizedName itself. Returns nil if
	// normalizedName is not known to the table.
	Cluster(normalizedName string) []string
}

// staticClusterTable is a static-lifetime map built once at init and shared
// by every caller; it never mutates after construction.
type staticClusterTable struct {
	// byMember maps every cluster member to the full cluster, pre-expanded
	// so Cluster is a single map lookup.
	byMember map[string][]string
}

// Cluster implements ClusterTable.
func (t *staticClusterTable) Cluster(normalizedName string) []string {
	return t.byMember[normalizedName]
}

// canonicalClusters is the seed data: canonical name -> nickname variants.
// Kept small and illustrative; a production deployment would load this
// from a data file.
var canonicalClusters = map[string][]string{
	"robert":    {"bob", "rob", "bobby", "robbie"},
	"william":   {"bill", "will", "billy", "liam"},
	"richard":   {"rick", "dick", "rich", "richie"},
	"james":     {"jim", "jimmy", "jamie"},
	"john":      {"jack", "johnny"},
	"joseph":    {"joe", "joey"},
	"margaret":  {"maggie", "meg", "peggy"},
	"elizabeth": {"liz", "beth", "betty", "eliza"},
	"katherine": {"kate", "katie", "kathy"},
	"michael":   {"mike", "mikey"},
	"daniel":    {"dan", "danny"},
	"christopher": {"chris", "topher"},
	"alexander": {"alex", "sasha"},
	"benjamin":  {"ben", "benny"},
	"theodore":  {"ted", "teddy", "theo"},
}

// DefaultNicknameClusters is the static ClusterTable wired by default into
// the candidate builder and the aggregator.
var DefaultNicknameClusters ClusterTable = buildStaticClusterTable(canonicalClusters)

func buildStaticClusterTable(canonical map[string][]string) *staticClusterTable {
	byMember := make(map[string][]string, len(canonical)*4)
	for canonicalName, variants := range canonical {
		full := make([]string, 0, len(variants)+1)
		full = append(full, canonicalName)
		full = append(full, variants...)
		for _, member := range full {
			byMember[member] = full
		}
	}
	return &staticClusterTable{byMember: byMember}
}
