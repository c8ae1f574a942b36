package aggregator

// Thresholds holds the three score cut-offs that govern acceptance during
// aggregation and suggestion.
type Thresholds struct {
	Primary   int
	Secondary int
	Suggest   int
}
