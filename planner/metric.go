package planner

import "github.com/urbanlab/siting/planner/algo"

// Accessibility is the weighted round-trip metric plus its coverage
// aggregates.
type Accessibility struct {
	// weighted average over reachable tracts; 0 when nothing is reachable
	AvgMinutes float64 `json:"avgMinutes"`
	// tracts/weight within the policy serve threshold
	ServedTracts int   `json:"servedTracts"`
	ServedWeight int64 `json:"servedWeight"`
	// weight of tracts not (yet) served, unreachable ones included
	UnservedWeight int64 `json:"unservedWeight"`
}

// ComputeAccessibility folds current round-trip times and weights into
// the metric in a single pass. Pure: no state is read or written.
// Unreachable tracts are excluded from both numerator and denominator
// and show up as unserved weight instead; zero-weight tracts are legal
// and contribute nothing to either sum.
func ComputeAccessibility(current []float64, weights []int64, pol Policy) Accessibility {
	var num float64
	var den int64
	var a Accessibility
	for i, d := range current {
		w := weights[i]
		if algo.Reachable(d) {
			num += float64(w) * d
			den += w
		}
		if pol.Served(d) {
			a.ServedTracts++
			a.ServedWeight += w
		} else {
			a.UnservedWeight += w
		}
	}
	if den > 0 {
		a.AvgMinutes = num / float64(den)
	}
	return a
}
