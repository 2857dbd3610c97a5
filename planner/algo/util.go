package algo

import "math"

// Reachable reports whether a search cost denotes a finite path.
func Reachable(cost float64) bool {
	return !math.IsInf(cost, 1)
}
