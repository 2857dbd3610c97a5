package planner

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/urbanlab/siting/planner/algo"
)

func TestTransitHeuristicsSpeed(t *testing.T) {
	a := geometry.Point{X: 0, Y: 0}
	b := geometry.Point{X: 0, Y: algo.WALK_SPEED}

	// walk-only graph gets the tight walk-speed estimate
	h := NewTransitHeuristics(map[algo.Mode]bool{algo.MODE_WALK: true})
	assert.InDelta(t, 1.0, h.HeuristicEuclidean(a, b), 1e-9)

	// otherwise the fastest admitted mode bounds the estimate
	h = NewTransitHeuristics(map[algo.Mode]bool{algo.MODE_WALK: true, algo.MODE_BUS: true})
	assert.InDelta(t, algo.WALK_SPEED/algo.BUS_SPEED, h.HeuristicEuclidean(a, b), 1e-9)

	h = NewTransitHeuristics(DefaultPolicy().modeSet())
	assert.InDelta(t, algo.WALK_SPEED/algo.RAIL_SPEED, h.HeuristicEuclidean(a, b), 1e-9)
}
