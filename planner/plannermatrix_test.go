package planner

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stops a..d sit on a line 100m apart; e hangs off c with no way back,
// so anything snapped to e is isolated.
func testDataset() *Dataset {
	edge := func(from string, fx, fy float64, to string, tx, ty, minutes float64, mode string) EdgeRow {
		return EdgeRow{FromStop: from, FromX: fx, FromY: fy, ToStop: to, ToX: tx, ToY: ty, Minutes: minutes, Mode: mode}
	}
	return &Dataset{
		Demand: []DemandRow{
			{TractID: "t2", X: 0, Y: 210, Weight: 3},
			{TractID: "t1", X: 0, Y: 10, Weight: 2},
			{TractID: "t3", X: 0, Y: 390, Weight: 5},
		},
		Facilities: []FacilityRow{
			{ID: "f2", X: 0, Y: 310},
			{ID: "f1", X: 0, Y: 90},
		},
		Edges: []EdgeRow{
			edge("a", 0, 0, "b", 0, 100, 5, "walk"),
			edge("b", 0, 100, "a", 0, 0, 5, "walk"),
			edge("b", 0, 100, "c", 0, 200, 10, "bus"),
			edge("c", 0, 200, "b", 0, 100, 10, "bus"),
			edge("c", 0, 200, "d", 0, 300, 3, "rail"),
			edge("d", 0, 300, "c", 0, 200, 3, "rail"),
			edge("c", 0, 200, "e", 0, 400, 2, "bus"),
		},
	}
}

func TestBuildMatrix(t *testing.T) {
	p, err := New(testDataset(), DefaultPolicy())
	require.NoError(t, err)

	// rows follow tract-id order, columns facility-id order
	assert.Equal(t, []string{"t1", "t2", "t3"}, p.TractIDs())
	require.Equal(t, 3, p.TractCount())
	require.Equal(t, 2, p.FacilityCount())

	// round trips are twice the one-way time
	assert.Equal(t, 10.0, p.matrix.At(0, 0)) // t1 -> f1 via a-b
	assert.Equal(t, 36.0, p.matrix.At(0, 1)) // t1 -> f2 via a-b-c-d
	assert.Equal(t, 20.0, p.matrix.At(1, 0)) // t2 -> f1 via c-b
	assert.Equal(t, 6.0, p.matrix.At(1, 1))  // t2 -> f2 via c-d

	// t3 snaps to e, which has no outgoing edges
	assert.True(t, math.IsInf(p.matrix.At(2, 0), 1))
	assert.True(t, math.IsInf(p.matrix.At(2, 1), 1))
	assert.Equal(t, []string{"t3"}, p.report.Isolated)
	assert.Empty(t, p.report.Unsnapped)

	assert.Equal(t, 5, p.report.Stops)
	assert.Equal(t, 7, p.report.Edges)
	assert.Equal(t, 0, p.report.SkippedEdges)
}

func TestBuildMatrixRoundTripFactor(t *testing.T) {
	pol := DefaultPolicy()
	pol.RoundTripFactor = 3
	p, err := New(testDataset(), pol)
	require.NoError(t, err)
	assert.Equal(t, 15.0, p.matrix.At(0, 0))
}

func TestBuildMatrixModeFilter(t *testing.T) {
	pol := DefaultPolicy()
	pol.Modes = []string{"walk", "bus"}
	p, err := New(testDataset(), pol)
	require.NoError(t, err)

	// rail edges are skipped, so d is unreachable from everywhere
	assert.Equal(t, 2, p.report.SkippedEdges)
	assert.True(t, math.IsInf(p.matrix.At(0, 1), 1))
	assert.Equal(t, 10.0, p.matrix.At(0, 0))
}

func TestSnapTieLowestStop(t *testing.T) {
	ds := testDataset()
	// equidistant between a and b, must snap to a
	ds.Demand = append(ds.Demand, DemandRow{TractID: "t4", X: 0, Y: 50, Weight: 1})
	p, err := New(ds, DefaultPolicy())
	require.NoError(t, err)
	// a snap to b would give a zero round trip to f1
	assert.Equal(t, 10.0, p.matrix.At(3, 0))
}

func TestBuildMatrixDeterministic(t *testing.T) {
	p1, err := New(testDataset(), DefaultPolicy())
	require.NoError(t, err)
	p2, err := New(testDataset(), DefaultPolicy())
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(p1.matrix.Rows, p2.matrix.Rows))
	assert.True(t, reflect.DeepEqual(p1.curve, p2.curve))
}

func TestBuildMatrixEmptyGraph(t *testing.T) {
	ds := testDataset()
	ds.Edges = nil
	p, err := New(ds, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, 0, p.report.Stops)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3", "f1", "f2"}, p.report.Unsnapped)
	for i := 0; i < p.TractCount(); i++ {
		for j := 0; j < p.FacilityCount(); j++ {
			assert.True(t, math.IsInf(p.matrix.At(i, j), 1))
		}
	}
	assert.Equal(t, 0, p.MaxBudget())
}

func TestInitTablesRejectsBadRows(t *testing.T) {
	ds := testDataset()
	ds.Demand = append(ds.Demand, DemandRow{TractID: "t1", X: 0, Y: 0, Weight: 1})
	_, err := New(ds, DefaultPolicy())
	assert.ErrorContains(t, err, "duplicate tract id")

	ds = testDataset()
	ds.Demand[0].Weight = -1
	_, err = New(ds, DefaultPolicy())
	assert.ErrorContains(t, err, "negative weight")

	ds = testDataset()
	ds.Edges[0].Minutes = -1
	_, err = New(ds, DefaultPolicy())
	assert.ErrorContains(t, err, "negative travel time")

	ds = testDataset()
	ds.Edges[0].Mode = "ferry"
	_, err = New(ds, DefaultPolicy())
	assert.Error(t, err)
}

func TestScaleModeMinutes(t *testing.T) {
	ds := testDataset()
	ds.Facilities[1].Existing = true // f1
	p, err := New(ds, DefaultPolicy())
	require.NoError(t, err)

	base, err := p.Plan(0)
	require.NoError(t, err)
	assert.InDelta(t, 16.0, base.Accessibility.AvgMinutes, 1e-9) // (2*10+3*20)/5

	// halving bus times shortens the c-b leg of t2's trip
	require.NoError(t, p.ScaleModeMinutes("bus", 0.5))
	base, err = p.Plan(0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, base.Distances[1])
	assert.InDelta(t, 10.0, base.Accessibility.AvgMinutes, 1e-9)

	assert.Error(t, p.ScaleModeMinutes("tram", 2))
	assert.Error(t, p.ScaleModeMinutes("bus", 0))
}

func TestModeMinuteStats(t *testing.T) {
	p, err := New(testDataset(), DefaultPolicy())
	require.NoError(t, err)
	stats := p.ModeMinuteStats()
	assert.Equal(t, 10.0, stats["walk"])
	assert.Equal(t, 22.0, stats["bus"])
	assert.Equal(t, 6.0, stats["rail"])
}
