package planner

import (
	"time"

	"git.fiblab.net/general/common/v2/geometry"
)

// Input table rows, shaped after the source tables the loaders produce.
// Validation happens once at the boundary (initTables / buildTransitGraph);
// the core assumes validated rows from then on.

type DemandRow struct {
	TractID string  `bson:"tract_id" json:"tractId"`
	X       float64 `bson:"x" json:"x"`
	Y       float64 `bson:"y" json:"y"`
	// households without vehicle access
	Weight int64 `bson:"weight" json:"weight"`
}

type FacilityRow struct {
	ID       string  `bson:"facility_id" json:"facilityId"`
	X        float64 `bson:"x" json:"x"`
	Y        float64 `bson:"y" json:"y"`
	Existing bool    `bson:"existing" json:"existing"`
}

// EdgeRow is one directed stop-pair with its travel time. Stop coordinates
// ride along on every row; the first occurrence of a stop id fixes them.
type EdgeRow struct {
	FromStop string  `bson:"from_stop" json:"fromStop"`
	FromX    float64 `bson:"from_x" json:"fromX"`
	FromY    float64 `bson:"from_y" json:"fromY"`
	ToStop   string  `bson:"to_stop" json:"toStop"`
	ToX      float64 `bson:"to_x" json:"toX"`
	ToY      float64 `bson:"to_y" json:"toY"`
	Minutes  float64 `bson:"minutes" json:"minutes"`
	Mode     string  `bson:"mode" json:"mode"`
}

type Dataset struct {
	Demand     []DemandRow   `json:"demand"`
	Facilities []FacilityRow `json:"facilities"`
	Edges      []EdgeRow     `json:"edges"`
}

// DemandPoint is a census tract seeking access to a facility.
type DemandPoint struct {
	TractID string
	P       geometry.Point
	Weight  int64
	NodeID  int // snapped stop node, -1 when unsnappable
}

// Facility is a candidate site; existing facilities are pre-selected and
// never removable.
type Facility struct {
	ID       string
	P        geometry.Point
	Existing bool
	NodeID   int
}

// TravelTimeMatrix holds round-trip minutes per (demand, facility) pair,
// rows in tract-id order and columns in facility-id order. Unreachable
// pairs hold +Inf. Read-only after construction.
type TravelTimeMatrix struct {
	Rows [][]float64
}

func (m *TravelTimeMatrix) At(i, j int) float64 {
	return m.Rows[i][j]
}

// BuildReport surfaces data-quality findings from graph and matrix
// construction. None of them are fatal.
type BuildReport struct {
	Stops        int           `json:"stops"`
	Edges        int           `json:"edges"`
	SkippedEdges int           `json:"skippedEdges"` // filtered out by the mode policy
	Unsnapped    []string      `json:"unsnapped"`    // tract/facility ids with no graph node to snap to
	Isolated     []string      `json:"isolated"`     // tract ids snapped to a node with no outgoing edges
	Duration     time.Duration `json:"-"`
}

// Phase of the greedy selector a step was chosen in.
type Phase int

const (
	PhaseEquity     Phase = 1
	PhaseEfficiency Phase = 2
)

func (p Phase) String() string {
	switch p {
	case PhaseEquity:
		return "equity"
	case PhaseEfficiency:
		return "efficiency"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// Step is one facility addition and the state of the metric after it.
type Step struct {
	Rank              int     `json:"rank"` // 1-based position in the sequence
	FacilityID        string  `json:"facilityId"`
	Phase             Phase   `json:"phase"`
	AvgMinutes        float64 `json:"avgMinutes"`
	ServedTracts      int     `json:"servedTracts"`
	ServedWeight      int64   `json:"servedWeight"`
	NewlyServedWeight int64   `json:"newlyServedWeight"`
}

// PlanResult is the outcome for one requested budget. Distances follow
// the demand-point order (tract-id sorted); unreachable tracts hold +Inf.
type PlanResult struct {
	Budget          int
	BudgetSatisfied bool
	Steps           []Step
	Accessibility   Accessibility
	Distances       []float64
}
