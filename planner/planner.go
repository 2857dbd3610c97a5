package planner

import (
	"fmt"

	"github.com/urbanlab/siting/planner/algo"
)

// Planner owns the transit graph, the round-trip matrix and the greedy
// selection curve for one dataset. All derived state is computed in New
// (or recomputed in ScaleModeMinutes); the read accessors are safe for
// concurrent use once construction returns.
type Planner struct {
	policy Policy

	demand        []DemandPoint
	facilities    []Facility
	weights       []int64
	facilityIndex map[string]int // facility id -> matrix column

	graph     *algo.SearchGraph[algo.StopNodeAttr, algo.TransitEdgeAttr]
	stopNodes map[string]int // stop id -> graph node

	matrix        *TravelTimeMatrix
	report        BuildReport
	baseline      Accessibility
	baseDistances []float64
	curve         []Step
}

func New(ds *Dataset, pol Policy) (p *Planner, err error) {
	// graph assembly panics on inconsistent node ids
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("planner build failed: %v", r)
		}
	}()
	if err := pol.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	demand, facilities, weights, err := initTables(ds)
	if err != nil {
		return nil, err
	}
	p = &Planner{
		policy:        pol,
		demand:        demand,
		facilities:    facilities,
		weights:       weights,
		facilityIndex: make(map[string]int, len(facilities)),
	}
	for j, f := range facilities {
		p.facilityIndex[f.ID] = j
	}
	if err := p.buildTransitGraph(ds.Edges); err != nil {
		return nil, err
	}
	p.buildMatrix()
	p.buildCurve()
	return p, nil
}

// ScaleModeMinutes multiplies the travel time of every edge of one mode
// and rebuilds the matrix and the curve. The caller must keep readers
// away until it returns.
func (p *Planner) ScaleModeMinutes(mode string, factor float64) error {
	m, err := algo.ModeFromString(mode)
	if err != nil {
		return fmt.Errorf("%w: %s", err, mode)
	}
	if factor <= 0 {
		return fmt.Errorf("scale factor must be positive, got %v", factor)
	}
	log.Infof("rescaling %s edges by %v", mode, factor)
	p.graph.UpdateEdgeLengths(func(attr algo.TransitEdgeAttr, minutes float64) float64 {
		if attr.Mode == m {
			return minutes * factor
		}
		return minutes
	})
	p.buildMatrix()
	p.buildCurve()
	return nil
}

func (p *Planner) Policy() Policy {
	return p.policy
}

func (p *Planner) FacilityCount() int {
	return len(p.facilities)
}

func (p *Planner) TractCount() int {
	return len(p.demand)
}
