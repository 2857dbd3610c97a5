package planner

import (
	"fmt"
	"math"

	"github.com/urbanlab/siting/planner/algo"
)

// The selector runs once, to exhaustion, and records the full facility
// sequence. Any budget is then answered as a prefix of that sequence,
// which makes the plan for budget p a strict subset of the plan for
// p+1 without any extra bookkeeping.
//
// Phase 1 (equity) only values improvements for tracts that are not yet
// served and keeps going until no candidate helps any of them. Phase 2
// (efficiency) then values weight-scaled improvements across the board.
// In both phases ties fall to the lowest facility id: candidates are
// scanned in id order and a later candidate must be strictly better to
// displace the incumbent.

// initialDistances is the round-trip time per tract given only the
// existing facilities. All +Inf when there are none.
func (p *Planner) initialDistances() []float64 {
	current := make([]float64, len(p.demand))
	for i := range current {
		current[i] = math.Inf(0)
	}
	for j, f := range p.facilities {
		if !f.Existing {
			continue
		}
		for i := range current {
			if d := p.matrix.At(i, j); d < current[i] {
				current[i] = d
			}
		}
	}
	return current
}

// equityGain values a candidate by how much it improves unserved tracts
// only. A first finite time for a previously unreachable tract is worth
// +Inf, which makes reconnecting tracts dominate phase 1; several such
// candidates then tie and the lowest id wins.
func (p *Planner) equityGain(current []float64, served []bool, j int) float64 {
	gain := .0
	for i := range current {
		if served[i] {
			continue
		}
		d := p.matrix.At(i, j)
		if d >= current[i] {
			continue
		}
		imp := current[i] - d
		if p.policy.WeightedEquity {
			// w == 0 would turn an infinite improvement into NaN
			if w := p.weights[i]; w > 0 {
				gain += float64(w) * imp
			}
		} else {
			gain += imp
		}
	}
	return gain
}

// efficiencyGain values a candidate by weight-scaled improvement over
// every tract. Tracts still unreachable after phase 1 can never become
// reachable, so they are skipped rather than producing Inf - Inf.
func (p *Planner) efficiencyGain(current []float64, j int) float64 {
	gain := .0
	for i := range current {
		if !algo.Reachable(current[i]) {
			continue
		}
		if d := p.matrix.At(i, j); d < current[i] {
			gain += float64(p.weights[i]) * (current[i] - d)
		}
	}
	return gain
}

func (p *Planner) bestCandidate(selected []bool, gainOf func(j int) float64) int {
	best := -1
	bestGain := math.Inf(-1)
	for j := range p.facilities {
		if selected[j] {
			continue
		}
		if g := gainOf(j); g > p.policy.MinGain && g > bestGain {
			best = j
			bestGain = g
		}
	}
	return best
}

// buildCurve runs the two-phase greedy to exhaustion and records one
// Step per added facility.
func (p *Planner) buildCurve() {
	current := p.initialDistances()
	p.baseDistances = append([]float64(nil), current...)
	p.baseline = ComputeAccessibility(current, p.weights, p.policy)

	selected := make([]bool, len(p.facilities))
	served := make([]bool, len(p.demand))
	for j, f := range p.facilities {
		selected[j] = f.Existing
	}
	for i, d := range current {
		served[i] = p.policy.Served(d)
	}

	p.curve = nil
	prevServedWeight := p.baseline.ServedWeight
	appendStep := func(j int, phase Phase) {
		for i := range current {
			if d := p.matrix.At(i, j); d < current[i] {
				current[i] = d
			}
			if !served[i] && p.policy.Served(current[i]) {
				served[i] = true
			}
		}
		selected[j] = true
		acc := ComputeAccessibility(current, p.weights, p.policy)
		p.curve = append(p.curve, Step{
			Rank:              len(p.curve) + 1,
			FacilityID:        p.facilities[j].ID,
			Phase:             phase,
			AvgMinutes:        acc.AvgMinutes,
			ServedTracts:      acc.ServedTracts,
			ServedWeight:      acc.ServedWeight,
			NewlyServedWeight: acc.ServedWeight - prevServedWeight,
		})
		prevServedWeight = acc.ServedWeight
	}

	for {
		j := p.bestCandidate(selected, func(j int) float64 {
			return p.equityGain(current, served, j)
		})
		if j < 0 {
			break
		}
		appendStep(j, PhaseEquity)
	}
	for {
		j := p.bestCandidate(selected, func(j int) float64 {
			return p.efficiencyGain(current, j)
		})
		if j < 0 {
			break
		}
		appendStep(j, PhaseEfficiency)
	}
	log.Infof("selection curve built: %d steps (baseline avg %.2f min)", len(p.curve), p.baseline.AvgMinutes)
}

// Plan answers a budget of p new facilities as a prefix of the curve.
// A budget beyond the point of exhaustion is legal; BudgetSatisfied
// reports whether every budgeted slot found a facility worth adding.
func (pl *Planner) Plan(p int) (*PlanResult, error) {
	if p < 0 {
		return nil, fmt.Errorf("budget must be non-negative, got %d", p)
	}
	n := p
	if n > len(pl.curve) {
		n = len(pl.curve)
	}
	current := pl.distancesAfter(n)
	return &PlanResult{
		Budget:          p,
		BudgetSatisfied: p <= len(pl.curve),
		Steps:           pl.curve[:n],
		Accessibility:   ComputeAccessibility(current, pl.weights, pl.policy),
		Distances:       current,
	}, nil
}

// distancesAfter replays the first n curve steps over the base
// distances.
func (p *Planner) distancesAfter(n int) []float64 {
	current := append([]float64(nil), p.baseDistances...)
	for _, step := range p.curve[:n] {
		j := p.facilityIndex[step.FacilityID]
		for i := range current {
			if d := p.matrix.At(i, j); d < current[i] {
				current[i] = d
			}
		}
	}
	return current
}

// MaxBudget is the number of steps the selector found worth taking.
func (p *Planner) MaxBudget() int {
	return len(p.curve)
}

func (p *Planner) Curve() []Step {
	return p.curve
}

func (p *Planner) Baseline() Accessibility {
	return p.baseline
}

func (p *Planner) Report() BuildReport {
	return p.report
}

// TractIDs returns tract ids in the row order of Distances.
func (p *Planner) TractIDs() []string {
	ids := make([]string, len(p.demand))
	for i, d := range p.demand {
		ids[i] = d.TractID
	}
	return ids
}
