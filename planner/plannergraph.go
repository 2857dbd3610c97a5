package planner

import (
	"fmt"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/urbanlab/siting/planner/algo"
)

// TransitHeuristics is the A* lower bound for the transit graph: the
// straight-line distance covered at the fastest admitted mode speed.
// A walk-only graph gets the much tighter walk-speed estimate.
type TransitHeuristics struct {
	speed float64
}

func NewTransitHeuristics(modes map[algo.Mode]bool) TransitHeuristics {
	h := TransitHeuristics{speed: algo.WALK_SPEED}
	for m := range modes {
		if s := m.Speed(); s > h.speed {
			h.speed = s
		}
	}
	return h
}

func (h TransitHeuristics) HeuristicEuclidean(p1 geometry.Point, p2 geometry.Point) float64 {
	return geometry.Distance(p1, p2) / h.speed
}

// buildTransitGraph assembles the stop graph from edge rows. Node ids
// are assigned in sorted stop-id order so the graph, and everything
// derived from it, is identical across runs regardless of row order.
func (p *Planner) buildTransitGraph(edges []EdgeRow) error {
	modes := p.policy.modeSet()

	// stop coordinates, first row wins
	points := make(map[string]geometry.Point, len(edges)*2)
	for _, row := range edges {
		if row.Minutes < 0 {
			return fmt.Errorf("edge %s -> %s has negative travel time %v", row.FromStop, row.ToStop, row.Minutes)
		}
		if _, err := algo.ModeFromString(row.Mode); err != nil {
			return fmt.Errorf("edge %s -> %s: %w: %s", row.FromStop, row.ToStop, err, row.Mode)
		}
		if _, ok := points[row.FromStop]; !ok {
			points[row.FromStop] = geometry.Point{X: row.FromX, Y: row.FromY}
		}
		if _, ok := points[row.ToStop]; !ok {
			points[row.ToStop] = geometry.Point{X: row.ToX, Y: row.ToY}
		}
	}
	stopIDs := make([]string, 0, len(points))
	for id := range points {
		stopIDs = append(stopIDs, id)
	}
	sort.Strings(stopIDs)

	g := algo.NewSearchGraph[algo.StopNodeAttr, algo.TransitEdgeAttr](NewTransitHeuristics(modes))
	stopNodes := make(map[string]int, len(stopIDs))
	for _, id := range stopIDs {
		stopNodes[id] = g.InitNode(points[id], algo.StopNodeAttr{ID: id})
	}
	for _, row := range edges {
		mode, _ := algo.ModeFromString(row.Mode)
		if !modes[mode] {
			p.report.SkippedEdges++
			continue
		}
		g.InitEdge(stopNodes[row.FromStop], stopNodes[row.ToStop], row.Minutes, algo.TransitEdgeAttr{Mode: mode})
		p.report.Edges++
	}
	p.report.Stops = g.NodeCount()
	p.graph = g
	p.stopNodes = stopNodes
	log.Debugf("transit graph built: %d stops, %d edges, %d skipped by mode policy",
		p.report.Stops, p.report.Edges, p.report.SkippedEdges)
	return nil
}

// ModeMinuteStats sums edge minutes per transit mode, for cost
// inspection after a retiming.
func (p *Planner) ModeMinuteStats() map[string]float64 {
	stats := make(map[string]float64)
	p.graph.ForEachEdge(func(from, to int, attr algo.TransitEdgeAttr, minutes float64) {
		stats[attr.Mode.String()] += minutes
	})
	return stats
}
