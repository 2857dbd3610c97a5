package planner

import (
	"math"
	"sync"
	"time"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/urbanlab/siting/planner/algo"
)

// snapToStop maps a point to its nearest stop node, or -1 when the
// graph is empty. On distance ties the lowest node id wins, which is
// also the lowest stop id because nodes are created in sorted order.
func (p *Planner) snapToStop(pt geometry.Point) int {
	best := -1
	bestDist := math.Inf(0)
	for id := 0; id < p.graph.NodeCount(); id++ {
		if d := geometry.Distance(pt, p.graph.NodePoint(id)); d < bestDist {
			best = id
			bestDist = d
		}
	}
	return best
}

// buildMatrix snaps demand points and facilities to the graph and fills
// the round-trip matrix, one Dijkstra tree per demand row. Rows are
// partitioned over a worker pool; each worker writes only its own rows,
// so the result needs no locking and is identical across runs.
func (p *Planner) buildMatrix() {
	start := time.Now()
	p.report.Unsnapped = nil
	p.report.Isolated = nil

	for i := range p.demand {
		p.demand[i].NodeID = p.snapToStop(p.demand[i].P)
		if p.demand[i].NodeID < 0 {
			p.report.Unsnapped = append(p.report.Unsnapped, p.demand[i].TractID)
		}
	}
	for i := range p.facilities {
		p.facilities[i].NodeID = p.snapToStop(p.facilities[i].P)
		if p.facilities[i].NodeID < 0 {
			p.report.Unsnapped = append(p.report.Unsnapped, p.facilities[i].ID)
		}
	}

	rows := make([][]float64, len(p.demand))
	isolated := make([]bool, len(p.demand))
	jobs := make(chan int, len(p.demand))
	var wg sync.WaitGroup
	for w := 0; w < p.policy.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rows[i], isolated[i] = p.buildRow(i)
			}
		}()
	}
	for i := range p.demand {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, iso := range isolated {
		if iso {
			p.report.Isolated = append(p.report.Isolated, p.demand[i].TractID)
		}
	}
	p.matrix = &TravelTimeMatrix{Rows: rows}
	p.report.Duration = time.Since(start)
	log.Infof("travel time matrix built: %d x %d in %v", len(p.demand), len(p.facilities), p.report.Duration)
}

func (p *Planner) buildRow(i int) (row []float64, isolated bool) {
	row = make([]float64, len(p.facilities))
	for j := range row {
		row[j] = math.Inf(0)
	}
	d := p.demand[i]
	if d.NodeID < 0 {
		return row, false
	}
	if p.graph.OutDegree(d.NodeID) == 0 {
		return row, true
	}
	dist := p.graph.ShortestPathTree(d.NodeID)
	for j, f := range p.facilities {
		if f.NodeID < 0 {
			continue
		}
		if oneWay := dist[f.NodeID]; algo.Reachable(oneWay) {
			row[j] = oneWay * p.policy.RoundTripFactor
		}
	}
	return row, false
}
