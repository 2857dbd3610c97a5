package algo

import (
	"container/heap"
	"log"
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
)

type node[T any] struct {
	p    geometry.Point
	attr T
}

type edge[T any] struct {
	v    float64
	attr T
}

// SearchGraph is a directed weighted graph over transit stops.
// The topology is fixed after construction; edge weights may be rescaled
// at runtime (service retiming), so reads take the RBMutex read lock.
type SearchGraph[NT any, ET any] struct {
	// adjacency table, in node -> out node -> edge minutes with attr
	edges []map[int]edge[ET]
	// node positions and attributes
	nodes []node[NT]
	// A* distance estimate
	h IHeuristics

	mu *xsync.RBMutex
}

// IHeuristics estimates a lower bound of the cost between two positions.
type IHeuristics interface {
	HeuristicEuclidean(geometry.Point, geometry.Point) float64
}

func NewSearchGraph[NT any, ET any](h IHeuristics) *SearchGraph[NT, ET] {
	return &SearchGraph[NT, ET]{
		edges: make([]map[int]edge[ET], 0),
		nodes: make([]node[NT], 0),
		h:     h,
		mu:    xsync.NewRBMutex(),
	}
}

func (g *SearchGraph[NT, ET]) InitNode(p geometry.Point, attr NT) int {
	g.nodes = append(g.nodes, node[NT]{p: p, attr: attr})
	g.edges = append(g.edges, make(map[int]edge[ET]))
	return len(g.nodes) - 1
}

func (g *SearchGraph[NT, ET]) InitEdge(from, to int, minutes float64, attr ET) {
	if from >= len(g.edges) {
		log.Panicf("from node %d >= len(g.edges) %d", from, len(g.edges))
	}
	if to >= len(g.edges) {
		log.Panicf("to node %d >= len(g.edges) %d", to, len(g.edges))
	}
	// parallel edges collapse to the cheapest one
	if e, ok := g.edges[from][to]; ok && e.v <= minutes {
		return
	}
	g.edges[from][to] = edge[ET]{
		v:    minutes,
		attr: attr,
	}
}

func (g *SearchGraph[NT, ET]) NodeCount() int {
	return len(g.nodes)
}

func (g *SearchGraph[NT, ET]) NodePoint(id int) geometry.Point {
	return g.nodes[id].p
}

func (g *SearchGraph[NT, ET]) NodeAttr(id int) NT {
	return g.nodes[id].attr
}

func (g *SearchGraph[NT, ET]) OutDegree(id int) int {
	return len(g.edges[id])
}

func (g *SearchGraph[NT, ET]) GetEdgeLength(from, to int) (float64, error) {
	if from >= len(g.edges) {
		return 0, ErrNodeNotFound
	}
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	e, ok := g.edges[from][to]
	if !ok {
		return 0, ErrEdgeNotFound
	}
	return e.v, nil
}

// UpdateEdgeLengths rewrites every edge weight through f under the write
// lock. Callers must rebuild anything derived from the old weights.
func (g *SearchGraph[NT, ET]) UpdateEdgeLengths(f func(attr ET, minutes float64) float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for from := range g.edges {
		for to, e := range g.edges[from] {
			e.v = f(e.attr, e.v)
			g.edges[from][to] = e
		}
	}
}

// ForEachEdge visits every edge under the read lock.
func (g *SearchGraph[NT, ET]) ForEachEdge(f func(from, to int, attr ET, minutes float64)) {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	for from := range g.edges {
		for to, e := range g.edges[from] {
			f(from, to, e.attr, e.v)
		}
	}
}

type PathItem[NT any, ET any] struct {
	NodeAttr NT
	EdgeAttr ET
}

func (g *SearchGraph[NT, ET]) reconstructPath(cameFrom map[int]int, curNode int) ([]PathItem[NT, ET], float64) {
	pathBeforeReversed := []PathItem[NT, ET]{{NodeAttr: g.nodes[curNode].attr}}
	cost := .0
	for {
		if from, ok := cameFrom[curNode]; ok {
			e := g.edges[from][curNode]
			cost += e.v
			curNode = from
			pathBeforeReversed = append(pathBeforeReversed, PathItem[NT, ET]{
				NodeAttr: g.nodes[curNode].attr,
				EdgeAttr: e.attr,
			})
		} else {
			break
		}
	}
	return lo.Reverse(pathBeforeReversed), cost
}

// ShortestPath runs A* between two nodes and returns the attribute path
// and its cost in minutes, or (nil, +Inf) when no path exists.
func (g *SearchGraph[NT, ET]) ShortestPath(start, end int) ([]PathItem[NT, ET], float64) {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	if start == end {
		return []PathItem[NT, ET]{{NodeAttr: g.nodes[start].attr}}, 0
	}
	openSet := make(PriorityQueue, 1)
	openSetMap := make(map[int]*Item, 1) // openSet value -> openSet item
	cameFrom := make(map[int]int, 0)
	gScore := make(map[int]float64, 0)
	gScore[start] = .0
	fScore := g.h.HeuristicEuclidean(g.nodes[start].p, g.nodes[end].p)
	openSet[0] = &Item{Value: start, Priority: fScore, Index: 0}
	openSetMap[start] = openSet[0]
	heap.Init(&openSet)
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item).Value
		if cur == end {
			return g.reconstructPath(cameFrom, cur)
		}
		for neighbor, e := range g.edges[cur] {
			gScoreTentative := gScore[cur] + e.v
			var gScoreNeighbor float64
			s, ok := gScore[neighbor]
			if ok {
				gScoreNeighbor = s
			} else {
				gScoreNeighbor = math.Inf(0)
			}
			if gScoreTentative < gScoreNeighbor {
				cameFrom[neighbor] = cur
				gScore[neighbor] = gScoreTentative
				fScore := gScoreTentative + g.h.HeuristicEuclidean(g.nodes[neighbor].p, g.nodes[end].p)
				if ok {
					// visited before, lower its priority in the heap
					openSetMap[neighbor].Priority = fScore
					heap.Fix(&openSet, openSetMap[neighbor].Index)
				} else {
					// first visit
					item := &Item{Value: neighbor, Priority: fScore}
					heap.Push(&openSet, item)
					openSetMap[neighbor] = item
				}
			}
		}
	}
	return nil, math.Inf(0)
}

// ShortestPathTree runs Dijkstra from start and returns the one-way cost
// in minutes to every node. Unreachable nodes hold +Inf. The result does
// not depend on heap tie order, so it is reproducible bit for bit.
func (g *SearchGraph[NT, ET]) ShortestPathTree(start int) []float64 {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	dist := make([]float64, len(g.nodes))
	for i := range dist {
		dist[i] = math.Inf(0)
	}
	dist[start] = 0
	done := make([]bool, len(g.nodes))
	openSet := make(PriorityQueue, 1)
	openSetMap := make(map[int]*Item, 1)
	openSet[0] = &Item{Value: start, Priority: 0, Index: 0}
	openSetMap[start] = openSet[0]
	heap.Init(&openSet)
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item).Value
		if done[cur] {
			continue
		}
		done[cur] = true
		for neighbor, e := range g.edges[cur] {
			tentative := dist[cur] + e.v
			if tentative < dist[neighbor] {
				dist[neighbor] = tentative
				if item, ok := openSetMap[neighbor]; ok && item.Index >= 0 {
					item.Priority = tentative
					heap.Fix(&openSet, item.Index)
				} else {
					item := &Item{Value: neighbor, Priority: tentative}
					heap.Push(&openSet, item)
					openSetMap[neighbor] = item
				}
			}
		}
	}
	return dist
}
