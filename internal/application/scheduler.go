package application

import (
	"container/heap"

	"github.com/softwarewrighter/hybrid-vid/internal/domain"
)

// blockGraph is the dependency graph of a GraphSpec restricted to the blocks
// the spec lists. Edges with an endpoint outside that list play no part in
// scheduling.
type blockGraph struct {
	// ids holds the participating blocks in list order with duplicates
	// collapsed onto their first occurrence.
	ids []domain.BlockID
	// position maps each block to its index in ids and drives the tie-break.
	position map[domain.BlockID]int
	// successors is the adjacency list. A block appears once per edge, so
	// parallel edges between the same pair are counted individually.
	successors map[domain.BlockID][]domain.BlockID
	// inDegree counts incoming restricted edges per block.
	inDegree map[domain.BlockID]int
	// edges counts the restricted edges.
	edges int
}

// newBlockGraph builds the restricted dependency graph for spec.
func newBlockGraph(spec domain.GraphSpec) *blockGraph {
	g := &blockGraph{
		ids:        make([]domain.BlockID, 0, len(spec.Blocks)),
		position:   make(map[domain.BlockID]int, len(spec.Blocks)),
		successors: make(map[domain.BlockID][]domain.BlockID, len(spec.Blocks)),
		inDegree:   make(map[domain.BlockID]int, len(spec.Blocks)),
	}

	for _, id := range spec.Blocks {
		if _, seen := g.position[id]; seen {
			continue
		}
		g.position[id] = len(g.ids)
		g.ids = append(g.ids, id)
		g.inDegree[id] = 0
	}

	for _, edge := range spec.Edges {
		if !g.contains(edge.FromBlock) || !g.contains(edge.ToBlock) {
			continue
		}
		g.successors[edge.FromBlock] = append(g.successors[edge.FromBlock], edge.ToBlock)
		g.inDegree[edge.ToBlock]++
		g.edges++
	}

	return g
}

// contains reports whether id participates in the graph.
func (g *blockGraph) contains(id domain.BlockID) bool {
	_, ok := g.position[id]
	return ok
}

// topologicalSort orders the blocks with Kahn's algorithm.
// Whenever several blocks are ready at once, the one listed earliest in the
// GraphSpec goes first, so the order is a pure function of the spec.
// If any edge is left unconsumed the graph has a cycle and no partial order
// is returned.
func (g *blockGraph) topologicalSort() ([]domain.BlockID, error) {
	inDegree := make(map[domain.BlockID]int, len(g.inDegree))
	for id, degree := range g.inDegree {
		inDegree[id] = degree
	}

	ready := &positionQueue{}
	for _, id := range g.ids {
		if inDegree[id] == 0 {
			heap.Push(ready, g.position[id])
		}
	}

	order := make([]domain.BlockID, 0, len(g.ids))
	consumed := 0

	for ready.Len() > 0 {
		id := g.ids[heap.Pop(ready).(int)]
		order = append(order, id)

		for _, next := range g.successors[id] {
			consumed++
			inDegree[next]--
			if inDegree[next] == 0 {
				heap.Push(ready, g.position[next])
			}
		}
	}

	if consumed != g.edges {
		return nil, domain.NewCycleError()
	}

	return order, nil
}

// positionQueue is a min-heap of list positions.
type positionQueue []int

func (q positionQueue) Len() int           { return len(q) }
func (q positionQueue) Less(i, j int) bool { return q[i] < q[j] }
func (q positionQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *positionQueue) Push(x any) { *q = append(*q, x.(int)) }

func (q *positionQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
