package graph

import "container/heap"

// CentralityScores holds per-node centralities indexed like the graph nodes.
type CentralityScores struct {
	Degree      []float64
	Betweenness []float64
}

// Centrality computes normalised degree and weighted betweenness centrality for
// every node of g.
func Centrality(g *Graph) CentralityScores {
	return CentralityScores{
		Degree:      DegreeCentrality(g),
		Betweenness: BetweennessCentrality(g),
	}
}

// DegreeCentrality is the distinct neighbour count divided by n-1. Graphs with
// a single node score it 0.
func DegreeCentrality(g *Graph) []float64 {
	n := g.NodeCount()
	out := make([]float64, n)
	if n <= 1 {
		return out
	}
	denom := float64(n - 1)
	for i := range out {
		out[i] = float64(g.Degree(i)) / denom
	}
	return out
}

// BetweennessCentrality runs Brandes' algorithm with Dijkstra searches. The
// weight of an edge is its path length, so repeatedly observed relationships
// make longer hops. Scores are normalised by (n-1)(n-2), the undirected pair
// count doubled to match accumulation from every source.
func BetweennessCentrality(g *Graph) []float64 {
	n := g.NodeCount()
	cb := make([]float64, n)
	if n <= 2 {
		return cb
	}

	b := newBrandesState(n)
	for s := 0; s < n; s++ {
		b.dijkstra(g, s)
		b.accumulate(s, cb)
	}

	scale := 1 / float64((n-1)*(n-2))
	for i := range cb {
		cb[i] *= scale
	}
	return cb
}

type brandesState struct {
	dist  []int
	sigma []float64
	delta []float64
	done  []bool
	pred  [][]int
	stack []int
	pq    distQueue
}

func newBrandesState(n int) *brandesState {
	return &brandesState{
		dist:  make([]int, n),
		sigma: make([]float64, n),
		delta: make([]float64, n),
		done:  make([]bool, n),
		pred:  make([][]int, n),
		stack: make([]int, 0, n),
	}
}

func (b *brandesState) reset() {
	for i := range b.dist {
		b.dist[i] = -1
		b.sigma[i] = 0
		b.delta[i] = 0
		b.done[i] = false
		b.pred[i] = b.pred[i][:0]
	}
	b.stack = b.stack[:0]
	b.pq = b.pq[:0]
}

// dijkstra settles nodes from s in order of distance, recording shortest path
// counts and predecessors.
func (b *brandesState) dijkstra(g *Graph, s int) {
	b.reset()
	b.dist[s] = 0
	b.sigma[s] = 1
	heap.Push(&b.pq, distItem{node: s, dist: 0})
	for b.pq.Len() > 0 {
		it := heap.Pop(&b.pq).(distItem)
		v := it.node
		if b.done[v] || it.dist != b.dist[v] {
			continue
		}
		b.done[v] = true
		b.stack = append(b.stack, v)
		for _, w := range g.Neighbors(v) {
			nd := b.dist[v] + g.weightTo(v, w)
			switch {
			case b.dist[w] < 0 || nd < b.dist[w]:
				b.dist[w] = nd
				b.sigma[w] = b.sigma[v]
				b.pred[w] = append(b.pred[w][:0], v)
				heap.Push(&b.pq, distItem{node: w, dist: nd})
			case nd == b.dist[w] && !b.done[w]:
				b.sigma[w] += b.sigma[v]
				b.pred[w] = append(b.pred[w], v)
			}
		}
	}
}

// accumulate back-propagates pair dependencies in reverse settle order.
func (b *brandesState) accumulate(s int, cb []float64) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		w := b.stack[i]
		for _, v := range b.pred[w] {
			b.delta[v] += (b.sigma[v] / b.sigma[w]) * (1 + b.delta[w])
		}
		if w != s {
			cb[w] += b.delta[w]
		}
	}
}

type distItem struct {
	node int
	dist int
}

type distQueue []distItem

func (q distQueue) Len() int { return len(q) }

func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}

func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *distQueue) Push(x any) { *q = append(*q, x.(distItem)) }

func (q *distQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
