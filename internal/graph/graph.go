package graph

type Node struct {
	ID    NodeID
	Label string
}

func (n Node) Kind() NodeKind { return n.ID.Kind }

// Edge is undirected. Source and Target keep the orientation of the first
// observation of the pair.
type Edge struct {
	Source   int
	Target   int
	Relation Relation
	Weight   int
}

type pairKey struct{ a, b int }

func makePair(u, v int) pairKey {
	if u > v {
		u, v = v, u
	}
	return pairKey{a: u, b: v}
}

// Graph is an undirected weighted multi-kind graph. Nodes and edges are kept in
// insertion order so every traversal is deterministic.
type Graph struct {
	nodes []Node
	index map[NodeID]int
	edges []Edge
	pairs map[pairKey]int
	// adj[i] maps neighbour index -> edge index
	adj []map[int]int
	// nbrs[i] lists neighbours of i in the order the edges were created
	nbrs [][]int
}

func New() *Graph {
	return &Graph{
		index: map[NodeID]int{},
		pairs: map[pairKey]int{},
	}
}

// AddNode returns the index of id, creating the node on first sight.
func (g *Graph) AddNode(id NodeID) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Label: id.Value})
	g.index[id] = i
	g.adj = append(g.adj, map[int]int{})
	g.nbrs = append(g.nbrs, nil)
	return i
}

// AddEdge records one observation of the relationship between u and v. A pair
// seen again only gets its weight bumped. Self pairs are ignored and reported
// as false.
func (g *Graph) AddEdge(u, v int, rel Relation) bool {
	if u == v {
		return false
	}
	k := makePair(u, v)
	if ei, ok := g.pairs[k]; ok {
		g.edges[ei].Weight++
		return true
	}
	ei := len(g.edges)
	g.edges = append(g.edges, Edge{Source: u, Target: v, Relation: rel, Weight: 1})
	g.pairs[k] = ei
	g.adj[u][v] = ei
	g.adj[v][u] = ei
	g.nbrs[u] = append(g.nbrs[u], v)
	g.nbrs[v] = append(g.nbrs[v], u)
	return true
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return len(g.edges) }

func (g *Graph) Node(i int) Node { return g.nodes[i] }

func (g *Graph) Nodes() []Node { return g.nodes }

func (g *Graph) Edges() []Edge { return g.edges }

func (g *Graph) Lookup(id NodeID) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// EdgeBetween returns the edge joining u and v, if any.
func (g *Graph) EdgeBetween(u, v int) (Edge, bool) {
	ei, ok := g.pairs[makePair(u, v)]
	if !ok {
		return Edge{}, false
	}
	return g.edges[ei], true
}

// Neighbors returns the neighbours of i in edge creation order. The slice is
// owned by the graph.
func (g *Graph) Neighbors(i int) []int { return g.nbrs[i] }

func (g *Graph) Degree(i int) int { return len(g.nbrs[i]) }

func (g *Graph) weightTo(u, v int) int {
	return g.edges[g.adj[u][v]].Weight
}
