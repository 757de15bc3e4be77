package analysis

import "scholarnet/internal/graph"

// Assemble packages topology, clusters, centralities and ranked players into a
// Result. Slices are never nil so empty inputs encode as [].
func Assemble(g *graph.Graph, clusters map[int]int, c graph.CentralityScores, players []KeyPlayer) Result {
	out := Result{
		Nodes:      make([]GraphNode, 0, g.NodeCount()),
		Edges:      make([]GraphEdge, 0, g.EdgeCount()),
		KeyPlayers: players,
	}
	if out.KeyPlayers == nil {
		out.KeyPlayers = []KeyPlayer{}
	}

	for i, n := range g.Nodes() {
		gn := GraphNode{
			ID:    n.ID.String(),
			Kind:  n.Kind().String(),
			Label: n.Label,
		}
		if cl, ok := clusters[i]; ok {
			cl := cl
			gn.Cluster = &cl
		}
		if i < len(c.Degree) {
			d := c.Degree[i]
			gn.Degree = &d
		}
		if i < len(c.Betweenness) {
			b := c.Betweenness[i]
			gn.Betweenness = &b
		}
		if n.Kind().IsPlayer() {
			out.Metrics.ActivePlayers++
		}
		out.Nodes = append(out.Nodes, gn)
	}

	for _, e := range g.Edges() {
		if e.Relation == graph.RelCoAuthor {
			out.Metrics.TotalCollaborations += e.Weight
		}
		out.Edges = append(out.Edges, GraphEdge{
			Source:   g.Node(e.Source).ID.String(),
			Target:   g.Node(e.Target).ID.String(),
			Relation: e.Relation.String(),
			Weight:   e.Weight,
		})
	}

	distinct := map[int]struct{}{}
	for _, cl := range clusters {
		distinct[cl] = struct{}{}
	}
	out.Clusters = len(distinct)
	out.Metrics.ResearchClusters = out.Clusters
	return out
}
