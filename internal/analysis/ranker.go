package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"scholarnet/internal/graph"
)

const (
	MaxKeyPlayers      = 50
	MaxSpecializations = 5

	degreeWeight      = 0.6
	betweennessWeight = 0.4
)

type candidate struct {
	node  int
	score float64
}

// RankPlayers scores every author and institution by 0.6*degree + 0.4*betweenness
// and annotates the best limit of them. A limit outside 1..MaxKeyPlayers means
// MaxKeyPlayers. Equal scores keep node insertion order.
func RankPlayers(n *graph.Network, c graph.CentralityScores, limit int) []KeyPlayer {
	if limit <= 0 || limit > MaxKeyPlayers {
		limit = MaxKeyPlayers
	}
	g := n.Graph
	cands := make([]candidate, 0)
	for i, node := range g.Nodes() {
		if !node.Kind().IsPlayer() {
			continue
		}
		cands = append(cands, candidate{node: i, score: playerScore(c, i)})
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].score > cands[b].score })
	if len(cands) > limit {
		cands = cands[:limit]
	}

	related := make([]int, len(cands))
	for k, cd := range cands {
		related[k] = n.StatsOf(cd.node).RelatedWorks
	}
	sortedRelated := append([]int(nil), related...)
	sort.Ints(sortedRelated)

	out := make([]KeyPlayer, 0, len(cands))
	for k, cd := range cands {
		node := g.Node(cd.node)
		st := n.StatsOf(cd.node)
		typ := n.Roles[cd.node].DisplayType(node.Kind())
		spec := Specialization(n.Keywords[cd.node])
		out = append(out, KeyPlayer{
			Name:           node.Label,
			Type:           typ,
			Specialization: spec,
			RelatedWorks:   st.RelatedWorks,
			Collaborations: st.Collaborations,
			Activity:       activityFromSorted(related[k], sortedRelated),
			Score:          round6(cd.score),
			Summary:        Summary(node.Label, typ, st.RelatedWorks, st.Collaborations, spec),
		})
	}
	return out
}

func playerScore(c graph.CentralityScores, i int) float64 {
	var dc, bc float64
	if i < len(c.Degree) {
		dc = c.Degree[i]
	}
	if i < len(c.Betweenness) {
		bc = c.Betweenness[i]
	}
	return degreeWeight*dc + betweennessWeight*bc
}

// Specialization returns the keywords sorted lexicographically, at most
// MaxSpecializations of them. Never nil.
func Specialization(keywords map[string]struct{}) []string {
	out := make([]string, 0, len(keywords))
	for kw := range keywords {
		out = append(out, kw)
	}
	sort.Strings(out)
	if len(out) > MaxSpecializations {
		out = out[:MaxSpecializations]
	}
	return out
}

// ActivityBin classifies value against its peer values. The rank is the index
// of the first occurrence of value in the ascending list, so peers sharing a
// count may land in different bins depending on how many smaller values exist.
func ActivityBin(value int, values []int) Activity {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	return activityFromSorted(value, sorted)
}

func activityFromSorted(value int, sorted []int) Activity {
	if len(sorted) == 0 {
		return ActivityLow
	}
	rank := sort.SearchInts(sorted, value)
	if rank >= len(sorted) || sorted[rank] != value {
		rank = 0
	}
	pct := float64(rank+1) / float64(len(sorted))
	switch {
	case pct >= 0.9:
		return ActivityVeryHigh
	case pct >= 0.7:
		return ActivityHigh
	case pct >= 0.4:
		return ActivityMedium
	default:
		return ActivityLow
	}
}

// Summary renders the one-line description shown next to a key player.
func Summary(name, typ string, relatedWorks, collaborations int, specialization []string) string {
	spec := "unspecified"
	if len(specialization) > 0 {
		spec = strings.Join(specialization, ", ")
	}
	return fmt.Sprintf("%s (%s) shows activity across %d related works with %d collaborations. Specialization: %s.",
		name, typ, relatedWorks, collaborations, spec)
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
