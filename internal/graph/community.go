package graph

import "sort"

const (
	// DefaultResolution weighs the null-model term of modularity. Values above 1
	// favour smaller communities.
	DefaultResolution = 1.0
)

// DetectorOptions configures greedy modularity community detection.
type DetectorOptions struct {
	// Resolution of the modularity function. Default: 1.0
	Resolution float64

	// Weighted makes edge weights count toward modularity. When false every
	// edge counts as 1, regardless of how often the relationship was seen.
	Weighted bool
}

// Validate applies defaults for unset or invalid values.
func (o *DetectorOptions) Validate() {
	if o.Resolution <= 0 {
		o.Resolution = DefaultResolution
	}
}

func DefaultDetectorOptions() *DetectorOptions {
	return &DetectorOptions{Resolution: DefaultResolution}
}

// CommunityResult is the partition found by DetectCommunities.
type CommunityResult struct {
	// Clusters maps node index -> cluster index.
	Clusters map[int]int

	// Communities lists member node indices per cluster, ascending.
	Communities [][]int

	// Modularity of the final partition.
	Modularity float64

	// Merges is the number of community merges performed.
	Merges int
}

// Count returns the number of distinct clusters.
func (r CommunityResult) Count() int { return len(r.Communities) }

// DetectCommunities partitions g with Clauset-Newman-Moore greedy modularity
// maximisation. Every node starts alone; the connected pair of communities with
// the largest modularity gain is merged until no merge has a positive gain.
// Ties go to the pair whose communities were created first. Clusters are
// numbered by size, largest first, then by their earliest node.
func DetectCommunities(g *Graph, opts *DetectorOptions) CommunityResult {
	if opts == nil {
		opts = DefaultDetectorOptions()
	}
	opts.Validate()

	n := g.NodeCount()
	res := CommunityResult{Clusters: map[int]int{}}
	if n == 0 {
		return res
	}

	members := make([][]int, n)
	active := make([]bool, n)
	for i := range members {
		members[i] = []int{i}
		active[i] = true
	}

	twoM := 0.0
	for _, e := range g.Edges() {
		twoM += 2 * edgeWeight(e, opts.Weighted)
	}

	if twoM > 0 {
		// a[i]: fraction of edge ends attached to community i.
		// e[i][j]: fraction of edge ends joining community i to community j.
		a := make([]float64, n)
		e := make([]map[int]float64, n)
		for i := range e {
			e[i] = map[int]float64{}
		}
		for _, ed := range g.Edges() {
			w := edgeWeight(ed, opts.Weighted) / twoM
			a[ed.Source] += w
			a[ed.Target] += w
			e[ed.Source][ed.Target] += w
			e[ed.Target][ed.Source] += w
		}

		for {
			bi, bj := -1, -1
			best := 0.0
			for i := 0; i < n; i++ {
				if !active[i] {
					continue
				}
				for j, eij := range e[i] {
					if j <= i {
						continue
					}
					dq := 2 * (eij - opts.Resolution*a[i]*a[j])
					if dq <= 0 {
						continue
					}
					if bi < 0 || dq > best || (dq == best && (i < bi || (i == bi && j < bj))) {
						bi, bj, best = i, j, dq
					}
				}
			}
			if bi < 0 {
				break
			}
			mergeCommunities(e, a, members, active, bi, bj)
			res.Merges++
		}
	}

	comms := make([][]int, 0)
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		m := append([]int(nil), members[i]...)
		sort.Ints(m)
		comms = append(comms, m)
	}
	sort.SliceStable(comms, func(x, y int) bool {
		if len(comms[x]) != len(comms[y]) {
			return len(comms[x]) > len(comms[y])
		}
		return comms[x][0] < comms[y][0]
	})
	for c, m := range comms {
		for _, node := range m {
			res.Clusters[node] = c
		}
	}
	res.Communities = comms
	res.Modularity = Modularity(g, res.Clusters, opts)
	return res
}

// mergeCommunities folds community j into community i.
func mergeCommunities(e []map[int]float64, a []float64, members [][]int, active []bool, i, j int) {
	for k, v := range e[j] {
		if k == i {
			continue
		}
		e[i][k] += v
		e[k][i] = e[i][k]
		delete(e[k], j)
	}
	delete(e[i], j)
	e[j] = nil
	a[i] += a[j]
	a[j] = 0
	members[i] = append(members[i], members[j]...)
	members[j] = nil
	active[j] = false
}

// Modularity computes Q = sum_c [ L_c/m - resolution*(D_c/2m)^2 ] for the
// partition clusters (node index -> cluster index).
func Modularity(g *Graph, clusters map[int]int, opts *DetectorOptions) float64 {
	if opts == nil {
		opts = DefaultDetectorOptions()
	}
	opts.Validate()
	if len(clusters) == 0 || g.EdgeCount() == 0 {
		return 0
	}
	m := 0.0
	internal := map[int]float64{}
	strength := map[int]float64{}
	for _, e := range g.Edges() {
		w := edgeWeight(e, opts.Weighted)
		m += w
		cs, okS := clusters[e.Source]
		ct, okT := clusters[e.Target]
		if okS {
			strength[cs] += w
		}
		if okT {
			strength[ct] += w
		}
		if okS && okT && cs == ct {
			internal[cs] += w
		}
	}
	ids := make([]int, 0, len(strength))
	for c := range strength {
		ids = append(ids, c)
	}
	sort.Ints(ids)
	q := 0.0
	for _, c := range ids {
		frac := strength[c] / (2 * m)
		q += internal[c]/m - opts.Resolution*frac*frac
	}
	return q
}

func edgeWeight(e Edge, weighted bool) float64 {
	if weighted {
		return float64(e.Weight)
	}
	return 1
}
