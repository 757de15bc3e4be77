package analysis

import (
	"time"

	"scholarnet/internal/graph"
	"scholarnet/internal/logger"
	"scholarnet/internal/metrics"
	"scholarnet/internal/models"
)

type Options struct {
	// MaxPlayers caps the key player list. Default and upper bound: MaxKeyPlayers.
	MaxPlayers int

	// Detector configures community detection. Nil means defaults.
	Detector *graph.DetectorOptions

	// Source labels the metrics of this analyzer, e.g. "api" or "worker".
	Source string
}

// Analyzer runs the pipeline and reports it to logs and metrics. It holds no
// per-call state and is safe for concurrent use.
type Analyzer struct {
	opts Options
}

func New(opts Options) *Analyzer {
	if opts.Source == "" {
		opts.Source = "direct"
	}
	return &Analyzer{opts: opts}
}

func (a *Analyzer) Analyze(docs []models.Document) Result {
	start := time.Now()
	res, comm := run(docs, a.opts)
	took := time.Since(start)

	metrics.ObserveAnalysis(a.opts.Source, took, len(res.Nodes), len(res.Edges), res.Clusters)
	logger.Info("network analysis finished",
		"source", a.opts.Source,
		"documents", len(docs),
		"nodes", len(res.Nodes),
		"edges", len(res.Edges),
		"clusters", res.Clusters,
		"key_players", len(res.KeyPlayers),
		"took", took)
	logger.Debug("community detection", "merges", comm.Merges, "modularity", comm.Modularity)
	return res
}

// Analyze builds the document graph, detects communities, scores centrality and
// ranks key players with default options. It is a pure function of docs.
func Analyze(docs []models.Document) Result {
	res, _ := run(docs, Options{})
	return res
}

func run(docs []models.Document, opts Options) (Result, graph.CommunityResult) {
	net := graph.Build(docs)
	var detector *graph.DetectorOptions
	if opts.Detector != nil {
		d := *opts.Detector
		detector = &d
	}
	comm := graph.DetectCommunities(net.Graph, detector)
	scores := graph.Centrality(net.Graph)
	players := RankPlayers(net, scores, opts.MaxPlayers)
	return Assemble(net.Graph, comm.Clusters, scores, players), comm
}
