package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarnet_analyses_total",
		Help: "Network analyses run, by entry point",
	}, []string{"source"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scholarnet_analysis_duration_seconds",
		Help:    "Wall time of one full analysis pipeline",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	graphNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scholarnet_graph_nodes",
		Help:    "Nodes in analysed graphs",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	graphEdges = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scholarnet_graph_edges",
		Help:    "Edges in analysed graphs",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	graphClusters = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scholarnet_graph_clusters",
		Help:    "Communities found per analysis",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholarnet_http_requests_total",
		Help: "API requests by route and status code",
	}, []string{"route", "code"})
)

// ObserveAnalysis records one finished analysis.
func ObserveAnalysis(source string, took time.Duration, nodes, edges, clusters int) {
	analysesTotal.WithLabelValues(source).Inc()
	analysisDuration.Observe(took.Seconds())
	graphNodes.Observe(float64(nodes))
	graphEdges.Observe(float64(edges))
	graphClusters.Observe(float64(clusters))
}

func ObserveRequest(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
