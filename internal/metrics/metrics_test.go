package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAnalysisCounts(t *testing.T) {
	before := testutil.ToFloat64(analysesTotal.WithLabelValues("test"))
	ObserveAnalysis("test", 5*time.Millisecond, 6, 7, 2)
	assert.Equal(t, before+1, testutil.ToFloat64(analysesTotal.WithLabelValues("test")))
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("/healthz", 200)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("/healthz", "200")))
}
