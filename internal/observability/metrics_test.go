package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersOnCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.UpstreamFetchErrors.WithLabelValues("yahoo").Inc()
	m.EventsClassified.WithLabelValues("holy-grail").Add(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFetchErrors.WithLabelValues("yahoo")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsClassified.WithLabelValues("holy-grail")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_upstream_fetch_errors_total")
	assert.Contains(t, names, "test_classifier_events_total")
}

func TestRecordUpstreamFetch_CountsOnlyErrors(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.UpstreamFetchErrors.WithLabelValues("unit"))
	RecordUpstreamFetch("unit", 0.1, nil)
	RecordUpstreamFetch("unit", 0.2, errors.New("boom"))
	after := testutil.ToFloat64(DefaultMetrics.UpstreamFetchErrors.WithLabelValues("unit"))
	assert.Equal(t, before+1, after)
}
