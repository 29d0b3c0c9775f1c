package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/smeshko/text-extractor/constants"
	"github.com/smeshko/text-extractor/internal/entity"
)

func TestMetrics_RunLifecycle(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RunStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InProgress))

	r := entity.NewExtractionResults(entity.Document{})
	r.Matches = []entity.ExtractionMatch{
		{Keyword: "Total", Value: "10", PageNumber: 1, Status: constants.MatchFound},
		entity.NotFoundMatch("Tax", 1),
	}
	batch := entity.SingleResult(r, []string{"Total", "Tax"})
	batch.AddWarning("b.pdf: File not found")

	m.RunFinished("complete", batch, 300*time.Millisecond)
	m.Rejected()

	assert.Equal(t, 0.0, testutil.ToFloat64(m.InProgress))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("complete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("extracted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MatchesTotal.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MatchesTotal.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectionsTotal))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RunStarted()
		m.RunFinished("error", nil, time.Second)
		m.Rejected()
	})
}
