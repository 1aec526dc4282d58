package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(GenerationsTotal.WithLabelValues(OutcomeSuccess))
	RecordGeneration(OutcomeSuccess)
	RecordGeneration(OutcomeSuccess)
	after := testutil.ToFloat64(GenerationsTotal.WithLabelValues(OutcomeSuccess))
	assert.Equal(t, before+2, after)
}

func TestRecordAssessment(t *testing.T) {
	before := testutil.ToFloat64(BrokenLinksTotal)

	RecordAssessment(8.7, 3)
	assert.Equal(t, 8.7, testutil.ToFloat64(QAComposite))
	assert.Equal(t, before+3, testutil.ToFloat64(BrokenLinksTotal))

	RecordAssessment(9.1, 0)
	assert.Equal(t, 9.1, testutil.ToFloat64(QAComposite))
	assert.Equal(t, before+3, testutil.ToFloat64(BrokenLinksTotal))
}

func TestObservePhase(t *testing.T) {
	ObservePhase("Page Planning", 20*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(PhaseDuration), 1)
}

func TestRecordIterations(t *testing.T) {
	RecordIterations(5)
	assert.Equal(t, 1, testutil.CollectAndCount(QAIterations))
}
