package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEvaluation(t *testing.T) {
	before := testutil.ToFloat64(evaluations.WithLabelValues("one-small", "satisfied"))
	Evaluation("one-small", true)
	Evaluation("one-small", false)
	assert.Equal(t, before+1, testutil.ToFloat64(evaluations.WithLabelValues("one-small", "satisfied")))
}

func TestSelection_GameOver(t *testing.T) {
	before := testutil.ToFloat64(selections.WithLabelValues("none"))
	Selection("ignored", false)
	assert.Equal(t, before+1, testutil.ToFloat64(selections.WithLabelValues("none")))
}

func TestMetadataLoad(t *testing.T) {
	MetadataLoad(errors.New("boom"), 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(catalogSize))
	MetadataLoad(nil, 8)
	assert.Equal(t, 8.0, testutil.ToFloat64(catalogSize))
}

func TestSessionsAndHTTP(t *testing.T) {
	base := testutil.ToFloat64(sessions)
	SessionOpened()
	SessionOpened()
	SessionClosed()
	assert.Equal(t, base+1, testutil.ToFloat64(sessions))

	HTTPRequest("/api/evaluate", 200, 3*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(httpDuration, "propagenda_http_request_duration_seconds"))
}

func TestHTTPRequest_UnmatchedRoutesShareOneSeries(t *testing.T) {
	HTTPRequest("", 404, time.Millisecond)
	n := testutil.CollectAndCount(httpDuration)
	for i := 0; i < 50; i++ {
		HTTPRequest("", 404, time.Millisecond)
	}
	assert.Equal(t, n, testutil.CollectAndCount(httpDuration))
}

func TestEvaluation_UnknownAgendaSharesOneSeries(t *testing.T) {
	Evaluation(UnknownAgenda, false)
	n := testutil.CollectAndCount(evaluations)
	for i := 0; i < 50; i++ {
		Evaluation(UnknownAgenda, false)
	}
	assert.Equal(t, n, testutil.CollectAndCount(evaluations))
}
