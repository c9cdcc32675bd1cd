// Package metrics exposes Prometheus instrumentation for the agenda service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values substituted for caller-supplied input outside the known set.
const (
	UnknownAgenda = "unknown"
	OtherRoute    = "other"
)

var (
	// evaluations counts verdicts by agenda and outcome ("satisfied", "unsatisfied").
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propagenda_evaluations_total",
		Help: "Agenda evaluations by agenda id and outcome",
	}, []string{"agenda", "outcome"})

	selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propagenda_selections_total",
		Help: "Next-agenda selections by agenda id; game over is recorded as \"none\"",
	}, []string{"agenda"})

	metadataLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propagenda_metadata_loads_total",
		Help: "Agenda metadata loads by result",
	}, []string{"result"})

	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propagenda_catalog_agendas",
		Help: "Agendas in the currently loaded catalog",
	})

	sessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propagenda_ws_sessions",
		Help: "Active WebSocket game sessions",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propagenda_http_request_duration_seconds",
		Help:    "HTTP request duration by route and status",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"route", "status"})
)

// Evaluation records one verdict. Callers pass UnknownAgenda for ids outside the catalog.
func Evaluation(agendaID string, satisfied bool) {
	outcome := "unsatisfied"
	if satisfied {
		outcome = "satisfied"
	}
	evaluations.WithLabelValues(agendaID, outcome).Inc()
}

// Selection records the agenda chosen next, or game over when ok is false.
func Selection(agendaID string, ok bool) {
	if !ok {
		agendaID = "none"
	}
	selections.WithLabelValues(agendaID).Inc()
}

// MetadataLoad records a metadata load and the resulting catalog size.
func MetadataLoad(err error, agendas int) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metadataLoads.WithLabelValues(result).Inc()
	catalogSize.Set(float64(agendas))
}

// SessionOpened and SessionClosed track live WebSocket sessions.
func SessionOpened() { sessions.Inc() }
func SessionClosed() { sessions.Dec() }

// HTTPRequest records one served request under its registered route pattern;
// an empty route (no pattern matched) is recorded as OtherRoute.
func HTTPRequest(route string, status int, dur time.Duration) {
	if route == "" {
		route = OtherRoute
	}
	httpDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(dur.Seconds())
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler { return promhttp.Handler() }
