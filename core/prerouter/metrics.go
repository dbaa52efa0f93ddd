package prerouter

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/caasmo/accounts/core"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	requestsTotalName = "http_server_requests_total"
	requestsTotalHelp = "Total number of HTTP requests handled by the server, labeled by status code."
)

// Metrics counts handled requests by response status.
type Metrics struct {
	app           *core.App
	requestsTotal *prometheus.CounterVec
}

// NewMetrics registers the request counter with reg. A nil reg uses the
// default registerer.
func NewMetrics(app *core.App, reg prometheus.Registerer) (*Metrics, error) {
	counterVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: requestsTotalName,
			Help: requestsTotalHelp,
		},
		[]string{"code"},
	)

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(counterVec); err != nil {
		return nil, fmt.Errorf("metrics: failed to register %s: %w", requestsTotalName, err)
	}

	return &Metrics{
		app:           app,
		requestsTotal: counterVec,
	}, nil
}

func (m *Metrics) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.app.Config().Metrics.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		rec, ok := w.(*core.ResponseRecorder)
		if !ok {
			m.app.Logger().Error("metrics middleware: expected core.ResponseRecorder",
				"got", fmt.Sprintf("%T", w))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(rec, r)

		m.requestsTotal.WithLabelValues(strconv.Itoa(rec.Status)).Inc()
	})
}
