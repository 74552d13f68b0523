package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/negroni"
)

type metricsMiddleware struct {
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func NewMetricsMiddleware(registerer prometheus.Registerer) *metricsMiddleware {
	// metrics
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total http requests counter",
		},
		[]string{"route", "method", "status"})

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of the http requests",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		},
		[]string{"route", "method", "status"})

	registerer.MustRegister(requestCounter, requestLatency)

	return &metricsMiddleware{
		requestCounter: requestCounter,
		requestLatency: requestLatency,
	}
}

// Handler instruments next, labelling its requests with the route pattern
// rather than the concrete path so counter names never become label values.
func (m *metricsMiddleware) Handler(route string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()

		ww := negroni.NewResponseWriter(w)
		next(ww, r, ps)

		status := strconv.Itoa(ww.Status())
		m.requestCounter.WithLabelValues(route, r.Method, status).Inc()
		m.requestLatency.WithLabelValues(route, r.Method, status).Observe(time.Since(start).Seconds())
	}
}
