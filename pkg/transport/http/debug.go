package http

import (
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewDebug creates the server exposing metrics and the health check
func NewDebug(gatherer prometheus.Gatherer, logger *logrus.Logger, opts ...Option) *Server {
	o := options{
		listen:          ":8083",
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.GET("/healthz", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})

	return &Server{
		handler: router,
		server: &http.Server{
			Addr:    o.listen,
			Handler: router,
		},
		logger: logger,
		opts:   o,
	}
}
