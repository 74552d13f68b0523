package http

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

const defaultShutdownTimeout = 5 * time.Second

type options struct {
	listen          string
	shutdownTimeout time.Duration
}

type Option func(*options)

// WithListen sets the address the server listens on
func WithListen(addr string) Option {
	return func(o *options) {
		o.listen = addr
	}
}

// WithShutdownTimeout bounds how long Stop waits for in-flight requests
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		o.shutdownTimeout = d
	}
}

type Server struct {
	handler http.Handler
	server  *http.Server
	logger  *logrus.Logger
	opts    options
}

// New creates the REST server for the counter service
func New(
	service *counter.Service,
	logger *logrus.Logger,
	registerer prometheus.Registerer,
	opts ...Option) *Server {

	o := options{
		listen:          ":8082",
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &counterHandler{
		service: service,
		logger:  logger,
	}
	metrics := NewMetricsMiddleware(registerer)

	router := httprouter.New()
	route := func(method, path string, handle httprouter.Handle) {
		router.Handle(method, path, metrics.Handler(path, handle))
	}
	route(http.MethodPost, "/counters/:name", h.handleCreate)
	route(http.MethodGet, "/counters/:name", h.handleRead)
	route(http.MethodPut, "/counters/:name", h.handleUpdate)
	route(http.MethodDelete, "/counters/:name", h.handleDelete)

	recovery := negroni.NewRecovery()
	recovery.Logger = logger
	recovery.PrintStack = false

	n := negroni.New(recovery)
	n.UseHandler(router)

	return &Server{
		handler: n,
		server: &http.Server{
			Addr:    o.listen,
			Handler: n,
		},
		logger: logger,
		opts:   o,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.handler.ServeHTTP(w, req)
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.WithField("addr", s.opts.listen).Info("starting http server")

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return errors.Wrap(err, "http server failure")
}

// Stop gracefully shuts the server down
func (s *Server) Stop(err error) {
	s.logger.WithError(err).Info("stopping http server")

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("http server shutdown failure")
	}
}
