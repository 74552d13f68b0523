package counter

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samueltorres/r8counter/pkg/policy"
	"github.com/sirupsen/logrus"
)

const (
	ResultOK          = "ok"
	ResultConflict    = "conflict"
	ResultNotFound    = "not_found"
	ResultInvalidName = "invalid_name"
	ResultError       = "error"
)

// NameValidator decides whether a name may be used for a counter
type NameValidator interface {
	ValidateName(name string) error
}

type counterMetrics struct {
	operationsTotal *prometheus.CounterVec
}

func newCounterMetrics(r prometheus.Registerer) *counterMetrics {
	var m counterMetrics

	m.operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "counter_operations_total",
		Help: "Total number of counter operations by result",
	}, []string{"operation", "result"})

	r.MustRegister(m.operationsTotal)
	return &m
}

// Service is the counter store handed to the transports. It validates names
// against the current policy before touching the storage.
type Service struct {
	storage   Storage
	validator NameValidator
	logger    *logrus.Logger
	metrics   *counterMetrics
}

// NewService creates a new counter service
func NewService(
	storage Storage,
	validator NameValidator,
	logger *logrus.Logger,
	registerer prometheus.Registerer) *Service {

	return &Service{
		storage:   storage,
		validator: validator,
		logger:    logger,
		metrics:   newCounterMetrics(registerer),
	}
}

// Create registers a new counter starting at 0
func (s *Service) Create(ctx context.Context, name string) (int64, error) {
	if err := s.validator.ValidateName(name); err != nil {
		s.observe("create", name, err)
		return 0, err
	}

	value, err := s.storage.Create(ctx, name)
	s.observe("create", name, err)
	return value, err
}

// Get returns the current value of a counter
func (s *Service) Get(ctx context.Context, name string) (int64, error) {
	if err := s.validator.ValidateName(name); err != nil {
		s.observe("get", name, err)
		return 0, err
	}

	value, err := s.storage.Get(ctx, name)
	s.observe("get", name, err)
	return value, err
}

// Increment adds one to a counter and returns the new value
func (s *Service) Increment(ctx context.Context, name string) (int64, error) {
	if err := s.validator.ValidateName(name); err != nil {
		s.observe("increment", name, err)
		return 0, err
	}

	value, err := s.storage.Increment(ctx, name)
	s.observe("increment", name, err)
	return value, err
}

// Delete removes a counter
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.validator.ValidateName(name); err != nil {
		s.observe("delete", name, err)
		return err
	}

	err := s.storage.Delete(ctx, name)
	s.observe("delete", name, err)
	return err
}

// Close releases the underlying storage
func (s *Service) Close() error {
	return s.storage.Close()
}

func (s *Service) observe(operation, name string, err error) {
	result := Classify(err)
	s.metrics.operationsTotal.WithLabelValues(operation, result).Inc()

	entry := s.logger.WithFields(logrus.Fields{
		"operation": operation,
		"counter":   name,
	})

	switch result {
	case ResultOK:
		entry.Trace("counter operation succeeded")
	case ResultError:
		entry.WithError(err).Error("counter operation failed")
	default:
		entry.WithError(err).Debug("counter operation rejected")
	}
}

// Classify maps an error returned by the service to a short result label
func Classify(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrConflict):
		return ResultConflict
	case errors.Is(err, ErrNotFound):
		return ResultNotFound
	case errors.Is(err, policy.ErrInvalidName):
		return ResultInvalidName
	default:
		return ResultError
	}
}
