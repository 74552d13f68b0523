package grpc

import (
	"context"
	"net"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type options struct {
	listen string
}

type Option func(*options)

// WithListen sets the address the server listens on
func WithListen(addr string) Option {
	return func(o *options) {
		o.listen = addr
	}
}

type Server struct {
	service *counter.Service
	logger  *logrus.Logger
	server  *grpc.Server
	opts    options
}

var _ CountersServer = (*Server)(nil)

func NewServer(
	service *counter.Service,
	logger *logrus.Logger,
	registerer prometheus.Registerer,
	opts ...Option) *Server {

	o := options{listen: ":8081"}
	for _, opt := range opts {
		opt(&o)
	}

	metrics := grpc_prometheus.NewServerMetrics()
	registerer.MustRegister(metrics)

	s := &Server{
		service: service,
		logger:  logger,
		server: grpc.NewServer(
			grpc.UnaryInterceptor(metrics.UnaryServerInterceptor()),
		),
		opts: o,
	}

	RegisterCountersServer(s.server, s)
	metrics.InitializeMetrics(s.server)

	return s
}

// Start listens on the configured address and serves until Stop is called
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.opts.listen)
	if err != nil {
		return errors.Wrap(err, "grpc server listen failure")
	}

	return s.Serve(lis)
}

// Serve accepts connections on lis until Stop is called
func (s *Server) Serve(lis net.Listener) error {
	s.logger.WithField("addr", lis.Addr().String()).Info("starting grpc server")

	if err := s.server.Serve(lis); err != nil {
		return errors.Wrap(err, "grpc server failure")
	}

	return nil
}

func (s *Server) Stop() {
	s.logger.Info("stopping grpc server")
	s.server.GracefulStop()
}

func (s *Server) Create(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	value, err := s.service.Create(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.Int64(value), nil
}

func (s *Server) Get(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	value, err := s.service.Get(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.Int64(value), nil
}

func (s *Server) Increment(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	value, err := s.service.Increment(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return wrapperspb.Int64(value), nil
}

func (s *Server) Delete(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.service.Delete(ctx, in.GetValue()); err != nil {
		return nil, toStatus(err)
	}

	return &emptypb.Empty{}, nil
}

func toStatus(err error) error {
	switch counter.Classify(err) {
	case counter.ResultConflict:
		return status.Error(codes.AlreadyExists, err.Error())
	case counter.ResultNotFound:
		return status.Error(codes.NotFound, err.Error())
	case counter.ResultInvalidName:
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal storage error")
	}
}
