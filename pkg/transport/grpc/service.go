package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "r8counter.Counters"

// CountersServer is the server API of the r8counter.Counters service:
//
//	service Counters {
//	  rpc Create(google.protobuf.StringValue) returns (google.protobuf.Int64Value);
//	  rpc Get(google.protobuf.StringValue) returns (google.protobuf.Int64Value);
//	  rpc Increment(google.protobuf.StringValue) returns (google.protobuf.Int64Value);
//	  rpc Delete(google.protobuf.StringValue) returns (google.protobuf.Empty);
//	}
type CountersServer interface {
	Create(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	Increment(context.Context, *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
	Delete(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

// RegisterCountersServer registers srv on s
func RegisterCountersServer(s grpc.ServiceRegistrar, srv CountersServer) {
	s.RegisterService(&countersServiceDesc, srv)
}

var countersServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CountersServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Create",
			Handler: unaryHandler("Create", func(srv CountersServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.Create(ctx, in)
			}),
		},
		{
			MethodName: "Get",
			Handler: unaryHandler("Get", func(srv CountersServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.Get(ctx, in)
			}),
		},
		{
			MethodName: "Increment",
			Handler: unaryHandler("Increment", func(srv CountersServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.Increment(ctx, in)
			}),
		},
		{
			MethodName: "Delete",
			Handler: unaryHandler("Delete", func(srv CountersServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error) {
				return srv.Delete(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "r8counter/counters.proto",
}

type unaryCall func(srv CountersServer, ctx context.Context, in *wrapperspb.StringValue) (interface{}, error)

// unaryHandler builds the method handler every Counters method shares: all
// of them take the counter name as input.
func unaryHandler(method string, call unaryCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + method

	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(CountersServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CountersServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}
