package grpc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/samueltorres/r8counter/pkg/policy"
)

// Client calls the Counters service and maps status codes back to the
// counter package errors.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) Create(ctx context.Context, name string) (int64, error) {
	return c.invokeValue(ctx, "Create", name)
}

func (c *Client) Get(ctx context.Context, name string) (int64, error) {
	return c.invokeValue(ctx, "Get", name)
}

func (c *Client) Increment(ctx context.Context, name string) (int64, error) {
	return c.invokeValue(ctx, "Increment", name)
}

func (c *Client) Delete(ctx context.Context, name string) error {
	out := new(emptypb.Empty)
	err := c.conn.Invoke(ctx, "/"+ServiceName+"/Delete", wrapperspb.String(name), out)
	return fromStatus(err)
}

func (c *Client) invokeValue(ctx context.Context, method, name string) (int64, error) {
	out := new(wrapperspb.Int64Value)
	err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, wrapperspb.String(name), out)
	if err != nil {
		return 0, fromStatus(err)
	}

	return out.GetValue(), nil
}

func fromStatus(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.AlreadyExists:
		return counter.ErrConflict
	case codes.NotFound:
		return counter.ErrNotFound
	case codes.InvalidArgument:
		return errors.Wrap(policy.ErrInvalidName, st.Message())
	default:
		return err
	}
}
