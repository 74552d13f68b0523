package main

import (
	"context"
	"io/ioutil"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/samueltorres/r8counter/pkg/policy"
	countergrpc "github.com/samueltorres/r8counter/pkg/transport/grpc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func TestMakeCall(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	testCases := []struct {
		desc    string
		op      string
		name    string
		wantErr error
	}{
		{desc: "create", op: "create", name: "foo"},
		{desc: "duplicate", op: "create", name: "foo", wantErr: counter.ErrConflict},
		{desc: "increment", op: "inc", name: "foo"},
		{desc: "get", op: "get", name: "foo"},
		{desc: "delete", op: "delete", name: "foo"},
		{desc: "delete again", op: "delete", name: "foo", wantErr: counter.ErrNotFound},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			err := MakeCall(ctx, c, tC.op, tC.name)
			if tC.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tC.wantErr)
		})
	}
}

func TestMakeCall_UnknownOperation(t *testing.T) {
	c := newTestClient(t)

	err := MakeCall(context.Background(), c, "reset", "foo")
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	config, err := parseFlags([]string{"-grpc-addr", "host:9000", "-timeout", "2s", "inc", "foo"}, ioutil.Discard)
	require.NoError(t, err)
	assert.Equal(t, clientConfig{grpcAddr: "host:9000", timeout: 2 * time.Second, op: "inc", name: "foo"}, config)
}

func TestParseFlags_Errors(t *testing.T) {
	testCases := []struct {
		desc string
		env  string
		args []string
	}{
		{desc: "bad env duration", env: "forever", args: []string{"get", "foo"}},
		{desc: "bad flag duration", args: []string{"-timeout", "forever", "get", "foo"}},
		{desc: "unknown flag", args: []string{"-nope", "get", "foo"}},
		{desc: "missing name", args: []string{"get"}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			if tC.env != "" {
				t.Setenv("R8_TIMEOUT", tC.env)
			}
			_, err := parseFlags(tC.args, ioutil.Discard)
			assert.Error(t, err)
		})
	}
}

func newTestClient(t *testing.T) *countergrpc.Client {
	t.Helper()

	logger := logrus.New()
	logger.Out = ioutil.Discard

	registry := prometheus.NewRegistry()
	service := counter.NewService(counter.NewMemoryStorage(), policy.MustDefault(), logger, registry)
	srv := countergrpc.NewServer(service, logger, registry)

	lis := bufconn.Listen(1024 * 1024)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return countergrpc.NewClient(conn)
}
