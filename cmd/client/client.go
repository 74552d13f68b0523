package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/peterbourgon/ff"
	"github.com/pkg/errors"
	countergrpc "github.com/samueltorres/r8counter/pkg/transport/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type clientConfig struct {
	grpcAddr string
	timeout  time.Duration
	op       string
	name     string
}

func parseFlags(args []string, output io.Writer) (clientConfig, error) {
	fs := flag.NewFlagSet("r8counter-client", flag.ContinueOnError)
	fs.SetOutput(output)
	var (
		grpcAddr = fs.String("grpc-addr", "localhost:8081", "gRPC server address")
		timeout  = fs.Duration("timeout", 5*time.Second, "request timeout")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: client [flags] <create|get|inc|delete> <name>")
		fs.PrintDefaults()
	}
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("R8")); err != nil {
		return clientConfig{}, errors.Wrap(err, "error parsing configuration")
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return clientConfig{}, errors.Errorf("expected 2 arguments, got %d", fs.NArg())
	}

	return clientConfig{
		grpcAddr: *grpcAddr,
		timeout:  *timeout,
		op:       fs.Arg(0),
		name:     fs.Arg(1),
	}, nil
}

func main() {
	config, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	conn, err := grpc.NewClient(config.grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("did not connect: %s", err)
	}
	defer conn.Close()
	c := countergrpc.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), config.timeout)
	defer cancel()

	if err := MakeCall(ctx, c, config.op, config.name); err != nil {
		fmt.Println("error: ", err)
		os.Exit(1)
	}
}

func MakeCall(ctx context.Context, c *countergrpc.Client, op, name string) error {
	defer func(begin time.Time) {
		fmt.Fprintln(os.Stderr, "took > ", time.Since(begin))
	}(time.Now())

	var (
		value int64
		err   error
	)
	switch op {
	case "create":
		value, err = c.Create(ctx, name)
	case "get":
		value, err = c.Get(ctx, name)
	case "inc":
		value, err = c.Increment(ctx, name)
	case "delete":
		if err := c.Delete(ctx, name); err != nil {
			return err
		}
		fmt.Println(name, "deleted")
		return nil
	default:
		return fmt.Errorf("unknown operation %q", op)
	}

	if err != nil {
		return err
	}

	fmt.Println(name, value)
	return nil
}
