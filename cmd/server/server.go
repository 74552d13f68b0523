package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gocql/gocql"
	"github.com/oklog/run"
	"github.com/peterbourgon/ff"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	rediscli "github.com/redis/go-redis/v9"
	"github.com/samueltorres/r8counter/pkg/cassandra"
	"github.com/samueltorres/r8counter/pkg/configs"
	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/samueltorres/r8counter/pkg/file"
	"github.com/samueltorres/r8counter/pkg/policy"
	"github.com/samueltorres/r8counter/pkg/redis"
	"github.com/samueltorres/r8counter/pkg/sqlite"
	"github.com/samueltorres/r8counter/pkg/transport/grpc"
	"github.com/samueltorres/r8counter/pkg/transport/http"
	"github.com/sirupsen/logrus"
)

func main() {
	config, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := createLogger(config)

	// metrics
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		version.NewCollector("r8counter"),
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	// counter service
	validator, err := createNameValidator(config, logger)
	if err != nil {
		logger.Fatalf("error creating name policy: %v", err)
	}

	storage, err := createCounterStorage(config, logger)
	if err != nil {
		logger.Fatalf("could not create counter storage: %v", err)
	}

	counterService := counter.NewService(storage, validator, logger, metrics)
	defer counterService.Close()

	var g run.Group
	{
		counterGrpcServer := grpc.NewServer(
			counterService,
			logger,
			metrics,
			grpc.WithListen(config.GrpcAddr))

		g.Add(func() error {
			return counterGrpcServer.Start()
		}, func(error) {
			counterGrpcServer.Stop()
		})
	}
	{
		counterHTTPServer := http.New(
			counterService,
			logger,
			metrics,
			http.WithListen(config.HttpAddr))

		g.Add(func() error {
			return counterHTTPServer.Start()
		}, func(err error) {
			counterHTTPServer.Stop(err)
		})
	}
	{
		debugServer := http.NewDebug(
			metrics,
			logger,
			http.WithListen(config.DebugAddr))

		g.Add(func() error {
			return debugServer.Start()
		}, func(err error) {
			debugServer.Stop(err)
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancel:
				return nil
			}
		}, func(error) {
			close(cancel)
		})
	}

	logger.Info("exit ", g.Run())
}

func parseConfig(args []string) (configs.Config, error) {
	fs := flag.NewFlagSet("r8counter", flag.ContinueOnError)
	var (
		grpcAddress       = fs.String("grpc-addr", ":8081", "grpc address")
		httpAddress       = fs.String("http-addr", ":8082", "http address")
		debugAddress      = fs.String("debug-addr", ":8083", "debug address for metrics and healthcheck")
		datastore         = fs.String("datastore", "memory", "datastore type (memory/redis/cassandra/sqlite)")
		cassandraHost     = fs.String("cassandra-host", "", "cassandra host")
		cassandraKeyspace = fs.String("cassandra-keyspace", "", "cassandra keyspace")
		redisAddress      = fs.String("redis-address", "", "redis address")
		redisDatabase     = fs.Int("redis-database", 0, "redis database")
		redisPassword     = fs.String("redis-password", "", "redis password")
		redisPrefix       = fs.String("redis-prefix", redis.DefaultPrefix, "redis key prefix")
		sqliteDSN         = fs.String("sqlite-dsn", sqlite.DefaultDSN, "sqlite data source name")
		policyFile        = fs.String("policy-file", "", "counter name policy file, built-in policy when empty")
		logLevel          = fs.String("log-level", "info", "log level (panic, fatal, error, warn, info, debug, trace)")
		logFormat         = fs.String("log-format", "text", "log format (text/json)")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("R8")); err != nil {
		return configs.Config{}, errors.Wrap(err, "error parsing configuration")
	}

	var config configs.Config
	{
		config.GrpcAddr = *grpcAddress
		config.HttpAddr = *httpAddress
		config.DebugAddr = *debugAddress
		config.Datastore = *datastore
		config.Cassandra.Hosts = *cassandraHost
		config.Cassandra.Keyspace = *cassandraKeyspace
		config.Redis.Address = *redisAddress
		config.Redis.Database = *redisDatabase
		config.Redis.Password = *redisPassword
		config.Redis.Prefix = *redisPrefix
		config.SQLite.DSN = *sqliteDSN
		config.PolicyFile = *policyFile
		config.LogLevel = *logLevel
		config.LogFormat = *logFormat
	}

	return config, nil
}

func createLogger(config configs.Config) *logrus.Logger {
	logger := logrus.New()
	if config.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		level = logrus.ErrorLevel
	}

	logger.Infof("setting log level to %v", level)
	logger.SetLevel(level)

	return logger
}

func createNameValidator(config configs.Config, logger *logrus.Logger) (counter.NameValidator, error) {
	if config.PolicyFile == "" {
		return policy.New(policy.Default())
	}

	return file.NewPolicyService(config.PolicyFile, logger)
}

func createCounterStorage(config configs.Config, logger *logrus.Logger) (counter.Storage, error) {
	switch config.Datastore {
	case "memory":
		return counter.NewMemoryStorage(), nil

	case "redis":
		redisClient := rediscli.NewClient(&rediscli.Options{
			Addr:     config.Redis.Address,
			Password: config.Redis.Password,
			DB:       config.Redis.Database,
		})

		err := redisClient.Ping(context.Background()).Err()
		if err != nil {
			redisClient.Close()
			return nil, errors.Wrap(err, "could not connect to redis")
		}

		return redis.NewStorage(redisClient, config.Redis.Prefix), nil

	case "cassandra":
		cluster := gocql.NewCluster(strings.Split(config.Cassandra.Hosts, ",")...)
		cluster.Keyspace = config.Cassandra.Keyspace
		cluster.Consistency = gocql.LocalQuorum
		session, err := cluster.CreateSession()
		if err != nil {
			return nil, errors.Wrap(err, "could not create cassandra session")
		}

		storage := cassandra.NewStorage(session, logger)
		if err := storage.CreateSchema(context.Background()); err != nil {
			storage.Close()
			return nil, err
		}

		return storage, nil

	case "sqlite":
		return sqlite.NewStorage(config.SQLite.DSN)

	default:
		return nil, errors.Errorf("invalid datastore %s", config.Datastore)
	}
}
