package main

import (
	"context"
	"io/ioutil"
	"os"
	"testing"

	"github.com/samueltorres/r8counter/pkg/configs"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	testCases := []struct {
		desc string
		args []string
		env  map[string]string
		want func(c *configs.Config)
	}{
		{
			desc: "defaults",
			want: func(c *configs.Config) {
				assert.Equal(t, ":8081", c.GrpcAddr)
				assert.Equal(t, ":8082", c.HttpAddr)
				assert.Equal(t, ":8083", c.DebugAddr)
				assert.Equal(t, "memory", c.Datastore)
				assert.Equal(t, "counters:", c.Redis.Prefix)
				assert.Equal(t, ":memory:", c.SQLite.DSN)
				assert.Equal(t, "info", c.LogLevel)
			},
		},
		{
			desc: "flags",
			args: []string{"-datastore", "redis", "-redis-address", "localhost:6379", "-redis-database", "3"},
			want: func(c *configs.Config) {
				assert.Equal(t, "redis", c.Datastore)
				assert.Equal(t, "localhost:6379", c.Redis.Address)
				assert.Equal(t, 3, c.Redis.Database)
			},
		},
		{
			desc: "environment",
			env:  map[string]string{"R8_HTTP_ADDR": ":9090", "R8_LOG_LEVEL": "debug"},
			want: func(c *configs.Config) {
				assert.Equal(t, ":9090", c.HttpAddr)
				assert.Equal(t, "debug", c.LogLevel)
			},
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			for k, v := range tC.env {
				os.Setenv(k, v)
				defer os.Unsetenv(k)
			}

			got, err := parseConfig(tC.args)
			require.NoError(t, err)
			tC.want(&got)
		})
	}
}

func TestParseConfig_UnknownFlag(t *testing.T) {
	_, err := parseConfig([]string{"-no-such-flag"})
	assert.Error(t, err)
}

func TestCreateLogger(t *testing.T) {
	logger := createLogger(configs.Config{LogLevel: "debug", LogFormat: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.Level)
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = createLogger(configs.Config{LogLevel: "nonsense"})
	assert.Equal(t, logrus.ErrorLevel, logger.Level)
}

func TestCreateCounterStorage(t *testing.T) {
	testCases := []struct {
		desc    string
		config  configs.Config
		wantErr bool
	}{
		{
			desc:   "memory",
			config: configs.Config{Datastore: "memory"},
		},
		{
			desc:   "sqlite",
			config: configs.Config{Datastore: "sqlite", SQLite: configs.SQLiteConfig{DSN: ":memory:"}},
		},
		{
			desc:    "unknown datastore",
			config:  configs.Config{Datastore: "etcd"},
			wantErr: true,
		},
		{
			desc:    "unreachable redis",
			config:  configs.Config{Datastore: "redis", Redis: configs.RedisConfig{Address: "127.0.0.1:1"}},
			wantErr: true,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			storage, err := createCounterStorage(tC.config, newNullLogger())
			if tC.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer storage.Close()

			got, err := storage.Create(context.Background(), "foo")
			require.NoError(t, err)
			assert.Equal(t, int64(0), got)
		})
	}
}

func TestCreateNameValidator(t *testing.T) {
	v, err := createNameValidator(configs.Config{}, newNullLogger())
	require.NoError(t, err)
	for _, name := range []string{"foo", "foo bar", "café", "a:b"} {
		assert.NoError(t, v.ValidateName(name), name)
	}

	v, err = createNameValidator(configs.Config{PolicyFile: "../../pkg/file/testdata/policy.yaml"}, newNullLogger())
	require.NoError(t, err)
	assert.Error(t, v.ValidateName("admin"))

	_, err = createNameValidator(configs.Config{PolicyFile: "missing.yaml"}, newNullLogger())
	assert.Error(t, err)
}

func newNullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = ioutil.Discard

	return logger
}
