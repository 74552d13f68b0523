package redis

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/samueltorres/r8counter/pkg/counter"
)

const DefaultPrefix = "counters:"

var _ counter.Storage = (*Storage)(nil)

// incrementScript increments an existing key and answers nil for a missing
// one, so a PUT never brings a deleted counter back to life.
var incrementScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return false
end
return redis.call("INCR", KEYS[1])
`)

type Storage struct {
	client *redis.Client
	prefix string
}

func NewStorage(client *redis.Client, prefix string) *Storage {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Storage{
		client: client,
		prefix: prefix,
	}
}

func (s *Storage) Create(ctx context.Context, name string) (int64, error) {
	ok, err := s.client.SetNX(ctx, s.key(name), 0, 0).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis storage create failure")
	}

	if !ok {
		return 0, counter.ErrConflict
	}

	return 0, nil
}

func (s *Storage) Get(ctx context.Context, name string) (int64, error) {
	c, err := s.client.Get(ctx, s.key(name)).Int64()
	if err == redis.Nil {
		return 0, counter.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "redis storage get failure")
	}

	return c, nil
}

func (s *Storage) Increment(ctx context.Context, name string) (int64, error) {
	c, err := incrementScript.Run(ctx, s.client, []string{s.key(name)}).Int64()
	if err == redis.Nil {
		return 0, counter.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "redis storage increment failure")
	}

	return c, nil
}

func (s *Storage) Delete(ctx context.Context, name string) error {
	n, err := s.client.Del(ctx, s.key(name)).Result()
	if err != nil {
		return errors.Wrap(err, "redis storage delete failure")
	}

	if n == 0 {
		return counter.ErrNotFound
	}

	return nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) key(name string) string {
	return s.prefix + name
}
