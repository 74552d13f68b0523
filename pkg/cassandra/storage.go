package cassandra

import (
	"context"
	"math/rand"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/sirupsen/logrus"
)

// Schema is the table the storage expects in its keyspace.
const Schema = `CREATE TABLE IF NOT EXISTS counters (name text PRIMARY KEY, value bigint)`

const (
	casBaseBackoff = 2 * time.Millisecond
	casMaxBackoff  = 200 * time.Millisecond
)

var _ counter.Storage = (*Storage)(nil)

// Storage keeps counters in Cassandra. Every write is a lightweight
// transaction so that create and delete conflicts are detected server side.
type Storage struct {
	session *gocql.Session
	logger  *logrus.Logger
}

func NewStorage(session *gocql.Session, logger *logrus.Logger) *Storage {
	return &Storage{
		session: session,
		logger:  logger,
	}
}

// CreateSchema creates the counters table if it is missing
func (s *Storage) CreateSchema(ctx context.Context) error {
	err := s.session.Query(Schema).WithContext(ctx).Exec()
	if err != nil {
		return errors.Wrap(err, "cassandra storage schema failure")
	}

	return nil
}

func (s *Storage) Create(ctx context.Context, name string) (int64, error) {
	applied, err := s.session.
		Query(`INSERT INTO counters (name, value) VALUES (?, 0) IF NOT EXISTS`, name).
		WithContext(ctx).
		SerialConsistency(gocql.LocalSerial).
		MapScanCAS(make(map[string]interface{}))

	if err != nil {
		return 0, errors.Wrap(err, "cassandra storage create failure")
	}

	if !applied {
		return 0, counter.ErrConflict
	}

	return 0, nil
}

func (s *Storage) Get(ctx context.Context, name string) (int64, error) {
	var value int64

	err := s.session.
		Query(`SELECT value FROM counters WHERE name = ? LIMIT 1`, name).
		WithContext(ctx).
		Consistency(gocql.LocalQuorum).
		Scan(&value)

	if err == gocql.ErrNotFound {
		return 0, counter.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "cassandra storage get failure")
	}

	return value, nil
}

// Increment retries its compare-and-set until it wins or ctx is done, so a
// contended counter only fails when the caller gives up.
func (s *Storage) Increment(ctx context.Context, name string) (int64, error) {
	return retryCAS(ctx, func() (int64, bool, error) {
		current, err := s.Get(ctx, name)
		if err != nil {
			return 0, false, err
		}

		applied, err := s.session.
			Query(`UPDATE counters SET value = ? WHERE name = ? IF value = ?`, current+1, name, current).
			WithContext(ctx).
			SerialConsistency(gocql.LocalSerial).
			MapScanCAS(make(map[string]interface{}))

		if err != nil {
			return 0, false, errors.Wrap(err, "cassandra storage increment failure")
		}

		if !applied {
			s.logger.WithField("counter", name).Debug("increment lost compare-and-set, retrying")
		}

		return current + 1, applied, nil
	})
}

// retryCAS runs attempt until it applies or fails, sleeping a jittered,
// exponentially growing backoff between lost rounds.
func retryCAS(ctx context.Context, attempt func() (int64, bool, error)) (int64, error) {
	backoff := casBaseBackoff
	for {
		value, applied, err := attempt()
		if err != nil {
			return 0, err
		}
		if applied {
			return value, nil
		}

		timer := time.NewTimer(backoff/2 + time.Duration(rand.Int63n(int64(backoff))))
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, errors.Wrap(ctx.Err(), "cassandra storage increment gave up")
		case <-timer.C:
		}

		backoff *= 2
		if backoff > casMaxBackoff {
			backoff = casMaxBackoff
		}
	}
}

func (s *Storage) Delete(ctx context.Context, name string) error {
	applied, err := s.session.
		Query(`DELETE FROM counters WHERE name = ? IF EXISTS`, name).
		WithContext(ctx).
		SerialConsistency(gocql.LocalSerial).
		MapScanCAS(make(map[string]interface{}))

	if err != nil {
		return errors.Wrap(err, "cassandra storage delete failure")
	}

	if !applied {
		return counter.ErrNotFound
	}

	return nil
}

func (s *Storage) Close() error {
	s.session.Close()
	return nil
}
