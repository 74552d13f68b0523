package counter

import (
	"context"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
)

const memoryShardCount uint64 = 64

var _ Storage = (*MemoryStorage)(nil)

// MemoryStorage keeps counters in process memory, spread across shards so
// that operations on different names rarely contend for the same lock.
type MemoryStorage struct {
	shardCount      uint64
	shardedCounters []map[string]int64
	shardedMutexes  []*sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	ms := &MemoryStorage{
		shardCount:      memoryShardCount,
		shardedCounters: make([]map[string]int64, memoryShardCount),
		shardedMutexes:  make([]*sync.RWMutex, memoryShardCount),
	}

	// initialize shards
	for i := uint64(0); i < ms.shardCount; i++ {
		ms.shardedCounters[i] = make(map[string]int64)
		ms.shardedMutexes[i] = &sync.RWMutex{}
	}

	return ms
}

func (ms *MemoryStorage) shard(name string) uint64 {
	return fnv1a.HashString64(name) % ms.shardCount
}

func (ms *MemoryStorage) Create(ctx context.Context, name string) (int64, error) {
	shard := ms.shard(name)
	mux := ms.shardedMutexes[shard]
	mux.Lock()
	defer mux.Unlock()

	if _, ok := ms.shardedCounters[shard][name]; ok {
		return 0, ErrConflict
	}

	ms.shardedCounters[shard][name] = 0
	return 0, nil
}

func (ms *MemoryStorage) Get(ctx context.Context, name string) (int64, error) {
	shard := ms.shard(name)
	mux := ms.shardedMutexes[shard]
	mux.RLock()
	defer mux.RUnlock()

	value, ok := ms.shardedCounters[shard][name]
	if !ok {
		return 0, ErrNotFound
	}

	return value, nil
}

func (ms *MemoryStorage) Increment(ctx context.Context, name string) (int64, error) {
	shard := ms.shard(name)
	mux := ms.shardedMutexes[shard]
	mux.Lock()
	defer mux.Unlock()

	value, ok := ms.shardedCounters[shard][name]
	if !ok {
		return 0, ErrNotFound
	}

	value++
	ms.shardedCounters[shard][name] = value
	return value, nil
}

func (ms *MemoryStorage) Delete(ctx context.Context, name string) error {
	shard := ms.shard(name)
	mux := ms.shardedMutexes[shard]
	mux.Lock()
	defer mux.Unlock()

	if _, ok := ms.shardedCounters[shard][name]; !ok {
		return ErrNotFound
	}

	delete(ms.shardedCounters[shard], name)
	return nil
}

func (ms *MemoryStorage) Close() error {
	return nil
}
