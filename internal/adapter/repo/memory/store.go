package memory

import (
	"context"
	"sync"

	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

type chunkKey struct {
	coord world.ChunkCoord
	seed  int64
}

type Store struct {
	mu     sync.RWMutex
	events map[string][]mission.Event
	chunks map[chunkKey]world.Chunk
}

func NewStore() *Store {
	return &Store{
		events: make(map[string][]mission.Event),
		chunks: make(map[chunkKey]world.Chunk),
	}
}

type txKeyType struct{}

var txKey = txKeyType{}

// lock takes the store lock unless the caller already runs inside RunInTx.
func (s *Store) lock(ctx context.Context) func() {
	if held, _ := ctx.Value(txKey).(bool); held {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if held, _ := ctx.Value(txKey).(bool); held {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}
