package memory

import (
	"context"

	"streetbuilder/internal/domain/world"
)

type ChunkRepo struct {
	store *Store
}

func NewChunkRepo(store *Store) ChunkRepo {
	return ChunkRepo{store: store}
}

func (r ChunkRepo) GetChunk(ctx context.Context, coord world.ChunkCoord, seed int64) (world.Chunk, bool, error) {
	defer r.store.rlock(ctx)()
	c, ok := r.store.chunks[chunkKey{coord: coord, seed: seed}]
	if !ok {
		return world.Chunk{}, false, nil
	}
	return world.Chunk{Coord: c.Coord, Tiles: append([]world.Tile(nil), c.Tiles...)}, true, nil
}

func (r ChunkRepo) SaveChunk(ctx context.Context, coord world.ChunkCoord, seed int64, chunk world.Chunk) error {
	defer r.store.lock(ctx)()
	r.store.chunks[chunkKey{coord: coord, seed: seed}] = world.Chunk{Coord: coord, Tiles: append([]world.Tile(nil), chunk.Tiles...)}
	return nil
}
