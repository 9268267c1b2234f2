package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"streetbuilder/internal/adapter/repo/gorm/model"
	"streetbuilder/internal/domain/world"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorldChunkRepo caches generated and modified chunks keyed by world seed.
type WorldChunkRepo struct {
	db *gorm.DB
}

func NewWorldChunkRepo(db *gorm.DB) WorldChunkRepo {
	return WorldChunkRepo{db: db}
}

func (r WorldChunkRepo) GetChunk(ctx context.Context, coord world.ChunkCoord, seed int64) (world.Chunk, bool, error) {
	var row model.WorldChunk
	err := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where(map[string]any{
			"chunk_x": int32(coord.X),
			"chunk_y": int32(coord.Y),
			"seed":    seed,
		}).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return world.Chunk{}, false, nil
		}
		return world.Chunk{}, false, err
	}
	tiles, err := decodeChunkTiles(row.Tiles)
	if err != nil {
		return world.Chunk{}, false, err
	}
	return world.Chunk{Coord: coord, Tiles: tiles}, true, nil
}

func (r WorldChunkRepo) SaveChunk(ctx context.Context, coord world.ChunkCoord, seed int64, chunk world.Chunk) error {
	b, err := encodeChunkTiles(chunk.Tiles)
	if err != nil {
		return err
	}
	row := model.WorldChunk{
		ChunkX:    int32(coord.X),
		ChunkY:    int32(coord.Y),
		Seed:      seed,
		Tiles:     b,
		UpdatedAt: time.Now(),
	}
	return getDBFromCtx(ctx, r.db).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chunk_x"}, {Name: "chunk_y"}, {Name: "seed"}},
		DoUpdates: clause.AssignmentColumns([]string{"tiles", "updated_at"}),
	}).Create(&row).Error
}

func encodeChunkTiles(tiles []world.Tile) ([]byte, error) {
	return json.Marshal(tiles)
}

func decodeChunkTiles(data []byte) ([]world.Tile, error) {
	out := []world.Tile{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
