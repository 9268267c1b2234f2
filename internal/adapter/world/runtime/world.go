package runtime

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/robot"
	"streetbuilder/internal/domain/world"
)

// Generator produces the pristine tile at a coordinate. It must be
// deterministic: chunks are regenerated whenever the cache misses.
type Generator func(x, y int) world.Tile

type ChunkStore interface {
	GetChunk(ctx context.Context, coord world.ChunkCoord, seed int64) (world.Chunk, bool, error)
	SaveChunk(ctx context.Context, coord world.ChunkCoord, seed int64, chunk world.Chunk) error
}

type Config struct {
	Seed       int64
	Size       int
	ChunkSize  int
	ViewRadius int
	Generator  Generator
	ChunkStore ChunkStore
	Logger     *log.Logger
	Now        func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Seed:       1,
		Size:       64,
		ChunkSize:  8,
		ViewRadius: 1,
		Now:        time.Now,
	}
}

// World is a bounded, seeded tile grid that owns the robot's physical
// state. Coordinates run from 0 to Size-1 on both axes.
type World struct {
	mu     sync.Mutex
	cfg    Config
	robot  *robot.Robot
	chunks map[world.ChunkCoord]map[world.Point]world.Tile
	known  world.KnownMap
	events []world.Event
	tick   uint64
}

func New(cfg Config, r *robot.Robot) *World {
	def := DefaultConfig()
	if cfg.Size <= 0 {
		cfg.Size = def.Size
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ViewRadius <= 0 {
		cfg.ViewRadius = def.ViewRadius
	}
	if cfg.Generator == nil {
		cfg.Generator = SeededGenerator(cfg.Seed)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if r == nil {
		r = robot.New(world.Point{X: cfg.Size / 2, Y: cfg.Size / 2})
	}
	return &World{
		cfg:    cfg,
		robot:  r,
		chunks: map[world.ChunkCoord]map[world.Point]world.Tile{},
		known:  world.KnownMap{},
	}
}

func (w *World) Size() int { return w.cfg.Size }

func (w *World) Robot() *robot.Robot { return w.robot }

func (w *World) Position() world.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.robot.Coordinate
}

func (w *World) InBounds(p world.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < w.cfg.Size && p.Y < w.cfg.Size
}

// Tile returns the current state of a tile whether or not it was discovered.
func (w *World) Tile(ctx context.Context, p world.Point) (world.Tile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tileLocked(ctx, p)
}

// Reveal adds a tile to the known map. Discovering a new tile costs energy;
// looking at a known one is free.
func (w *World) Reveal(ctx context.Context, p world.Point) (world.Tile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.known.At(p); ok {
		return t, nil
	}
	t, err := w.tileLocked(ctx, p)
	if err != nil {
		return world.Tile{}, err
	}
	if err := w.spendLocked(robot.ScanCostPerTile); err != nil {
		return world.Tile{}, err
	}
	w.known.Put(t)
	return t, nil
}

// Refresh reveals the robot's surroundings for free.
func (w *World) Refresh(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	center := w.robot.Coordinate
	r := w.cfg.ViewRadius
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			p := world.Point{X: x, Y: y}
			if !w.InBounds(p) {
				continue
			}
			t, err := w.tileLocked(ctx, p)
			if err != nil {
				w.cfg.Logger.Printf("refresh %s: %v", p, err)
				continue
			}
			w.known.Put(t)
		}
	}
}

func (w *World) Known() world.KnownMap {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.known.Clone()
}

// Advance starts a new simulation tick and recharges the robot.
func (w *World) Advance() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tick++
	before := w.robot.Energy.Current
	w.robot.Energy.Recharge(robot.RechargePerTick)
	if gained := w.robot.Energy.Current - before; gained > 0 {
		w.emitLocked(world.EventEnergyRecharged, map[string]any{"amount": gained, "energy": w.robot.Energy.Current})
	}
}

// DrainEvents hands over the world notifications produced since the last call.
func (w *World) DrainEvents() []world.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.events
	w.events = nil
	return out
}

func (w *World) Snapshot(withTiles bool) world.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := world.Snapshot{
		Tick:       w.tick,
		Center:     w.robot.Coordinate,
		Discovered: len(w.known),
		Size:       w.cfg.Size,
	}
	if withTiles {
		for _, p := range w.known.Points() {
			snap.Tiles = append(snap.Tiles, w.known[p])
		}
	}
	return snap
}

func (w *World) tileLocked(ctx context.Context, p world.Point) (world.Tile, error) {
	if !w.InBounds(p) {
		return world.Tile{}, ports.ErrOutOfBounds
	}
	tiles, err := w.chunkLocked(ctx, world.ChunkOf(p, w.cfg.ChunkSize))
	if err != nil {
		return world.Tile{}, err
	}
	return tiles[p], nil
}

func (w *World) chunkLocked(ctx context.Context, coord world.ChunkCoord) (map[world.Point]world.Tile, error) {
	if tiles, ok := w.chunks[coord]; ok {
		return tiles, nil
	}
	var chunk world.Chunk
	cached := false
	if w.cfg.ChunkStore != nil {
		c, ok, err := w.cfg.ChunkStore.GetChunk(ctx, coord, w.cfg.Seed)
		if err != nil {
			return nil, err
		}
		chunk, cached = c, ok
	}
	if !cached {
		chunk = w.generateChunk(coord)
		if w.cfg.ChunkStore != nil {
			if err := w.cfg.ChunkStore.SaveChunk(ctx, coord, w.cfg.Seed, chunk); err != nil {
				return nil, err
			}
		}
	}
	tiles := make(map[world.Point]world.Tile, len(chunk.Tiles))
	for _, t := range chunk.Tiles {
		tiles[t.Point()] = t
	}
	w.chunks[coord] = tiles
	return tiles, nil
}

func (w *World) generateChunk(coord world.ChunkCoord) world.Chunk {
	size := w.cfg.ChunkSize
	tiles := make([]world.Tile, 0, size*size)
	baseX := coord.X * size
	baseY := coord.Y * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			t := w.cfg.Generator(baseX+x, baseY+y)
			t.X, t.Y = baseX+x, baseY+y
			tiles = append(tiles, t)
		}
	}
	return world.Chunk{Coord: coord, Tiles: tiles}
}

// updateTileLocked applies a change to a tile, keeps the known map in sync
// and writes the chunk back to the store.
func (w *World) updateTileLocked(ctx context.Context, t world.Tile) {
	coord := world.ChunkOf(t.Point(), w.cfg.ChunkSize)
	tiles, err := w.chunkLocked(ctx, coord)
	if err != nil {
		w.cfg.Logger.Printf("update tile %s: %v", t.Point(), err)
		return
	}
	tiles[t.Point()] = t
	if _, ok := w.known[t.Point()]; ok {
		w.known.Put(t)
	}
	if w.cfg.ChunkStore == nil {
		return
	}
	chunk := world.Chunk{Coord: coord, Tiles: make([]world.Tile, 0, len(tiles))}
	for _, tile := range tiles {
		chunk.Tiles = append(chunk.Tiles, tile)
	}
	if err := w.cfg.ChunkStore.SaveChunk(ctx, coord, w.cfg.Seed, chunk); err != nil {
		w.cfg.Logger.Printf("persist chunk %v: %v", coord, err)
	}
}

func (w *World) spendLocked(cost int) error {
	if !w.robot.Energy.Consume(cost) {
		return ports.ErrNoEnergy
	}
	if cost > 0 {
		w.emitLocked(world.EventEnergyConsumed, map[string]any{"amount": cost, "energy": w.robot.Energy.Current})
	}
	return nil
}

func (w *World) emitLocked(typ world.EventType, payload map[string]any) {
	w.events = append(w.events, world.Event{
		Type:       typ,
		Tick:       w.tick,
		OccurredAt: w.cfg.Now(),
		Payload:    payload,
	})
}

func (w *World) Holding(c world.Content) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.robot.Backpack.Count(c)
}
