package ports

import (
	"context"

	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

// TilePredicate selects the tiles a scan is looking for.
type TilePredicate func(world.Tile) bool

// Scanner incrementally reveals the area around a position. Each call does a
// bounded amount of work and reports whether the area is done.
type Scanner interface {
	Scan(ctx context.Context, from world.Point, radius int, match TilePredicate) mission.ScanVerdict
}

// Planner turns a discovered map into routes. Build and UpdateCosts must be
// called before Locate or Route see the new data.
type Planner interface {
	Build(ctx context.Context, known world.KnownMap)
	UpdateCosts(ctx context.Context, from world.Point)
	Locate(content world.Content) []world.Point
	Route(ctx context.Context, target world.Point) ([]mission.Action, error)
}

type Collector interface {
	Collect(ctx context.Context, content world.Content, target world.Point) (int, error)
}

type Constructor interface {
	Build(ctx context.Context, dir world.Direction, length int) error
	Clear(ctx context.Context, dir world.Direction) error
}

type ProgressTracker interface {
	Add(goal mission.GoalType, content world.Content, n int)
	Completed() int
	Progress() mission.Progress
}

type Mover interface {
	Move(ctx context.Context, dir world.Direction) error
	Teleport(ctx context.Context, to world.Point) error
}

type MapView interface {
	// Refresh reveals the tiles immediately around the robot.
	Refresh(ctx context.Context)
	Known() world.KnownMap
}
