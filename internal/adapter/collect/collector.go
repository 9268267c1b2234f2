package collect

import (
	"context"
	"errors"
	"fmt"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/world"
)

type Grounds interface {
	Position() world.Point
	Tile(ctx context.Context, p world.Point) (world.Tile, error)
	Pickup(ctx context.Context, p world.Point) (world.Content, int, error)
}

// Collector picks up matching content from the target and from every other
// tile the robot can reach without moving.
type Collector struct {
	grounds Grounds
}

func New(grounds Grounds) Collector {
	return Collector{grounds: grounds}
}

func (c Collector) Collect(ctx context.Context, content world.Content, target world.Point) (int, error) {
	total := 0
	for _, p := range c.candidates(target) {
		tile, err := c.grounds.Tile(ctx, p)
		if err != nil || tile.Content != content {
			continue
		}
		_, n, err := c.grounds.Pickup(ctx, p)
		if err != nil {
			if errors.Is(err, ports.ErrNoEnergy) {
				return total, fmt.Errorf("collect %s at %s: %w", content, p, err)
			}
			continue
		}
		total += n
	}
	return total, nil
}

func (c Collector) candidates(target world.Point) []world.Point {
	pos := c.grounds.Position()
	out := make([]world.Point, 0, 6)
	if target == pos || target.Adjacent(pos) {
		out = append(out, target)
	}
	if pos != target {
		out = append(out, pos)
	}
	for _, d := range world.Directions {
		if n := pos.Step(d); n != target {
			out = append(out, n)
		}
	}
	return out
}
