package construct

import (
	"context"
	"errors"
	"fmt"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/world"
)

type Site interface {
	Position() world.Point
	Tile(ctx context.Context, p world.Point) (world.Tile, error)
	Holding(c world.Content) int
	ClearContent(ctx context.Context, p world.Point) error
	PutStreet(ctx context.Context, p world.Point, material world.Content) error
	Move(ctx context.Context, dir world.Direction) error
}

// Builder lays a straight street in front of the robot, walking along it as
// it goes. Each new street tile uses one unit of material.
type Builder struct {
	site     Site
	material world.Content
}

func New(site Site, material world.Content) Builder {
	if material == world.ContentNone {
		material = world.ContentRock
	}
	return Builder{site: site, material: material}
}

func (b Builder) Build(ctx context.Context, dir world.Direction, length int) error {
	if !dir.Valid() || length < 1 {
		return fmt.Errorf("build %q x%d: invalid segment", dir, length)
	}
	need, err := b.materialNeeded(ctx, dir, length)
	if err != nil {
		return err
	}
	if have := b.site.Holding(b.material); have < need {
		return fmt.Errorf("build %s x%d needs %d %s, holding %d: %w", dir, length, need, b.material, have, ports.ErrMaterialShortage)
	}

	for i := 0; i < length; i++ {
		next := b.site.Position().Step(dir)
		tile, err := b.site.Tile(ctx, next)
		if err != nil {
			return fmt.Errorf("build %s step %d: %w", dir, i, err)
		}
		if !tile.IsStreet() {
			if tile.Content.Obstacle() {
				if err := b.site.ClearContent(ctx, next); err != nil {
					return fmt.Errorf("build %s step %d: %w", dir, i, err)
				}
			}
			if err := b.site.PutStreet(ctx, next, b.material); err != nil {
				return fmt.Errorf("build %s step %d: %w", dir, i, err)
			}
		}
		if i < length-1 {
			if err := b.site.Move(ctx, dir); err != nil {
				return fmt.Errorf("build %s step %d: %w", dir, i, err)
			}
		}
	}
	return nil
}

func (b Builder) Clear(ctx context.Context, dir world.Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("clear %q: invalid direction", dir)
	}
	return b.site.ClearContent(ctx, b.site.Position().Step(dir))
}

// materialNeeded walks the segment before anything is spent. A tile that
// can never take a street fails the whole segment with ErrBlocked.
func (b Builder) materialNeeded(ctx context.Context, dir world.Direction, length int) (int, error) {
	need := 0
	p := b.site.Position()
	for i := 0; i < length; i++ {
		p = p.Step(dir)
		tile, err := b.site.Tile(ctx, p)
		if err != nil {
			if errors.Is(err, ports.ErrOutOfBounds) {
				return 0, fmt.Errorf("build %s step %d off the map: %w", dir, i, ports.ErrBlocked)
			}
			return 0, fmt.Errorf("build %s: %w", dir, err)
		}
		if !tile.Buildable() {
			return 0, fmt.Errorf("build %s step %d at %s on %s: %w", dir, i, p, tile.Kind, ports.ErrBlocked)
		}
		if !tile.IsStreet() {
			need++
		}
	}
	return need, nil
}
