package scan

import (
	"context"
	"errors"
	"fmt"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

type Surface interface {
	Reveal(ctx context.Context, p world.Point) (world.Tile, error)
	InBounds(p world.Point) bool
}

// RingScanner reveals the square around the origin one ring per call,
// innermost first. A pass that sees no matching tile fails so the caller
// widens its radius.
type RingScanner struct {
	surface Surface

	active bool
	origin world.Point
	radius int
	ring   int
	found  int
}

func NewRingScanner(surface Surface) *RingScanner {
	return &RingScanner{surface: surface}
}

func (s *RingScanner) Scan(ctx context.Context, from world.Point, radius int, match ports.TilePredicate) mission.ScanVerdict {
	if radius < 0 {
		radius = 0
	}
	if !s.active || from != s.origin || radius != s.radius {
		s.active = true
		s.origin = from
		s.radius = radius
		s.ring = 0
		s.found = 0
	}

	for _, p := range Ring(from, s.ring) {
		if !s.surface.InBounds(p) {
			continue
		}
		tile, err := s.surface.Reveal(ctx, p)
		if err != nil {
			if errors.Is(err, ports.ErrNoEnergy) {
				s.active = false
				return mission.ScanVerdict{State: mission.ScanFailed, Reason: "not enough energy to scan"}
			}
			continue
		}
		if match(tile) {
			s.found++
		}
	}

	s.ring++
	if s.ring <= s.radius {
		return mission.ScanVerdict{State: mission.ScanScanning}
	}
	s.active = false
	if s.found == 0 {
		return mission.ScanVerdict{State: mission.ScanFailed, Reason: fmt.Sprintf("nothing found within radius %d", s.radius)}
	}
	return mission.ScanVerdict{State: mission.ScanComplete}
}

// Ring lists the cells at Chebyshev distance r from center, row-major.
func Ring(center world.Point, r int) []world.Point {
	if r == 0 {
		return []world.Point{center}
	}
	out := make([]world.Point, 0, 8*r)
	for y := center.Y - r; y <= center.Y+r; y++ {
		if y == center.Y-r || y == center.Y+r {
			for x := center.X - r; x <= center.X+r; x++ {
				out = append(out, world.Point{X: x, Y: y})
			}
			continue
		}
		out = append(out, world.Point{X: center.X - r, Y: y}, world.Point{X: center.X + r, Y: y})
	}
	return out
}
