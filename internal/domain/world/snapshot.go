package world

import "sort"

// KnownMap is the part of the world the robot has discovered so far.
type KnownMap map[Point]Tile

func (m KnownMap) At(p Point) (Tile, bool) {
	t, ok := m[p]
	return t, ok
}

func (m KnownMap) Put(t Tile) {
	m[t.Point()] = t
}

func (m KnownMap) Clone() KnownMap {
	out := make(KnownMap, len(m))
	for p, t := range m {
		out[p] = t
	}
	return out
}

// Points returns the discovered coordinates in row-major order.
func (m KnownMap) Points() []Point {
	out := make([]Point, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// WithContent lists the discovered tiles holding the given content, row-major.
func (m KnownMap) WithContent(c Content) []Tile {
	out := []Tile{}
	for _, p := range m.Points() {
		if t := m[p]; t.Content == c {
			out = append(out, t)
		}
	}
	return out
}

type Snapshot struct {
	Tick       uint64 `json:"tick"`
	Center     Point  `json:"center"`
	Discovered int    `json:"discovered"`
	Size       int    `json:"size"`
	Tiles      []Tile `json:"tiles,omitempty"`
}

// BuildableRun checks the length tiles past from in direction dir. It fails
// when a discovered tile cannot take a street and otherwise reports how many
// of the tiles are still undiscovered.
func (m KnownMap) BuildableRun(from Point, dir Direction, length int) (unknown int, ok bool) {
	p := from
	for i := 0; i < length; i++ {
		p = p.Step(dir)
		t, seen := m[p]
		if !seen {
			unknown++
			continue
		}
		if !t.Buildable() {
			return 0, false
		}
	}
	return unknown, true
}
