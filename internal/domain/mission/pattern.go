package mission

import "streetbuilder/internal/domain/world"

// BuildStep is one entry of a scripted construction macro: clear whatever sits
// in the Clear direction, lay one street segment towards Build, then step
// towards Move. An empty direction skips that part of the step.
type BuildStep struct {
	Clear world.Direction `json:"clear,omitempty" yaml:"clear"`
	Build world.Direction `json:"build,omitempty" yaml:"build"`
	Move  world.Direction `json:"move,omitempty" yaml:"move"`
}

func straight(d world.Direction, n int) []BuildStep {
	out := make([]BuildStep, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, BuildStep{Clear: d, Build: d, Move: d})
	}
	return out
}

// LoopPattern encloses a square of the given side with street tiles, walking
// clockwise from the robot's tile and ending where it started.
func LoopPattern(side int) []BuildStep {
	if side < 1 {
		return nil
	}
	out := make([]BuildStep, 0, side*4)
	for _, d := range []world.Direction{world.East, world.South, world.West, world.North} {
		out = append(out, straight(d, side)...)
	}
	return out
}

// SpiralPattern lays an inward spiral of the given number of turns.
func SpiralPattern(turns int) []BuildStep {
	out := []BuildStep{}
	length := turns
	dirs := []world.Direction{world.East, world.South, world.West, world.North}
	for i := 0; length > 0; i++ {
		out = append(out, straight(dirs[i%len(dirs)], length)...)
		if i%2 == 1 {
			length--
		}
	}
	return out
}

// DefaultDance is the victory routine played before terminating.
func DefaultDance() []world.Direction {
	return []world.Direction{world.North, world.East, world.South, world.West, world.North, world.West, world.South, world.East}
}
