package world

import "fmt"

// Point is a grid coordinate. X is the column and Y the row; rows grow southwards.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p Point) Step(d Direction) Point {
	return p.Add(d.Delta())
}

func (p Point) Manhattan(o Point) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

func (p Point) Adjacent(o Point) bool {
	return p.Manhattan(o) == 1
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Y, p.X)
}

type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

var Directions = []Direction{North, East, South, West}

func (d Direction) Delta() Point {
	switch d {
	case North:
		return Point{Y: -1}
	case South:
		return Point{Y: 1}
	case East:
		return Point{X: 1}
	case West:
		return Point{X: -1}
	default:
		return Point{}
	}
}

func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West:
		return true
	default:
		return false
	}
}

func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return d
	}
}

// DirectionTo returns the cardinal direction of an adjacent point.
func DirectionTo(from, to Point) (Direction, bool) {
	for _, d := range Directions {
		if from.Step(d) == to {
			return d, true
		}
	}
	return "", false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
