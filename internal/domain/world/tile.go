package world

type TileKind string

const (
	TileGrass    TileKind = "grass"
	TileSand     TileKind = "sand"
	TileHill     TileKind = "hill"
	TileMountain TileKind = "mountain"
	TileWater    TileKind = "water"
	TileLava     TileKind = "lava"
	TileStreet   TileKind = "street"
	TileTeleport TileKind = "teleport"
)

type Content string

const (
	ContentNone Content = ""
	ContentRock Content = "rock"
	ContentTree Content = "tree"
	ContentBush Content = "bush"
	ContentFire Content = "fire"
)

type Tile struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Kind     TileKind `json:"kind"`
	Content  Content  `json:"content,omitempty"`
	Amount   int      `json:"amount,omitempty"`
	Passable bool     `json:"passable"`
}

func (t Tile) Point() Point {
	return Point{X: t.X, Y: t.Y}
}

func (t Tile) IsStreet() bool {
	return t.Kind == TileStreet
}

// Buildable reports whether a street can end up on the tile. Obstacle
// content does not count since it can be cleared first.
func (t Tile) Buildable() bool {
	return t.IsStreet() || (t.Kind.Walkable() && t.Kind != TileTeleport)
}

// WalkCost is the base energy needed to step onto the tile. Impassable
// tiles report -1.
func (k TileKind) WalkCost() int {
	switch k {
	case TileStreet:
		return 1
	case TileGrass, TileSand, TileTeleport:
		return 2
	case TileHill:
		return 4
	case TileMountain:
		return 8
	default:
		return -1
	}
}

func (k TileKind) Walkable() bool {
	return k.WalkCost() > 0
}

// Obstacle reports whether content blocks a street from being laid on the tile.
func (c Content) Obstacle() bool {
	switch c {
	case ContentTree, ContentBush, ContentRock, ContentFire:
		return true
	default:
		return false
	}
}
