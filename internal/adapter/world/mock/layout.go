package mock

import "streetbuilder/internal/domain/world"

// Layout builds a generator from rows of glyphs, row 0 being the northmost:
//
//	. grass   s sand   h hill   M mountain   ~ water   ^ lava
//	# street  T teleport   R rock   t tree   b bush
//
// Coordinates outside the layout are water.
func Layout(rows ...string) func(x, y int) world.Tile {
	grid := make([][]rune, len(rows))
	for i, row := range rows {
		grid[i] = []rune(row)
	}
	return func(x, y int) world.Tile {
		glyph := '~'
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
			glyph = grid[y][x]
		}
		t := tileFor(glyph)
		t.X, t.Y = x, y
		t.Passable = t.Kind.Walkable() && !t.Content.Obstacle()
		return t
	}
}

// Size is the edge of the smallest square world that holds the layout.
func Size(rows ...string) int {
	n := len(rows)
	for _, row := range rows {
		if l := len([]rune(row)); l > n {
			n = l
		}
	}
	return n
}

func tileFor(glyph rune) world.Tile {
	switch glyph {
	case '.':
		return world.Tile{Kind: world.TileGrass}
	case 's':
		return world.Tile{Kind: world.TileSand}
	case 'h':
		return world.Tile{Kind: world.TileHill}
	case 'M':
		return world.Tile{Kind: world.TileMountain}
	case '^':
		return world.Tile{Kind: world.TileLava}
	case '#':
		return world.Tile{Kind: world.TileStreet}
	case 'T':
		return world.Tile{Kind: world.TileTeleport}
	case 'R':
		return world.Tile{Kind: world.TileGrass, Content: world.ContentRock, Amount: 1}
	case 't':
		return world.Tile{Kind: world.TileGrass, Content: world.ContentTree, Amount: 1}
	case 'b':
		return world.Tile{Kind: world.TileGrass, Content: world.ContentBush, Amount: 1}
	default:
		return world.Tile{Kind: world.TileWater}
	}
}
