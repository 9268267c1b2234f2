package runtime

import "streetbuilder/internal/domain/world"

// SeededGenerator scatters terrain and content with a cheap coordinate hash.
// The same seed always yields the same world.
func SeededGenerator(seed int64) Generator {
	return func(x, y int) world.Tile {
		return genTile(seed, x, y)
	}
}

func genTile(seed int64, x, y int) world.Tile {
	s := tileSeed(seed, x, y)
	kind := world.TileGrass
	switch {
	case s%97 == 0:
		kind = world.TileTeleport
	case s%41 == 0:
		kind = world.TileLava
	case s%13 == 0:
		kind = world.TileWater
	case s%17 == 0:
		kind = world.TileMountain
	case s%7 == 0:
		kind = world.TileHill
	case s%5 == 0:
		kind = world.TileSand
	case s%53 == 1:
		kind = world.TileStreet
	}

	content := world.ContentNone
	amount := 0
	if kind.Walkable() && kind != world.TileStreet && kind != world.TileTeleport {
		switch {
		case s%9 == 2:
			content = world.ContentRock
			amount = 1 + int(s/9%3)
		case s%11 == 3:
			content = world.ContentTree
			amount = 1
		case s%19 == 4:
			content = world.ContentBush
			amount = 1
		}
	}
	if kind == world.TileLava && s%3 == 0 {
		content = world.ContentFire
	}

	return world.Tile{
		X:        x,
		Y:        y,
		Kind:     kind,
		Content:  content,
		Amount:   amount,
		Passable: kind.Walkable() && !content.Obstacle(),
	}
}

func tileSeed(seed int64, x, y int) int64 {
	v := int64(x)*73856093 ^ int64(y)*19349663 ^ seed*83492791
	if v < 0 {
		v = -v
	}
	return v
}
