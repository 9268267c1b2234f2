package world

type ChunkCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Chunk struct {
	Coord ChunkCoord
	Tiles []Tile
}

// ChunkOf returns the chunk holding p for square chunks of the given size.
func ChunkOf(p Point, size int) ChunkCoord {
	return ChunkCoord{X: floorDiv(p.X, size), Y: floorDiv(p.Y, size)}
}

func floorDiv(a, b int) int {
	if a >= 0 {
		return a / b
	}
	return -(((-a) + b - 1) / b)
}
