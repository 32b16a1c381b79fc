package pather

import (
	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/pather/astar"
)

func (m *GridMap) toCell(p game.Position) astar.Point {
	return astar.Point{
		X: int((p.X - m.Origin.X) / m.CellSize),
		Y: int((p.Y - m.Origin.Y) / m.CellSize),
	}
}

func (m *GridMap) toWorld(c astar.Point, z float32) game.Position {
	return game.Position{
		X: m.Origin.X + (float32(c.X)+0.5)*m.CellSize,
		Y: m.Origin.Y + (float32(c.Y)+0.5)*m.CellSize,
		Z: z,
	}
}

// smoothPath drops interior points that continue in the same direction as
// the previous segment, leaving only the corners.
func smoothPath(path []game.Position) []game.Position {
	if len(path) <= 2 {
		return path
	}

	smoothed := make([]game.Position, 0, len(path))
	smoothed = append(smoothed, path[0])

	for i := 1; i < len(path)-1; i++ {
		prev := smoothed[len(smoothed)-1]
		next := path[i+1]

		dx1 := path[i].X - prev.X
		dy1 := path[i].Y - prev.Y
		dx2 := next.X - path[i].X
		dy2 := next.Y - path[i].Y

		// Cross product of consecutive segments, zero means collinear.
		if dx1*dy2-dy1*dx2 != 0 {
			smoothed = append(smoothed, path[i])
		}
	}

	smoothed = append(smoothed, path[len(path)-1])
	return smoothed
}
