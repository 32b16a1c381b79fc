package pather

import (
	"fmt"

	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/pather/astar"
)

// Provider computes world-space paths on a given map. The production
// implementation wraps the navmesh bridge of the attached client; GridProvider
// serves maps with a rasterized collision grid.
type Provider interface {
	CalculatePath(mapID int, start, end game.Position, smooth bool) ([]game.Position, error)
}

// PathFinder answers the two questions bot states ask: where to steer next,
// and how far something really is once walls are accounted for.
type PathFinder struct {
	provider Provider
}

func NewPathFinder(provider Provider) *PathFinder {
	return &PathFinder{provider: provider}
}

// NextWaypoint returns the position to steer toward on the way to end. When
// the provider fails or returns a degenerate path, the destination itself is
// returned and the caller walks straight at it.
func (pf *PathFinder) NextWaypoint(mapID int, start, end game.Position) game.Position {
	path, err := pf.provider.CalculatePath(mapID, start, end, true)
	if err != nil || len(path) < 2 {
		return end
	}
	return path[1]
}

// DistanceViaPath is the walked length of the path from start to end. It
// falls back to straight-line distance when no path exists, callers comparing
// candidates still get a usable ordering.
func (pf *PathFinder) DistanceViaPath(mapID int, start, end game.Position) float64 {
	path, err := pf.provider.CalculatePath(mapID, start, end, false)
	if err != nil || len(path) < 2 {
		return start.DistanceTo(end)
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i-1].DistanceTo(path[i])
	}
	return total
}

// PathEndpoint returns the last reachable position of the path toward end.
func (pf *PathFinder) PathEndpoint(mapID int, start, end game.Position) game.Position {
	path, err := pf.provider.CalculatePath(mapID, start, end, false)
	if err != nil || len(path) == 0 {
		return end
	}
	return path[len(path)-1]
}

// GridMap binds a collision grid to its world-space placement.
type GridMap struct {
	Grid     *astar.Grid
	Origin   game.Position
	CellSize float32
}

// GridProvider implements Provider over preloaded collision grids.
type GridProvider struct {
	maps    map[int]*GridMap
	buffers *astar.Buffers
}

func NewGridProvider() *GridProvider {
	return &GridProvider{
		maps:    make(map[int]*GridMap),
		buffers: &astar.Buffers{},
	}
}

func (gp *GridProvider) AddMap(mapID int, m *GridMap) {
	gp.maps[mapID] = m
}

func (gp *GridProvider) CalculatePath(mapID int, start, end game.Position, smooth bool) ([]game.Position, error) {
	m, ok := gp.maps[mapID]
	if !ok {
		return nil, fmt.Errorf("no collision grid loaded for map %d", mapID)
	}

	startCell := m.toCell(start)
	endCell := m.toCell(end)

	cells, found := astar.CalculatePath(m.Grid, startCell, endCell, gp.buffers)
	if !found {
		return nil, fmt.Errorf("no path from %v to %v on map %d", startCell, endCell, mapID)
	}

	path := make([]game.Position, 0, len(cells))
	for _, c := range cells {
		path = append(path, m.toWorld(c, start.Z))
	}
	if smooth {
		path = smoothPath(path)
	}
	// Pin the endpoints to the exact requested positions, cell centers are
	// up to half a cell off.
	path[0] = start
	path[len(path)-1] = end

	return path, nil
}
