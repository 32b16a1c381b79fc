package pather

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/pather/astar"
)

type scriptedProvider struct {
	path []game.Position
	err  error
}

func (p scriptedProvider) CalculatePath(mapID int, start, end game.Position, smooth bool) ([]game.Position, error) {
	return p.path, p.err
}

func TestNextWaypointReturnsSecondPoint(t *testing.T) {
	pf := NewPathFinder(scriptedProvider{path: []game.Position{
		{X: 0, Y: 0},
		{X: 5, Y: 0},
		{X: 10, Y: 0},
	}})

	next := pf.NextWaypoint(1, game.Position{}, game.Position{X: 10})
	assert.Equal(t, game.Position{X: 5}, next)
}

func TestNextWaypointFallsBackToDestination(t *testing.T) {
	end := game.Position{X: 10, Y: 3}

	pf := NewPathFinder(scriptedProvider{err: errors.New("no navmesh")})
	assert.Equal(t, end, pf.NextWaypoint(1, game.Position{}, end))

	pf = NewPathFinder(scriptedProvider{path: []game.Position{{X: 0, Y: 0}}})
	assert.Equal(t, end, pf.NextWaypoint(1, game.Position{}, end), "degenerate path steers straight at the target")
}

func TestDistanceViaPathSumsSegments(t *testing.T) {
	pf := NewPathFinder(scriptedProvider{path: []game.Position{
		{X: 0, Y: 0},
		{X: 3, Y: 0},
		{X: 3, Y: 4},
	}})

	d := pf.DistanceViaPath(1, game.Position{}, game.Position{X: 3, Y: 4})
	assert.InDelta(t, 7.0, d, 0.001, "walked length follows the corner, not the diagonal")
}

func TestDistanceViaPathFallsBackToStraightLine(t *testing.T) {
	pf := NewPathFinder(scriptedProvider{err: errors.New("no navmesh")})

	d := pf.DistanceViaPath(1, game.Position{}, game.Position{X: 3, Y: 4})
	assert.InDelta(t, 5.0, d, 0.001)
}

func TestPathEndpoint(t *testing.T) {
	stop := game.Position{X: 6, Y: 0}
	pf := NewPathFinder(scriptedProvider{path: []game.Position{
		{X: 0, Y: 0},
		{X: 6, Y: 0},
	}})
	assert.Equal(t, stop, pf.PathEndpoint(1, game.Position{}, game.Position{X: 20}))

	pf = NewPathFinder(scriptedProvider{err: errors.New("no navmesh")})
	end := game.Position{X: 20}
	assert.Equal(t, end, pf.PathEndpoint(1, game.Position{}, end))
}

func openGrid(w, h int) *astar.Grid {
	return &astar.Grid{
		Width:  w,
		Height: h,
		Tiles:  make([]astar.CollisionType, w*h),
	}
}

func TestGridMapCellConversion(t *testing.T) {
	m := &GridMap{
		Grid:     openGrid(10, 10),
		Origin:   game.Position{X: 100, Y: 200},
		CellSize: 2,
	}

	c := m.toCell(game.Position{X: 105, Y: 203})
	assert.Equal(t, astar.Point{X: 2, Y: 1}, c)

	w := m.toWorld(astar.Point{X: 2, Y: 1}, 7)
	assert.Equal(t, game.Position{X: 105, Y: 203, Z: 7}, w, "round-trips to the cell center")
}

func TestGridProviderPinsEndpoints(t *testing.T) {
	gp := NewGridProvider()
	gp.AddMap(1, &GridMap{
		Grid:     openGrid(8, 8),
		Origin:   game.Position{},
		CellSize: 1,
	})

	start := game.Position{X: 0.2, Y: 0.3, Z: 12}
	end := game.Position{X: 6.8, Y: 0.3, Z: 12}

	path, err := gp.CalculatePath(1, start, end, true)
	require.NoError(t, err)
	require.NotEmpty(t, path)

	assert.Equal(t, start, path[0])
	assert.Equal(t, end, path[len(path)-1])
	for _, p := range path {
		assert.Equal(t, float32(12), p.Z, "grid paths carry the start height")
	}
}

func TestGridProviderSmoothingKeepsCorners(t *testing.T) {
	gp := NewGridProvider()
	grid := openGrid(5, 5)
	// Wall across the middle with a gap on the right edge.
	for x := 0; x < 4; x++ {
		grid.Tiles[2*grid.Width+x] = astar.CollisionTypeNonWalkable
	}
	gp.AddMap(1, &GridMap{Grid: grid, Origin: game.Position{}, CellSize: 1})

	start := game.Position{X: 0.5, Y: 0.5}
	end := game.Position{X: 0.5, Y: 4.5}

	smoothed, err := gp.CalculatePath(1, start, end, true)
	require.NoError(t, err)
	raw, err := gp.CalculatePath(1, start, end, false)
	require.NoError(t, err)

	assert.Less(t, len(smoothed), len(raw), "collinear interior points are dropped")
	assert.Greater(t, len(smoothed), 2, "the detour corner survives smoothing")
}

func TestGridProviderUnknownMap(t *testing.T) {
	gp := NewGridProvider()
	_, err := gp.CalculatePath(99, game.Position{}, game.Position{X: 1}, false)
	assert.Error(t, err)
}

func TestGridProviderNoRoute(t *testing.T) {
	gp := NewGridProvider()
	grid := openGrid(5, 5)
	for x := 0; x < 5; x++ {
		grid.Tiles[2*grid.Width+x] = astar.CollisionTypeNonWalkable
	}
	gp.AddMap(1, &GridMap{Grid: grid, Origin: game.Position{}, CellSize: 1})

	_, err := gp.CalculatePath(1, game.Position{X: 0.5, Y: 0.5}, game.Position{X: 0.5, Y: 4.5}, false)
	assert.Error(t, err)
}
