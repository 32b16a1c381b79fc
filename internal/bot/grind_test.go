package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/varkas/grindbot/internal/store"
)

// chainHotspot builds a linear waypoint graph 1-2-3-...-n with the given
// level bands.
func chainHotspot(bands ...[2]int) *store.Hotspot {
	h := &store.Hotspot{ID: 1, Zone: "Durotar"}
	for i, band := range bands {
		wp := store.Waypoint{
			ID:       i + 1,
			Zone:     "Durotar",
			MinLevel: band[0],
			MaxLevel: band[1],
		}
		if i > 0 {
			wp.Links = append(wp.Links, i)
		}
		if i < len(bands)-1 {
			wp.Links = append(wp.Links, i+2)
		}
		h.Waypoints = append(h.Waypoints, wp)
	}
	return h
}

func TestForcedWpPathViaBFSShortestRoute(t *testing.T) {
	// Bands 1-10 at the start of the chain, 11-20 at the far end. A level 15
	// player at waypoint 1 gets walked to the first fitting waypoint.
	h := chainHotspot([2]int{1, 10}, [2]int{1, 10}, [2]int{11, 20}, [2]int{11, 20})

	path := ForcedWpPathViaBFS(h, 1, 15, nil, nil)
	assert.Equal(t, []int{2, 3}, path)
}

func TestForcedWpPathViaBFSExcludesStart(t *testing.T) {
	h := chainHotspot([2]int{1, 60}, [2]int{1, 60})

	path := ForcedWpPathViaBFS(h, 1, 10, nil, nil)
	assert.Equal(t, []int{2}, path, "the starting waypoint never appears in the path")
}

func TestForcedWpPathViaBFSAvoidsBlacklisted(t *testing.T) {
	// Diamond: 1 links to 2 and 3, both link to 4. Waypoint 2 is
	// blacklisted, the route must go through 3.
	h := &store.Hotspot{ID: 1, Zone: "Durotar", Waypoints: []store.Waypoint{
		{ID: 1, Zone: "Durotar", MinLevel: 1, MaxLevel: 10, Links: []int{2, 3}},
		{ID: 2, Zone: "Durotar", MinLevel: 1, MaxLevel: 10, Links: []int{1, 4}},
		{ID: 3, Zone: "Durotar", MinLevel: 1, MaxLevel: 10, Links: []int{1, 4}},
		{ID: 4, Zone: "Durotar", MinLevel: 11, MaxLevel: 20, Links: []int{2, 3}},
	}}

	path := ForcedWpPathViaBFS(h, 1, 15, map[int]bool{2: true}, nil)
	assert.Equal(t, []int{3, 4}, path)
}

func TestForcedWpPathViaBFSUnvisitedZoneFallback(t *testing.T) {
	// The player has outgrown every band. The goal becomes any waypoint in a
	// zone not visited this session.
	h := &store.Hotspot{ID: 1, Zone: "Durotar", Waypoints: []store.Waypoint{
		{ID: 1, Zone: "Durotar", MinLevel: 1, MaxLevel: 10, Links: []int{2}},
		{ID: 2, Zone: "Durotar", MinLevel: 1, MaxLevel: 10, Links: []int{1, 3}},
		{ID: 3, Zone: "The Barrens", MinLevel: 1, MaxLevel: 10, Links: []int{2}},
	}}

	path := ForcedWpPathViaBFS(h, 1, 40, nil, map[int]bool{1: true, 2: true})
	assert.Equal(t, []int{2, 3}, path)
}

func TestForcedWpPathViaBFSLastFrontier(t *testing.T) {
	// No reachable waypoint satisfies the goal. The path to the deepest
	// explored node comes back instead of nil.
	h := chainHotspot([2]int{1, 10}, [2]int{1, 10}, [2]int{1, 10})

	path := ForcedWpPathViaBFS(h, 1, 15, nil, map[int]bool{1: true, 2: true, 3: true})
	assert.NotEmpty(t, path)
	assert.Equal(t, 3, path[len(path)-1])
}

func TestForcedWpPathViaBFSIsolatedStart(t *testing.T) {
	h := &store.Hotspot{ID: 1, Zone: "Durotar", Waypoints: []store.Waypoint{
		{ID: 1, Zone: "Durotar", MinLevel: 1, MaxLevel: 10},
	}}

	assert.Nil(t, ForcedWpPathViaBFS(h, 1, 40, nil, nil))
}

func TestWaypointLevelBands(t *testing.T) {
	wp := store.Waypoint{MinLevel: 10, MaxLevel: 20}
	assert.False(t, wp.FitsLevel(9))
	assert.True(t, wp.FitsLevel(10))
	assert.True(t, wp.FitsLevel(20))
	assert.False(t, wp.FitsLevel(21))
	assert.True(t, wp.Overleveled(21))

	open := store.Waypoint{MinLevel: 30}
	assert.True(t, open.FitsLevel(60), "zero max level is an open-ended band")
	assert.False(t, open.Overleveled(60))
}
