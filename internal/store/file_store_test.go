package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varkas/grindbot/internal/game"
)

const worldFixture = `{
  "travelPaths": [
    {
      "id": 1,
      "name": "Orgrimmar to Crossroads",
      "waypoints": [
        {"id": 1, "x": 1630.5, "y": -4373.2, "z": 31.2},
        {"id": 2, "x": 1358.1, "y": -4370.9, "z": 26.1}
      ]
    }
  ],
  "npcs": [
    {"id": 3881, "name": "Tari'qa", "x": -443.5, "y": -2647.5, "z": 96.3, "horde": true}
  ],
  "hotspots": [
    {
      "id": 7,
      "zone": "The Barrens",
      "description": "Crossroads plains",
      "faction": "horde",
      "minLevel": 12,
      "safeForGrinding": true,
      "travelPath": "Orgrimmar to Crossroads",
      "repairVendor": {"id": 3953, "name": "Gruna", "x": -366.2, "y": -2625.1, "z": 96.1, "repairs": true},
      "waypoints": [
        {"id": 1, "x": -380.0, "y": -2590.0, "z": 95.0, "zone": "The Barrens", "minLevel": 12, "maxLevel": 16, "links": "2:0"},
        {"id": 2, "x": -420.0, "y": -2610.0, "z": 96.0, "zone": "The Barrens", "minLevel": 14, "maxLevel": 0, "links": "1:0 3:0"},
        {"id": 3, "x": -460.0, "y": -2650.0, "z": 97.0, "zone": "The Barrens", "minLevel": 14, "links": ""}
      ]
    }
  ]
}`

func writeWorldFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewFileStoreLoadsHotspots(t *testing.T) {
	fs, err := NewFileStore(writeWorldFile(t, worldFixture))
	require.NoError(t, err)

	h, err := fs.HotspotByID(7)
	require.NoError(t, err)
	assert.Equal(t, "The Barrens", h.Zone)
	assert.Equal(t, 12, h.MinLevel)
	assert.True(t, h.SafeForGrinding)
	require.Len(t, h.Waypoints, 3)

	assert.Equal(t, []int{2}, h.Waypoints[0].Links, "link suffixes after the colon are dropped")
	assert.Equal(t, []int{1, 3}, h.Waypoints[1].Links)
	assert.Nil(t, h.Waypoints[2].Links)

	require.NotNil(t, h.RepairVendor)
	assert.Equal(t, "Gruna", h.RepairVendor.Name)
	assert.True(t, h.RepairVendor.Repairs)

	require.NotNil(t, h.TravelPath)
	assert.Equal(t, "Orgrimmar to Crossroads", h.TravelPath.Name)
	assert.Equal(t, game.Position{X: 1630.5, Y: -4373.2, Z: 31.2}, h.TravelPath.Waypoints[0])
}

func TestNewFileStoreResolvesNpcsAndPaths(t *testing.T) {
	fs, err := NewFileStore(writeWorldFile(t, worldFixture))
	require.NoError(t, err)

	npc, err := fs.NpcByName("Tari'qa")
	require.NoError(t, err)
	assert.True(t, npc.Horde)

	_, err = fs.NpcByName("Nobody")
	assert.Error(t, err)

	tp, err := fs.TravelPathByName("Orgrimmar to Crossroads")
	require.NoError(t, err)
	assert.Len(t, tp.Waypoints, 2)
}

func TestNewFileStoreRejectsUnknownTravelPath(t *testing.T) {
	const broken = `{"hotspots": [{"id": 1, "zone": "X", "travelPath": "missing"}]}`
	_, err := NewFileStore(writeWorldFile(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown travel path")
}

func TestNewFileStoreRejectsMalformedLinks(t *testing.T) {
	const broken = `{"hotspots": [{"id": 1, "zone": "X", "waypoints": [{"id": 1, "links": "nope"}]}]}`
	_, err := NewFileStore(writeWorldFile(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed link")
}

func TestHotspotsForLevel(t *testing.T) {
	fs, err := NewFileStore(writeWorldFile(t, worldFixture))
	require.NoError(t, err)

	_, err = fs.HotspotsForLevel(5)
	assert.Error(t, err, "nothing fits a level below every hotspot")

	list, err := fs.HotspotsForLevel(15)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestParseLinks(t *testing.T) {
	links, err := parseLinks("12:0 14:0 7:3")
	require.NoError(t, err)
	assert.Equal(t, []int{12, 14, 7}, links)

	links, err = parseLinks("   ")
	require.NoError(t, err)
	assert.Nil(t, links)
}

func TestNearestWaypoint(t *testing.T) {
	fs, err := NewFileStore(writeWorldFile(t, worldFixture))
	require.NoError(t, err)
	h, err := fs.HotspotByID(7)
	require.NoError(t, err)

	wp := h.NearestWaypoint(game.Position{X: -455.0, Y: -2645.0, Z: 97.0})
	require.NotNil(t, wp)
	assert.Equal(t, 3, wp.ID)
}
