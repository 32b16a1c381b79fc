package store

import (
	"github.com/varkas/grindbot/internal/game"
)

// Waypoint is a node of a hotspot roaming graph. Links name the ids of the
// waypoints reachable from this one.
type Waypoint struct {
	ID       int
	Position game.Position
	Zone     string
	MinLevel int
	MaxLevel int
	Links    []int
}

// FitsLevel reports whether the waypoint's level band covers the player.
// MaxLevel zero means an open-ended band.
func (w *Waypoint) FitsLevel(level int) bool {
	if level < w.MinLevel {
		return false
	}
	return w.MaxLevel == 0 || level <= w.MaxLevel
}

// Overleveled reports whether the player has outgrown this waypoint.
func (w *Waypoint) Overleveled(level int) bool {
	return w.MaxLevel > 0 && level > w.MaxLevel
}

type Npc struct {
	ID          int
	Name        string
	Position    game.Position
	IsInnkeeper bool
	Repairs     bool
	SellsAmmo   bool
	Horde       bool
	Alliance    bool
}

// Hotspot is a grinding area: its waypoint graph plus the service NPCs the
// errand states run to.
type Hotspot struct {
	ID              int
	Zone            string
	Description     string
	Faction         string
	MinLevel        int
	Waypoints       []Waypoint
	Innkeeper       *Npc
	RepairVendor    *Npc
	GrocerVendor    *Npc
	AmmoVendor      *Npc
	TravelPath      *TravelPath
	SafeForGrinding bool
}

func (h *Hotspot) WaypointByID(id int) *Waypoint {
	for i := range h.Waypoints {
		if h.Waypoints[i].ID == id {
			return &h.Waypoints[i]
		}
	}
	return nil
}

// NearestWaypoint returns the waypoint closest to p, nil for an empty graph.
func (h *Hotspot) NearestWaypoint(p game.Position) *Waypoint {
	var best *Waypoint
	bestDist := 0.0
	for i := range h.Waypoints {
		d := p.DistanceTo(h.Waypoints[i].Position)
		if best == nil || d < bestDist {
			best = &h.Waypoints[i]
			bestDist = d
		}
	}
	return best
}

// TravelPath is a fixed corridor between a town and a hotspot, walked forward
// on the way out and in reverse on the way back.
type TravelPath struct {
	ID        int
	Name      string
	Waypoints []game.Position
}

// WorldData is the read surface the bot states use. The JSON file store is
// the one implementation, tests build WorldData values by hand.
type WorldData interface {
	HotspotByID(id int) (*Hotspot, error)
	HotspotsForLevel(level int) ([]*Hotspot, error)
	NpcByName(name string) (*Npc, error)
	TravelPathByName(name string) (*TravelPath, error)
}
