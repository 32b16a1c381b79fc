package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/varkas/grindbot/internal/game"
)

// FileStore loads the world data set from a single JSON file at startup and
// serves it from memory.
type FileStore struct {
	hotspots    map[int]*Hotspot
	npcs        map[string]*Npc
	travelPaths map[string]*TravelPath
}

type fileWaypoint struct {
	ID       int     `json:"id"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Z        float32 `json:"z"`
	Zone     string  `json:"zone"`
	MinLevel int     `json:"minLevel"`
	MaxLevel int     `json:"maxLevel"`
	// Links is a space separated list of waypoint ids, a holdover from the
	// original data set ("12:0 14:0", the suffix after the colon is unused).
	Links string `json:"links"`
}

type fileNpc struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	X           float32 `json:"x"`
	Y           float32 `json:"y"`
	Z           float32 `json:"z"`
	IsInnkeeper bool    `json:"isInnkeeper"`
	Repairs     bool    `json:"repairs"`
	SellsAmmo   bool    `json:"sellsAmmo"`
	Horde       bool    `json:"horde"`
	Alliance    bool    `json:"alliance"`
}

type fileTravelPath struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Waypoints []fileWaypoint `json:"waypoints"`
}

type fileHotspot struct {
	ID              int            `json:"id"`
	Zone            string         `json:"zone"`
	Description     string         `json:"description"`
	Faction         string         `json:"faction"`
	MinLevel        int            `json:"minLevel"`
	Waypoints       []fileWaypoint `json:"waypoints"`
	Innkeeper       *fileNpc       `json:"innkeeper"`
	RepairVendor    *fileNpc       `json:"repairVendor"`
	GrocerVendor    *fileNpc       `json:"grocerVendor"`
	AmmoVendor      *fileNpc       `json:"ammoVendor"`
	TravelPathName  string         `json:"travelPath"`
	SafeForGrinding bool           `json:"safeForGrinding"`
}

type fileRoot struct {
	Hotspots    []fileHotspot    `json:"hotspots"`
	Npcs        []fileNpc        `json:"npcs"`
	TravelPaths []fileTravelPath `json:"travelPaths"`
}

func NewFileStore(path string) (*FileStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading world data file %s: %w", path, err)
	}

	var root fileRoot
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("error parsing world data file: %w", err)
	}

	fs := &FileStore{
		hotspots:    make(map[int]*Hotspot, len(root.Hotspots)),
		npcs:        make(map[string]*Npc, len(root.Npcs)),
		travelPaths: make(map[string]*TravelPath, len(root.TravelPaths)),
	}

	for _, tp := range root.TravelPaths {
		path := &TravelPath{ID: tp.ID, Name: tp.Name}
		for _, wp := range tp.Waypoints {
			path.Waypoints = append(path.Waypoints, game.Position{X: wp.X, Y: wp.Y, Z: wp.Z})
		}
		fs.travelPaths[tp.Name] = path
	}

	for _, n := range root.Npcs {
		npc := convertNpc(n)
		fs.npcs[npc.Name] = npc
	}

	for _, h := range root.Hotspots {
		hotspot := &Hotspot{
			ID:              h.ID,
			Zone:            h.Zone,
			Description:     h.Description,
			Faction:         h.Faction,
			MinLevel:        h.MinLevel,
			SafeForGrinding: h.SafeForGrinding,
		}
		for _, wp := range h.Waypoints {
			links, err := parseLinks(wp.Links)
			if err != nil {
				return nil, fmt.Errorf("hotspot %d waypoint %d: %w", h.ID, wp.ID, err)
			}
			hotspot.Waypoints = append(hotspot.Waypoints, Waypoint{
				ID:       wp.ID,
				Position: game.Position{X: wp.X, Y: wp.Y, Z: wp.Z},
				Zone:     wp.Zone,
				MinLevel: wp.MinLevel,
				MaxLevel: wp.MaxLevel,
				Links:    links,
			})
		}
		if h.Innkeeper != nil {
			hotspot.Innkeeper = convertNpc(*h.Innkeeper)
		}
		if h.RepairVendor != nil {
			hotspot.RepairVendor = convertNpc(*h.RepairVendor)
		}
		if h.GrocerVendor != nil {
			hotspot.GrocerVendor = convertNpc(*h.GrocerVendor)
		}
		if h.AmmoVendor != nil {
			hotspot.AmmoVendor = convertNpc(*h.AmmoVendor)
		}
		if h.TravelPathName != "" {
			tp, ok := fs.travelPaths[h.TravelPathName]
			if !ok {
				return nil, fmt.Errorf("hotspot %d references unknown travel path %q", h.ID, h.TravelPathName)
			}
			hotspot.TravelPath = tp
		}
		fs.hotspots[hotspot.ID] = hotspot
	}

	return fs, nil
}

func convertNpc(n fileNpc) *Npc {
	return &Npc{
		ID:          n.ID,
		Name:        n.Name,
		Position:    game.Position{X: n.X, Y: n.Y, Z: n.Z},
		IsInnkeeper: n.IsInnkeeper,
		Repairs:     n.Repairs,
		SellsAmmo:   n.SellsAmmo,
		Horde:       n.Horde,
		Alliance:    n.Alliance,
	}
}

func parseLinks(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var links []int
	for _, token := range strings.Fields(raw) {
		idPart, _, _ := strings.Cut(token, ":")
		id, err := strconv.Atoi(idPart)
		if err != nil {
			return nil, fmt.Errorf("malformed link %q", token)
		}
		links = append(links, id)
	}
	return links, nil
}

func (fs *FileStore) HotspotByID(id int) (*Hotspot, error) {
	h, ok := fs.hotspots[id]
	if !ok {
		return nil, fmt.Errorf("hotspot %d not found", id)
	}
	return h, nil
}

func (fs *FileStore) HotspotsForLevel(level int) ([]*Hotspot, error) {
	var result []*Hotspot
	for _, h := range fs.hotspots {
		if h.MinLevel <= level {
			result = append(result, h)
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no hotspots available for level %d", level)
	}
	return result, nil
}

func (fs *FileStore) NpcByName(name string) (*Npc, error) {
	n, ok := fs.npcs[name]
	if !ok {
		return nil, fmt.Errorf("npc %q not found", name)
	}
	return n, nil
}

func (fs *FileStore) TravelPathByName(name string) (*TravelPath, error) {
	tp, ok := fs.travelPaths[name]
	if !ok {
		return nil, fmt.Errorf("travel path %q not found", name)
	}
	return tp, nil
}
