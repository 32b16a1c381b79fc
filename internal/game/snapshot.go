package game

import (
	"fmt"
	"time"
)

// Snapshot is an immutable view of the visible world, rebuilt a couple of
// times per second on the tick goroutine. States never see a half-updated
// object list.
type Snapshot struct {
	TakenAt  time.Time
	MapID    int
	ZoneText string

	Player      *LocalPlayer
	Units       []*Unit
	Players     []*Player
	Items       []*Item
	Containers  []*Container
	GameObjects []*GameObject

	byGuid map[Guid]Object
}

func (s *Snapshot) ByGuid(g Guid) (Object, bool) {
	o, ok := s.byGuid[g]
	return o, ok
}

func (s *Snapshot) UnitByGuid(g Guid) *Unit {
	if o, ok := s.byGuid[g]; ok {
		if u, ok := o.(*Unit); ok {
			return u
		}
		if p, ok := o.(*Player); ok {
			return &p.Unit
		}
		if lp, ok := o.(*LocalPlayer); ok {
			return &lp.Unit
		}
	}
	return nil
}

// CurrentTarget resolves the player's target guid against the snapshot, nil
// when there is no target or it left visibility.
func (s *Snapshot) CurrentTarget() *Unit {
	if s.Player == nil || s.Player.TargetGuid.IsZero() {
		return nil
	}
	return s.UnitByGuid(s.Player.TargetGuid)
}

// Pet returns the unit summoned by the local player, if any.
func (s *Snapshot) Pet() *Unit {
	if s.Player == nil {
		return nil
	}
	for _, u := range s.Units {
		if u.SummonedByGuid == s.Player.Guid {
			return u
		}
	}
	return nil
}

func (s *Snapshot) PlayerByName(name string) *Player {
	for _, p := range s.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Manager owns the latest snapshot. Refresh failures keep the previous
// snapshot so states keep working off slightly stale data instead of nil.
type Manager struct {
	client   Client
	current  *Snapshot
	failures int
	clock    func() time.Time
}

func NewManager(client Client) *Manager {
	return &Manager{client: client, clock: time.Now}
}

func (m *Manager) Snapshot() *Snapshot {
	return m.current
}

// ConsecutiveFailures reports how many refreshes in a row have failed, the
// engine treats a long run of failures as a detached client.
func (m *Manager) ConsecutiveFailures() int {
	return m.failures
}

func (m *Manager) Refresh() error {
	playerGuid, err := m.client.LocalPlayerGuid()
	if err != nil {
		m.failures++
		return fmt.Errorf("error reading player guid: %w", err)
	}
	objects, err := m.client.VisibleObjects()
	if err != nil {
		m.failures++
		return fmt.Errorf("error enumerating objects: %w", err)
	}
	mapID, err := m.client.MapID()
	if err != nil {
		m.failures++
		return fmt.Errorf("error reading map id: %w", err)
	}
	zone, err := m.client.ZoneText()
	if err != nil {
		m.failures++
		return fmt.Errorf("error reading zone text: %w", err)
	}

	next := &Snapshot{
		TakenAt:  m.clock(),
		MapID:    mapID,
		ZoneText: zone,
		byGuid:   make(map[Guid]Object, len(objects)),
	}

	for _, o := range objects {
		next.byGuid[o.ObjectGuid()] = o
		switch v := o.(type) {
		case *LocalPlayer:
			next.Player = v
		case *Player:
			if v.Guid == playerGuid {
				// Some client builds report the controlled character as a
				// plain player object.
				next.Player = &LocalPlayer{Player: *v}
				next.byGuid[v.Guid] = next.Player
				continue
			}
			next.Players = append(next.Players, v)
		case *Unit:
			next.Units = append(next.Units, v)
		case *Container:
			next.Containers = append(next.Containers, v)
		case *Item:
			next.Items = append(next.Items, v)
		case *GameObject:
			next.GameObjects = append(next.GameObjects, v)
		}
	}

	if next.Player == nil {
		m.failures++
		return fmt.Errorf("local player %s not present in object list", playerGuid)
	}

	m.current = next
	m.failures = 0

	return nil
}
