package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient implements the four object-manager reads Refresh needs; the
// embedded interface covers the rest and panics if anything else is called.
type stubClient struct {
	Client
	guid    Guid
	objects []Object
	mapID   int
	zone    string
	fail    error
}

func (s *stubClient) LocalPlayerGuid() (Guid, error) { return s.guid, nil }
func (s *stubClient) VisibleObjects() ([]Object, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	return s.objects, nil
}
func (s *stubClient) MapID() (int, error)       { return s.mapID, nil }
func (s *stubClient) ZoneText() (string, error) { return s.zone, nil }

func localPlayer(guid Guid) *LocalPlayer {
	return &LocalPlayer{Player: Player{Unit: Unit{Entity: Entity{
		Guid: guid, Type: ObjectTypePlayer, Name: "Thog",
	}, Health: 80, MaxHealth: 100, Level: 17}}}
}

func TestRefreshBuildsTypedSnapshot(t *testing.T) {
	mob := &Unit{Entity: Entity{Guid: 2, Type: ObjectTypeUnit, Name: "Plainstrider"}, Health: 40, MaxHealth: 40}
	other := &Player{Unit: Unit{Entity: Entity{Guid: 3, Type: ObjectTypePlayer, Name: "Grak"}}}
	bag := &Container{Item: Item{Entity: Entity{Guid: 4, Type: ObjectTypeContainer}}, Slots: 6}

	c := &stubClient{
		guid:    1,
		objects: []Object{localPlayer(1), mob, other, bag},
		mapID:   1,
		zone:    "The Barrens",
	}
	m := NewManager(c)

	require.NoError(t, m.Refresh())
	s := m.Snapshot()
	require.NotNil(t, s)

	assert.Equal(t, "The Barrens", s.ZoneText)
	require.NotNil(t, s.Player)
	assert.Equal(t, Guid(1), s.Player.Guid)
	assert.Len(t, s.Units, 1)
	assert.Len(t, s.Players, 1)
	assert.Len(t, s.Containers, 1)

	got, ok := s.ByGuid(2)
	require.True(t, ok)
	assert.Equal(t, "Plainstrider", got.ObjectName())
}

func TestRefreshPromotesPlainPlayerRecord(t *testing.T) {
	// Some client builds report the controlled character without the local
	// player flag; the snapshot still resolves it.
	me := &Player{Unit: Unit{Entity: Entity{Guid: 1, Type: ObjectTypePlayer, Name: "Thog"}, Health: 80, MaxHealth: 100}}
	c := &stubClient{guid: 1, objects: []Object{me}, mapID: 1, zone: "Durotar"}
	m := NewManager(c)

	require.NoError(t, m.Refresh())
	s := m.Snapshot()
	require.NotNil(t, s.Player)
	assert.Empty(t, s.Players, "the controlled character is not a bystander")

	u := s.UnitByGuid(1)
	require.NotNil(t, u, "guid lookups resolve the promoted record")
	assert.Equal(t, 80, u.Health)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	c := &stubClient{guid: 1, objects: []Object{localPlayer(1)}, mapID: 1, zone: "Durotar"}
	m := NewManager(c)
	require.NoError(t, m.Refresh())
	before := m.Snapshot()

	c.fail = errors.New("read fault")
	require.Error(t, m.Refresh())
	assert.Same(t, before, m.Snapshot(), "states keep working off stale data")
	assert.Equal(t, 1, m.ConsecutiveFailures())

	require.Error(t, m.Refresh())
	assert.Equal(t, 2, m.ConsecutiveFailures())

	c.fail = nil
	require.NoError(t, m.Refresh())
	assert.Equal(t, 0, m.ConsecutiveFailures(), "a good refresh resets the failure run")
	assert.NotSame(t, before, m.Snapshot())
}

func TestRefreshMissingLocalPlayerFails(t *testing.T) {
	c := &stubClient{guid: 1, objects: []Object{}, mapID: 1, zone: "Durotar"}
	m := NewManager(c)

	require.Error(t, m.Refresh())
	assert.Equal(t, 1, m.ConsecutiveFailures())
}

func TestSnapshotCurrentTarget(t *testing.T) {
	me := localPlayer(1)
	me.TargetGuid = 2
	mob := &Unit{Entity: Entity{Guid: 2, Type: ObjectTypeUnit}, Health: 10, MaxHealth: 10}
	c := &stubClient{guid: 1, objects: []Object{me, mob}, mapID: 1, zone: "Durotar"}
	m := NewManager(c)
	require.NoError(t, m.Refresh())

	target := m.Snapshot().CurrentTarget()
	require.NotNil(t, target)
	assert.Equal(t, Guid(2), target.Guid)
}

func TestSnapshotPet(t *testing.T) {
	me := localPlayer(1)
	pet := &Unit{Entity: Entity{Guid: 5, Type: ObjectTypeUnit, Name: "Boar"}, Health: 10, MaxHealth: 10, SummonedByGuid: 1}
	wild := &Unit{Entity: Entity{Guid: 6, Type: ObjectTypeUnit}, Health: 10, MaxHealth: 10}
	c := &stubClient{guid: 1, objects: []Object{me, pet, wild}, mapID: 1, zone: "Durotar"}
	m := NewManager(c)
	require.NoError(t, m.Refresh())

	p := m.Snapshot().Pet()
	require.NotNil(t, p)
	assert.Equal(t, Guid(5), p.Guid)
}
