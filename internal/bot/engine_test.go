package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varkas/grindbot/internal/event"
	"github.com/varkas/grindbot/internal/game"
)

// scriptedState replays a fixed sequence of transitions, repeating the last
// one forever, and counts Exit calls.
type scriptedState struct {
	name   string
	script []Transition
	step   int
	exits  int
}

func (s *scriptedState) Name() string { return s.name }

func (s *scriptedState) Update(ctx *Ctx) Transition {
	i := s.step
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	s.step++
	return s.script[i]
}

func (s *scriptedState) Exit(ctx *Ctx) { s.exits++ }

func idleBase() (*scriptedState, func(ctx *Ctx) State) {
	base := &scriptedState{name: "Base", script: []Transition{Continue()}}
	return base, func(ctx *Ctx) State { return base }
}

func TestEnginePushPopCallsExitOnce(t *testing.T) {
	f := newTestFixture()
	child := &scriptedState{name: "Child", script: []Transition{Continue(), Pop()}}
	base := &scriptedState{name: "Base", script: []Transition{Push(child), Continue()}}
	e := NewEngine(f.ctx, func(ctx *Ctx) State { return base })

	require.NoError(t, e.tick())
	assert.Equal(t, []string{"Base", "Child"}, e.StackNames())

	require.NoError(t, e.tick())
	require.NoError(t, e.tick())
	assert.Equal(t, []string{"Base"}, e.StackNames())
	assert.Equal(t, 1, child.exits)
	assert.Equal(t, 0, base.exits)
}

func TestEnginePopPushSwapsTop(t *testing.T) {
	f := newTestFixture()
	next := &scriptedState{name: "Next", script: []Transition{Continue()}}
	child := &scriptedState{name: "Child", script: []Transition{PopPush(next)}}
	base := &scriptedState{name: "Base", script: []Transition{Push(child), Continue()}}
	e := NewEngine(f.ctx, func(ctx *Ctx) State { return base })

	require.NoError(t, e.tick())
	require.NoError(t, e.tick())

	assert.Equal(t, []string{"Base", "Next"}, e.StackNames())
	assert.Equal(t, 1, child.exits, "the replaced state exits exactly once")
	assert.Equal(t, 0, next.exits)
}

func TestEnginePushMultiple(t *testing.T) {
	f := newTestFixture()
	first := &scriptedState{name: "First", script: []Transition{Continue()}}
	second := &scriptedState{name: "Second", script: []Transition{Continue()}}
	base := &scriptedState{name: "Base", script: []Transition{Push(first, second), Continue()}}
	e := NewEngine(f.ctx, func(ctx *Ctx) State { return base })

	require.NoError(t, e.tick())

	// Push order is bottom to top: the last argument runs first.
	assert.Equal(t, []string{"Base", "First", "Second"}, e.StackNames())
}

func TestEngineFailClearsStack(t *testing.T) {
	f := newTestFixture()
	child := &scriptedState{name: "Child", script: []Transition{Fail(errors.New("boom"))}}
	base := &scriptedState{name: "Base", script: []Transition{Push(child), Continue()}}
	e := NewEngine(f.ctx, func(ctx *Ctx) State { return base })

	require.NoError(t, e.tick())
	require.NoError(t, e.tick())

	assert.Empty(t, e.StackNames())
	assert.Equal(t, 1, child.exits, "failing state is exited through the stack clear")
	assert.Equal(t, 1, base.exits)
}

func TestEngineRepeatedFailuresGiveUp(t *testing.T) {
	f := newTestFixture()
	base := &scriptedState{name: "Base", script: []Transition{Fail(errors.New("boom"))}}
	e := NewEngine(f.ctx, func(ctx *Ctx) State { return base })

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = e.tick()
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consecutive state failures")
}

func TestEnginePopResetsFailureCount(t *testing.T) {
	f := newTestFixture()
	e := NewEngine(f.ctx, func(ctx *Ctx) State {
		return &scriptedState{name: "Flaky", script: []Transition{
			Fail(errors.New("boom")),
		}}
	})

	// Alternate failures with successful pops, the failure budget must never
	// run out.
	for i := 0; i < 20; i++ {
		require.NoError(t, e.tick())
		good := &scriptedState{name: "Good", script: []Transition{Pop()}}
		e.push(good)
		require.NoError(t, e.tick())
	}
}

func TestEngineDeathSwapsStackForRecovery(t *testing.T) {
	f := newTestFixture()
	base, factory := idleBase()
	_ = base
	e := NewEngine(f.ctx, factory)

	require.NoError(t, e.tick())

	p := alivePlayer()
	p.Health = 0
	f.setPlayer(p)
	f.refresh()

	require.NoError(t, e.tick())
	assert.Equal(t, []string{"Base", "RetrieveCorpse", "MoveToCorpse", "ReleaseCorpse"}, e.StackNames())
	assert.Equal(t, 1, f.ctx.Session.DeathsAtWp)

	// Staying dead is not another death.
	require.NoError(t, e.tick())
	assert.Equal(t, 1, f.ctx.Session.DeathsAtWp)
}

func TestEngineBattlegroundDeathOnlyReleases(t *testing.T) {
	f := newTestFixture()
	f.client.mapID = 489 // Warsong Gulch
	_, factory := idleBase()
	e := NewEngine(f.ctx, factory)

	require.NoError(t, e.tick())

	p := alivePlayer()
	p.Health = 0
	f.setPlayer(p)
	f.refresh()

	require.NoError(t, e.tick())
	assert.Equal(t, []string{"Base", "ReleaseCorpse"}, e.StackNames())
}

func TestEngineTeleportKillswitch(t *testing.T) {
	f := newTestFixture()
	f.ctx.Cfg.Killswitch.TeleportCheck = true
	_, factory := idleBase()
	e := NewEngine(f.ctx, factory)

	require.NoError(t, e.tick())

	p := alivePlayer()
	p.Position = game.Position{X: 500, Y: 500, Z: 0}
	f.setPlayer(p)
	f.refresh()

	err := e.tick()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKillswitch)
}

func TestEngineTeleportKillswitchHonorsPendingTeleport(t *testing.T) {
	f := newTestFixture()
	f.ctx.Cfg.Killswitch.TeleportCheck = true
	_, factory := idleBase()
	e := NewEngine(f.ctx, factory)

	require.NoError(t, e.tick())

	f.ctx.Session.PendingTeleport = true
	p := alivePlayer()
	p.Position = game.Position{X: 500, Y: 500, Z: 0}
	f.setPlayer(p)
	f.refresh()

	require.NoError(t, e.tick())
	assert.False(t, f.ctx.Session.PendingTeleport, "the pending flag is consumed by the jump")
}

func TestEngineGMZoneKillswitch(t *testing.T) {
	f := newTestFixture()
	f.ctx.Cfg.Killswitch.GMZoneCheck = true
	f.client.zone = "GM Island"
	f.refresh()
	_, factory := idleBase()
	e := NewEngine(f.ctx, factory)

	err := e.tick()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKillswitch)
}

func TestEngineScheduleRunsBeforeUpdate(t *testing.T) {
	f := newTestFixture()
	_, factory := idleBase()
	e := NewEngine(f.ctx, factory)

	ran := false
	e.Schedule(func() { ran = true })
	require.NoError(t, e.tick())
	assert.True(t, ran)
}

func TestEngineForwardsClientErrorLines(t *testing.T) {
	f := newTestFixture()
	_, factory := idleBase()
	e := NewEngine(f.ctx, factory)
	f.client.uiMessages = []string{"Target not in line of sight"}

	got := make(chan event.ErrorMessageEvent, 1)
	f.ctx.Events.Register(func(_ context.Context, ev event.Event) error {
		if m, ok := ev.(event.ErrorMessageEvent); ok {
			got <- m
		}
		return nil
	})
	lctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.ctx.Events.Listen(lctx)

	e.drainUiMessages()

	select {
	case m := <-got:
		assert.Equal(t, "Target not in line of sight", m.ErrorText)
		assert.Equal(t, f.ctx.Name, m.Supervisor())
	case <-time.After(2 * time.Second):
		t.Fatal("error line never reached the bus")
	}
	assert.Empty(t, f.client.uiMessages, "the poll drains the client queue")
}

func TestEngineEmitsLevelUpOnLevelEdge(t *testing.T) {
	f := newTestFixture()
	_, factory := idleBase()
	e := NewEngine(f.ctx, factory)

	got := make(chan event.LevelUpEvent, 1)
	f.ctx.Events.Register(func(_ context.Context, ev event.Event) error {
		if m, ok := ev.(event.LevelUpEvent); ok {
			got <- m
		}
		return nil
	})
	lctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.ctx.Events.Listen(lctx)

	require.NoError(t, e.tick())

	p := alivePlayer()
	p.Level = 21
	f.setPlayer(p)
	f.refresh()
	require.NoError(t, e.tick())

	select {
	case m := <-got:
		assert.Equal(t, 21, m.Level)
	case <-time.After(2 * time.Second):
		t.Fatal("level up never reached the bus")
	}
}

func TestEngineMapChangeResetsWaypointProgress(t *testing.T) {
	f := newTestFixture()
	_, factory := idleBase()
	e := NewEngine(f.ctx, factory)

	f.ctx.Session.CurrWpID = 4
	f.ctx.Session.ForcedWpPath = []int{5, 6}
	f.ctx.Session.MarkVisited(4)
	require.NoError(t, e.tick())

	f.client.mapID = 489
	f.refresh()
	require.NoError(t, e.tick())

	assert.Equal(t, 0, f.ctx.Session.CurrWpID, "a loading screen invalidates the waypoint position")
	assert.Nil(t, f.ctx.Session.ForcedWpPath)
	assert.False(t, f.ctx.Session.VisitedWps[4])
	assert.Equal(t, 0, f.ctx.Session.WpStuckCount)
}
