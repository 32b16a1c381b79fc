package bot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/varkas/grindbot/internal/event"
	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/utils"
)

var ErrKillswitch = errors.New("killswitch triggered")

const (
	refreshInterval       = 500 * time.Millisecond
	detachedFailureLimit  = 20
	combatWatchdogLimit   = 3 * time.Minute
	stuckStateLimit       = 7 * time.Minute
	teleportKillDistance  = 5.0
	statePositionEpsilon  = 5.0
	legsRepairPercent     = 10
	mainhandRepairPercent = 20
	errandRetryDelay      = time.Minute
	queueRetryDelay       = 5 * time.Minute
	maxStackFailures      = 5
)

// Engine owns the state stack and the single goroutine everything game-facing
// runs on. The snapshot refresher and event handlers never touch bot state
// directly, they post closures onto the task queue and the tick loop drains
// it before running the top state.
type Engine struct {
	ctx   *Ctx
	base  func(ctx *Ctx) State
	stack []State
	tasks chan func()

	topSince  time.Time
	topPos    game.Position
	lastPos   game.Position
	havePos   bool
	wasDead   bool
	lastLevel int
	lastMap   int
	haveWorld bool
	failures  int

	status atomic.Pointer[Status]
}

// Status is the read-only view published after every tick for the status
// server and chat commands. Safe to read from any goroutine.
type Status struct {
	Character string        `json:"character"`
	Level     int           `json:"level"`
	HealthPct int           `json:"healthPct"`
	Zone      string        `json:"zone"`
	Position  game.Position `json:"position"`
	Stack     []string      `json:"stack"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewEngine builds an engine around the context. base produces the bottom of
// the stack, usually the grind loop, and is re-invoked whenever the stack
// drains or resets.
func NewEngine(c *Ctx, base func(ctx *Ctx) State) *Engine {
	e := &Engine{
		ctx:   c,
		base:  base,
		tasks: make(chan func(), 128),
	}
	c.Schedule = e.Schedule
	return e
}

// Schedule queues fn for the next tick. Posting from the tick goroutine
// itself is fine, the queue is drained before each state update.
func (e *Engine) Schedule(fn func()) {
	select {
	case e.tasks <- fn:
	default:
		e.ctx.Logger.Warn("Task queue is full, dropping scheduled task")
	}
}

func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(refreshInterval):
				e.Schedule(func() {
					if err := e.ctx.Manager.Refresh(); err != nil {
						e.ctx.Logger.Debug("Snapshot refresh failed", "error", err)
					}
					e.drainUiMessages()
				})
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(utils.RandomDurationMs(70, 130)):
				if err := e.tick(); err != nil {
					e.clearStack()
					return err
				}
			}
		}
	})

	return g.Wait()
}

func (e *Engine) tick() error {
	e.drainTasks()

	if e.ctx.Manager.ConsecutiveFailures() > detachedFailureLimit {
		return fmt.Errorf("game client stopped responding after %d failed refreshes", detachedFailureLimit)
	}
	snapshot := e.ctx.Snapshot()
	if snapshot == nil || snapshot.Player == nil {
		return nil
	}
	p := snapshot.Player

	if err := e.checkKillswitches(snapshot, p); err != nil {
		return err
	}
	e.checkWorldEdges(snapshot, p)
	e.checkDeath(snapshot, p)

	if len(e.stack) == 0 {
		e.push(e.base(e.ctx))
	}

	e.runWatchdogs(p)
	e.pushErrands(p)

	top := e.top()
	before := top.Name()

	transition := top.Update(e.ctx)
	if err := e.apply(transition); err != nil {
		return err
	}

	if after := e.topName(); after != before {
		e.ctx.Events.Emit(event.StateChanged(
			event.Text(e.ctx.Name, fmt.Sprintf("State changed: %s -> %s", before, after)),
			before, after,
		))
		e.topSince = e.ctx.Now()
		e.topPos = p.Position
	}

	e.status.Store(&Status{
		Character: e.ctx.Name,
		Level:     p.Level,
		HealthPct: p.HealthPercent(),
		Zone:      snapshot.ZoneText,
		Position:  p.Position,
		Stack:     e.StackNames(),
		UpdatedAt: e.ctx.Now(),
	})

	return nil
}

// Status returns the latest published tick status, nil before the first tick.
func (e *Engine) Status() *Status {
	return e.status.Load()
}

// drainUiMessages forwards the client's red error lines onto the event bus.
// Combat subscribes to them while it owns a target.
func (e *Engine) drainUiMessages() {
	msgs, err := e.ctx.Client.PollUiMessages()
	if err != nil {
		return
	}
	for _, m := range msgs {
		e.ctx.Events.Emit(event.ErrorMessage(event.Text(e.ctx.Name, m), m))
	}
}

func (e *Engine) drainTasks() {
	for {
		select {
		case fn := <-e.tasks:
			fn()
		default:
			return
		}
	}
}

func (e *Engine) checkKillswitches(snapshot *game.Snapshot, p *game.LocalPlayer) error {
	cfg := e.ctx.Cfg

	if cfg.Killswitch.GMZoneCheck && snapshot.ZoneText == "GM Island" {
		return e.killswitch("player moved to GM Island")
	}

	if e.havePos {
		jumped := p.Position.DistanceTo(e.lastPos) > teleportKillDistance
		if jumped {
			switch {
			case e.ctx.Session.PendingTeleport:
				e.ctx.Session.PendingTeleport = false
			case p.IsDead() || p.IsGhost || e.wasDead:
				// Graveyard and resurrection jumps are expected.
			case cfg.Killswitch.TeleportCheck:
				return e.killswitch("position jumped without a pending teleport")
			}
		}
	}
	e.lastPos = p.Position
	e.havePos = true

	if cfg.Killswitch.StuckCheck && len(e.stack) > 0 {
		stalled := e.ctx.Now().Sub(e.topSince) > stuckStateLimit &&
			p.Position.DistanceTo(e.topPos) < statePositionEpsilon
		if stalled {
			return e.killswitch(fmt.Sprintf("state %s made no progress for %s", e.topName(), stuckStateLimit))
		}
	}

	return nil
}

func (e *Engine) killswitch(reason string) error {
	e.ctx.Logger.Error("Killswitch triggered", "reason", reason)
	e.ctx.Events.Emit(event.Killswitch(event.Text(e.ctx.Name, "Killswitch: "+reason), reason))
	return fmt.Errorf("%w: %s", ErrKillswitch, reason)
}

// checkWorldEdges watches the level and map id between ticks: a level gain
// feeds the notifiers, a map change invalidates the session's waypoint
// progress.
func (e *Engine) checkWorldEdges(snapshot *game.Snapshot, p *game.LocalPlayer) {
	if e.haveWorld {
		if p.Level > e.lastLevel {
			e.ctx.Logger.Info("Ding!", "level", p.Level)
			e.ctx.Events.Emit(event.LevelUp(
				event.Text(e.ctx.Name, fmt.Sprintf("Ding! Level %d", p.Level)),
				p.Level,
			))
		}
		if snapshot.MapID != e.lastMap {
			e.ctx.Logger.Info("Map changed, resetting waypoint progress", "map", snapshot.MapID)
			e.ctx.Session.ResetWaypointProgress()
		}
	}
	e.lastLevel = p.Level
	e.lastMap = snapshot.MapID
	e.haveWorld = true
}

// checkDeath watches the alive/dead edge and swaps the stack for the
// recovery chain: release, ghost run, resurrect. Battleground deaths only
// release, the graveyard handles the rest.
func (e *Engine) checkDeath(snapshot *game.Snapshot, p *game.LocalPlayer) {
	dead := p.IsDead() || p.IsGhost

	if dead && !e.wasDead {
		e.wasDead = true
		e.ctx.Session.DeathsAtWp++
		if e.ctx.Session.DeathsAtWp > deathLoopLimit {
			e.ctx.Session.ForcedWpPath = nil
		}
		e.ctx.Logger.Warn("Player died", "zone", snapshot.ZoneText, "deathsAtWp", e.ctx.Session.DeathsAtWp)
		e.ctx.Events.Emit(event.Death(
			event.Text(e.ctx.Name, "Died in "+snapshot.ZoneText),
			snapshot.ZoneText, e.ctx.Session.DeathsAtWp,
		))

		e.clearStack()
		e.push(e.base(e.ctx))
		if battlegroundMaps[snapshot.MapID] {
			e.push(NewReleaseCorpseState(e.ctx))
		} else {
			e.push(NewRetrieveCorpseState(e.ctx))
			e.push(NewMoveToCorpseState())
			e.push(NewReleaseCorpseState(e.ctx))
		}
		return
	}

	if !dead {
		e.wasDead = false
	}
}

func (e *Engine) runWatchdogs(p *game.LocalPlayer) {
	combat, ok := e.top().(*CombatState)
	if !ok {
		return
	}
	if e.ctx.Now().Sub(e.topSince) <= combatWatchdogLimit {
		return
	}

	target := combat.Target()
	e.ctx.Logger.Warn("Combat made no progress, blacklisting target", "target", target)
	e.ctx.Session.BlacklistTarget(target, e.ctx.Now().Add(time.Hour))
	e.popTop()
	if e.ctx.Hotspot != nil {
		if wp := e.ctx.Hotspot.WaypointByID(e.ctx.Session.CurrWpID); wp != nil {
			e.ctx.TeleportTo(wp.Position)
		}
	}
}

// pushErrands layers maintenance on top of an idle grind loop: vendor runs
// when gear is about to break and PvP queues when enabled.
func (e *Engine) pushErrands(p *game.LocalPlayer) {
	if _, ok := e.top().(*GrindState); !ok {
		return
	}
	cfg := e.ctx.Cfg
	hotspot := e.ctx.Hotspot

	if hotspot != nil && hotspot.RepairVendor != nil {
		needsRepair := e.equippedDurabilityPercent(game.SlotLegs) <= legsRepairPercent ||
			e.equippedDurabilityPercent(game.SlotMainHand) <= mainhandRepairPercent
		if needsRepair && e.ctx.Timers.ForReset("Engine/RepairErrand", errandRetryDelay) {
			e.ctx.Logger.Info("Equipment worn out, running vendor errand")
			if hotspot.GrocerVendor != nil {
				e.push(NewBuyItemsState(e.ctx, hotspot.GrocerVendor))
			}
			e.push(NewSellItemsState(e.ctx, hotspot.RepairVendor))
			e.push(NewRepairEquipmentState(e.ctx, hotspot.RepairVendor))
			return
		}
	}

	if cfg.Battlegrounds && e.ctx.Timers.ForReset("Engine/BgQueue", queueRetryDelay) {
		e.push(NewBattlegroundQueueState(e.ctx))
		return
	}
	if cfg.ArenaSkirmish && e.ctx.Timers.ForReset("Engine/ArenaQueue", queueRetryDelay) {
		e.push(NewArenaSkirmishQueueState(e.ctx))
	}
}

func (e *Engine) equippedDurabilityPercent(slot game.EquipSlot) int {
	guid, err := e.ctx.Client.EquippedItemGuid(slot)
	if err != nil || guid.IsZero() {
		return 100
	}
	obj, ok := e.ctx.Snapshot().ByGuid(guid)
	if !ok {
		return 100
	}
	item, ok := obj.(*game.Item)
	if !ok {
		return 100
	}
	return item.DurabilityPercent()
}

func (e *Engine) apply(t Transition) error {
	switch t.kind {
	case transContinue:

	case transPush:
		for _, s := range t.next {
			e.push(s)
		}

	case transPop:
		e.popTop()
		e.failures = 0

	case transPopPush:
		e.popTop()
		for _, s := range t.next {
			e.push(s)
		}

	case transFail:
		e.failures++
		e.ctx.Logger.Error("State failed, resetting stack", "state", e.topName(), "error", t.err)
		e.ctx.EmitText("Bot error: " + t.err.Error())
		e.clearStack()
		if e.failures > maxStackFailures {
			return fmt.Errorf("giving up after %d consecutive state failures: %w", e.failures, t.err)
		}
	}
	return nil
}

func (e *Engine) top() State {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

func (e *Engine) topName() string {
	if top := e.top(); top != nil {
		return top.Name()
	}
	return "None"
}

func (e *Engine) push(s State) {
	e.stack = append(e.stack, s)
	e.topSince = e.ctx.Now()
	if p := e.ctx.Player(); p != nil {
		e.topPos = p.Position
	}
}

func (e *Engine) popTop() {
	if len(e.stack) == 0 {
		return
	}
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	if h, ok := top.(ExitHandler); ok {
		h.Exit(e.ctx)
	}
	e.topSince = e.ctx.Now()
	if p := e.ctx.Player(); p != nil {
		e.topPos = p.Position
	}
}

func (e *Engine) clearStack() {
	for len(e.stack) > 0 {
		e.popTop()
	}
	e.ctx.Timers.RemoveAll()
}

// StackNames reports the stack bottom-up, for the status endpoint.
func (e *Engine) StackNames() []string {
	names := make([]string, 0, len(e.stack))
	for _, s := range e.stack {
		names = append(names, s.Name())
	}
	return names
}
