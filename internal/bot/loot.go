package bot

import (
	"time"

	"github.com/varkas/grindbot/internal/event"
	"github.com/varkas/grindbot/internal/game"
)

type lootPhase int

const (
	lootUninitialized lootPhase = iota
	lootApproaching
	lootOpening
	lootLooting
	lootDone
)

const (
	lootTimeout        = 10 * time.Second
	lootStuckLimit     = 5
	lootApproachRadius = 5.0
	lootFrameDelay     = time.Second
	lootSlotDelay      = 150 * time.Millisecond
	lootCloseDelay     = 200 * time.Millisecond
)

// LootState walks to a kill, opens it and takes whatever passes the loot
// filters, then hands off to bag cleanup. It abandons the corpse rather than
// fight geometry: too many stuck recoveries or a 10 second overall budget
// both end the attempt.
type LootState struct {
	timers     Scoped
	targetGuid game.Guid
	phase      lootPhase
	startedAt  time.Time
	monitor    stuckMonitor
	stuckCount int
	slotIndex  int
	moving     bool
}

func NewLootState(ctx *Ctx, target game.Guid) *LootState {
	return &LootState{
		timers:     ctx.Timers.NewScope("Loot"),
		targetGuid: target,
	}
}

func (s *LootState) Name() string { return "Loot" }

func (s *LootState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if s.phase == lootUninitialized {
		s.startedAt = ctx.Now()
		s.phase = lootApproaching
	}

	if ctx.Now().Sub(s.startedAt) > lootTimeout {
		ctx.Logger.Debug("Loot attempt timed out", "target", s.targetGuid)
		return s.finish(ctx)
	}

	corpse := ctx.Snapshot().UnitByGuid(s.targetGuid)
	if corpse == nil {
		return s.finish(ctx)
	}

	switch s.phase {
	case lootApproaching:
		if p.Position.DistanceTo(corpse.Position) > lootApproachRadius {
			if s.monitor.stuck(ctx) {
				s.stuckCount++
				if s.stuckCount > lootStuckLimit {
					ctx.Logger.Debug("Corpse unreachable, abandoning loot", "target", s.targetGuid)
					return s.finish(ctx)
				}
				ctx.Client.StopAllMovement()
				s.moving = false
				return Push(NewStuckStateToward(ctx, corpse.Position))
			}
			next := ctx.Pather.NextWaypoint(ctx.Snapshot().MapID, p.Position, corpse.Position)
			ctx.Client.Face(next)
			if !s.moving {
				ctx.Client.StartMovement(game.ControlFront)
				s.moving = true
			}
			return Continue()
		}
		if s.moving {
			ctx.Client.StopMovement(game.ControlFront)
			s.moving = false
		}
		ctx.Client.Interact(corpse.Guid)
		s.phase = lootOpening
		return Continue()

	case lootOpening:
		if !s.timers.For("LootFrameDelay", lootFrameDelay) {
			return Continue()
		}
		frame, err := ctx.Client.LootFrame()
		if err != nil || frame == nil {
			return s.finish(ctx)
		}
		s.phase = lootLooting
		return Continue()

	case lootLooting:
		frame, err := ctx.Client.LootFrame()
		if err != nil || frame == nil || s.slotIndex >= len(frame.Items) {
			return s.finish(ctx)
		}
		if !s.timers.ForReset("LootSlotDelay", lootSlotDelay) {
			return Continue()
		}
		item := frame.Items[s.slotIndex]
		s.slotIndex++
		if s.shouldLoot(ctx, item) {
			ctx.Client.LootSlot(item.Index)
			if item.Quality >= game.QualityRare {
				ctx.Events.Emit(event.RareLoot(
					event.Text(ctx.Name, "Looted "+item.Name),
					item.Name, item.Quality.String(),
				))
			}
		}
		return Continue()
	}

	return s.finish(ctx)
}

func (s *LootState) shouldLoot(ctx *Ctx, item game.LootFrameItem) bool {
	if item.IsCoin {
		return true
	}
	if item.IsLocked {
		return false
	}
	for _, name := range ctx.Cfg.Loot.ExcludedNames {
		if name == item.Name {
			return false
		}
	}
	return ctx.Cfg.LootQuality(int(item.Quality))
}

// finish closes the loot window and hands off: bag cleanup always, preceded
// by a walk to the nearest waypoint when the kill happened in open water so
// the bot does not idle while swimming.
func (s *LootState) finish(ctx *Ctx) Transition {
	ctx.Client.CloseLootFrame()

	p := ctx.Player()
	if p != nil && p.IsSwimming && ctx.Hotspot != nil {
		if wp := ctx.Hotspot.NearestWaypoint(p.Position); wp != nil {
			return PopPush(NewEquipBagsState(ctx), NewMoveToPositionState(wp.Position))
		}
	}
	return PopPush(NewEquipBagsState(ctx))
}

func (s *LootState) Exit(ctx *Ctx) {
	if s.moving {
		ctx.Client.StopMovement(game.ControlFront)
	}
	s.timers.Close()
}
