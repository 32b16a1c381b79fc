package bot

import (
	"context"
	"strings"
	"time"

	"github.com/varkas/grindbot/internal/event"
	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/utils"
)

const (
	meleeRange         = 5.0
	deathLoopLimit     = 2
	backpedalDuration  = 500 * time.Millisecond
	losNudgeDuration   = time.Second
	killSettleDelay    = 1500 * time.Millisecond
	idleWindowTicks    = 150
	idleWindowReset    = 200
	repositionDuration = 600 * time.Millisecond
)

// CombatState fights one target to the death, then hands off to looting. It
// subscribes to client error messages for its lifetime: "facing the wrong
// way" and "not in line of sight" errors drive short corrective movements
// that a pure snapshot poll could never detect.
type CombatState struct {
	timers     Scoped
	targetGuid game.Guid

	minRange float64
	maxRange float64

	unsubscribe func()

	needBackpedal bool
	needLosNudge  bool
	backpedaling  bool
	nudging       bool
	repositioning bool
	repositionBit game.ControlBits

	lastTargetHealth int
	idleTicks        int

	killedAt   time.Time
	settle     time.Duration
	moving     bool
	backingOff bool
}

// CombatOption tweaks CombatState construction.
type CombatOption func(*CombatState)

// WithDesiredRange sets the distance band the state holds while fighting.
// Ranged rotations use it to stay out of their dead zone.
func WithDesiredRange(min, max float64) CombatOption {
	return func(s *CombatState) {
		s.minRange = min
		s.maxRange = max
	}
}

func NewCombatState(ctx *Ctx, target game.Guid, opts ...CombatOption) *CombatState {
	s := &CombatState{
		timers:           ctx.Timers.NewScope("Combat"),
		targetGuid:       target,
		maxRange:         meleeRange,
		lastTargetHealth: -1,
	}
	for _, o := range opts {
		o(s)
	}

	s.unsubscribe = ctx.Events.Register(func(_ context.Context, e event.Event) error {
		msg, ok := e.(event.ErrorMessageEvent)
		if !ok || msg.Supervisor() != ctx.Name {
			return nil
		}
		ctx.Schedule(func() {
			switch {
			case strings.Contains(msg.ErrorText, "facing the wrong way"):
				s.needBackpedal = true
			case strings.Contains(msg.ErrorText, "line of sight"):
				s.needLosNudge = true
			}
		})
		return nil
	})

	return s
}

func (s *CombatState) Name() string { return "Combat" }

// Target exposes the fought guid for the engine's combat watchdog.
func (s *CombatState) Target() game.Guid { return s.targetGuid }

func (s *CombatState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}
	snapshot := ctx.Snapshot()
	target := snapshot.UnitByGuid(s.targetGuid)

	// A kill was already registered, wait out the settle delay then loot.
	if !s.killedAt.IsZero() {
		if ctx.Now().Sub(s.killedAt) >= s.settle {
			return PopPush(NewLootState(ctx, s.targetGuid))
		}
		return Continue()
	}

	// Dying repeatedly at the same spot means the pull is unwinnable, jump
	// to a random linked waypoint and let the grind loop start over.
	if ctx.Session.DeathsAtWp > deathLoopLimit {
		s.escapeDeathLoop(ctx)
		return Pop()
	}

	if s.backpedaling {
		if s.timers.For("Backpedal", backpedalDuration) {
			ctx.Client.StopMovement(game.ControlBack)
			s.backpedaling = false
			s.timers.Remove("Backpedal")
		}
		return Continue()
	}
	if s.needBackpedal {
		s.needBackpedal = false
		s.stopApproach(ctx)
		ctx.Client.StartMovement(game.ControlBack)
		s.backpedaling = true
		return Continue()
	}

	if s.nudging {
		if s.timers.For("LosNudge", losNudgeDuration) {
			ctx.Client.StopMovement(game.ControlFront)
			s.nudging = false
			s.timers.Remove("LosNudge")
		}
		return Continue()
	}
	if s.needLosNudge && target != nil {
		s.needLosNudge = false
		s.stopApproach(ctx)
		ctx.Client.Face(target.Position)
		ctx.Client.StartMovement(game.ControlFront)
		s.nudging = true
		return Continue()
	}

	if s.repositioning {
		if s.timers.For("Reposition", repositionDuration) {
			ctx.Client.StopMovement(s.repositionBit)
			s.repositioning = false
			s.timers.Remove("Reposition")
		}
		return Continue()
	}

	if target != nil && s.idleWindow(ctx, target) {
		return Continue()
	}

	// Give up on targets that stopped being ours.
	if p.IsDead() || (target != nil && target.TappedByOther && target.Health > 0) || s.targetIsFriend(ctx, target) {
		s.stopApproach(ctx)
		return Pop()
	}

	// Kill detection. An unresolvable guid counts: summoned units despawn
	// the moment they die and never show a zero-health snapshot.
	if target == nil || target.IsDead() {
		s.stopApproach(ctx)
		s.killedAt = ctx.Now()
		s.settle = utils.HumanizedMs(ctx.Rand, int(killSettleDelay/time.Millisecond))
		if target == nil {
			// Nothing to loot from a despawned unit.
			return Pop()
		}
		return Continue()
	}

	// Steady state: stay on target, stay in range, keep swinging.
	if p.TargetGuid != s.targetGuid {
		ctx.Client.SetTarget(s.targetGuid)
	}
	ctx.Client.Face(target.Position)

	if p.IsCasting || p.IsChanneling {
		return Continue()
	}

	dist := p.Position.DistanceTo(target.Position)
	if dist > s.maxRange {
		if !s.moving {
			ctx.Client.StartMovement(game.ControlFront)
			s.moving = true
		}
		return Continue()
	}
	if dist < s.minRange {
		// Inside the dead zone, back out until the band is re-entered.
		if s.moving {
			ctx.Client.StopMovement(game.ControlFront)
			s.moving = false
		}
		if !s.backingOff {
			ctx.Client.StartMovement(game.ControlBack)
			s.backingOff = true
		}
		return Continue()
	}
	if s.moving {
		ctx.Client.StopMovement(game.ControlFront)
		s.moving = false
	}
	if s.backingOff {
		ctx.Client.StopMovement(game.ControlBack)
		s.backingOff = false
	}

	ctx.Profile.EnsureAutoAttack(ctx.Client, p.Class)

	return Continue()
}

// idleWindow tracks how long the target's health has been frozen. A long
// freeze while we think we are attacking means the character is wedged
// against geometry, so throw in a randomized reposition burst.
func (s *CombatState) idleWindow(ctx *Ctx, target *game.Unit) bool {
	if target.Health != s.lastTargetHealth {
		s.lastTargetHealth = target.Health
		s.idleTicks = 0
		return false
	}

	s.idleTicks++
	if s.idleTicks >= idleWindowReset {
		s.idleTicks = 0
		return false
	}
	if s.idleTicks == idleWindowTicks {
		s.stopApproach(ctx)
		options := []game.ControlBits{game.ControlStrafeLeft, game.ControlStrafeRight, game.ControlBack}
		s.repositionBit = options[ctx.Rand.Intn(len(options))]
		ctx.Client.StartMovement(s.repositionBit)
		ctx.Client.Jump()
		s.repositioning = true
		return true
	}
	return false
}

func (s *CombatState) targetIsFriend(ctx *Ctx, target *game.Unit) bool {
	if target == nil || ctx.Cfg.BotFriend == "" {
		return false
	}
	friend := ctx.Snapshot().PlayerByName(ctx.Cfg.BotFriend)
	return friend != nil && friend.Guid == s.targetGuid
}

func (s *CombatState) escapeDeathLoop(ctx *Ctx) {
	ctx.Session.DeathsAtWp = 0
	hotspot := ctx.Hotspot
	if hotspot == nil {
		return
	}
	current := hotspot.WaypointByID(ctx.Session.CurrWpID)
	if current == nil || len(current.Links) == 0 {
		return
	}
	link := hotspot.WaypointByID(current.Links[ctx.Rand.Intn(len(current.Links))])
	if link == nil {
		return
	}
	ctx.Logger.Warn("Repeated deaths at waypoint, jumping away",
		"waypoint", ctx.Session.CurrWpID, "to", link.ID)
	ctx.TeleportTo(link.Position)
	ctx.Session.CurrWpID = link.ID
}

func (s *CombatState) stopApproach(ctx *Ctx) {
	if s.moving {
		ctx.Client.StopMovement(game.ControlFront)
		s.moving = false
	}
	if s.backingOff {
		ctx.Client.StopMovement(game.ControlBack)
		s.backingOff = false
	}
}

func (s *CombatState) Exit(ctx *Ctx) {
	ctx.Client.StopAllMovement()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.timers.Close()
}

// TryCastSpell is the gated cast primitive class rotations build on: it
// checks readiness, mana, the range band and cast exclusivity before firing,
// and reports whether the cast was actually issued.
func (s *CombatState) TryCastSpell(ctx *Ctx, name string, manaCost int, minRange, maxRange float64, onCast func()) bool {
	p := ctx.Player()
	snapshot := ctx.Snapshot()
	if p == nil || snapshot == nil {
		return false
	}
	target := snapshot.UnitByGuid(s.targetGuid)
	if target == nil {
		return false
	}
	if p.IsStunned || p.IsCasting || p.IsChanneling {
		return false
	}
	if p.Mana < manaCost {
		return false
	}
	dist := p.Position.DistanceTo(target.Position)
	if dist < minRange || dist > maxRange {
		return false
	}
	ready, err := ctx.Client.SpellReady(name)
	if err != nil || !ready {
		return false
	}

	ctx.Client.CastSpellByName(name, false)
	if onCast != nil {
		onCast()
	}
	return true
}

// TryUseAbility is TryCastSpell for rage and energy classes.
func (s *CombatState) TryUseAbility(ctx *Ctx, name string, cost int, onUse func()) bool {
	p := ctx.Player()
	if p == nil || p.IsStunned || p.IsCasting || p.IsChanneling {
		return false
	}
	resource := p.Rage
	if p.Class == game.ClassRogue || p.Class == game.ClassDruid {
		resource = p.Energy
	}
	if resource < cost {
		return false
	}
	ready, err := ctx.Client.SpellReady(name)
	if err != nil || !ready {
		return false
	}

	ctx.Client.CastSpellByName(name, false)
	if onUse != nil {
		onUse()
	}
	return true
}
