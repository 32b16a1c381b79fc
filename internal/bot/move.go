package bot

import (
	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/store"
)

const (
	moveArrivalDistance     = 5.0
	ghostArrivalDistance    = 3.0
	moveStuckLimit          = 15
	ghostStuckLimit         = 3
	waypointArrivalDistance = 3.0
	waypointMaxHeightDelta  = 16.0
	waypointStuckSkipLimit  = 10
)

// MoveOption tweaks MoveToPositionState construction.
type MoveOption func(*MoveToPositionState)

// AsGhost switches to the corpse-run distance checks: 2-D only, because the
// corpse marker height is unreliable, a tighter arrival radius and a much
// lower stuck tolerance.
func AsGhost() MoveOption {
	return func(s *MoveToPositionState) { s.ghost = true }
}

// MoveToPositionState walks toward a fixed position and pops on arrival. It
// escalates through StuckState on snagged geometry and gives up after too
// many recoveries so the pusher can decide what to do next. A hostile unit
// pulling aggro on the way preempts the move with combat.
type MoveToPositionState struct {
	dest       game.Position
	ghost      bool
	monitor    stuckMonitor
	stuckCount int
	moving     bool
}

func NewMoveToPositionState(dest game.Position, opts ...MoveOption) *MoveToPositionState {
	s := &MoveToPositionState{dest: dest}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *MoveToPositionState) Name() string { return "MoveToPosition" }

func (s *MoveToPositionState) arrived(p *game.LocalPlayer) bool {
	if s.ghost {
		return p.Position.DistanceTo2D(s.dest) < ghostArrivalDistance
	}
	return p.Position.DistanceTo(s.dest) < moveArrivalDistance
}

func (s *MoveToPositionState) stuckLimit() int {
	if s.ghost {
		return ghostStuckLimit
	}
	return moveStuckLimit
}

func (s *MoveToPositionState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if s.arrived(p) || s.stuckCount > s.stuckLimit() {
		return Pop()
	}

	if !s.ghost {
		if threat := ctx.Aggressor(); threat != nil {
			return PopPush(NewCombatState(ctx, threat.Guid))
		}
	}

	if s.monitor.stuck(ctx) {
		s.stuckCount++
		ctx.Session.WpStuckCount++
		ctx.Client.StopAllMovement()
		s.moving = false
		return Push(NewStuckStateToward(ctx, s.dest))
	}

	snapshot := ctx.Snapshot()
	next := ctx.Pather.NextWaypoint(snapshot.MapID, p.Position, s.dest)
	ctx.Client.Face(next)
	if !s.moving {
		ctx.Client.StartMovement(game.ControlFront)
		s.moving = true
	}

	return Continue()
}

func (s *MoveToPositionState) Exit(ctx *Ctx) {
	if s.moving {
		ctx.Client.StopMovement(game.ControlFront)
	}
}

// MoveToHotspotWaypointState walks the roaming graph toward one waypoint. It
// differs from a plain position move in its arrival rule: the node counts as
// reached only on the right vertical layer, and a waypoint that keeps
// producing stuck recoveries is skipped entirely.
type MoveToHotspotWaypointState struct {
	target  store.Waypoint
	monitor stuckMonitor
	moving  bool
}

func NewMoveToHotspotWaypointState(target store.Waypoint) *MoveToHotspotWaypointState {
	return &MoveToHotspotWaypointState{target: target}
}

func (s *MoveToHotspotWaypointState) Name() string { return "MoveToHotspotWaypoint" }

func (s *MoveToHotspotWaypointState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	dz := float64(p.Position.Z - s.target.Position.Z)
	if dz < 0 {
		dz = -dz
	}
	arrived := dz < waypointMaxHeightDelta && p.Position.DistanceTo2D(s.target.Position) < waypointArrivalDistance

	if arrived || ctx.Session.WpStuckCount > waypointStuckSkipLimit {
		if !arrived {
			ctx.Session.BlacklistedWps[s.target.ID] = true
			ctx.Logger.Debug("Blacklisting unreachable waypoint", "waypoint", s.target.ID)
		}
		ctx.Session.MarkVisited(s.target.ID)
		ctx.Session.WpStuckCount = 0
		return Pop()
	}

	if threat := ctx.Aggressor(); threat != nil {
		return PopPush(NewCombatState(ctx, threat.Guid))
	}

	// A grindable mob along the route is worth the detour; pop so the grind
	// loop picks it up. Same vertical-layer rule as the grind tick.
	if target := ctx.FindClosestTarget(); target != nil {
		dz := float64(p.Position.Z - target.Position.Z)
		if dz < 0 {
			dz = -dz
		}
		if dz < waypointMaxHeightDelta {
			return Pop()
		}
	}

	if s.monitor.stuck(ctx) {
		ctx.Session.WpStuckCount++
		ctx.Client.StopAllMovement()
		s.moving = false
		return Push(NewStuckStateToward(ctx, s.target.Position))
	}

	snapshot := ctx.Snapshot()
	next := ctx.Pather.NextWaypoint(snapshot.MapID, p.Position, s.target.Position)
	ctx.Client.Face(next)
	if !s.moving {
		ctx.Client.StartMovement(game.ControlFront)
		s.moving = true
	}

	return Continue()
}

func (s *MoveToHotspotWaypointState) Exit(ctx *Ctx) {
	if s.moving {
		ctx.Client.StopMovement(game.ControlFront)
	}
}
