package bot

import (
	"github.com/varkas/grindbot/internal/game"
)

// TravelState walks a fixed corridor of positions, typically the town-to-
// hotspot path, and invokes the callback once the last point is reached.
// Anything that pulls aggro on the way is fought and the traversal resumes
// from the same index afterwards.
type TravelState struct {
	waypoints []game.Position
	index     int
	onArrive  func(ctx *Ctx)
	monitor   stuckMonitor
	moving    bool
}

func NewTravelState(waypoints []game.Position, startIndex int, onArrive func(ctx *Ctx)) *TravelState {
	if startIndex < 0 {
		startIndex = 0
	}
	return &TravelState{waypoints: waypoints, index: startIndex, onArrive: onArrive}
}

func (s *TravelState) Name() string { return "Travel" }

func (s *TravelState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if s.index >= len(s.waypoints) {
		if s.onArrive != nil {
			s.onArrive(ctx)
		}
		return Pop()
	}

	if threat := ctx.Aggressor(); threat != nil {
		return Push(NewCombatState(ctx, threat.Guid))
	}

	target := s.waypoints[s.index]
	if p.Position.DistanceTo(target) < waypointArrivalDistance {
		s.index++
		return Continue()
	}

	if s.monitor.stuck(ctx) {
		ctx.Client.StopAllMovement()
		s.moving = false
		return Push(NewStuckStateToward(ctx, target))
	}

	next := ctx.Pather.NextWaypoint(ctx.Snapshot().MapID, p.Position, target)
	ctx.Client.Face(next)
	if !s.moving {
		ctx.Client.StartMovement(game.ControlFront)
		s.moving = true
	}
	return Continue()
}

func (s *TravelState) Exit(ctx *Ctx) {
	if s.moving {
		ctx.Client.StopMovement(game.ControlFront)
	}
}
