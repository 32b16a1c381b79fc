package bot

import (
	"time"

	"github.com/varkas/grindbot/internal/game"
)

const (
	gatherTimeout       = 15 * time.Second
	gatherRetryDelay    = 2 * time.Second
	gatherApproachRange = 4.0
)

// GatherObjectState opens a world object (herb node, ore vein, chest) and
// keeps retrying until the tracked item actually lands in the bags. Node
// interactions fail silently all the time, the only reliable success signal
// is the inventory count going up.
type GatherObjectState struct {
	timers        Scoped
	objectGuid    game.Guid
	trackItemName string
	startedAt     time.Time
	startCount    int
	counted       bool
	moving        bool
}

func NewGatherObjectState(ctx *Ctx, object game.Guid, trackItemName string) *GatherObjectState {
	return &GatherObjectState{
		timers:        ctx.Timers.NewScope("GatherObject"),
		objectGuid:    object,
		trackItemName: trackItemName,
	}
}

func (s *GatherObjectState) Name() string { return "GatherObject" }

func (s *GatherObjectState) itemCount(ctx *Ctx) int {
	snapshot := ctx.Snapshot()
	if snapshot == nil {
		return 0
	}
	total := 0
	for _, item := range snapshot.Items {
		if item.Name == s.trackItemName {
			count := item.StackCount
			if count == 0 {
				count = 1
			}
			total += count
		}
	}
	return total
}

func (s *GatherObjectState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if !s.counted {
		s.startedAt = ctx.Now()
		s.startCount = s.itemCount(ctx)
		s.counted = true
	}

	if s.itemCount(ctx) > s.startCount {
		return Pop()
	}
	if ctx.Now().Sub(s.startedAt) > gatherTimeout {
		ctx.Logger.Debug("Gather attempt timed out", "object", s.objectGuid)
		return Pop()
	}
	if threat := ctx.Aggressor(); threat != nil {
		return PopPush(NewCombatState(ctx, threat.Guid))
	}

	obj, ok := ctx.Snapshot().ByGuid(s.objectGuid)
	if !ok {
		return Pop()
	}

	if p.Position.DistanceTo(obj.ObjectPosition()) > gatherApproachRange {
		next := ctx.Pather.NextWaypoint(ctx.Snapshot().MapID, p.Position, obj.ObjectPosition())
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

	if s.timers.ForReset("GatherRetryDelay", gatherRetryDelay) {
		ctx.Client.Interact(s.objectGuid)
	}

	return Continue()
}

func (s *GatherObjectState) Exit(ctx *Ctx) {
	if s.moving {
		ctx.Client.StopMovement(game.ControlFront)
	}
	s.timers.Close()
}
