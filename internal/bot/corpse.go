package bot

import (
	"math"
	"time"

	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/store"
)

const (
	releaseDelay        = time.Second
	releaseSettleDelay  = 2 * time.Second
	battlegroundRElim   = 30 * time.Second
	corpseArrivalDist   = 3.0
	corpseNearWpDist    = 20.0
	corpseStuckTeleport = 40
	waterWalkZDrop      = 5.0
	waterWalkZSettle    = 0.05
	resurrectionRadius  = 35.0
	safeSpotGridRadius  = 25
	retrieveRetryDelay  = time.Second
)

// battlegroundMaps auto-resurrect dead players, releasing there is wrong and
// the state just waits out the graveyard timer.
var battlegroundMaps = map[int]bool{
	30:  true,
	489: true,
	529: true,
	559: true,
}

// ReleaseCorpseState releases the spirit after death. On battleground maps it
// instead waits for the periodic graveyard resurrection.
type ReleaseCorpseState struct {
	timers   Scoped
	released bool
}

func NewReleaseCorpseState(ctx *Ctx) *ReleaseCorpseState {
	return &ReleaseCorpseState{timers: ctx.Timers.NewScope("ReleaseCorpse")}
}

func (s *ReleaseCorpseState) Name() string { return "ReleaseCorpse" }

func (s *ReleaseCorpseState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if p.IsGhost {
		return Pop()
	}

	if battlegroundMaps[ctx.Snapshot().MapID] {
		if s.timers.For("GraveyardWait", battlegroundRElim) {
			return Pop()
		}
		return Continue()
	}

	if !s.released {
		if s.timers.For("ReleaseDelay", releaseDelay) {
			ctx.Client.RepopMe()
			s.released = true
		}
		return Continue()
	}

	// The ghost flag is the only trustworthy signal that the release went
	// through; a slow server gets the release again instead of a blind pop.
	if s.timers.ForReset("ReleaseSettle", releaseSettleDelay) {
		ctx.Client.RepopMe()
	}
	return Continue()
}

func (s *ReleaseCorpseState) Exit(ctx *Ctx) {
	s.timers.Close()
}

// MoveToCorpseState runs the ghost back to the corpse. Far out it rides the
// hotspot waypoint graph toward the waypoint nearest the corpse; once close
// it goes point to point, with a special case for graveyards across water
// where the ghost walks on the surface and the pather reports a huge Z drop.
type MoveToCorpseState struct {
	monitor     stuckMonitor
	stuckCount  int
	nearCorpse  bool
	route       []int
	waterWalk   bool
	moving      bool
}

func NewMoveToCorpseState() *MoveToCorpseState {
	return &MoveToCorpseState{}
}

func (s *MoveToCorpseState) Name() string { return "MoveToCorpse" }

func (s *MoveToCorpseState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if !p.IsGhost || p.Position.DistanceTo2D(p.Corpse) < corpseArrivalDist {
		// Route overrides die with the run, the grind loop restarts clean.
		ctx.Session.ForcedWpPath = nil
		return Pop()
	}

	if s.stuckCount > corpseStuckTeleport {
		ctx.Logger.Warn("Ghost run hopelessly stuck, jumping to corpse")
		ctx.TeleportTo(p.Corpse)
		s.stuckCount = 0
		return Continue()
	}

	if s.monitor.stuck(ctx) {
		s.stuckCount++
		ctx.Client.StopAllMovement()
		s.moving = false
		return Push(NewStuckStateToward(ctx, p.Corpse))
	}

	// Phase switch is evaluated once: when the ghost first comes within
	// reach of the waypoint nearest the corpse, graph following stops.
	if !s.nearCorpse && ctx.Hotspot != nil {
		nearWp := ctx.Hotspot.NearestWaypoint(p.Corpse)
		if nearWp == nil || p.Position.DistanceTo2D(nearWp.Position) < corpseNearWpDist {
			s.nearCorpse = true
		} else {
			return s.followGraph(ctx, nearWp.ID)
		}
	}

	snapshot := ctx.Snapshot()
	next := ctx.Pather.NextWaypoint(snapshot.MapID, p.Position, p.Corpse)

	// Walking on water: the path drops far below the ghost walking on the
	// surface. Hold forward until the height gap closes.
	if float64(p.Position.Z-next.Z) > waterWalkZDrop {
		s.waterWalk = true
	}
	if s.waterWalk {
		if math.Abs(float64(p.Position.Z-next.Z)) < waterWalkZSettle {
			s.waterWalk = false
		}
		ctx.Client.Face(p.Corpse)
		if !s.moving {
			ctx.Client.StartMovement(game.ControlFront)
			s.moving = true
		}
		return Continue()
	}

	ctx.Client.Face(next)
	if !s.moving {
		ctx.Client.StartMovement(game.ControlFront)
		s.moving = true
	}
	return Continue()
}

// followGraph walks the waypoint graph toward goalID, computing the route
// once and consuming it hop by hop.
func (s *MoveToCorpseState) followGraph(ctx *Ctx, goalID int) Transition {
	p := ctx.Player()
	hotspot := ctx.Hotspot

	if len(s.route) == 0 {
		start := hotspot.NearestWaypoint(p.Position)
		if start == nil {
			s.nearCorpse = true
			return Continue()
		}
		s.route = waypointRoute(hotspot, start.ID, goalID)
		if len(s.route) == 0 {
			s.nearCorpse = true
			return Continue()
		}
	}

	next := hotspot.WaypointByID(s.route[0])
	if next == nil {
		s.route = s.route[1:]
		return Continue()
	}
	if p.Position.DistanceTo2D(next.Position) < waypointArrivalDistance {
		s.route = s.route[1:]
		return Continue()
	}

	hop := ctx.Pather.NextWaypoint(ctx.Snapshot().MapID, p.Position, next.Position)
	ctx.Client.Face(hop)
	if !s.moving {
		ctx.Client.StartMovement(game.ControlFront)
		s.moving = true
	}
	return Continue()
}

// waypointRoute is a plain breadth-first route between two waypoint ids,
// excluding startID. Empty when the graph does not connect them.
func waypointRoute(hotspot *store.Hotspot, startID, goalID int) []int {
	parent := make(map[int]int)
	seen := map[int]bool{startID: true}
	queue := []int{startID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if id == goalID {
			return reconstructPath(parent, startID, goalID)
		}
		wp := hotspot.WaypointByID(id)
		if wp == nil {
			continue
		}
		for _, link := range wp.Links {
			if seen[link] {
				continue
			}
			seen[link] = true
			parent[link] = id
			queue = append(queue, link)
		}
	}
	return nil
}

func (s *MoveToCorpseState) Exit(ctx *Ctx) {
	if s.moving {
		ctx.Client.StopMovement(game.ControlFront)
	}
}

// RetrieveCorpseState resurrects at a spot chosen to be as far from live
// threats as possible while staying inside the resurrection radius. The
// candidate grid around the corpse is scored once on the first tick.
type RetrieveCorpseState struct {
	timers   Scoped
	safeSpot game.Position
	computed bool
}

func NewRetrieveCorpseState(ctx *Ctx) *RetrieveCorpseState {
	return &RetrieveCorpseState{timers: ctx.Timers.NewScope("RetrieveCorpse")}
}

func (s *RetrieveCorpseState) Name() string { return "RetrieveCorpse" }

func (s *RetrieveCorpseState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if !p.IsGhost {
		return Pop()
	}

	if !s.computed {
		s.safeSpot = s.findSafeSpot(ctx, p)
		s.computed = true
		return Push(NewMoveToPositionState(s.safeSpot, AsGhost()))
	}

	if s.timers.ForReset("RetrieveRetryDelay", retrieveRetryDelay) {
		ctx.Client.RetrieveCorpse()
	}
	return Continue()
}

// findSafeSpot samples a square grid around the corpse and keeps the
// reachable candidate whose path endpoint is farthest from the nearest live
// threat.
func (s *RetrieveCorpseState) findSafeSpot(ctx *Ctx, p *game.LocalPlayer) game.Position {
	corpse := p.Corpse
	mapID := ctx.Snapshot().MapID

	best := corpse
	bestThreatDist := -1.0

	for dx := -safeSpotGridRadius; dx <= safeSpotGridRadius; dx++ {
		for dy := -safeSpotGridRadius; dy <= safeSpotGridRadius; dy++ {
			cand := game.Position{
				X: corpse.X + float32(dx),
				Y: corpse.Y + float32(dy),
				Z: corpse.Z,
			}
			if cand.DistanceTo2D(corpse) > resurrectionRadius {
				continue
			}
			end := ctx.Pather.PathEndpoint(mapID, p.Position, cand)
			if end.DistanceTo2D(cand) > moveArrivalDistance {
				continue
			}
			threat := ctx.FindThreat(end)
			if threat == nil {
				return cand
			}
			d := end.DistanceTo(threat.Position)
			if d > bestThreatDist {
				best = cand
				bestThreatDist = d
			}
		}
	}
	return best
}

func (s *RetrieveCorpseState) Exit(ctx *Ctx) {
	s.timers.Close()
}
