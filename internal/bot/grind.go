package bot

import (
	"errors"

	"github.com/varkas/grindbot/internal/store"
)

const (
	nearestWaypointAttempts = 100
	randomNeighborDraws     = 15
	restHealthPercent       = 60
	restManaPercent         = 40
)

// GrindState is the root behavior for open-world grinding: fight whatever is
// close enough, rest when drained, otherwise roam the hotspot waypoint graph.
type GrindState struct{}

func NewGrindState() *GrindState { return &GrindState{} }

func (s *GrindState) Name() string { return "Grind" }

func (s *GrindState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if target := ctx.FindClosestTarget(); target != nil {
		dz := float64(p.Position.Z - target.Position.Z)
		if dz < 0 {
			dz = -dz
		}
		// Ignore targets on a different vertical layer, a mob one floor up
		// reads as close but is unreachable.
		if dz < waypointMaxHeightDelta {
			ctx.Client.SetTarget(target.Guid)
			return Push(NewCombatState(ctx, target.Guid))
		}
	}

	if p.HealthPercent() < restHealthPercent && !p.InCombat {
		return Push(NewRestState(ctx))
	}
	if p.MaxMana > 0 && p.Mana*100/p.MaxMana < restManaPercent && !p.InCombat {
		return Push(NewRestState(ctx))
	}

	hotspot := ctx.Hotspot
	sess := ctx.Session
	if hotspot == nil || len(hotspot.Waypoints) == 0 {
		return Fail(errors.New("no grinding hotspot selected"))
	}

	current := hotspot.WaypointByID(sess.CurrWpID)
	if sess.CurrWpID == 0 || current == nil {
		wp := nearestCandidateWaypoint(ctx, hotspot)
		if wp == nil {
			return Fail(errors.New("no reachable waypoint in hotspot"))
		}
		sess.CurrWpID = wp.ID
		return Push(NewMoveToHotspotWaypointState(*wp))
	}

	reached := sess.VisitedWps[current.ID] ||
		p.Position.DistanceTo2D(current.Position) < waypointArrivalDistance
	if !reached {
		// Still traveling, combat or recovery interrupted the move.
		return Push(NewMoveToHotspotWaypointState(*current))
	}

	next := s.advanceWaypoint(ctx, hotspot, current)
	if next == nil {
		return Continue()
	}
	ctx.Logger.Debug("Advancing to waypoint", "from", current.ID, "to", next.ID, "zone", next.Zone)
	sess.CurrWpID = next.ID
	return Push(NewMoveToHotspotWaypointState(*next))
}

// advanceWaypoint picks where to roam next from a reached waypoint. An
// overleveled player follows a graph-search route toward content that still
// grants experience; otherwise a random linked neighbor is chosen, preferring
// ones not visited this session.
func (s *GrindState) advanceWaypoint(ctx *Ctx, hotspot *store.Hotspot, current *store.Waypoint) *store.Waypoint {
	p := ctx.Player()
	sess := ctx.Session

	if current.Overleveled(p.Level) {
		if len(sess.ForcedWpPath) == 0 {
			sess.ForcedWpPath = ForcedWpPathViaBFS(hotspot, current.ID, p.Level, sess.BlacklistedWps, sess.VisitedWps)
			ctx.Logger.Info("Outleveled current area, rerouting", "pathLength", len(sess.ForcedWpPath))
		}
		if id, ok := sess.PopForcedWp(); ok {
			if wp := hotspot.WaypointByID(id); wp != nil {
				return wp
			}
		}
	}

	if len(current.Links) == 0 {
		return nearestCandidateWaypoint(ctx, hotspot)
	}

	var fallback *store.Waypoint
	for i := 0; i < randomNeighborDraws; i++ {
		cand := hotspot.WaypointByID(current.Links[ctx.Rand.Intn(len(current.Links))])
		if cand == nil || sess.BlacklistedWps[cand.ID] {
			continue
		}
		if cand.MinLevel > p.Level {
			continue
		}
		if !sess.VisitedWps[cand.ID] {
			return cand
		}
		fallback = cand
	}
	return fallback
}

// nearestCandidateWaypoint linearly scans for the closest non-blacklisted
// waypoint, bounded so a fully blacklisted graph cannot spin the tick loop.
func nearestCandidateWaypoint(ctx *Ctx, hotspot *store.Hotspot) *store.Waypoint {
	p := ctx.Player()

	var best *store.Waypoint
	bestDist := 0.0
	attempts := 0
	for i := range hotspot.Waypoints {
		if attempts >= nearestWaypointAttempts {
			break
		}
		attempts++
		wp := &hotspot.Waypoints[i]
		if ctx.Session.BlacklistedWps[wp.ID] {
			continue
		}
		d := p.Position.DistanceTo(wp.Position)
		if best == nil || d < bestDist {
			best = wp
			bestDist = d
		}
	}
	return best
}

// ForcedWpPathViaBFS searches the waypoint link graph breadth-first from
// startID for the nearest waypoint whose level band fits the player. When the
// player has outgrown every band in the hotspot, any waypoint in a zone not
// visited this session qualifies instead. The returned path excludes startID.
// If no goal is reachable the path to the last explored node is returned, the
// caller treats a route that ends short as a policy failure, not an error.
func ForcedWpPathViaBFS(hotspot *store.Hotspot, startID int, playerLevel int, blacklisted map[int]bool, visited map[int]bool) []int {
	anyBandFits := false
	for i := range hotspot.Waypoints {
		if hotspot.Waypoints[i].FitsLevel(playerLevel) {
			anyBandFits = true
			break
		}
	}

	visitedZones := make(map[string]bool)
	for i := range hotspot.Waypoints {
		wp := &hotspot.Waypoints[i]
		if visited[wp.ID] {
			visitedZones[wp.Zone] = true
		}
	}

	isGoal := func(wp *store.Waypoint) bool {
		if anyBandFits {
			return wp.FitsLevel(playerLevel)
		}
		return !visitedZones[wp.Zone]
	}

	parent := make(map[int]int)
	seen := map[int]bool{startID: true}
	queue := []int{startID}
	last := startID

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		last = id

		wp := hotspot.WaypointByID(id)
		if wp == nil {
			continue
		}
		if id != startID && isGoal(wp) {
			return reconstructPath(parent, startID, id)
		}

		for _, link := range wp.Links {
			if seen[link] || blacklisted[link] {
				continue
			}
			if hotspot.WaypointByID(link) == nil {
				continue
			}
			seen[link] = true
			parent[link] = id
			queue = append(queue, link)
		}
	}

	if last == startID {
		return nil
	}
	return reconstructPath(parent, startID, last)
}

func reconstructPath(parent map[int]int, startID, goalID int) []int {
	var reversed []int
	for id := goalID; id != startID; id = parent[id] {
		reversed = append(reversed, id)
	}
	path := make([]int, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}
