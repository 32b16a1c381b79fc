package bot

import (
	"time"
)

// callToArms bonus weekends recur on a fixed six week cycle anchored to the
// historical first occurrence of each battleground's event.
const (
	ctaCycle  = 60480 * time.Minute
	ctaWindow = 6240 * time.Minute
)

type battleground struct {
	name       string
	queueIndex int
	minLevel   int
	ctaStart   time.Time
}

var battlegroundRoster = []battleground{
	{"Warsong Gulch", 1, 10, time.Date(2010, time.April, 2, 18, 0, 0, 0, time.UTC)},
	{"Arathi Basin", 2, 20, time.Date(2010, time.April, 23, 18, 0, 0, 0, time.UTC)},
	{"Alterac Valley", 3, 51, time.Date(2010, time.May, 7, 18, 0, 0, 0, time.UTC)},
	{"Eye of the Storm", 4, 61, time.Date(2010, time.April, 30, 18, 0, 0, 0, time.UTC)},
	{"Strand of the Ancients", 5, 71, time.Date(2010, time.April, 9, 18, 0, 0, 0, time.UTC)},
	{"Isle of Conquest", 6, 71, time.Date(2010, time.April, 16, 18, 0, 0, 0, time.UTC)},
}

// CallToArmsActive reports whether the named battleground's bonus window
// covers now.
func CallToArmsActive(name string, now time.Time) bool {
	for _, bg := range battlegroundRoster {
		if bg.name != name {
			continue
		}
		elapsed := now.Sub(bg.ctaStart)
		if elapsed < 0 {
			return false
		}
		return elapsed%ctaCycle < ctaWindow
	}
	return false
}

// queueWeights builds the weighted selection table for the player's level.
// A battleground running its call to arms weekend is heavily preferred, the
// honor bonus is worth chasing.
func queueWeights(level int, now time.Time) []battleground {
	var table []battleground
	for _, bg := range battlegroundRoster {
		if level < bg.minLevel {
			continue
		}
		weight := 1
		if CallToArmsActive(bg.name, now) {
			weight = 5
		}
		for i := 0; i < weight; i++ {
			table = append(table, bg)
		}
	}
	return table
}

type queuePhase int

const (
	queueSelecting queuePhase = iota
	queueWaiting
	queuePorting
)

const portCheckDelay = 2 * time.Second

// BattlegroundQueueState queues for a weighted random battleground and
// accepts the port when it comes up. It pops once the loading screen lands
// the player on a battleground map.
type BattlegroundQueueState struct {
	timers Scoped
	phase  queuePhase
	chosen battleground
}

func NewBattlegroundQueueState(ctx *Ctx) *BattlegroundQueueState {
	return &BattlegroundQueueState{timers: ctx.Timers.NewScope("BattlegroundQueue")}
}

func (s *BattlegroundQueueState) Name() string { return "BattlegroundQueue" }

func (s *BattlegroundQueueState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if battlegroundMaps[ctx.Snapshot().MapID] {
		return Pop()
	}

	switch s.phase {
	case queueSelecting:
		table := queueWeights(p.Level, ctx.Now())
		if len(table) == 0 {
			return Pop()
		}
		s.chosen = table[ctx.Rand.Intn(len(table))]
		ctx.Logger.Info("Queueing for battleground", "battleground", s.chosen.name)
		ctx.Client.JoinBattlefieldQueue(s.chosen.queueIndex)
		s.phase = queueWaiting
		return Continue()

	case queueWaiting:
		if !s.timers.ForReset("PortCheckDelay", portCheckDelay) {
			return Continue()
		}
		ready, err := ctx.Client.BattlefieldPortReady()
		if err != nil {
			return Pop()
		}
		if ready {
			ctx.Client.AcceptBattlefieldPort()
			s.phase = queuePorting
		}
		return Continue()

	case queuePorting:
		// Keep ticking until the map change shows up in the snapshot, the
		// arrival check at the top pops then.
		return Continue()
	}

	return Pop()
}

func (s *BattlegroundQueueState) Exit(ctx *Ctx) {
	s.timers.Close()
}

// arenaMaps are the skirmish arenas.
var arenaMaps = map[int]bool{
	559: true,
	562: true,
	572: true,
}

const arenaQueueIndex = 7

// ArenaSkirmishQueueState is the simpler fixed queue sequence for arena
// skirmishes.
type ArenaSkirmishQueueState struct {
	timers Scoped
	phase  queuePhase
}

func NewArenaSkirmishQueueState(ctx *Ctx) *ArenaSkirmishQueueState {
	return &ArenaSkirmishQueueState{timers: ctx.Timers.NewScope("ArenaSkirmishQueue")}
}

func (s *ArenaSkirmishQueueState) Name() string { return "ArenaSkirmishQueue" }

func (s *ArenaSkirmishQueueState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if arenaMaps[ctx.Snapshot().MapID] {
		return Pop()
	}

	switch s.phase {
	case queueSelecting:
		ctx.Logger.Info("Queueing for arena skirmish")
		ctx.Client.JoinBattlefieldQueue(arenaQueueIndex)
		s.phase = queueWaiting
		return Continue()

	case queueWaiting:
		if !s.timers.ForReset("PortCheckDelay", portCheckDelay) {
			return Continue()
		}
		ready, err := ctx.Client.BattlefieldPortReady()
		if err != nil {
			return Pop()
		}
		if ready {
			ctx.Client.AcceptBattlefieldPort()
			s.phase = queuePorting
		}
		return Continue()

	case queuePorting:
		return Continue()
	}

	return Pop()
}

func (s *ArenaSkirmishQueueState) Exit(ctx *Ctx) {
	s.timers.Close()
}
