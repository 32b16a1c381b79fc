package bot

import (
	"fmt"
	"time"

	"github.com/varkas/grindbot/internal/event"
	"github.com/varkas/grindbot/internal/game"
)

const (
	stuckCheckInterval = time.Second
	stuckMinProgress   = 0.05
)

// stuckMonitor watches movement progress. It fires when the player covered
// almost no ground over a full check interval, which catches both geometry
// snags and a character rubber-banding against a wall.
type stuckMonitor struct {
	lastPos     game.Position
	lastCheck   time.Time
	initialized bool
}

func (m *stuckMonitor) stuck(ctx *Ctx) bool {
	p := ctx.Player()
	if p == nil {
		return false
	}
	now := ctx.Now()

	if !m.initialized {
		m.lastPos = p.Position
		m.lastCheck = now
		m.initialized = true
		return false
	}

	if now.Sub(m.lastCheck) < stuckCheckInterval {
		return false
	}

	moved := p.Position.DistanceTo(m.lastPos)
	m.lastPos = p.Position
	m.lastCheck = now

	return moved <= stuckMinProgress
}

func (m *stuckMonitor) reset() {
	m.initialized = false
}

// StuckState performs active recovery: short randomized movement bursts with
// jumps, separated by settle pauses, with the accepted drift radius growing
// on each failed attempt. It pops once combat starts, enough ground was
// covered, or the optional target waypoint is reached.
type StuckState struct {
	timers   Scoped
	target   *game.Position
	startPos game.Position
	bits     game.ControlBits
	duration time.Duration
	attempts int
	bursting bool
	started  bool
}

func NewStuckState(ctx *Ctx) *StuckState {
	return &StuckState{timers: ctx.Timers.NewScope("Stuck")}
}

// NewStuckStateToward also pops the recovery once the player ends up near
// target, movement states pass their destination here.
func NewStuckStateToward(ctx *Ctx, target game.Position) *StuckState {
	s := NewStuckState(ctx)
	s.target = &target
	return s
}

func (s *StuckState) Name() string { return "Stuck" }

func (s *StuckState) beginBurst(ctx *Ctx) {
	options := []game.ControlBits{
		game.ControlFront,
		game.ControlBack,
		game.ControlStrafeLeft,
		game.ControlStrafeRight,
	}
	s.bits = options[ctx.Rand.Intn(len(options))]

	drift := 2.0 + ctx.Rand.Float64()*18.0
	s.duration = time.Duration(100*drift/3) * time.Millisecond

	ctx.Client.StartMovement(s.bits)
	ctx.Client.Jump()
	s.bursting = true
	s.timers.Remove("EscapeBurst")
	s.timers.Remove("Settle")
}

func (s *StuckState) endBurst(ctx *Ctx) {
	ctx.Client.StopMovement(s.bits)
	s.bursting = false
	s.attempts++
}

// driftRadius is how far from the stuck point counts as free again. It grows
// with failed attempts so a deep snag eventually accepts any escape route.
func (s *StuckState) driftRadius() float64 {
	return 2.0 + float64(s.attempts)*1.5
}

func (s *StuckState) Update(ctx *Ctx) Transition {
	p := ctx.Player()
	if p == nil {
		return Continue()
	}

	if !s.started {
		s.startPos = p.Position
		s.started = true
		ctx.Events.Emit(event.BotStuck(
			event.Text(ctx.Name, fmt.Sprintf("Stuck at %v, trying to break free", p.Position)),
			s.Name(),
		))
		s.beginBurst(ctx)
		return Continue()
	}

	if p.InCombat {
		return Pop()
	}
	if p.Position.DistanceTo(s.startPos) > s.driftRadius() {
		return Pop()
	}
	if s.target != nil && p.Position.DistanceTo(*s.target) < waypointArrivalDistance {
		return Pop()
	}

	if s.bursting {
		if s.timers.For("EscapeBurst", s.duration) {
			s.endBurst(ctx)
		}
		return Continue()
	}

	// Settle between bursts so the client reports a stable position before
	// the next attempt.
	if s.timers.For("Settle", 250*time.Millisecond) {
		s.beginBurst(ctx)
	}
	return Continue()
}

func (s *StuckState) Exit(ctx *Ctx) {
	if s.bursting {
		ctx.Client.StopMovement(s.bits)
	}
	s.timers.Close()
}
