package game

import (
	"time"
)

// LocalPlayer is the controlled character as of the latest snapshot.
type LocalPlayer struct {
	Player
	Rage          int
	Energy        int
	IsGhost       bool
	IsCasting     bool
	IsChanneling  bool
	IsStunned     bool
	Corpse        Position
}

func (p *LocalPlayer) CanResurrect() bool {
	return p.IsGhost && !p.Corpse.IsZero()
}

// Session is the state that survives snapshot refreshes and bot state
// transitions: route bookkeeping, blacklists and the stuck/death counters
// the recovery logic escalates on. It belongs to one attached character and
// is discarded on logout.
type Session struct {
	// CurrWpID is the waypoint currently being worked, zero means none
	// selected yet.
	CurrWpID int

	// ForcedWpPath, when non-empty, overrides waypoint selection: the
	// grind loop walks it front to back before resuming normal roaming.
	ForcedWpPath []int
	VisitedWps   map[int]bool

	// BlacklistedWps holds waypoint ids that proved unreachable.
	BlacklistedWps map[int]bool

	// WpStuckCount accumulates stuck pushes while traveling to the current
	// waypoint and forces a waypoint skip when it grows too large.
	WpStuckCount int
	DeathsAtWp   int

	// PendingTeleport marks a deliberate recovery jump so the position
	// watchdog does not read it as a desync.
	PendingTeleport bool

	blacklist map[Guid]time.Time
}

func NewSession() *Session {
	return &Session{
		VisitedWps:     make(map[int]bool),
		BlacklistedWps: make(map[int]bool),
		blacklist:      make(map[Guid]time.Time),
	}
}

func (s *Session) BlacklistTarget(g Guid, until time.Time) {
	s.blacklist[g] = until
}

func (s *Session) IsBlacklisted(g Guid, now time.Time) bool {
	until, ok := s.blacklist[g]
	if !ok {
		return false
	}
	if now.After(until) {
		delete(s.blacklist, g)
		return false
	}
	return true
}

func (s *Session) MarkVisited(wpID int) {
	s.VisitedWps[wpID] = true
}

func (s *Session) ClearVisited() {
	s.VisitedWps = make(map[int]bool)
}

// ResetWaypointProgress drops every waypoint assumption. Called after a
// loading screen puts the player on a different map, where the old graph
// position means nothing.
func (s *Session) ResetWaypointProgress() {
	s.CurrWpID = 0
	s.ForcedWpPath = nil
	s.WpStuckCount = 0
	s.ClearVisited()
}

// PopForcedWp consumes the head of the forced path, if any.
func (s *Session) PopForcedWp() (int, bool) {
	if len(s.ForcedWpPath) == 0 {
		return 0, false
	}
	id := s.ForcedWpPath[0]
	s.ForcedWpPath = s.ForcedWpPath[1:]
	return id, true
}
