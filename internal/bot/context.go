package bot

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/varkas/grindbot/internal/config"
	"github.com/varkas/grindbot/internal/event"
	"github.com/varkas/grindbot/internal/game"
	"github.com/varkas/grindbot/internal/pather"
	"github.com/varkas/grindbot/internal/store"
)

// Ctx is the dependency container handed to every state tick. It is built
// once per attached character and owned by the engine goroutine.
type Ctx struct {
	Logger  *slog.Logger
	Client  game.Client
	Profile game.Profile
	Manager *game.Manager
	Session *game.Session
	Timers  *Timers
	Pather  *pather.PathFinder
	Data    store.WorldData
	Cfg     *config.CharacterCfg
	Events  *event.Listener
	Rand    *rand.Rand
	Clock   func() time.Time

	// Name is the attached character, used as the supervisor tag on events.
	Name string

	// Schedule queues fn onto the engine tick goroutine. Event handlers use
	// it to touch state-machine data without racing the tick loop.
	Schedule func(fn func())

	// Hotspot is the grinding area currently worked.
	Hotspot *store.Hotspot
}

func (c *Ctx) Snapshot() *game.Snapshot {
	return c.Manager.Snapshot()
}

func (c *Ctx) Player() *game.LocalPlayer {
	s := c.Manager.Snapshot()
	if s == nil {
		return nil
	}
	return s.Player
}

func (c *Ctx) Now() time.Time {
	return c.Clock()
}

func (c *Ctx) EmitText(message string) {
	c.Events.Emit(event.Text(c.Name, message))
}

// eligibleTarget reports whether the unit is worth attacking during grinding.
func (c *Ctx) eligibleTarget(u *game.Unit, playerLevel int) bool {
	if u.IsDead() || u.IsPet() || u.Creature != game.CreatureNormal {
		return false
	}
	if u.TappedByOther {
		return false
	}
	if c.Session.IsBlacklisted(u.Guid, c.Now()) {
		return false
	}
	if !u.Hostile() && u.Reaction != game.ReactionNeutral && u.Reaction != game.ReactionUnfriendly {
		return false
	}
	if u.Level > playerLevel+3 || u.Level < playerLevel-8 {
		return false
	}
	// Leave the friend bot's targets alone.
	if c.Cfg.BotFriend != "" {
		if friend := c.Snapshot().PlayerByName(c.Cfg.BotFriend); friend != nil && u.TargetGuid == friend.Guid {
			return false
		}
	}
	return true
}

// FindClosestTarget returns the nearest attackable unit by walked distance,
// nil when nothing qualifies.
func (c *Ctx) FindClosestTarget() *game.Unit {
	s := c.Snapshot()
	if s == nil || s.Player == nil {
		return nil
	}

	var best *game.Unit
	bestDist := 0.0
	for _, u := range s.Units {
		if !c.eligibleTarget(u, s.Player.Level) {
			continue
		}
		d := c.Pather.DistanceViaPath(s.MapID, s.Player.Position, u.Position)
		if best == nil || d < bestDist {
			best = u
			bestDist = d
		}
	}
	return best
}

// FindThreat returns the nearest unit around p that would attack the player
// on sight: alive, untapped, no pet, hated or hostile, and not trivially low
// level. Corpse recovery uses it to pick a safe resurrection spot.
func (c *Ctx) FindThreat(p game.Position) *game.Unit {
	s := c.Snapshot()
	if s == nil || s.Player == nil {
		return nil
	}

	var nearest *game.Unit
	nearestDist := 0.0
	for _, u := range s.Units {
		if u.IsDead() || u.IsPet() || u.Creature != game.CreatureNormal {
			continue
		}
		if u.TappedByOther || !u.Hostile() {
			continue
		}
		if u.Level <= s.Player.Level-10 {
			continue
		}
		d := p.DistanceTo(u.Position)
		if nearest == nil || d < nearestDist {
			nearest = u
			nearestDist = d
		}
	}
	return nearest
}

// Aggressor returns a living hostile unit currently targeting the player,
// nil when nothing has aggro. Movement states use it to break off and fight.
func (c *Ctx) Aggressor() *game.Unit {
	s := c.Snapshot()
	if s == nil || s.Player == nil {
		return nil
	}
	for _, u := range s.Units {
		if !u.IsDead() && u.Hostile() && u.TargetGuid == s.Player.Guid {
			return u
		}
	}
	return nil
}

// TeleportTo issues the out-of-band recovery jump and flags it so the
// position watchdog knows the jump was deliberate.
func (c *Ctx) TeleportTo(p game.Position) {
	c.Session.PendingTeleport = true
	c.Client.TeleportTo(p)
}

// FindBagItem returns the first carried item with the given name.
func (c *Ctx) FindBagItem(name string) *game.Item {
	s := c.Snapshot()
	if s == nil {
		return nil
	}
	for _, i := range s.Items {
		if i.Name == name {
			return i
		}
	}
	return nil
}

// UnitsTargeting returns the living units currently targeting g.
func (c *Ctx) UnitsTargeting(g game.Guid) []*game.Unit {
	s := c.Snapshot()
	if s == nil {
		return nil
	}
	var result []*game.Unit
	for _, u := range s.Units {
		if !u.IsDead() && u.TargetGuid == g {
			result = append(result, u)
		}
	}
	return result
}
