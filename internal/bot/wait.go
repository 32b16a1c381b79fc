package bot

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Timers is a named-deadline registry. Calling For with a name that is not
// registered starts the timer and reports false; subsequent calls report
// whether the duration has elapsed since that first call. It replaces
// sleeping inside states: a state checks its timer every tick and keeps the
// loop responsive.
type Timers struct {
	clock   func() time.Time
	started map[string]time.Time
}

func NewTimers(clock func() time.Time) *Timers {
	if clock == nil {
		clock = time.Now
	}
	return &Timers{clock: clock, started: make(map[string]time.Time)}
}

// For reports whether d has elapsed since the timer was first checked. The
// timer stays registered once elapsed, it keeps reporting true until removed.
func (t *Timers) For(name string, d time.Duration) bool {
	started, ok := t.started[name]
	if !ok {
		t.started[name] = t.clock()
		return d <= 0
	}
	return t.clock().Sub(started) >= d
}

// ForReset is For with auto-removal: the first elapsed check reports true and
// unregisters the timer, so the next call starts it again.
func (t *Timers) ForReset(name string, d time.Duration) bool {
	if t.For(name, d) {
		delete(t.started, name)
		return true
	}
	return false
}

func (t *Timers) Remove(name string) {
	delete(t.started, name)
}

// RemovePrefix drops every timer whose name starts with prefix. Scoped timer
// sets use it to clean up when their owner exits.
func (t *Timers) RemovePrefix(prefix string) {
	for name := range t.started {
		if strings.HasPrefix(name, prefix) {
			delete(t.started, name)
		}
	}
}

func (t *Timers) RemoveAll() {
	t.started = make(map[string]time.Time)
}

// Scoped is a view of Timers whose names are private to one state instance.
// Two concurrent instances of the same state type cannot collide.
type Scoped struct {
	timers *Timers
	prefix string
}

// NewScope returns a timer set with a unique instance prefix.
func (t *Timers) NewScope(owner string) Scoped {
	return Scoped{timers: t, prefix: owner + "/" + uuid.NewString() + "/"}
}

func (s Scoped) For(name string, d time.Duration) bool {
	return s.timers.For(s.prefix+name, d)
}

func (s Scoped) ForReset(name string, d time.Duration) bool {
	return s.timers.ForReset(s.prefix+name, d)
}

func (s Scoped) Remove(name string) {
	s.timers.Remove(s.prefix + name)
}

// Close removes every timer the scope registered.
func (s Scoped) Close() {
	s.timers.RemovePrefix(s.prefix)
}
