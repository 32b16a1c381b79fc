package bot

// State is one behavior on the bot stack. Update runs once per tick while the
// state is on top and returns what should happen to the stack. States never
// mutate the stack themselves, the engine applies the returned transition and
// guarantees Exit runs exactly once when a state leaves the stack.
type State interface {
	Name() string
	Update(ctx *Ctx) Transition
}

// ExitHandler is implemented by states that hold resources across ticks
// (event subscriptions, pending timers). The engine calls Exit on every
// removal path, including failures and stack resets.
type ExitHandler interface {
	Exit(ctx *Ctx)
}

type transitionKind int

const (
	transContinue transitionKind = iota
	transPush
	transPop
	transPopPush
	transFail
)

// Transition is the outcome of one state tick.
type Transition struct {
	kind transitionKind
	next []State
	err  error
}

// Continue keeps the current state on top.
func Continue() Transition {
	return Transition{kind: transContinue}
}

// Push stacks the given states on top of the current one. They are pushed in
// order, so the last argument runs first.
func Push(states ...State) Transition {
	return Transition{kind: transPush, next: states}
}

// Pop removes the current state, resuming the one below it.
func Pop() Transition {
	return Transition{kind: transPop}
}

// PopPush replaces the current state with the given ones in a single tick.
func PopPush(states ...State) Transition {
	return Transition{kind: transPopPush, next: states}
}

// Fail aborts the whole stack. The engine clears every state and surfaces
// the error to the supervisor loop.
func Fail(err error) Transition {
	return Transition{kind: transFail, err: err}
}
