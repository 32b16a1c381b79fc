package event

import (
	"context"
	"log/slog"
	"sync"
)

type Handler func(ctx context.Context, e Event) error

// Listener fans events out to registered handlers on its own goroutine, so a
// slow notifier never stalls the tick loop.
type Listener struct {
	handlers map[int]Handler
	nextID   int
	logger   *slog.Logger
	ch       chan Event
	mu       sync.Mutex
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{
		handlers: make(map[int]Handler),
		logger:   logger,
		ch:       make(chan Event, 64),
	}
}

// Register adds a handler and returns a function that removes it. Handlers
// registered by a bot state must be unregistered when the state exits.
func (l *Listener) Register(h Handler) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.handlers[id] = h

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.handlers, id)
	}
}

func (l *Listener) Emit(e Event) {
	select {
	case l.ch <- e:
	default:
		l.logger.Warn("Event queue is full, dropping event", slog.String("message", e.Message()))
	}
}

func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-l.ch:
			l.mu.Lock()
			handlers := make([]Handler, 0, len(l.handlers))
			for _, h := range l.handlers {
				handlers = append(handlers, h)
			}
			l.mu.Unlock()

			for _, h := range handlers {
				if err := h(ctx, e); err != nil {
					l.logger.Error("Error running event handler", slog.Any("error", err))
				}
			}
		}
	}
}
