package conversation

import (
	"sync"
)

// Observer is notified after a Turn has been appended to a Log. The appended Turn
// is always the new last element of the Log.
type Observer interface {
	TurnAppended(turn Turn, index int)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(turn Turn, index int)

func (f ObserverFunc) TurnAppended(turn Turn, index int) {
	f(turn, index)
}

// Log is an ordered, append-only sequence of Turns.
//
// A Log is never empty: NewLog seeds it with the assistant greeting. Turns are
// never reordered, modified or removed, and the Log is unbounded.
//
// Log is safe for concurrent use. Observers are called outside of the lock, in
// append order.
type Log struct {
	mu        sync.RWMutex
	turns     []Turn
	observers []Observer

	// serializes notifications so observers see appends in order
	notifyMu sync.Mutex
}

type LogOption func(*Log)

func WithObserver(o Observer) LogOption {
	return func(l *Log) {
		l.observers = append(l.observers, o)
	}
}

// WithSeed replaces the default greeting turn. Mostly useful in tests.
func WithSeed(seed Turn) LogOption {
	return func(l *Log) {
		l.turns = []Turn{seed}
	}
}

func NewLog(options ...LogOption) *Log {
	ret := &Log{
		turns: []Turn{NewAssistantTurn(WelcomeMessage)},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// AddObserver registers o for all future appends.
func (l *Log) AddObserver(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Append adds turn at the end of the Log and notifies observers.
func (l *Log) Append(turn Turn) {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	l.turns = append(l.turns, turn)
	idx := len(l.turns) - 1
	observers := make([]Observer, len(l.observers))
	copy(observers, l.observers)
	l.mu.Unlock()

	for _, o := range observers {
		o.TurnAppended(turn, idx)
	}
}

// Snapshot returns a copy of all turns appended so far, in order.
func (l *Log) Snapshot() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ret := make([]Turn, len(l.turns))
	copy(ret, l.turns)
	return ret
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

func (l *Log) Last() Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.turns[len(l.turns)-1]
}
