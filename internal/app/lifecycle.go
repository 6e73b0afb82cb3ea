package app

import "sync/atomic"

type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Lifecycle tracks startup progress. It only moves forward:
// Uninitialized -> Loading -> Ready.
type Lifecycle struct {
	state  atomic.Int32
	loaded atomic.Int64
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// BeginLoading reports false if loading already started.
func (l *Lifecycle) BeginLoading() bool {
	return l.state.CompareAndSwap(int32(StateUninitialized), int32(StateLoading))
}

func (l *Lifecycle) SetLoaded(n int) {
	l.loaded.Store(int64(n))
}

// MarkReady moves to Ready from any earlier state.
func (l *Lifecycle) MarkReady() {
	l.state.Store(int32(StateReady))
}

func (l *Lifecycle) Ready() bool {
	return l.State() == StateReady
}

func (l *Lifecycle) Loaded() int {
	return int(l.loaded.Load())
}
