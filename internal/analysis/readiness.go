package analysis

import (
	"errors"
	"sync"
)

// ErrNotReady is returned when the service is used before Start succeeded.
var ErrNotReady = errors.New("analysis service not ready")

// State is the lifecycle state of the service.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Readiness tracks whether the engine has been built.
type Readiness struct {
	mu    sync.RWMutex
	state State
	err   error
}

// State returns the current state and, when Failed, the cause.
func (r *Readiness) State() (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, r.err
}

// begin moves to Loading. It reports false if loading already started.
func (r *Readiness) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Loading || r.state == Ready {
		return false
	}
	r.state = Loading
	r.err = nil
	return true
}

func (r *Readiness) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = Failed
		r.err = err
		return
	}
	r.state = Ready
}

func (r *Readiness) ready() bool {
	s, _ := r.State()
	return s == Ready
}
