package lifecycle

import "time"

// State represents the lifecycle state of the service.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// WorkerTracker counts in-flight background workers.
type WorkerTracker interface {
	AddWorker()
	WorkerDone()

	// Active returns the number of workers that have not finished yet.
	Active() int

	// WaitWithTimeout waits for all workers to finish.
	// Returns ErrShutdownTimeout if the timeout expires first.
	WaitWithTimeout(timeout time.Duration) error
}

// Manager manages the lifecycle state machine and tracks workers.
type Manager interface {
	WorkerTracker

	State() State
	CanStart() bool
	CanStop() bool

	// TransitionTo attempts to transition to a new state.
	// Returns an error if the transition is not valid.
	TransitionTo(newState State, reason string) error
}
