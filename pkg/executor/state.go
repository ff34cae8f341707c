package executor

// State is the lifecycle phase of a Runner.
type State int

const (
	StateIdle            State = iota // No run started yet
	StateSessionStarting              // Launching the browser
	StateRunning                      // Executing steps and checkpoints
	StateCompleting                   // Tearing the session down
	StateTerminated                   // Result available
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSessionStarting:
		return "session-starting"
	case StateRunning:
		return "running"
	case StateCompleting:
		return "completing"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
