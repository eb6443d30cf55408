package agent

// Phase is the turn loop's current state. The machine is deliberately
// explicit so callers and tests can observe where a turn stopped.
type Phase int

const (
	// PhaseAwaitingModel means the next step is a model call.
	PhaseAwaitingModel Phase = iota
	// PhaseDispatchingTools means the model requested tool calls that
	// are being executed.
	PhaseDispatchingTools
	// PhaseTerminated means the turn is complete.
	PhaseTerminated
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseAwaitingModel:
		return "awaiting_model"
	case PhaseDispatchingTools:
		return "dispatching_tools"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
