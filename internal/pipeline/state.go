package pipeline

// State is a step of one pipeline run.
type State int

const (
	StateValidating State = iota
	StateAcquiring
	StateVerifying
	StateTranscribing
	StateShaping
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateValidating:   "validating",
	StateAcquiring:    "acquiring",
	StateVerifying:    "verifying",
	StateTranscribing: "transcribing",
	StateShaping:      "shaping",
	StateDone:         "done",
	StateFailed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }
