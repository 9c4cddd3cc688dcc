package service

// State is a step of one request's lifecycle.
type State int

const (
	Received State = iota
	Validated
	Scaled
	Classified
	Persisted
	Discarded
	Rejected
	InputParseFailed
)

var stateNames = map[State]string{
	Received:         "received",
	Validated:        "validated",
	Scaled:           "scaled",
	Classified:       "classified",
	Persisted:        "persisted",
	Discarded:        "discarded",
	Rejected:         "rejected",
	InputParseFailed: "input_parse_error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case Persisted, Discarded, Rejected, InputParseFailed:
		return true
	}
	return false
}

// transitions lists the legal next states.
var transitions = map[State][]State{
	Received:   {Validated, Rejected, InputParseFailed},
	Validated:  {Scaled},
	Scaled:     {Classified},
	Classified: {Persisted, Discarded},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
