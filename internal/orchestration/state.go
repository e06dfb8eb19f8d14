package orchestration

// State is a phase of a single reduction call.
//
//	Idle → Validating → Partitioning → Dispatching → AwaitingAll → Reducing → Done
//	Validating → Failed
//	Partitioning → Failed   (policy error, coverage violation, canceled before dispatch)
//	AwaitingAll → Failed    (a worker reported a fault)
type State int

const (
	StateIdle State = iota
	StateValidating
	StatePartitioning
	StateDispatching
	StateAwaitingAll
	StateReducing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateValidating:   "validating",
	StatePartitioning: "partitioning",
	StateDispatching:  "dispatching",
	StateAwaitingAll:  "awaiting-all",
	StateReducing:     "reducing",
	StateDone:         "done",
	StateFailed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// StateObserver is notified of every state a reduction enters, in order,
// on the goroutine that called Reduce.
type StateObserver func(State)
