package workflow

// State is a lifecycle state of a payment record's registration or of a
// worker expense request
type State string

const (
	// Shared by both workflows
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"

	// Expense request only
	StatePaid          State = "paid"
	StateReceived      State = "received"
	StatePendingExtra  State = "pending_extra"
	StatePendingReturn State = "pending_return"
)

var validStates = map[State]bool{
	StatePending:       true,
	StateApproved:      true,
	StateRejected:      true,
	StatePaid:          true,
	StateReceived:      true,
	StatePendingExtra:  true,
	StatePendingReturn: true,
}

// Terminal states have no outgoing transitions. pending_extra and
// pending_return are dead ends awaiting manual resolution, so they are
// terminal as far as the machine is concerned.
var terminalStates = map[State]bool{
	StateRejected:      true,
	StateReceived:      true,
	StatePendingExtra:  true,
	StatePendingReturn: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a known workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
