package booking

import (
	"errors"
	"fmt"
)

// ErrValidation reports missing or malformed required fields. Nothing was
// written.
var ErrValidation = errors.New("validation failed")

// ErrBookingNotFound covers booking absent, already terminal, and wrong
// requester alike. The caller never learns which; the distinguishing cause is
// logged internally.
var ErrBookingNotFound = errors.New("booking not found")

// ErrAgentNotFound reports an unknown agent id on assignment.
var ErrAgentNotFound = errors.New("agent not found")

// ErrStaleBooking reports that the booking row changed between read and write.
// The operation made no changes and is safe to retry.
var ErrStaleBooking = errors.New("booking was modified concurrently, retry")

// AlreadyAssignedError rejects re-assigning a booking to the agent it is
// already assigned to, naming that agent so the operator sees the mistake.
type AlreadyAssignedError struct {
	AgentID string
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("booking is already assigned to agent %s", e.AgentID)
}

// InvalidTransitionError rejects a status change the state machine does not
// allow, including any transition out of a terminal state.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}
