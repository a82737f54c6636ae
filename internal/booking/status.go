package booking

// Booking status vocabulary. The booking row always carries the current code;
// every change appends one row to the service's history table.
const (
	StatusConfirmed        = "CNF" // created, awaiting assignment
	StatusAssigned         = "A"
	StatusEnroute          = "ER"
	StatusReachedLocation  = "RL"
	StatusChargingStarted  = "CS"
	StatusChargingComplete = "CC" // terminal, fulfilled
	StatusPickedUp         = "PU" // terminal, fulfilled
	StatusReturning        = "RO" // vehicle collected, return in progress
	StatusCancelled        = "C"  // terminal
	// StatusPaymentFailed (PNR) is a terminal failure state reached outside
	// the normal flow. It is distinct from C: failed bookings are excluded
	// from active listings and surfaced by their own view, never merged with
	// cancellations.
	StatusPaymentFailed = "PNR"
)

// TerminalStatuses lists the states that accept no further transition.
var TerminalStatuses = []string{StatusCancelled, StatusChargingComplete, StatusPickedUp, StatusPaymentFailed}

// Terminal reports whether a status accepts no further transition.
func Terminal(status string) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// nextStates is the allowed progress graph. Cancel is handled separately and
// is allowed from any non-terminal state.
var nextStates = map[string][]string{
	StatusConfirmed:       {StatusAssigned},
	StatusAssigned:        {StatusEnroute},
	StatusEnroute:         {StatusReachedLocation},
	StatusReachedLocation: {StatusChargingStarted, StatusReturning, StatusPickedUp},
	StatusChargingStarted: {StatusChargingComplete},
	StatusReturning:       {StatusPickedUp},
}

// canProgress reports whether from -> to is an allowed forward transition.
func canProgress(from, to string) bool {
	for _, s := range nextStates[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StatusLabel maps a code to the label shown in admin listings.
func StatusLabel(status string) string {
	switch status {
	case StatusConfirmed:
		return "Confirmed"
	case StatusAssigned:
		return "Assigned"
	case StatusEnroute:
		return "Enroute"
	case StatusReachedLocation:
		return "Reached Location"
	case StatusChargingStarted:
		return "Charging Started"
	case StatusChargingComplete:
		return "Charging Completed"
	case StatusPickedUp:
		return "Picked Up"
	case StatusReturning:
		return "Return In Progress"
	case StatusCancelled:
		return "Cancelled"
	case StatusPaymentFailed:
		return "Payment Not Received"
	}
	return status
}
