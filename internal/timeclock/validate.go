package timeclock

// ActionDecision is the outcome of validating a proposed clock action.
// Invalid is a normal control result, not an error: callers surface Reason to
// the barber and skip the write.
type ActionDecision struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Validation reasons surfaced to the time-clock UI.
const (
	ReasonAlreadyClockedIn  = "Already clocked in"
	ReasonNotClockedIn      = "Not clocked in"
	ReasonAlreadyOnBreak    = "Already on break"
	ReasonNotOnBreak        = "Not on break"
	ReasonEndBreakFirst     = "Must end break before clocking out"
	ReasonInvalidActionType = "invalid action type"
)

var allowed = ActionDecision{Valid: true}

func denied(reason string) ActionDecision {
	return ActionDecision{Valid: false, Reason: reason}
}

// ValidateClockAction decides whether action is legal given the barber's
// same-day entry history. Only the kind of the most recent entry matters:
// the check is cheap enough to gate every button press without reconstructing
// the whole shift, and a client that only submits approved actions can never
// produce a sequence ParseShiftsForDay mishandles.
func ValidateClockAction(history []TimeEntry, action EntryKind) ActionDecision {
	if !action.Known() {
		return denied(ReasonInvalidActionType)
	}

	var last EntryKind
	if len(history) > 0 {
		last = history[len(history)-1].Kind
	}

	switch action {
	case KindClockIn:
		if last == "" || last == KindClockOut {
			return allowed
		}
		return denied(ReasonAlreadyClockedIn)
	case KindClockOut:
		switch last {
		case KindClockIn, KindBreakEnd:
			return allowed
		case KindBreakStart:
			return denied(ReasonEndBreakFirst)
		default:
			return denied(ReasonNotClockedIn)
		}
	case KindBreakStart:
		switch last {
		case KindClockIn, KindBreakEnd:
			return allowed
		case KindBreakStart:
			return denied(ReasonAlreadyOnBreak)
		default:
			return denied(ReasonNotClockedIn)
		}
	case KindBreakEnd:
		if last == KindBreakStart {
			return allowed
		}
		return denied(ReasonNotOnBreak)
	}
	return denied(ReasonInvalidActionType)
}
