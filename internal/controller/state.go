package controller

// State is the active display mode. Exactly one is active at a time.
type State int

const (
	MenuBrowsing State = iota
	ClockActive
	EnvironmentActive
)

func (s State) String() string {
	switch s {
	case MenuBrowsing:
		return "MENU"
	case ClockActive:
		return "CLOCK"
	case EnvironmentActive:
		return "ENVIRONMENT"
	default:
		return "UNKNOWN"
	}
}

// Event is what a Step did.
type Event int

const (
	EventNone Event = iota
	// EventEnter opened the selected mode.
	EventEnter
	// EventExit returned to the menu.
	EventExit
	// EventRemeasure took a fresh reading in environment mode.
	EventRemeasure
	// EventNext and EventPrevious moved the menu selection.
	EventNext
	EventPrevious
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventEnter:
		return "enter"
	case EventExit:
		return "exit"
	case EventRemeasure:
		return "remeasure"
	case EventNext:
		return "next"
	case EventPrevious:
		return "previous"
	default:
		return "unknown"
	}
}

// Transition is the outcome of one Step. From and To are equal for
// events that do not change the mode.
type Transition struct {
	Event Event
	From  State
	To    State
}

// Changed reports whether the Step acted on any input.
func (t Transition) Changed() bool {
	return t.Event != EventNone
}
