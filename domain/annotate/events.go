package annotate

// Event is one discrete input delivered to a Session. The concrete types below
// are the only implementations.
type Event interface{ isEvent() }

// Button identifies the mouse button of a Press or Release.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// Key is a command key recognised by the session.
type Key int

const (
	KeyUndo Key = iota + 1
	KeyRedo
	KeyConfirm
	KeyCancel
)

func (k Key) String() string {
	switch k {
	case KeyUndo:
		return "undo"
	case KeyRedo:
		return "redo"
	case KeyConfirm:
		return "confirm"
	case KeyCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

type (
	// Scroll zooms by Steps notches around Pos (positive zooms in).
	Scroll struct {
		Pos   Point
		Steps int
	}
	// Press is a button-down at Pos.
	Press struct {
		Button Button
		Pos    Point
	}
	// Release is a button-up at Pos.
	Release struct {
		Button Button
		Pos    Point
	}
	// Move is a pointer motion to Pos.
	Move struct{ Pos Point }
	// KeyPress is a command key.
	KeyPress struct{ Key Key }
)

func (Scroll) isEvent()   {}
func (Press) isEvent()    {}
func (Release) isEvent()  {}
func (Move) isEvent()     {}
func (KeyPress) isEvent() {}

// Outcome tells the caller whether the session is still running.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeSave
	OutcomeDiscard
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeSave:
		return "save"
	case OutcomeDiscard:
		return "discard"
	default:
		return "unknown"
	}
}
