package view

import (
	"github.com/soocke/boxmark/domain/annotate"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Input receives pointer and key input in canvas coordinates.
type Input interface {
	Press(b annotate.Button, x, y int)
	Release(b annotate.Button, x, y int)
	Move(x, y int)
	Scroll(steps, x, y int)
	ZoomAtCursor(steps int)
	Key(k annotate.Key)
}

// wheelNotch is the delta Tk reports for one wheel detent on Windows and X11.
const wheelNotch = 120

// wheelSteps converts a MouseWheel delta into zoom notches. Small deltas from
// precision touchpads still count as one notch.
func wheelSteps(delta int) int {
	switch {
	case delta == 0:
		return 0
	case delta > 0:
		return max(1, delta/wheelNotch)
	default:
		return min(-1, delta/wheelNotch)
	}
}

// bindPointer routes mouse input on w to in. Button 2 is the middle button.
func bindPointer(w *LabelWidget, in Input) {
	Bind(w, "<ButtonPress-1>", Command(func(e *Event) { in.Press(annotate.ButtonLeft, e.X, e.Y) }))
	Bind(w, "<ButtonRelease-1>", Command(func(e *Event) { in.Release(annotate.ButtonLeft, e.X, e.Y) }))
	Bind(w, "<ButtonPress-2>", Command(func(e *Event) { in.Press(annotate.ButtonMiddle, e.X, e.Y) }))
	Bind(w, "<ButtonRelease-2>", Command(func(e *Event) { in.Release(annotate.ButtonMiddle, e.X, e.Y) }))
	Bind(w, "<Motion>", Command(func(e *Event) { in.Move(e.X, e.Y) }))
	Bind(w, "<MouseWheel>", Command(func(e *Event) {
		if n := wheelSteps(e.Delta); n != 0 {
			in.Scroll(n, e.X, e.Y)
		}
	}))
}

// bindKeys installs the application-wide shortcuts.
func bindKeys(in Input) {
	Bind(App, "<Control-z>", Command(func() { in.Key(annotate.KeyUndo) }))
	Bind(App, "<Control-y>", Command(func() { in.Key(annotate.KeyRedo) }))
	Bind(App, "<KeyPress-q>", Command(func() { in.Key(annotate.KeyConfirm) }))
	Bind(App, "<Return>", Command(func() { in.Key(annotate.KeyConfirm) }))
	Bind(App, "<Escape>", Command(func() { in.Key(annotate.KeyCancel) }))
	Bind(App, "<plus>", Command(func() { in.ZoomAtCursor(1) }))
	Bind(App, "<equal>", Command(func() { in.ZoomAtCursor(1) }))
	Bind(App, "<minus>", Command(func() { in.ZoomAtCursor(-1) }))
}
