package annotate

import (
	"image"
	"log/slog"
)

// Session is the complete editing state for one image: the canvas transform,
// the committed boxes and the interaction state. It is not safe for
// concurrent use; events are applied one at a time on the UI thread.
type Session struct {
	name   string
	image  image.Image
	canvas *Canvas
	store  *BoxStore
	logger *slog.Logger

	state      State
	dragAnchor Point // window point of the last pan step
	boxAnchor  Point // window point where the current box began
	cursor     Point
	hasCursor  bool
}

// Options tune a session. The zero value uses DefaultZoomStep.
type Options struct {
	ZoomStep float64
	Logger   *slog.Logger
	// Boxes are committed before the first event. The history register
	// starts empty, so they cannot be undone.
	Boxes []Box
}

// NewSession starts an idle session for img shown through a window of the
// given size. name is recorded as the annotation's image identifier.
func NewSession(name string, img image.Image, window Size, opts Options) *Session {
	store := NewBoxStore()
	store.boxes = append(store.boxes, opts.Boxes...)
	return &Session{
		name:   name,
		image:  img,
		canvas: NewCanvas(SizeOf(img), window, opts.ZoomStep),
		store:  store,
		logger: opts.Logger,
		state:  StateIdle,
	}
}

func (s *Session) Name() string          { return s.name }
func (s *Session) Image() image.Image    { return s.image }
func (s *Session) State() State          { return s.state }
func (s *Session) Canvas() *Canvas       { return s.canvas }
func (s *Session) Store() *BoxStore      { return s.store }
func (s *Session) View() ViewState       { return s.canvas.View() }
func (s *Session) Cursor() (Point, bool) { return s.cursor, s.hasCursor }

// Annotation returns the committed boxes in original coordinates.
func (s *Session) Annotation() Annotation {
	return Annotation{Image: s.name, Boxes: s.store.Boxes()}
}

// Handle applies ev. The returned error reports a non-fatal refusal (empty
// history, duplicate redo, closed session) and never changes state.
func (s *Session) Handle(ev Event) (Outcome, error) {
	if s.state.Terminal() {
		return s.outcome(), ErrSessionClosed
	}
	switch e := ev.(type) {
	case Scroll:
		s.track(e.Pos)
		if s.state == StateIdle && e.Steps != 0 {
			s.canvas.Zoom(e.Steps, e.Pos)
		}
	case Press:
		s.track(e.Pos)
		if s.state != StateIdle {
			break
		}
		switch e.Button {
		case ButtonMiddle:
			s.dragAnchor = e.Pos
			s.transition(StatePanning)
		case ButtonLeft:
			s.boxAnchor = e.Pos
			s.transition(StateDrawing)
		}
	case Move:
		if s.state == StatePanning {
			s.canvas.Pan(e.Pos.Sub(s.dragAnchor))
			s.dragAnchor = e.Pos
		}
		s.track(e.Pos)
	case Release:
		s.track(e.Pos)
		switch {
		case e.Button == ButtonMiddle && s.state == StatePanning:
			s.transition(StateIdle)
		case e.Button == ButtonLeft && s.state == StateDrawing:
			s.commit(e.Pos)
			s.transition(StateIdle)
		}
	case KeyPress:
		return s.key(e.Key)
	}
	return OutcomeContinue, nil
}

func (s *Session) key(k Key) (Outcome, error) {
	switch k {
	case KeyUndo:
		return OutcomeContinue, s.store.Undo()
	case KeyRedo:
		return OutcomeContinue, s.store.Redo()
	case KeyConfirm:
		s.canvas.Reset()
		s.transition(StateSaved)
	case KeyCancel:
		s.transition(StateDiscarded)
	}
	return s.outcome(), nil
}

// commit converts the drag from boxAnchor to end into original space.
func (s *Session) commit(end Point) {
	b := Box{
		TopLeft:     s.canvas.ClampToImage(s.canvas.ToOriginal(s.boxAnchor)),
		BottomRight: s.canvas.ClampToImage(s.canvas.ToOriginal(end)),
	}
	s.store.Add(b)
	if s.logger != nil {
		s.logger.Debug("box added", "image", s.name, "box", []Point{b.TopLeft, b.BottomRight}, "count", s.store.Len())
	}
}

func (s *Session) track(p Point) {
	s.cursor, s.hasCursor = p, true
}

func (s *Session) transition(next State) {
	prev := s.state
	if prev == next {
		return
	}
	s.state = next
	if s.logger != nil {
		s.logger.Debug("annotate state transition", "image", s.name, "from", prev.String(), "to", next.String())
	}
}

func (s *Session) outcome() Outcome {
	switch s.state {
	case StateSaved:
		return OutcomeSave
	case StateDiscarded:
		return OutcomeDiscard
	default:
		return OutcomeContinue
	}
}

// Scene captures what the renderer needs to draw the current frame.
func (s *Session) Scene(showStatus bool) Scene {
	sc := Scene{
		View:       s.canvas.View(),
		Boxes:      s.store.Boxes(),
		ShowStatus: showStatus,
	}
	if s.state.Terminal() {
		return sc
	}
	sc.Cursor, sc.HasCursor = s.cursor, s.hasCursor
	if s.state == StateDrawing {
		sc.Drawing = true
		sc.Anchor = s.boxAnchor
	}
	return sc
}
