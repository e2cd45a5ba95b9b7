package annotate

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
)

var (
	// ErrNoHistory is returned by Undo/Redo when the history register holds
	// nothing that can be applied.
	ErrNoHistory = errors.New("no box in history")
	// ErrAlreadyPresent is returned by Redo when the held box is still committed.
	ErrAlreadyPresent = errors.New("box already exists")
	// ErrSessionClosed is returned when an event arrives after confirm/cancel.
	ErrSessionClosed = errors.New("session closed")
)

// Point is a sub-pixel position in either original or view space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point   { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point   { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Div(k float64) Point { return Point{p.X / k, p.Y / k} }
func (p Point) String() string      { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// imagePoint truncates toward zero like the pixel grid does.
func (p Point) imagePoint() image.Point { return image.Pt(int(p.X), int(p.Y)) }

// MarshalJSON writes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) { return json.Marshal([2]float64{p.X, p.Y}) }

// UnmarshalJSON accepts the [x, y] pair written by MarshalJSON.
func (p *Point) UnmarshalJSON(b []byte) error {
	var v [2]float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.X, p.Y = v[0], v[1]
	return nil
}

// Box is the pair of press/release points of a drawn rectangle in original
// coordinates. The corners are not normalised: TopLeft is wherever the drag began.
type Box struct {
	TopLeft     Point
	BottomRight Point
}

// MarshalJSON writes the box as [[x1,y1],[x2,y2]].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Point{b.TopLeft, b.BottomRight})
}

func (b *Box) UnmarshalJSON(data []byte) error {
	var v [2]Point
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b.TopLeft, b.BottomRight = v[0], v[1]
	return nil
}

// Annotation is the persisted result of a confirmed session.
type Annotation struct {
	Image string `json:"image"`
	Boxes []Box  `json:"boxes"`
}

// Size is a pixel extent.
type Size struct {
	W, H int
}

// SizeOf returns the extent of img's bounds.
func SizeOf(img image.Image) Size {
	b := img.Bounds()
	return Size{W: b.Dx(), H: b.Dy()}
}

// ViewState is the pan offset (in zoomed-virtual pixels) and zoom factor.
// The zero value is not valid; use IdentityView.
type ViewState struct {
	Pan  Point
	Zoom float64
}

// IdentityView is the unzoomed, unpanned view.
func IdentityView() ViewState { return ViewState{Zoom: 1.0} }

// State enumerates the interaction states of a session.
type State int

const (
	StateIdle State = iota
	StatePanning
	StateDrawing
	StateSaved
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePanning:
		return "panning"
	case StateDrawing:
		return "drawing"
	case StateSaved:
		return "saved"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events are accepted.
func (s State) Terminal() bool { return s == StateSaved || s == StateDiscarded }
