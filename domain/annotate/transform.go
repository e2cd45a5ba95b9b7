package annotate

import "math"

const (
	// DefaultZoomStep is the zoom change per scroll notch.
	DefaultZoomStep = 0.1
	// MinZoom keeps the view from shrinking the image below native size.
	MinZoom = 1.0
)

// ToView maps an original-space point into window space.
func ToView(p Point, v ViewState) Point { return p.Mul(v.Zoom).Sub(v.Pan) }

// ToOriginal maps a window-space point back into original space.
func ToOriginal(p Point, v ViewState) Point { return p.Add(v.Pan).Div(v.Zoom) }

// Canvas owns the view state for one image shown through a fixed-size window.
// Every mutation leaves the pan offset clamped so the window never shows
// area past the zoomed image edge.
type Canvas struct {
	image  Size
	window Size
	step   float64
	view   ViewState
}

// NewCanvas returns a canvas at the identity view. A non-positive step falls
// back to DefaultZoomStep.
func NewCanvas(image, window Size, step float64) *Canvas {
	if step <= 0 {
		step = DefaultZoomStep
	}
	return &Canvas{image: image, window: window, step: step, view: IdentityView()}
}

func (c *Canvas) View() ViewState  { return c.view }
func (c *Canvas) WindowSize() Size { return c.window }

func (c *Canvas) ToView(p Point) Point     { return ToView(p, c.view) }
func (c *Canvas) ToOriginal(p Point) Point { return ToOriginal(p, c.view) }

// ZoomedSize is the pixel extent of the image resampled at the current zoom.
func (c *Canvas) ZoomedSize() Size { return zoomedSize(c.image, c.view.Zoom) }

func zoomedSize(s Size, zoom float64) Size {
	return Size{W: int(float64(s.W) * zoom), H: int(float64(s.H) * zoom)}
}

// Zoom changes the zoom by steps notches (negative zooms out) and re-centres
// the window on anchor. anchor is a window point; it is lifted into the
// pre-zoom virtual canvas before the new offset is computed.
func (c *Canvas) Zoom(steps int, anchor Point) {
	z := c.view.Zoom + float64(steps)*c.step
	z = math.Round(z*1e9) / 1e9
	if z < MinZoom {
		z = MinZoom
	}
	center := anchor.Add(c.view.Pan)
	half := Point{X: float64(c.window.W) / 2, Y: float64(c.window.H) / 2}
	c.view.Zoom = z
	c.view.Pan = center.Sub(half)
	c.clamp()
}

// Pan drags the view by delta window pixels: content follows the pointer.
func (c *Canvas) Pan(delta Point) {
	c.view.Pan = c.view.Pan.Sub(delta)
	c.clamp()
}

// Reset returns to the identity view.
func (c *Canvas) Reset() { c.view = IdentityView() }

// MaxPan is the largest legal offset on each axis for the current zoom.
func (c *Canvas) MaxPan() Point {
	z := c.ZoomedSize()
	return Point{
		X: math.Max(0, float64(z.W-c.window.W)),
		Y: math.Max(0, float64(z.H-c.window.H)),
	}
}

func (c *Canvas) clamp() {
	hi := c.MaxPan()
	c.view.Pan.X = clampFloat(c.view.Pan.X, 0, hi.X)
	c.view.Pan.Y = clampFloat(c.view.Pan.Y, 0, hi.Y)
}

// ClampToImage pins an original-space point inside [0,W]x[0,H].
func (c *Canvas) ClampToImage(p Point) Point {
	return Point{
		X: clampFloat(p.X, 0, float64(c.image.W)),
		Y: clampFloat(p.Y, 0, float64(c.image.H)),
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
