package annotate

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func assertClamped(t *testing.T, c *Canvas) {
	t.Helper()
	v := c.View()
	z := c.ZoomedSize()
	maxX := math.Max(0, float64(z.W-c.WindowSize().W))
	maxY := math.Max(0, float64(z.H-c.WindowSize().H))
	if v.Pan.X < -eps || v.Pan.X > maxX+eps || v.Pan.Y < -eps || v.Pan.Y > maxY+eps {
		t.Fatalf("pan %v outside [0,%v]x[0,%v] at zoom %v", v.Pan, maxX, maxY, v.Zoom)
	}
}

func TestCanvas_ClampingAfterZoomAndPan(t *testing.T) {
	c := NewCanvas(Size{W: 1280, H: 720}, Size{W: 1280, H: 720}, 0)
	anchors := []Point{{0, 0}, {1279, 719}, {640, 360}, {10, 700}, {1200, 5}}
	for i := 0; i < 20; i++ {
		c.Zoom(1, anchors[i%len(anchors)])
		assertClamped(t, c)
		c.Pan(Pt(float64(37*i-300), float64(500-29*i)))
		assertClamped(t, c)
	}
	for i := 0; i < 30; i++ {
		c.Zoom(-1, anchors[i%len(anchors)])
		assertClamped(t, c)
	}
}

func TestCanvas_SmallImagePinsPanToZero(t *testing.T) {
	c := NewCanvas(Size{W: 640, H: 480}, Size{W: 1280, H: 720}, 0)
	c.Pan(Pt(-500, -500))
	if v := c.View(); v.Pan != (Point{}) {
		t.Fatalf("expected pan pinned at origin, got %v", v.Pan)
	}
	c.Zoom(1, Pt(600, 400))
	if v := c.View(); v.Pan != (Point{}) {
		t.Fatalf("zoomed image 704x528 still fits the window, expected zero pan, got %v", v.Pan)
	}
}

func TestCanvas_ZoomFloor(t *testing.T) {
	c := NewCanvas(Size{W: 800, H: 600}, Size{W: 800, H: 600}, 0)
	for i := 0; i < 50; i++ {
		c.Zoom(-1, Pt(400, 300))
		if z := c.View().Zoom; z < MinZoom {
			t.Fatalf("zoom dropped below floor: %v", z)
		}
	}
	c.Zoom(3, Pt(400, 300))
	c.Zoom(-10, Pt(400, 300))
	if z := c.View().Zoom; z != MinZoom {
		t.Fatalf("expected zoom clamped to %v, got %v", MinZoom, z)
	}
}

func TestCanvas_ZoomCentersOnAnchor(t *testing.T) {
	c := NewCanvas(Size{W: 1000, H: 1000}, Size{W: 1000, H: 1000}, 0)
	c.Zoom(10, Pt(500, 500)) // zoom 2.0
	v := c.View()
	if !near(v.Zoom, 2.0) {
		t.Fatalf("expected zoom 2.0, got %v", v.Zoom)
	}
	// anchor (500,500) + pan (0,0) centred in a 1000px window -> offset 0.
	if !near(v.Pan.X, 0) || !near(v.Pan.Y, 0) {
		t.Fatalf("unexpected pan %v", v.Pan)
	}
	c.Zoom(1, Pt(900, 800))
	v = c.View()
	// centre = (900,800)+(0,0) - (500,500) = (400,300), within [0,1100].
	if !near(v.Pan.X, 400) || !near(v.Pan.Y, 300) {
		t.Fatalf("expected pan (400,300), got %v", v.Pan)
	}
}

func TestCanvas_PanFollowsPointer(t *testing.T) {
	c := NewCanvas(Size{W: 100, H: 100}, Size{W: 100, H: 100}, 0)
	c.Zoom(10, Pt(50, 50)) // 200x200 virtual canvas, pan (0,0)
	c.Pan(Pt(-30, -20))
	if v := c.View(); !near(v.Pan.X, 30) || !near(v.Pan.Y, 20) {
		t.Fatalf("dragging left/up should move the offset right/down, got %v", v.Pan)
	}
	c.Pan(Pt(-500, 0))
	if v := c.View(); !near(v.Pan.X, 100) {
		t.Fatalf("expected pan clamped at 100, got %v", v.Pan)
	}
}

func TestTransform_RoundTrip(t *testing.T) {
	views := []ViewState{
		IdentityView(),
		{Pan: Pt(120, 45), Zoom: 1.7},
		{Pan: Pt(3.25, 999), Zoom: 4.3},
	}
	points := []Point{{0, 0}, {1, 1}, {639.5, 479.25}, {1280, 720}, {17.125, 3}}
	for _, v := range views {
		for _, p := range points {
			got := ToOriginal(ToView(p, v), v)
			if !near(got.X, p.X) || !near(got.Y, p.Y) {
				t.Fatalf("round trip of %v under %+v gave %v", p, v, got)
			}
		}
	}
}

func TestCanvas_ResetRestoresIdentity(t *testing.T) {
	c := NewCanvas(Size{W: 400, H: 300}, Size{W: 400, H: 300}, 0.25)
	c.Zoom(4, Pt(100, 100))
	c.Pan(Pt(-40, -40))
	c.Reset()
	if v := c.View(); v != IdentityView() {
		t.Fatalf("expected identity view after reset, got %+v", v)
	}
}
