package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// viewCacheSize bounds how many resampled viewports are kept. Each one is at
// most window-sized, so the cache never holds more than this many frames of
// pixels whatever the zoom. Pointer moves re-render the same view many times.
const viewCacheSize = 4

// Scene is the per-frame input to Renderer.Render.
type Scene struct {
	View       ViewState
	Boxes      []Box // original coordinates
	Drawing    bool
	Anchor     Point // window point where the in-progress box began
	Cursor     Point
	HasCursor  bool
	ShowStatus bool
}

// Style holds overlay colours and the darkening applied outside an
// in-progress box.
type Style struct {
	Background color.RGBA
	Box        color.RGBA
	Preview    color.RGBA
	Crosshair  color.RGBA
	Text       color.RGBA
	LineWidth  int
	DarkenBy   float64 // in [0,1)
}

// DefaultStyle mirrors the classic green-box / blue-crosshair look.
func DefaultStyle() Style {
	return Style{
		Background: color.RGBA{255, 255, 255, 255},
		Box:        color.RGBA{0, 255, 0, 255},
		Preview:    color.RGBA{0, 255, 0, 255},
		Crosshair:  color.RGBA{0, 0, 255, 255},
		Text:       color.RGBA{0, 0, 0, 255},
		LineWidth:  2,
		DarkenBy:   0.5,
	}
}

// Renderer draws window-sized frames of one image. Only the part of the
// source under the window is resampled, and the last few results are cached
// by view. Render and SetDarken may be called from different goroutines.
type Renderer struct {
	mu     sync.Mutex
	src    *image.NRGBA
	window Size
	style  Style
	views  *lru.Cache[viewKey, viewport]
}

type viewKey struct {
	zoom float64
	pan  image.Point
}

// viewport is the resampled image content visible in the window, placed at
// `at` in frame coordinates.
type viewport struct {
	img *image.NRGBA
	at  image.Point
}

// NewRenderer prepares img for display through a window of the given size.
func NewRenderer(img image.Image, window Size, style Style) *Renderer {
	if style.LineWidth < 1 {
		style.LineWidth = 1
	}
	if style.DarkenBy < 0 || style.DarkenBy >= 1 {
		style.DarkenBy = DefaultStyle().DarkenBy
	}
	cache, _ := lru.New[viewKey, viewport](viewCacheSize)
	return &Renderer{src: imaging.Clone(img), window: window, style: style, views: cache}
}

// SetDarken changes the darkening factor; values outside [0,1) are ignored.
func (r *Renderer) SetDarken(d float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d >= 0 && d < 1 {
		r.style.DarkenBy = d
	}
}

func (r *Renderer) Style() Style {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}

// Render produces an opaque frame for sc. The result comes from a pool; pass
// it to RecycleFrame once it is no longer needed.
func (r *Renderer) Render(sc Scene) *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	frame := acquireFrame(image.Rect(0, 0, r.window.W, r.window.H))
	draw.Draw(frame, frame.Bounds(), &image.Uniform{C: r.style.Background}, image.Point{}, draw.Src)

	zoom := sc.View.Zoom
	if zoom < MinZoom {
		zoom = MinZoom
	}
	off := image.Pt(int(math.Round(sc.View.Pan.X)), int(math.Round(sc.View.Pan.Y)))
	if vp := r.viewport(zoom, off); vp.img != nil {
		draw.Draw(frame, vp.img.Bounds().Add(vp.at), vp.img, image.Point{}, draw.Src)
	}

	view := ViewState{Pan: Point{X: float64(off.X), Y: float64(off.Y)}, Zoom: zoom}
	for _, b := range sc.Boxes {
		strokeRect(frame, viewRect(ToView(b.TopLeft, view), ToView(b.BottomRight, view)), r.style.Box, r.style.LineWidth)
	}

	if sc.Drawing && sc.HasCursor {
		sel := viewRect(sc.Anchor, sc.Cursor)
		darkenOutside(frame, sel, r.style.DarkenBy)
		strokeRect(frame, sel, r.style.Preview, r.style.LineWidth)
	}
	if sc.HasCursor {
		crosshair(frame, sc.Cursor.imagePoint(), r.style.Crosshair)
	}
	if sc.ShowStatus {
		r.drawStatus(frame, fmt.Sprintf("Boxes: %d", len(sc.Boxes)))
	}
	return frame
}

// viewport resamples the source pixels under the window at zoom with the
// window's top-left at off in zoomed space. The zoomed image itself is never
// materialised.
func (r *Renderer) viewport(zoom float64, off image.Point) viewport {
	key := viewKey{zoom: zoom, pan: off}
	if vp, ok := r.views.Get(key); ok {
		return vp
	}
	zs := zoomedSize(SizeOf(r.src), zoom)
	visible := image.Rect(off.X, off.Y, off.X+r.window.W, off.Y+r.window.H).Intersect(image.Rect(0, 0, zs.W, zs.H))
	if visible.Empty() {
		return viewport{}
	}
	if zoom == MinZoom {
		vp := viewport{img: imaging.Crop(r.src, visible), at: visible.Min.Sub(off)}
		r.views.Add(key, vp)
		return vp
	}

	// Source pixels touching the visible area, rounded outwards.
	srcRect := image.Rect(
		int(math.Floor(float64(visible.Min.X)/zoom)),
		int(math.Floor(float64(visible.Min.Y)/zoom)),
		int(math.Ceil(float64(visible.Max.X)/zoom)),
		int(math.Ceil(float64(visible.Max.Y)/zoom)),
	).Intersect(r.src.Bounds())
	if srcRect.Empty() {
		return viewport{}
	}
	origin := image.Pt(int(math.Round(float64(srcRect.Min.X)*zoom)), int(math.Round(float64(srcRect.Min.Y)*zoom)))
	w := int(math.Ceil(float64(srcRect.Max.X)*zoom)) - origin.X
	h := int(math.Ceil(float64(srcRect.Max.Y)*zoom)) - origin.Y
	scaled := imaging.Resize(imaging.Crop(r.src, srcRect), w, h, imaging.Linear)

	local := visible.Sub(origin).Intersect(scaled.Bounds())
	if local.Empty() {
		return viewport{}
	}
	vp := viewport{img: imaging.Crop(scaled, local), at: local.Min.Add(origin).Sub(off)}
	r.views.Add(key, vp)
	return vp
}

func (r *Renderer) drawStatus(dst draw.Image, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(r.style.Text),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 30),
	}
	d.DrawString(text)
}

// viewRect normalises two corners into a rectangle that includes both
// endpoints.
func viewRect(a, b Point) image.Rectangle {
	p, q := a.imagePoint(), b.imagePoint()
	r := image.Rect(p.X, p.Y, q.X, q.Y)
	r.Max = r.Max.Add(image.Pt(1, 1))
	return r
}

// strokeRect outlines r with bands of the given width drawn inward.
func strokeRect(dst draw.Image, r image.Rectangle, c color.RGBA, width int) {
	if r.Empty() {
		return
	}
	src := &image.Uniform{C: c}
	w := width
	if w > r.Dx() {
		w = r.Dx()
	}
	h := width
	if h > r.Dy() {
		h = r.Dy()
	}
	bands := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+h),
		image.Rect(r.Min.X, r.Max.Y-h, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, band := range bands {
		draw.Draw(dst, band, src, image.Point{}, draw.Src)
	}
}

// darkenOutside scales every pixel outside keep by (1-by).
func darkenOutside(img *image.RGBA, keep image.Rectangle, by float64) {
	if by <= 0 {
		return
	}
	k := 1 - by
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		inRow := y >= keep.Min.Y && y < keep.Max.Y
		for x := b.Min.X; x < b.Max.X; x++ {
			if inRow && x >= keep.Min.X && x < keep.Max.X {
				continue
			}
			i := (x - b.Min.X) * 4
			row[i] = uint8(float64(row[i]) * k)
			row[i+1] = uint8(float64(row[i+1]) * k)
			row[i+2] = uint8(float64(row[i+2]) * k)
		}
	}
}

// crosshair draws one-pixel lines through p spanning the whole frame.
func crosshair(dst draw.Image, p image.Point, c color.RGBA) {
	b := dst.Bounds()
	src := &image.Uniform{C: c}
	draw.Draw(dst, image.Rect(b.Min.X, p.Y, b.Max.X, p.Y+1), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(p.X, b.Min.Y, p.X+1, b.Max.Y), src, image.Point{}, draw.Src)
}
