package view

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/soocke/boxmark/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasView shows the rendered annotation frame and forwards pointer input.
type CanvasView interface {
	ShowFrame(png []byte)
	Reset()
}

// canvasView tracks the current photo so the old image can be disposed
// before it is replaced, preventing accumulation of off-screen image data.
type canvasView struct {
	label     *LabelWidget
	w, h      int
	prevPhoto *Img // last Tk photo image instance
}

// NewCanvasView creates the canvas label sized w×h at row of the root grid,
// spanning span columns, and routes its pointer events to in.
func NewCanvasView(row, span, w, h int, in Input) CanvasView {
	photo := NewPhoto(Data(placeholderPNG(w, h)))
	label := Label(Image(photo), Borderwidth(0))
	Grid(label, Row(row), Column(0), Columnspan(span), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	if in != nil {
		bindPointer(label, in)
	}
	return &canvasView{label: label, w: w, h: h, prevPhoto: photo}
}

func (v *canvasView) ShowFrame(png []byte) {
	if v.label == nil || len(png) == 0 {
		return
	}
	guard(func() {
		if v.prevPhoto != nil {
			v.prevPhoto.Delete()
		}
		v.prevPhoto = NewPhoto(Data(png))
		v.label.Configure(Image(v.prevPhoto))
	})
}

// Reset shows a blank white frame, used between images.
func (v *canvasView) Reset() { v.ShowFrame(placeholderPNG(v.w, v.h)) }

func placeholderPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, max(1, w), max(1, h)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return images.EncodePNG(img)
}

// guard runs a widget update, ignoring the panic Tk raises once the widget
// has been destroyed during shutdown.
func guard(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
