package annotate

import (
	"image"
	"sync"
)

// Every frame returned by Render is owned by the caller until it is passed to
// RecycleFrame, after which Render may hand the same pixels out again. A
// frame that is never recycled is simply collected.
var framePool sync.Pool // *image.RGBA

// acquireFrame returns a frame covering rect with undefined contents. Render
// overwrites every pixel before returning it.
func acquireFrame(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	return img
}

// RecycleFrame hands a frame from Render back for reuse. Call it once the
// frame has been encoded or written; the caller must drop every reference to
// it first. Frames of another size are fine, they are resized on reuse.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}
