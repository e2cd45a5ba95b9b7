package imageio

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/soocke/boxmark/domain/annotate"
)

// Placement maps source pixels onto the fitted canvas:
// canvas = source*Scale + Offset.
type Placement struct {
	Scale  float64
	Offset annotate.Point
}

// ToSource maps a canvas point back into the source image.
func (p Placement) ToSource(c annotate.Point) annotate.Point {
	if p.Scale <= 0 {
		return c
	}
	return c.Sub(p.Offset).Div(p.Scale)
}

// SourceBoxes maps canvas boxes into source coordinates, clamped to src.
func (p Placement) SourceBoxes(boxes []annotate.Box, src annotate.Size) []annotate.Box {
	out := make([]annotate.Box, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, annotate.Box{
			TopLeft:     clampPoint(p.ToSource(b.TopLeft), src),
			BottomRight: clampPoint(p.ToSource(b.BottomRight), src),
		})
	}
	return out
}

func clampPoint(pt annotate.Point, s annotate.Size) annotate.Point {
	return annotate.Point{
		X: math.Min(math.Max(pt.X, 0), float64(s.W)),
		Y: math.Min(math.Max(pt.Y, 0), float64(s.H)),
	}
}

// FitToCanvas scales img to fit inside a w×h white canvas preserving aspect
// ratio and centres it. Images smaller than the canvas keep their native size
// unless upscale is set.
func FitToCanvas(img image.Image, w, h int, upscale bool) (*image.NRGBA, Placement) {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	canvas := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	if sw == 0 || sh == 0 || w <= 0 || h <= 0 {
		return canvas, Placement{Scale: 1}
	}

	scale := math.Min(float64(w)/float64(sw), float64(h)/float64(sh))
	if scale > 1 && !upscale {
		scale = 1
	}
	nw := max(1, int(math.Round(float64(sw)*scale)))
	nh := max(1, int(math.Round(float64(sh)*scale)))

	var fitted image.Image = img
	if nw != sw || nh != sh {
		fitted = imaging.Resize(img, nw, nh, imaging.Lanczos)
	}
	off := image.Pt((w-nw)/2, (h-nh)/2)
	canvas = imaging.Paste(canvas, fitted, off)
	return canvas, Placement{
		Scale:  float64(nw) / float64(sw),
		Offset: annotate.Point{X: float64(off.X), Y: float64(off.Y)},
	}
}
