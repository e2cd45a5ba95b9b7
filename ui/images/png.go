package images

import (
	"bytes"
	"image"
	"image/png"
)

// encoder trades size for speed; frames are handed straight to Tk.
var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = encoder.Encode(&buf, img)
	return buf.Bytes()
}
