// Package imageio loads source images, fits them onto the annotation canvas
// and persists annotated frames with their JSON box files.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Load decodes the image at path, applying EXIF orientation when present.
// WebP files that the registered decoder rejects are retried with libwebp.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if !strings.EqualFold(Ext(path), "webp") {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return nil, fmt.Errorf("load %s: %w", path, rerr)
	}
	img, werr := webp.Decode(bytes.NewReader(data))
	if werr != nil {
		return nil, fmt.Errorf("load %s: %w", path, werr)
	}
	return img, nil
}
