// Package capture grabs the screen so a fresh screenshot can be annotated
// in place of a file from the input directory.
package capture

import (
	"errors"
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vova616/screenshot"
)

// ErrEmptyRect is returned when a capture rectangle has no area.
var ErrEmptyRect = errors.New("capture: empty rectangle")

// Grab returns a capture of the primary screen.
func Grab() (*image.RGBA, error) {
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return img, nil
}

// ScreenBounds returns the primary screen rectangle.
func ScreenBounds() (image.Rectangle, error) {
	r, err := screenshot.ScreenRect()
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("capture: screen bounds: %w", err)
	}
	return r, nil
}

// GrabRect captures r clipped to the screen bounds.
func GrabRect(r image.Rectangle) (*image.RGBA, error) {
	screen, err := ScreenBounds()
	if err != nil {
		return nil, err
	}
	r = r.Canon().Intersect(screen)
	if r.Empty() {
		return nil, ErrEmptyRect
	}
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return nil, fmt.Errorf("capture %v: %w", r, err)
	}
	return img, nil
}

// Name is the file name used for a capture taken at t.
func Name(t time.Time) string {
	return "screenshot-" + t.Format("20060102-150405") + ".png"
}

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y".
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// ParseGeometry converts a Tk geometry string into the screen rectangle it covers.
func ParseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
