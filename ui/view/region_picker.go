package view

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/soocke/boxmark/domain/capture"
	"github.com/soocke/boxmark/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// RegionPicker opens a translucent window the user moves and resizes over the
// part of the screen to capture.
type RegionPicker interface {
	OpenOrFocus()
}

type regionPicker struct {
	logger *slog.Logger
	onPick func(image.Rectangle)
	win    *ToplevelWidget
}

// NewRegionPicker creates a picker that calls onPick with the confirmed
// screen rectangle after its window is closed.
func NewRegionPicker(logger *slog.Logger, onPick func(image.Rectangle)) RegionPicker {
	return &regionPicker{logger: logger, onPick: onPick}
}

func (v *regionPicker) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	pal := theme.CurrentPalette()
	win := App.Toplevel(Borderwidth(2), Background(pal.Primary))
	win.WmTitle("Capture Region")
	v.win = win
	screenW, screenH := screenSize()
	initW, initH := max(1, screenW*2/3), max(1, screenH*5/9)
	x, y := (screenW-initW)/2, (screenH-initH)/2
	WmGeometry(win.Window, fmt.Sprintf("%dx%d+%d+%d", initW, initH, x, y))
	WmAttributes(win.Window, "-topmost", 1)
	WmAttributes(win.Window, "-alpha", 0.35)
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(1))
	center := win.Frame(Background(pal.Region))
	Grid(center, Row(0), Column(0), Sticky("nsew"))
	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Sticky("we"))
	confirm := win.Button(Txt("Capture [Enter]"), Command(v.confirm))
	Grid(confirm, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.destroy))
	Grid(cancel, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.destroy))
}

func (v *regionPicker) confirm() {
	if v.win == nil {
		return
	}
	geom := WmGeometry(v.win.Window)
	rect, ok := capture.ParseGeometry(geom)
	v.destroy()
	if !ok {
		if v.logger != nil {
			v.logger.Warn("capture region geometry not understood", "geometry", geom)
		}
		return
	}
	if v.onPick != nil {
		v.onPick(rect)
	}
}

func (v *regionPicker) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

// screenSize returns the primary screen size, falling back to 1920x1080 when
// the platform cannot report it.
func screenSize() (int, int) {
	r, err := capture.ScreenBounds()
	if err != nil || r.Empty() {
		return 1920, 1080
	}
	return r.Dx(), r.Dy()
}
