package view

import (
	"image"
	"log/slog"

	"github.com/soocke/boxmark/assets"
	"github.com/soocke/boxmark/config"
	"github.com/soocke/boxmark/domain/annotate"
	"github.com/soocke/boxmark/ui/model"
	"github.com/soocke/boxmark/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Progress ProgressStats
	Settings SettingsPanel
	Canvas   CanvasView
	Picker   RegionPicker

	// Widgets
	StateLabel *TLabelWidget
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStateLabel(text string)
	SetProgress(p model.Progress)
	ShowFrame(png []byte)
	Reset()
}

// Handlers carries the callbacks the root view invokes on user actions.
type Handlers struct {
	Input         Input
	OnApply       func(config.Config)
	OnCaptureRect func(image.Rectangle)
	OnExit        func()
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. The canvas is cfg.WindowWidth×cfg.WindowHeight.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Row 0: progress, state label, buttons
	statsFrame := Frame()
	Grid(statsFrame, Row(0), Column(0), Sticky("w"), Padx("0.3m"), Pady("0.3m"))
	rv.Progress = NewProgressStats(statsFrame, 0, 0)
	rv.StateLabel = TLabel(Txt("State: <none>"), Style(theme.StyleStateLabel), Anchor("w"))
	Grid(rv.StateLabel, Row(0), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	col := 0
	addBtn := func(label, style string, fn func()) {
		var b Widget
		if style != "" {
			b = TButton(Txt(label), Style(style), Command(fn))
		} else {
			b = Button(Txt(label), Command(fn))
		}
		Grid(b, In(btnFrame), Row(0), Column(col), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		col++
	}
	in := h.Input
	if in != nil {
		addBtn("Save [q]", theme.StylePrimaryButton, func() { in.Key(annotate.KeyConfirm) })
		addBtn("Discard [Esc]", theme.StyleDangerButton, func() { in.Key(annotate.KeyCancel) })
		addBtn("Undo", "", func() { in.Key(annotate.KeyUndo) })
		addBtn("Redo", "", func() { in.Key(annotate.KeyRedo) })
		addBtn("Zoom +", "", func() { in.ZoomAtCursor(1) })
		addBtn("Zoom -", "", func() { in.ZoomAtCursor(-1) })
		bindKeys(in)
	}
	if h.OnCaptureRect != nil {
		rv.Picker = NewRegionPicker(rv.logger, h.OnCaptureRect)
		addBtn("Capture Region", "", rv.Picker.OpenOrFocus)
	}
	if h.OnExit != nil {
		addBtn("Exit", "", h.OnExit)
	}

	// Row 1: canvas and settings
	rv.Canvas = NewCanvasView(1, 2, rv.cfg.WindowWidth, rv.cfg.WindowHeight, in)
	side := Frame()
	Grid(side, Row(1), Column(2), Sticky("n"), Padx("0.3m"), Pady("0.3m"))
	rv.Settings = NewSettingsPanel(rv.cfg, rv.cfgPath, rv.logger, h.OnApply)
	rv.Settings.Build(side, 0)

	// Row 2: key help
	help := Label(Txt(assets.KeysHelp()), Anchor("w"), Justify("left"))
	Grid(help, Row(2), Column(0), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		guard(func() { rv.StateLabel.Configure(Txt(text)) })
	}
}

// SetProgress proxies to the progress stats view.
func (rv *RootView) SetProgress(p model.Progress) {
	if rv != nil && rv.Progress != nil {
		rv.Progress.SetProgress(p)
	}
}

// ShowFrame proxies to the canvas view.
func (rv *RootView) ShowFrame(png []byte) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.ShowFrame(png)
	}
}

// Reset clears the canvas.
func (rv *RootView) Reset() {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.Reset()
	}
}
