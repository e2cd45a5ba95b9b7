package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/boxmark/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

var outputFormats = []string{"png", "jpg", "webp"}

// SettingsPanel encapsulates the settings form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type SettingsPanel interface {
	Build(parent *FrameWidget, startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	ApplyChanges()                                        // parses widget text into underlying config and persists
}

type settingsPanel struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	onApply func(config.Config)
	format  *TComboboxWidget
	widgets map[string]*TextWidget // keyed by internal field id
}

// NewSettingsPanel creates the view bound to cfg. onApply receives the
// validated config after each successful apply.
func NewSettingsPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApply func(config.Config)) SettingsPanel {
	return &settingsPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onApply: onApply, widgets: make(map[string]*TextWidget)}
}

func (v *settingsPanel) Build(parent *FrameWidget, startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(10))
		Grid(w, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("darkenBy", "Darken (0-0.99)", fmt.Sprintf("%.2f", c.DarkenBy))
	makeRow("zoomStep", "Zoom Step", fmt.Sprintf("%.2f", c.ZoomStep))
	makeRow("showBoxCount", "Show Box Count (true/false)", fmt.Sprintf("%t", c.ShowBoxCount))
	makeRow("jpegQuality", "JPEG Quality", fmt.Sprintf("%d", c.JPEGQuality))
	makeRow("webpLossless", "WebP Lossless (true/false)", fmt.Sprintf("%t", c.WebPLossless))
	makeRow("exportSourceBoxes", "Export Source Boxes (true/false)", fmt.Sprintf("%t", c.ExportSourceBoxes))
	makeRow("darkMode", "Dark Mode (true/false)", fmt.Sprintf("%t", c.DarkMode))

	lbl := Label(Txt("Output Format"), Anchor("w"))
	Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	v.format = TCombobox(Values(outputFormats), Width(8), State("readonly"))
	Grid(v.format, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
	v.format.Current(formatIndex(c.OutputFormat))
	row++

	applyBtn := Button(Txt("Apply Settings"), Command(func() { v.ApplyChanges() }))
	Grid(applyBtn, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *settingsPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.Join(parts, "")
}

func (v *settingsPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignFloat := func(id string, dst *float64) {
		if f, ok := parseFloatField(v.text(v.widgets[id])); ok {
			*dst = f
		}
	}
	assignInt := func(id string, dst *int) {
		if i, ok := parseIntField(v.text(v.widgets[id])); ok {
			*dst = i
		}
	}
	assignBool := func(id string, dst *bool) {
		if b, ok := parseBoolLoose(v.text(v.widgets[id])); ok {
			*dst = b
		}
	}
	assignFloat("darkenBy", &cfg.DarkenBy)
	assignFloat("zoomStep", &cfg.ZoomStep)
	assignBool("showBoxCount", &cfg.ShowBoxCount)
	assignInt("jpegQuality", &cfg.JPEGQuality)
	assignBool("webpLossless", &cfg.WebPLossless)
	assignBool("exportSourceBoxes", &cfg.ExportSourceBoxes)
	assignBool("darkMode", &cfg.DarkMode)
	if v.format != nil {
		if idx, err := strconv.Atoi(v.format.Current(nil)); err == nil && idx >= 0 && idx < len(outputFormats) {
			cfg.OutputFormat = outputFormats[idx]
		}
	}
	if verr := cfg.Validate(); verr != nil {
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApply != nil {
		v.onApply(cfg)
	}
}

func formatIndex(f string) int {
	for i, s := range outputFormats {
		if s == f {
			return i
		}
	}
	return 0
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
