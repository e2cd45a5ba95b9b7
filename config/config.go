package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDir = "boxmark"

// Config holds runtime configuration for the annotator.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Display
	WindowWidth  int     `json:"window_width"`
	WindowHeight int     `json:"window_height"`
	DarkenBy     float64 `json:"darken_by"`
	ZoomStep     float64 `json:"zoom_step"`
	ShowBoxCount bool    `json:"show_box_count"`
	UpscaleOnFit bool    `json:"upscale_on_fit"`
	DarkMode     bool    `json:"dark_mode"`

	// Input / output
	InputDir          string `json:"input_dir"`
	OutputDir         string `json:"output_dir"`
	OutputFormat      string `json:"output_format"` // png | jpg | webp
	JPEGQuality       int    `json:"jpeg_quality"`
	WebPLossless      bool   `json:"webp_lossless"`
	ExportSourceBoxes bool   `json:"export_source_boxes"`

	// Catalog of saved annotations
	CatalogPath   string `json:"catalog_path"`
	SkipAnnotated bool   `json:"skip_annotated"`
}

// DefaultPath is the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.json")
}

// DefaultCatalogPath is the sqlite catalog location under the XDG data home.
func DefaultCatalogPath() string {
	return filepath.Join(xdg.DataHome, appDir, "catalog.db")
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:             false,
		WindowWidth:       1280,
		WindowHeight:      720,
		DarkenBy:          0.5,
		ZoomStep:          0.1,
		ShowBoxCount:      true,
		UpscaleOnFit:      false,
		DarkMode:          false,
		InputDir:          filepath.Join("images", "pre_annotated_images"),
		OutputDir:         filepath.Join("images", "annotated_images"),
		OutputFormat:      "png",
		JPEGQuality:       95,
		WebPLossless:      false,
		ExportSourceBoxes: false,
		CatalogPath:       DefaultCatalogPath(),
		SkipAnnotated:     true,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.WindowWidth < 64 {
		c.WindowWidth = 1280
	}
	if c.WindowHeight < 64 {
		c.WindowHeight = 720
	}
	if c.DarkenBy < 0 || c.DarkenBy >= 1 {
		c.DarkenBy = 0.5
	}
	if c.ZoomStep <= 0 || c.ZoomStep > 2 {
		c.ZoomStep = 0.1
	}
	switch c.OutputFormat {
	case "png", "jpg", "webp":
	case "jpeg":
		c.OutputFormat = "jpg"
	default:
		c.OutputFormat = "png"
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = 95
	}
	if c.InputDir == "" {
		c.InputDir = filepath.Join("images", "pre_annotated_images")
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join("images", "annotated_images")
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
