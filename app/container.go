package app

import (
	"log/slog"

	"github.com/soocke/boxmark/app/driver"
	"github.com/soocke/boxmark/config"
	"github.com/soocke/boxmark/domain/annotate"
	"github.com/soocke/boxmark/domain/catalog"
	"github.com/soocke/boxmark/domain/imageio"
	"github.com/soocke/boxmark/ui/model"
	"github.com/soocke/boxmark/ui/presenter"
	"github.com/soocke/boxmark/ui/theme"
	"github.com/soocke/boxmark/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Catalog    *catalog.Catalog // nil when the catalog could not be opened
	Progress   *model.ProgressModel
	Status     *model.StatusModel
	RootView   *view.RootView
	Driver     *driver.Driver

	// Presenters
	Annotator         *presenter.AnnotatorPresenter
	StatusPresenter   *presenter.StatusPresenter
	ProgressPresenter *presenter.ProgressPresenter
	Loop              *presenter.Loop
}

// BuildContainer constructs all components. No Tk widgets are created here;
// the root view is built by the application once the window exists.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger, sources []driver.Source) *AppContainer {
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	if cat, err := catalog.Open(cfg.CatalogPath); err != nil {
		logger.Warn("catalog unavailable, annotated images will not be skipped", "path", cfg.CatalogPath, "error", err)
	} else {
		c.Catalog = cat
	}
	c.Progress = model.NewProgressModel()
	c.Status = &model.StatusModel{}
	c.RootView = view.NewRootView(cfg, cfgPath, logger)

	c.Annotator = presenter.NewAnnotatorPresenter(c.RootView, c.Status, nil, logger)
	c.Annotator.ShowStatus = cfg.ShowBoxCount
	c.Annotator.SetDarken(cfg.DarkenBy)

	var cat driver.Catalog
	if c.Catalog != nil {
		cat = c.Catalog
	}
	c.Driver = driver.New(driverOptions(cfg), sources, imageio.Load, cat, newPersister(cfg, logger), c.Annotator, c.Progress, logger)
	c.Annotator.OnOutcome = c.Driver.HandleOutcome
	c.Driver.Status = c.Status

	c.StatusPresenter = presenter.NewStatusPresenter(c.Annotator, c.Status, c.RootView)
	c.ProgressPresenter = presenter.NewProgressPresenter(c.Progress, c.RootView)
	c.Loop = presenter.NewLoop(c.Annotator, c.StatusPresenter, c.ProgressPresenter, nil)
	return c
}

// ApplySettings pushes an edited config into the running components. Window
// size is fixed for the lifetime of the process.
func (c *AppContainer) ApplySettings(cfg config.Config) {
	c.Annotator.SetDarken(cfg.DarkenBy)
	c.Annotator.ShowStatus = cfg.ShowBoxCount
	c.Driver.SetOptions(driverOptions(&cfg))
	c.Driver.SetPersister(newPersister(&cfg, c.Logger))
	theme.SetDark(cfg.DarkMode)
	c.Logger.Info("settings applied", "darken", cfg.DarkenBy, "zoom_step", cfg.ZoomStep, "format", cfg.OutputFormat)
}

// Close releases resources held by the container.
func (c *AppContainer) Close() {
	c.Annotator.Close()
	if c.Catalog != nil {
		if err := c.Catalog.Close(); err != nil {
			c.Logger.Warn("catalog close failed", "error", err)
		}
	}
}

func driverOptions(cfg *config.Config) driver.Options {
	style := annotate.DefaultStyle()
	style.DarkenBy = cfg.DarkenBy
	return driver.Options{
		Window:        annotate.Size{W: cfg.WindowWidth, H: cfg.WindowHeight},
		ZoomStep:      cfg.ZoomStep,
		Upscale:       cfg.UpscaleOnFit,
		SkipAnnotated: cfg.SkipAnnotated,
		Style:         style,
	}
}

func newPersister(cfg *config.Config, logger *slog.Logger) *imageio.Persister {
	format, err := imageio.ParseFormat(cfg.OutputFormat)
	if err != nil {
		logger.Warn("unknown output format, using png", "format", cfg.OutputFormat)
		format = imageio.FormatPNG
	}
	return imageio.NewPersister(imageio.PersistOptions{
		Dir:               cfg.OutputDir,
		Format:            format,
		JPEGQuality:       cfg.JPEGQuality,
		WebPLossless:      cfg.WebPLossless,
		ExportSourceBoxes: cfg.ExportSourceBoxes,
	}, logger)
}
