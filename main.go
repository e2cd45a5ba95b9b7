package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/soocke/boxmark/app"
	"github.com/soocke/boxmark/app/driver"
	"github.com/soocke/boxmark/config"
	"github.com/soocke/boxmark/debug"
	"github.com/soocke/boxmark/domain/capture"
	"github.com/soocke/boxmark/domain/imageio"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "path to the JSON config file")
	inDir := flag.String("in", "", "directory of images to annotate (overrides config)")
	outDir := flag.String("out", "", "directory for annotated images and box files (overrides config)")
	screenshot := flag.Bool("screenshot", false, "annotate a fresh screen capture instead of a directory")
	debugFlag := flag.Bool("debug", false, "debug logging and runtime stats")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if *inDir != "" {
		cfg.InputDir = *inDir
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *debugFlag {
		cfg.Debug = true
	}

	// Set up logger
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Debug {
		debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
		debug.StartMemLogger(ctx, 5*time.Second, logger)
	}

	sources, err := collectSources(cfg, *screenshot)
	if err != nil {
		logger.Error("no images to annotate", "error", err)
		os.Exit(1)
	}
	logger.Info("starting annotator", "images", len(sources), "in", cfg.InputDir, "out", cfg.OutputDir, "format", cfg.OutputFormat)

	c := app.BuildContainer(cfg, *cfgPath, logger, sources)
	application := app.NewApp("boxmark", c)
	application.Start()
}

func collectSources(cfg *config.Config, screenshot bool) ([]driver.Source, error) {
	if screenshot {
		img, err := capture.Grab()
		if err != nil {
			return nil, err
		}
		return []driver.Source{{Name: capture.Name(time.Now()), Image: img}}, nil
	}
	paths, err := imageio.ListImages(cfg.InputDir)
	if err != nil {
		return nil, err
	}
	return driver.FileSources(paths), nil
}
