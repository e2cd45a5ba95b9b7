package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"darken_by": 0.3, "output_format": "jpeg"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.3, cfg.DarkenBy)
	require.Equal(t, "jpg", cfg.OutputFormat)
	require.Equal(t, 1280, cfg.WindowWidth)
	require.Equal(t, 0.1, cfg.ZoomStep)
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	cfg, err := Load(path)
	require.Error(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestValidate_ClampsOutOfRange(t *testing.T) {
	cfg := &Config{DarkenBy: 1.5, ZoomStep: -1, OutputFormat: "bmp", JPEGQuality: 400, WindowWidth: 10}
	require.NoError(t, cfg.Validate())
	require.Equal(t, 0.5, cfg.DarkenBy)
	require.Equal(t, 0.1, cfg.ZoomStep)
	require.Equal(t, "png", cfg.OutputFormat)
	require.Equal(t, 95, cfg.JPEGQuality)
	require.Equal(t, 1280, cfg.WindowWidth)
	require.Equal(t, 720, cfg.WindowHeight)
	require.NotEmpty(t, cfg.InputDir)
	require.NotEmpty(t, cfg.OutputDir)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.DarkenBy = 0.25
	cfg.OutputFormat = "webp"
	cfg.WebPLossless = true
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestDefaultPath_UnderAppDir(t *testing.T) {
	require.Equal(t, "config.json", filepath.Base(DefaultPath()))
	require.Equal(t, appDir, filepath.Base(filepath.Dir(DefaultPath())))
}
