package imageio

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/soocke/boxmark/domain/annotate"
)

// Format selects the encoding of saved frames.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
	FormatWebP Format = "webp"
)

// ParseFormat normalises a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// PersistOptions configures a Persister.
type PersistOptions struct {
	Dir               string
	Format            Format
	JPEGQuality       int
	WebPLossless      bool
	ExportSourceBoxes bool
}

// Record is the JSON document written next to each saved frame.
type Record struct {
	Image       string         `json:"image"`
	Boxes       []annotate.Box `json:"boxes"`
	SourceBoxes []annotate.Box `json:"source_boxes,omitempty"`
}

// Saved reports where a frame and its record were written.
type Saved struct {
	ImagePath string
	JSONPath  string
}

// Persister writes annotated frames and their box files to an output dir.
type Persister struct {
	opts   PersistOptions
	logger *slog.Logger
}

func NewPersister(opts PersistOptions, logger *slog.Logger) *Persister {
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 95
	}
	return &Persister{opts: opts, logger: logger}
}

// Save writes frame as <dir>/<base>.<format> and the annotation as
// <dir>/<base>.json, where base is the full source file name. Keeping the
// source extension in base stops a.jpg and a.png from sharing outputs.
// source is the pre-fit image size used to clamp source boxes when they are
// exported.
func (p *Persister) Save(name string, frame image.Image, ann annotate.Annotation, pl Placement, source annotate.Size) (Saved, error) {
	if err := EnsureDir(p.opts.Dir); err != nil {
		return Saved{}, err
	}
	base := filepath.Base(name)
	out := Saved{
		ImagePath: filepath.Join(p.opts.Dir, base+"."+string(p.opts.Format)),
		JSONPath:  filepath.Join(p.opts.Dir, base+".json"),
	}
	if err := p.writeImage(out.ImagePath, frame); err != nil {
		return Saved{}, err
	}

	rec := Record{Image: ann.Image, Boxes: ann.Boxes}
	if rec.Image == "" {
		rec.Image = base
	}
	if rec.Boxes == nil {
		rec.Boxes = []annotate.Box{}
	}
	if p.opts.ExportSourceBoxes {
		rec.SourceBoxes = pl.SourceBoxes(rec.Boxes, source)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Saved{}, fmt.Errorf("encode annotation for %s: %w", name, err)
	}
	if err := os.WriteFile(out.JSONPath, data, 0o644); err != nil {
		return Saved{}, fmt.Errorf("write %s: %w", out.JSONPath, err)
	}
	if p.logger != nil {
		p.logger.Info("annotation saved", "image", out.ImagePath, "json", out.JSONPath, "boxes", len(rec.Boxes))
	}
	return out, nil
}

func (p *Persister) writeImage(path string, img image.Image) error {
	switch p.opts.Format {
	case FormatWebP:
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		opts := &webp.Options{Lossless: p.opts.WebPLossless, Quality: float32(p.opts.JPEGQuality)}
		if err := webp.Encode(f, img, opts); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		return nil
	case FormatJPEG:
		if err := imaging.Save(img, path, imaging.JPEGQuality(p.opts.JPEGQuality)); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		return nil
	default:
		if err := imaging.Save(img, path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		return nil
	}
}

// ReadRecord loads a previously written annotation file.
func ReadRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read %s: %w", path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return rec, nil
}
