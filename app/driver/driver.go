// Package driver walks the list of images to annotate. For each one it builds
// a session and renderer, hands them to the presenter, and when the session
// ends it persists or drops the result before opening the next image.
package driver

import (
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/boxmark/domain/annotate"
	"github.com/soocke/boxmark/domain/catalog"
	"github.com/soocke/boxmark/domain/imageio"
	"github.com/soocke/boxmark/ui/model"
)

// Source is one image to annotate.
type Source struct {
	Name  string      // identifier used for output names and the catalog
	Path  string      // file to load; empty when Image is set
	Image image.Image // in-memory image such as a screen capture
}

// FileSources turns paths into sources named by their base name.
func FileSources(paths []string) []Source {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		out = append(out, Source{Name: filepath.Base(p), Path: p})
	}
	return out
}

// Catalog records saved annotations. It may be nil.
type Catalog interface {
	Annotated(image string) (bool, error)
	Record(e catalog.Entry) error
}

// Persister writes a saved frame and its box file.
type Persister interface {
	Save(name string, frame image.Image, ann annotate.Annotation, pl imageio.Placement, source annotate.Size) (imageio.Saved, error)
}

// Presenter receives each new session.
type Presenter interface {
	Attach(s *annotate.Session, r *annotate.Renderer)
}

// StatusPoster shows a transient message to the user.
type StatusPoster interface {
	Post(msg string, now time.Time)
}

// LoadFunc decodes the image at path.
type LoadFunc func(path string) (image.Image, error)

// Options tune how sessions are created.
type Options struct {
	Window        annotate.Size
	ZoomStep      float64
	Upscale       bool
	SkipAnnotated bool
	Style         annotate.Style
}

type current struct {
	source    Source
	session   *annotate.Session
	placement imageio.Placement
	size      annotate.Size // source image size before fitting
	logger    *slog.Logger
}

// Driver sequences sessions. All methods must be called from the UI thread.
type Driver struct {
	opts      Options
	load      LoadFunc
	catalog   Catalog
	persister Persister
	presenter Presenter
	progress  *model.ProgressModel
	logger    *slog.Logger
	now       func() time.Time

	// OnDone is called once after the last source has been handled.
	OnDone func()
	// Status, when set, is told about saves that failed.
	Status StatusPoster

	sources []Source
	next    int
	current *current
	done    bool
}

// New constructs a driver over sources. cat and progress may be nil.
func New(opts Options, sources []Source, load LoadFunc, cat Catalog, persister Persister, presenter Presenter, progress *model.ProgressModel, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if load == nil {
		load = imageio.Load
	}
	d := &Driver{
		opts:      opts,
		load:      load,
		catalog:   cat,
		persister: persister,
		presenter: presenter,
		progress:  progress,
		logger:    logger,
		now:       time.Now,
		sources:   append([]Source(nil), sources...),
	}
	d.progress.SetTotal(len(d.sources))
	return d
}

// SetOptions changes how later sessions are created. The open session keeps
// its settings.
func (d *Driver) SetOptions(opts Options) { d.opts = opts }

// SetPersister replaces the writer used for later saves.
func (d *Driver) SetPersister(p Persister) { d.persister = p }

// Done reports whether every source has been handled.
func (d *Driver) Done() bool { return d.done }

// Current returns the session being annotated, or nil.
func (d *Driver) Current() *annotate.Session {
	if d.current == nil {
		return nil
	}
	return d.current.session
}

// Enqueue appends src to the run. When the run had already finished, src is
// opened immediately.
func (d *Driver) Enqueue(src Source) {
	d.sources = append(d.sources, src)
	d.progress.SetTotal(len(d.sources))
	d.logger.Info("source queued", "image", src.Name, "total", len(d.sources))
	if d.current == nil && d.next == len(d.sources)-1 {
		d.done = false
		d.Advance()
	}
}

// Advance opens the next source that is neither already annotated nor
// unreadable. It reports false, and calls OnDone, when none is left.
func (d *Driver) Advance() bool {
	d.current = nil
	for d.next < len(d.sources) {
		src := d.sources[d.next]
		d.next++
		if d.skip(src) {
			d.progress.Skipped()
			continue
		}
		if err := d.open(src, d.next); err != nil {
			d.logger.Error("image load failed, skipping", "image", src.Name, "path", src.Path, "error", err)
			d.progress.Failed()
			continue
		}
		return true
	}
	if !d.done {
		d.done = true
		d.logger.Info("all images handled", "total", len(d.sources))
		if d.OnDone != nil {
			d.OnDone()
		}
	}
	return false
}

// skip reports whether src was saved by an earlier run. In-memory sources
// are never skipped.
func (d *Driver) skip(src Source) bool {
	if !d.opts.SkipAnnotated || d.catalog == nil || src.Image != nil {
		return false
	}
	ok, err := d.catalog.Annotated(src.Name)
	if err != nil {
		d.logger.Warn("catalog lookup failed", "image", src.Name, "error", err)
		return false
	}
	if ok {
		d.logger.Info("already annotated, skipping", "image", src.Name)
	}
	return ok
}

func (d *Driver) open(src Source, index int) error {
	img := src.Image
	if img == nil {
		var err error
		if img, err = d.load(src.Path); err != nil {
			return err
		}
	}
	fitted, pl := imageio.FitToCanvas(img, d.opts.Window.W, d.opts.Window.H, d.opts.Upscale)
	logger := d.logger.With("session", uuid.NewString(), "image", src.Name)
	s := annotate.NewSession(src.Name, fitted, d.opts.Window, annotate.Options{ZoomStep: d.opts.ZoomStep, Logger: logger})
	r := annotate.NewRenderer(fitted, d.opts.Window, d.opts.Style)
	d.current = &current{source: src, session: s, placement: pl, size: annotate.SizeOf(img), logger: logger}
	d.progress.Begin(index, src.Name, d.now())
	logger.Info("session opened", "index", index, "total", len(d.sources), "scale", pl.Scale)
	if d.presenter != nil {
		d.presenter.Attach(s, r)
	}
	return nil
}

// HandleOutcome finishes s and opens the next source. A save that fails
// reopens the same image with its boxes instead of moving on. Outcomes for
// sessions other than the current one are ignored.
func (d *Driver) HandleOutcome(s *annotate.Session, r *annotate.Renderer, o annotate.Outcome) {
	c := d.current
	if c == nil || c.session != s {
		return
	}
	switch o {
	case annotate.OutcomeSave:
		if !d.save(c, r) {
			d.reopen(c, r)
			return
		}
	case annotate.OutcomeDiscard:
		c.logger.Info("annotation discarded", "boxes", s.Store().Len())
		d.progress.Discarded(d.now())
	default:
		return
	}
	d.Advance()
}

func (d *Driver) save(c *current, r *annotate.Renderer) bool {
	s := c.session
	frame := r.Render(s.Scene(false))
	defer annotate.RecycleFrame(frame)
	saved, err := d.persister.Save(c.source.Name, frame, s.Annotation(), c.placement, c.size)
	if err != nil {
		c.logger.Error("save failed, keeping image open", "boxes", s.Store().Len(), "error", err)
		if d.Status != nil {
			d.Status.Post("Save failed: "+err.Error(), d.now())
		}
		return false
	}
	if d.catalog != nil {
		err := d.catalog.Record(catalog.Entry{
			Image:     c.source.Name,
			Boxes:     s.Store().Len(),
			JSONPath:  saved.JSONPath,
			ImagePath: saved.ImagePath,
			SavedAt:   d.now(),
		})
		if err != nil {
			c.logger.Warn("catalog record failed", "error", err)
		}
	}
	d.progress.Saved(d.now())
	return true
}

// reopen replaces the finished session with a fresh one over the same image
// holding the same committed boxes, so the user can retry the save.
func (d *Driver) reopen(c *current, r *annotate.Renderer) {
	prev := c.session
	c.session = annotate.NewSession(prev.Name(), prev.Image(), prev.Canvas().WindowSize(), annotate.Options{
		ZoomStep: d.opts.ZoomStep,
		Logger:   c.logger,
		Boxes:    prev.Store().Boxes(),
	})
	c.logger.Info("session reopened", "boxes", c.session.Store().Len())
	if d.presenter != nil {
		d.presenter.Attach(c.session, r)
	}
}
