package driver

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soocke/boxmark/domain/annotate"
	"github.com/soocke/boxmark/domain/catalog"
	"github.com/soocke/boxmark/domain/imageio"
	"github.com/soocke/boxmark/ui/model"
)

type attachRecorder struct {
	sessions  []*annotate.Session
	renderers []*annotate.Renderer
}

func (a *attachRecorder) Attach(s *annotate.Session, r *annotate.Renderer) {
	a.sessions = append(a.sessions, s)
	a.renderers = append(a.renderers, r)
}

func (a *attachRecorder) last() (*annotate.Session, *annotate.Renderer) {
	return a.sessions[len(a.sessions)-1], a.renderers[len(a.renderers)-1]
}

type savedCall struct {
	name   string
	bounds image.Rectangle
	ann    annotate.Annotation
	pl     imageio.Placement
	source annotate.Size
}

type fakePersister struct {
	calls []savedCall
	err   error
}

func (p *fakePersister) Save(name string, frame image.Image, ann annotate.Annotation, pl imageio.Placement, source annotate.Size) (imageio.Saved, error) {
	if p.err != nil {
		return imageio.Saved{}, p.err
	}
	p.calls = append(p.calls, savedCall{name: name, bounds: frame.Bounds(), ann: ann, pl: pl, source: source})
	return imageio.Saved{ImagePath: "/out/" + name, JSONPath: "/out/" + name + ".json"}, nil
}

type fakeCatalog struct {
	annotated map[string]bool
	recorded  []catalog.Entry
}

func (c *fakeCatalog) Annotated(image string) (bool, error) { return c.annotated[image], nil }
func (c *fakeCatalog) Record(e catalog.Entry) error {
	c.recorded = append(c.recorded, e)
	return nil
}

func solidImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 100, 50, 255
	}
	return img
}

func fakeLoader(images map[string]image.Image) LoadFunc {
	return func(path string) (image.Image, error) {
		if img, ok := images[path]; ok {
			return img, nil
		}
		return nil, errors.New("no such image")
	}
}

func testOptions() Options {
	return Options{Window: annotate.Size{W: 64, H: 48}, ZoomStep: 0.1, Style: annotate.DefaultStyle()}
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func drag(t *testing.T, s *annotate.Session, from, to annotate.Point) {
	t.Helper()
	for _, ev := range []annotate.Event{
		annotate.Press{Button: annotate.ButtonLeft, Pos: from},
		annotate.Move{Pos: to},
		annotate.Release{Button: annotate.ButtonLeft, Pos: to},
	} {
		if _, err := s.Handle(ev); err != nil {
			t.Fatalf("handle %T: %v", ev, err)
		}
	}
}

func confirm(t *testing.T, s *annotate.Session) annotate.Outcome {
	t.Helper()
	out, err := s.Handle(annotate.KeyPress{Key: annotate.KeyConfirm})
	require.NoError(t, err)
	return out
}

func TestDriver_SaveRecordsAndAdvances(t *testing.T) {
	pres := &attachRecorder{}
	pers := &fakePersister{}
	cat := &fakeCatalog{annotated: map[string]bool{}}
	progress := model.NewProgressModel()
	loader := fakeLoader(map[string]image.Image{"a.png": solidImage(64, 48), "b.png": solidImage(32, 24)})
	d := New(testOptions(), FileSources([]string{"a.png", "b.png"}), loader, cat, pers, pres, progress, quietLogger())
	done := false
	d.OnDone = func() { done = true }

	require.True(t, d.Advance())
	require.Len(t, pres.sessions, 1)
	s, r := pres.last()
	require.Equal(t, "a.png", s.Name())
	drag(t, s, annotate.Pt(5, 5), annotate.Pt(20, 30))

	d.HandleOutcome(s, r, confirm(t, s))

	require.Len(t, pers.calls, 1)
	call := pers.calls[0]
	require.Equal(t, "a.png", call.name)
	require.Equal(t, image.Rect(0, 0, 64, 48), call.bounds)
	require.Len(t, call.ann.Boxes, 1)
	require.Equal(t, annotate.Size{W: 64, H: 48}, call.source)
	require.Len(t, cat.recorded, 1)
	require.Equal(t, "a.png", cat.recorded[0].Image)
	require.Equal(t, 1, cat.recorded[0].Boxes)

	require.Len(t, pres.sessions, 2, "second image should open after save")
	require.Equal(t, "b.png", d.Current().Name())
	require.False(t, done)

	s2, r2 := pres.last()
	out, err := s2.Handle(annotate.KeyPress{Key: annotate.KeyCancel})
	require.NoError(t, err)
	d.HandleOutcome(s2, r2, out)

	require.Len(t, pers.calls, 1, "discard must not write")
	require.True(t, done)
	require.True(t, d.Done())
	require.Nil(t, d.Current())

	p := progress.Values(time.Now())
	require.Equal(t, 2, p.Total)
	require.Equal(t, 1, p.Saved)
	require.Equal(t, 1, p.Discarded)
}

func TestDriver_SkipsAnnotatedAndUnreadable(t *testing.T) {
	pres := &attachRecorder{}
	cat := &fakeCatalog{annotated: map[string]bool{"done.png": true}}
	progress := model.NewProgressModel()
	loader := fakeLoader(map[string]image.Image{"done.png": solidImage(8, 8), "ok.png": solidImage(8, 8)})
	opts := testOptions()
	opts.SkipAnnotated = true
	d := New(opts, FileSources([]string{"done.png", "broken.png", "ok.png"}), loader, cat, &fakePersister{}, pres, progress, quietLogger())

	require.True(t, d.Advance())
	require.Len(t, pres.sessions, 1)
	require.Equal(t, "ok.png", pres.sessions[0].Name())

	p := progress.Values(time.Now())
	require.Equal(t, 3, p.Index)
	require.Equal(t, 1, p.Skipped)
	require.Equal(t, 1, p.Failed)
}

func TestDriver_SkipDisabledOpensAnnotated(t *testing.T) {
	pres := &attachRecorder{}
	cat := &fakeCatalog{annotated: map[string]bool{"done.png": true}}
	loader := fakeLoader(map[string]image.Image{"done.png": solidImage(8, 8)})
	d := New(testOptions(), FileSources([]string{"done.png"}), loader, cat, &fakePersister{}, pres, nil, quietLogger())
	require.True(t, d.Advance())
	require.Equal(t, "done.png", d.Current().Name())
}

func TestDriver_EmptyRunFinishesOnce(t *testing.T) {
	calls := 0
	d := New(testOptions(), nil, fakeLoader(nil), nil, &fakePersister{}, &attachRecorder{}, nil, quietLogger())
	d.OnDone = func() { calls++ }
	require.False(t, d.Advance())
	require.False(t, d.Advance())
	require.Equal(t, 1, calls)
}

type statusRecorder struct{ msgs []string }

func (s *statusRecorder) Post(msg string, _ time.Time) { s.msgs = append(s.msgs, msg) }

func TestDriver_SaveFailureKeepsBoxesAndRetries(t *testing.T) {
	pres := &attachRecorder{}
	pers := &fakePersister{err: errors.New("disk full")}
	status := &statusRecorder{}
	progress := model.NewProgressModel()
	loader := fakeLoader(map[string]image.Image{"a.png": solidImage(64, 48), "b.png": solidImage(8, 8)})
	d := New(testOptions(), FileSources([]string{"a.png", "b.png"}), loader, nil, pers, pres, progress, quietLogger())
	d.Status = status
	require.True(t, d.Advance())
	s, r := pres.last()
	drag(t, s, annotate.Pt(5, 5), annotate.Pt(20, 30))
	want := s.Annotation().Boxes

	d.HandleOutcome(s, r, confirm(t, s))

	require.False(t, d.Done())
	require.Len(t, pres.sessions, 2, "failed save should reattach the same image")
	retry, rr := pres.last()
	require.NotSame(t, s, retry)
	require.Same(t, r, rr)
	require.Same(t, retry, d.Current())
	require.Equal(t, "a.png", retry.Name())
	require.Equal(t, annotate.StateIdle, retry.State())
	require.Equal(t, want, retry.Annotation().Boxes)
	require.Len(t, status.msgs, 1)
	require.Contains(t, status.msgs[0], "disk full")

	p := progress.Values(time.Now())
	require.Equal(t, 0, p.Saved)
	require.Equal(t, 0, p.Failed)

	// Once the disk recovers the retried save goes through and the run moves on.
	pers.err = nil
	d.HandleOutcome(retry, rr, confirm(t, retry))
	require.Len(t, pers.calls, 1)
	require.Equal(t, want, pers.calls[0].ann.Boxes)
	require.Equal(t, "b.png", d.Current().Name())
	require.Equal(t, 1, progress.Values(time.Now()).Saved)
}

func TestDriver_InMemorySourceNeverSkipped(t *testing.T) {
	pres := &attachRecorder{}
	cat := &fakeCatalog{annotated: map[string]bool{"shot.png": true}}
	opts := testOptions()
	opts.SkipAnnotated = true
	d := New(opts, []Source{{Name: "shot.png", Image: solidImage(100, 80)}}, fakeLoader(nil), cat, &fakePersister{}, pres, nil, quietLogger())
	require.True(t, d.Advance())
	require.Equal(t, "shot.png", d.Current().Name())
}

func TestDriver_EnqueueWhileOpenWaitsItsTurn(t *testing.T) {
	pres := &attachRecorder{}
	loader := fakeLoader(map[string]image.Image{"a.png": solidImage(8, 8)})
	d := New(testOptions(), FileSources([]string{"a.png"}), loader, nil, &fakePersister{}, pres, nil, quietLogger())
	require.True(t, d.Advance())

	// Queued while a.png is still open: waits its turn.
	d.Enqueue(Source{Name: "shot.png", Image: solidImage(8, 8)})
	require.Len(t, pres.sessions, 1)

	s, r := pres.last()
	out, err := s.Handle(annotate.KeyPress{Key: annotate.KeyCancel})
	require.NoError(t, err)
	d.HandleOutcome(s, r, out)
	require.Len(t, pres.sessions, 2)
	require.Equal(t, "shot.png", d.Current().Name())
}

func TestDriver_IgnoresStaleOutcome(t *testing.T) {
	pres := &attachRecorder{}
	pers := &fakePersister{}
	loader := fakeLoader(map[string]image.Image{"a.png": solidImage(8, 8)})
	d := New(testOptions(), FileSources([]string{"a.png"}), loader, nil, pers, pres, nil, quietLogger())
	require.True(t, d.Advance())
	other := annotate.NewSession("other", solidImage(8, 8), annotate.Size{W: 8, H: 8}, annotate.Options{})
	d.HandleOutcome(other, nil, annotate.OutcomeSave)
	require.Empty(t, pers.calls)
	require.False(t, d.Done())
}

func TestFileSources_UsesBaseName(t *testing.T) {
	got := FileSources([]string{"/in/x/cat.jpg"})
	require.Equal(t, []Source{{Name: "cat.jpg", Path: "/in/x/cat.jpg"}}, got)
}
