package presenter

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/boxmark/domain/annotate"
	"github.com/soocke/boxmark/ui/images"
	"github.com/soocke/boxmark/ui/model"
)

// CanvasView displays encoded frames.
type CanvasView interface {
	ShowFrame(png []byte)
}

// StatusPoster receives transient messages for the status label.
type StatusPoster interface {
	Post(msg string, now time.Time)
}

// OutcomeFunc is called once when a session reaches Saved or Discarded.
type OutcomeFunc func(s *annotate.Session, r *annotate.Renderer, o annotate.Outcome)

type frameTask struct {
	sequence uint64
	renderer *annotate.Renderer
	scene    annotate.Scene
	darken   float64
}

type frameResult struct {
	sequence uint64
	png      []byte
}

// AnnotatorPresenter feeds pointer and key input from the view into the
// active session and keeps the canvas showing the latest frame. Frames are
// rendered and encoded on a worker goroutine; only the newest pending frame is
// kept. All exported methods must be called from the UI thread.
type AnnotatorPresenter struct {
	View       CanvasView
	Status     StatusPoster
	OnOutcome  OutcomeFunc
	ShowStatus bool
	logger     *slog.Logger

	session  *annotate.Session
	renderer *annotate.Renderer
	darken   float64

	workerOnce sync.Once
	workCh     chan frameTask
	resultCh   chan frameResult
	sequence   uint64
	shown      uint64
	dirty      bool
}

// NewAnnotatorPresenter constructs a presenter with no active session.
func NewAnnotatorPresenter(view CanvasView, status StatusPoster, onOutcome OutcomeFunc, logger *slog.Logger) *AnnotatorPresenter {
	return &AnnotatorPresenter{
		View:       view,
		Status:     status,
		OnOutcome:  onOutcome,
		ShowStatus: true,
		logger:     logger,
		darken:     annotate.DefaultStyle().DarkenBy,
		workCh:     make(chan frameTask, 1),
		resultCh:   make(chan frameResult, 1),
	}
}

// Attach makes s the active session, drawn by r.
func (p *AnnotatorPresenter) Attach(s *annotate.Session, r *annotate.Renderer) {
	if p == nil {
		return
	}
	p.session, p.renderer = s, r
	p.dirty = true
}

// Detach drops the active session; input is ignored until the next Attach.
func (p *AnnotatorPresenter) Detach() {
	if p == nil {
		return
	}
	p.session, p.renderer = nil, nil
	p.dirty = false
}

// Session returns the active session, or nil.
func (p *AnnotatorPresenter) Session() *annotate.Session {
	if p == nil {
		return nil
	}
	return p.session
}

// State reports the interaction state of the active session.
func (p *AnnotatorPresenter) State() (annotate.State, bool) {
	if p == nil || p.session == nil {
		return annotate.StateIdle, false
	}
	return p.session.State(), true
}

// SetDarken changes the darkening applied outside an in-progress box.
func (p *AnnotatorPresenter) SetDarken(d float64) {
	if p == nil || d < 0 || d >= 1 {
		return
	}
	p.darken = d
	p.dirty = true
}

// Pointer and key input, in window coordinates.

func (p *AnnotatorPresenter) Press(b annotate.Button, x, y int) {
	p.dispatch(annotate.Press{Button: b, Pos: annotate.Pt(float64(x), float64(y))})
}

func (p *AnnotatorPresenter) Release(b annotate.Button, x, y int) {
	p.dispatch(annotate.Release{Button: b, Pos: annotate.Pt(float64(x), float64(y))})
}

func (p *AnnotatorPresenter) Move(x, y int) {
	p.dispatch(annotate.Move{Pos: annotate.Pt(float64(x), float64(y))})
}

func (p *AnnotatorPresenter) Scroll(steps, x, y int) {
	p.dispatch(annotate.Scroll{Pos: annotate.Pt(float64(x), float64(y)), Steps: steps})
}

// ZoomAtCursor zooms around the last known pointer position, or the window
// centre when the pointer has not been seen yet.
func (p *AnnotatorPresenter) ZoomAtCursor(steps int) {
	if p == nil || p.session == nil {
		return
	}
	pos, ok := p.session.Cursor()
	if !ok {
		w := p.session.Canvas().WindowSize()
		pos = annotate.Pt(float64(w.W)/2, float64(w.H)/2)
	}
	p.dispatch(annotate.Scroll{Pos: pos, Steps: steps})
}

func (p *AnnotatorPresenter) Key(k annotate.Key) {
	p.dispatch(annotate.KeyPress{Key: k})
}

func (p *AnnotatorPresenter) dispatch(ev annotate.Event) {
	if p == nil || p.session == nil {
		return
	}
	s, r := p.session, p.renderer
	out, err := s.Handle(ev)
	if err != nil {
		p.report(ev, err)
		return
	}
	p.dirty = true
	if out == annotate.OutcomeContinue {
		return
	}
	p.Detach()
	if p.logger != nil {
		p.logger.Debug("session finished", "image", s.Name(), "outcome", out.String(), "boxes", s.Store().Len())
	}
	if p.OnOutcome != nil {
		p.OnOutcome(s, r, out)
	}
}

func (p *AnnotatorPresenter) report(ev annotate.Event, err error) {
	var msg string
	kp, isKey := ev.(annotate.KeyPress)
	switch {
	case errors.Is(err, annotate.ErrNoHistory) && isKey && kp.Key == annotate.KeyRedo:
		msg = "Nothing to redo"
	case errors.Is(err, annotate.ErrNoHistory):
		msg = "Can't undo anymore"
	case errors.Is(err, annotate.ErrAlreadyPresent):
		msg = "Box already exists"
	case errors.Is(err, annotate.ErrSessionClosed):
		return
	default:
		msg = err.Error()
	}
	if p.logger != nil {
		p.logger.Info(msg, "image", p.session.Name(), "error", err)
	}
	if p.Status != nil {
		p.Status.Post(msg, time.Now())
	}
}

// Tick flushes pending redraws to the worker and shows finished frames.
func (p *AnnotatorPresenter) Tick() {
	if p == nil || p.View == nil {
		return
	}
	p.ensureWorker()

	for {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			goto drained
		}
	}

drained:
	if !p.dirty || p.session == nil || p.renderer == nil {
		return
	}
	p.dirty = false
	p.sequence++
	p.dispatchTask(frameTask{
		sequence: p.sequence,
		renderer: p.renderer,
		scene:    p.session.Scene(p.ShowStatus),
		darken:   p.darken,
	})
}

func (p *AnnotatorPresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *AnnotatorPresenter) runWorker() {
	for task := range p.workCh {
		task.renderer.SetDarken(task.darken)
		frame := task.renderer.Render(task.scene)
		res := frameResult{sequence: task.sequence, png: images.EncodePNG(frame)}
		annotate.RecycleFrame(frame)
		select {
		case p.resultCh <- res:
		default:
			select {
			case <-p.resultCh:
			default:
			}
			select {
			case p.resultCh <- res:
			default:
			}
		}
	}
}

func (p *AnnotatorPresenter) dispatchTask(task frameTask) {
	select {
	case p.workCh <- task:
	default:
		select {
		case <-p.workCh:
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

func (p *AnnotatorPresenter) handleResult(res frameResult) {
	if res.sequence <= p.shown || len(res.png) == 0 {
		return
	}
	p.shown = res.sequence
	p.View.ShowFrame(res.png)
}

// Close stops the worker. The presenter must not be used afterwards.
func (p *AnnotatorPresenter) Close() {
	if p == nil {
		return
	}
	p.ensureWorker()
	close(p.workCh)
}

var _ StatusPoster = (*model.StatusModel)(nil)
