package presenter

import (
	"time"

	"github.com/soocke/boxmark/ui/model"
)

// ProgressView displays the run progress.
type ProgressView interface {
	SetProgress(p model.Progress)
}

// ProgressPresenter pushes the progress snapshot from the model to the view.
type ProgressPresenter struct {
	model *model.ProgressModel
	view  ProgressView
	last  model.Progress
	shown bool
}

// NewProgressPresenter returns a new ProgressPresenter.
func NewProgressPresenter(m *model.ProgressModel, view ProgressView) *ProgressPresenter {
	return &ProgressPresenter{model: m, view: view}
}

// Tick reads the model and updates the view when the visible values changed.
// Durations are compared at whole-second resolution.
func (p *ProgressPresenter) Tick(now time.Time) {
	if p == nil || p.model == nil || p.view == nil {
		return
	}
	v := p.model.Values(now)
	v.Current = v.Current.Truncate(time.Second)
	v.Elapsed = v.Elapsed.Truncate(time.Second)
	if p.shown && v == p.last {
		return
	}
	p.last, p.shown = v, true
	p.view.SetProgress(v)
}
