package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and then either invokes the scheduler
// callback or, once ShouldStop reports true, the Stop callback. The zero value
// is usable (methods are nil-safe).
type Loop struct {
	Annotator  *AnnotatorPresenter
	Status     *StatusPresenter
	Progress   *ProgressPresenter
	Schedule   func()
	ShouldStop func() bool
	Stop       func()
}

func NewLoop(annotator *AnnotatorPresenter, status *StatusPresenter, progress *ProgressPresenter, schedule func()) *Loop {
	return &Loop{Annotator: annotator, Status: status, Progress: progress, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Annotator != nil {
		l.Annotator.Tick()
	}
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Progress != nil {
		l.Progress.Tick(now)
	}
	if l.ShouldStop != nil && l.ShouldStop() {
		if l.Stop != nil {
			l.Stop()
		}
		return
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
