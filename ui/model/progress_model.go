package model

import (
	"time"
)

// Progress is a snapshot of the run for display.
type Progress struct {
	Index     int // 1-based position of the current image, 0 before the first
	Total     int
	Image     string
	Saved     int
	Discarded int
	Skipped   int
	Failed    int
	Current   time.Duration // time spent on the current image
	Elapsed   time.Duration // time spent annotating, all images
}

// ProgressModel tracks how far the run has got and how long annotation has
// taken. It is decoupled from the UI; presenters should poll Values() and
// update views. The zero value is ready to use.
type ProgressModel struct {
	index       int
	total       int
	image       string
	saved       int
	discarded   int
	skipped     int
	failed      int
	active      bool
	imageStart  time.Time
	accumulated time.Duration
}

// NewProgressModel returns a pointer to a ready-to-use ProgressModel.
func NewProgressModel() *ProgressModel { return &ProgressModel{} }

// SetTotal records how many images the run will visit.
func (m *ProgressModel) SetTotal(n int) {
	if m == nil {
		return
	}
	m.total = n
}

// Begin marks the start of annotation for image at 1-based index.
func (m *ProgressModel) Begin(index int, image string, now time.Time) {
	if m == nil {
		return
	}
	m.finish(now)
	m.index = index
	m.image = image
	m.active = true
	m.imageStart = now
}

// Saved ends the current image as written to disk.
func (m *ProgressModel) Saved(now time.Time) {
	if m == nil {
		return
	}
	m.finish(now)
	m.saved++
}

// Discarded ends the current image without output.
func (m *ProgressModel) Discarded(now time.Time) {
	if m == nil {
		return
	}
	m.finish(now)
	m.discarded++
}

// Skipped counts an image passed over without a session.
func (m *ProgressModel) Skipped() {
	if m != nil {
		m.skipped++
	}
}

// Failed counts an image that could not be loaded or saved.
func (m *ProgressModel) Failed() {
	if m != nil {
		m.failed++
	}
}

func (m *ProgressModel) finish(now time.Time) {
	if !m.active {
		return
	}
	m.accumulated += now.Sub(m.imageStart)
	m.active = false
}

// Values returns the current snapshot. Durations include the ongoing image.
func (m *ProgressModel) Values(now time.Time) Progress {
	if m == nil {
		return Progress{}
	}
	p := Progress{
		Index:     m.index,
		Total:     m.total,
		Image:     m.image,
		Saved:     m.saved,
		Discarded: m.discarded,
		Skipped:   m.skipped,
		Failed:    m.failed,
		Elapsed:   m.accumulated,
	}
	if m.active {
		p.Current = now.Sub(m.imageStart)
		p.Elapsed += p.Current
	}
	return p
}
