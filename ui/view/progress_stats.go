package view

import (
	"fmt"
	"time"

	"github.com/soocke/boxmark/ui/model"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// ProgressStats shows which image is open and how the run is going.
type ProgressStats interface {
	SetProgress(p model.Progress)
}

type progressStats struct {
	imageLbl  *LabelWidget
	countsLbl *LabelWidget
	timeLbl   *LabelWidget
}

// NewProgressStats creates the image, counts and time labels in a grid layout
// starting at (row, startCol). If parent is nil, labels are positioned
// relative to the App root.
func NewProgressStats(parent *FrameWidget, row, startCol int) ProgressStats {
	s := &progressStats{imageLbl: Label(Width(36), Anchor("w")), countsLbl: Label(Width(34)), timeLbl: Label(Width(20))}
	for i, l := range []*LabelWidget{s.imageLbl, s.countsLbl, s.timeLbl} {
		if parent != nil {
			Grid(l, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(l, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.SetProgress(model.Progress{})
	return s
}

func (s *progressStats) SetProgress(p model.Progress) {
	if s == nil || s.imageLbl == nil {
		return
	}
	if p.Index == 0 {
		s.imageLbl.Configure(Txt("Image: <none>"))
	} else {
		s.imageLbl.Configure(Txt(fmt.Sprintf("Image %d/%d: %s", p.Index, p.Total, p.Image)))
	}
	s.countsLbl.Configure(Txt(fmt.Sprintf("Saved %d  Discarded %d  Skipped %d  Failed %d", p.Saved, p.Discarded, p.Skipped, p.Failed)))
	s.timeLbl.Configure(Txt(fmt.Sprintf("Time: %s / %s", clock(p.Current), clock(p.Elapsed))))
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	min, sec := seconds/60, seconds%60
	return fmt.Sprintf("%02d:%02d", min, sec)
}
