package presenter

import (
	"time"

	"github.com/soocke/boxmark/domain/annotate"
)

// StateSource provides the interaction state of the active session.
type StateSource interface {
	State() (annotate.State, bool)
}

// MessageSource provides the current transient message, "" when none.
type MessageSource interface {
	Message(now time.Time) string
}

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatusPresenter reflects the session state and any transient message in
// the state label. The view is only touched when the text changes.
type StatusPresenter struct {
	src    StateSource
	msgs   MessageSource
	view   StateView
	latest string
}

func NewStatusPresenter(src StateSource, msgs MessageSource, view StateView) *StatusPresenter {
	return &StatusPresenter{src: src, msgs: msgs, view: view}
}

// Tick recomputes the label text and pushes it when it differs.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	text := "State: <none>"
	if st, ok := p.src.State(); ok {
		text = "State: " + st.String()
	}
	if p.msgs != nil {
		if msg := p.msgs.Message(now); msg != "" {
			text += " | " + msg
		}
	}
	if text != p.latest {
		p.latest = text
		p.view.SetStateLabel(text)
	}
}
