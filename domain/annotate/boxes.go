package annotate

import "fmt"

// BoxStore is the ordered list of committed boxes plus a one-slot history
// register holding the most recently created box. Matching for undo/redo is
// by coordinate value, so two boxes with identical corners are
// indistinguishable and Undo removes the first of them.
type BoxStore struct {
	boxes   []Box
	last    Box
	hasLast bool
}

// NewBoxStore returns an empty store.
func NewBoxStore() *BoxStore { return &BoxStore{} }

// Add appends b and makes it the history entry.
func (s *BoxStore) Add(b Box) {
	s.boxes = append(s.boxes, b)
	s.last, s.hasLast = b, true
}

// Undo removes the first committed box equal to the history entry.
// The entry is kept so Redo can restore it.
func (s *BoxStore) Undo() error {
	if !s.hasLast {
		return ErrNoHistory
	}
	i := s.index(s.last)
	if i < 0 {
		return fmt.Errorf("%w: %v already removed", ErrNoHistory, s.last)
	}
	s.boxes = append(s.boxes[:i], s.boxes[i+1:]...)
	return nil
}

// Redo re-appends the history entry unless an equal box is still committed.
func (s *BoxStore) Redo() error {
	if !s.hasLast {
		return ErrNoHistory
	}
	if s.index(s.last) >= 0 {
		return ErrAlreadyPresent
	}
	s.boxes = append(s.boxes, s.last)
	return nil
}

// Last returns the history entry, if any.
func (s *BoxStore) Last() (Box, bool) { return s.last, s.hasLast }

func (s *BoxStore) Len() int { return len(s.boxes) }

// Boxes returns a copy of the committed boxes in insertion order.
func (s *BoxStore) Boxes() []Box {
	out := make([]Box, len(s.boxes))
	copy(out, s.boxes)
	return out
}

func (s *BoxStore) index(b Box) int {
	for i, c := range s.boxes {
		if c == b {
			return i
		}
	}
	return -1
}
