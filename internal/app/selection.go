package app

import (
	"log"

	"region-explorer/internal/region"
	"region-explorer/pkg/geometry"

	"github.com/google/uuid"
)

// NoSelection is the selection index when the region itself is being edited.
const NoSelection = -1

// Selection is the editing state: which point is selected, whether the
// session is read-only, and the text currently in the description editor.
//
// Buffer equals the selected entity's description at the moment it was
// selected. It only diverges while edits cannot be committed (read-only).
type Selection struct {
	Index    int
	ReadOnly bool
	Buffer   string
}

// HasPoint reports whether a point is selected.
func (s Selection) HasPoint() bool {
	return s.Index != NoSelection
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// CreateButton is the gesture that places a new point.
const CreateButton = ButtonSecondary

// Selection returns the current selection state.
func (s *Session) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

// ReadOnly reports whether mutations are frozen.
func (s *Session) ReadOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel.ReadOnly
}

// Select makes point i the edit target and loads its description into the
// buffer. Uncommitted buffer text is discarded. Selecting works in
// read-only mode.
func (s *Session) Select(i int) error {
	s.mu.Lock()
	p, err := s.doc.Point(i)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.sel.Index = i
	s.sel.Buffer = p.Description
	sel := s.sel
	s.mu.Unlock()

	s.Emit(EventSelectionChanged, sel)
	return nil
}

// ClearSelection returns to editing the region description.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.sel.Index = NoSelection
	s.sel.Buffer = s.doc.Description
	sel := s.sel
	s.mu.Unlock()

	s.Emit(EventSelectionChanged, sel)
}

// Edit replaces the buffer with text and, unless read-only, commits it to
// the selected point or to the region description. It reports whether the
// text was committed.
func (s *Session) Edit(text string) (bool, error) {
	s.mu.Lock()
	text = truncateRunes(text, s.capacity)
	s.sel.Buffer = text
	if s.sel.ReadOnly {
		s.mu.Unlock()
		return false, nil
	}

	if s.sel.HasPoint() {
		if err := s.doc.UpdatePointDescription(s.sel.Index, text); err != nil {
			s.mu.Unlock()
			return false, err
		}
	} else {
		s.doc.UpdateRegionDescription(text)
	}
	s.dirty = true
	sel := s.sel
	s.mu.Unlock()

	s.Emit(EventDescriptionChanged, sel)
	return true, nil
}

// SetReadOnly toggles read-only mode. Turning it off neither reverts nor
// commits the buffer.
func (s *Session) SetReadOnly(readOnly bool) {
	s.mu.Lock()
	changed := s.sel.ReadOnly != readOnly
	s.sel.ReadOnly = readOnly
	s.mu.Unlock()

	if changed {
		s.Emit(EventReadOnlyChanged, readOnly)
	}
}

// AddPoint appends a point at a content-space position. The selection does
// not move to the new point.
func (s *Session) AddPoint(p geometry.Point2D) (int, error) {
	s.mu.Lock()
	if s.sel.ReadOnly {
		s.mu.Unlock()
		return -1, region.ErrReadOnly
	}
	idx := s.doc.AddPoint(p)
	s.markerIDs = append(s.markerIDs, uuid.NewString())
	s.dirty = true
	s.mu.Unlock()

	log.Printf("AddPoint: #%d at (%.1f, %.1f)", idx, p.X, p.Y)
	s.Emit(EventPointAdded, idx)
	return idx, nil
}

// CreateAt handles a pointer press at a raw window position. A point is
// created only for the create button, inside the map frame, outside
// read-only mode.
func (s *Session) CreateAt(raw geometry.Point2D, button Button) (int, error) {
	if button != CreateButton {
		return -1, region.ErrNotCreateGesture
	}

	s.mu.RLock()
	readOnly := s.sel.ReadOnly
	inRegion := s.mapper.InRegion(raw)
	content, err := s.mapper.ToContent(raw)
	s.mu.RUnlock()

	switch {
	case readOnly:
		return -1, region.ErrReadOnly
	case !inRegion:
		return -1, region.ErrOutsideRegion
	case err != nil:
		return -1, err
	}
	return s.AddPoint(content)
}

// Remove deletes point i. Removing the selected point clears the selection;
// removing an earlier point shifts the selected index down by one.
func (s *Session) Remove(i int) error {
	s.mu.Lock()
	if s.sel.ReadOnly {
		s.mu.Unlock()
		return region.ErrReadOnly
	}
	if err := s.doc.RemovePoint(i); err != nil {
		s.mu.Unlock()
		return err
	}
	s.markerIDs = append(s.markerIDs[:i], s.markerIDs[i+1:]...)
	s.dirty = true

	selChanged := false
	switch {
	case s.sel.Index == i:
		s.sel.Index = NoSelection
		s.sel.Buffer = s.doc.Description
		selChanged = true
	case s.sel.Index > i:
		s.sel.Index--
		selChanged = true
	}
	sel := s.sel
	s.mu.Unlock()

	s.Emit(EventPointRemoved, i)
	if selChanged {
		s.Emit(EventSelectionChanged, sel)
	}
	return nil
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
