package app

import (
	"region-explorer/pkg/geometry"
)

// Command is an input-derived request applied to the session. UI callbacks
// build commands from the inputs they receive instead of touching the
// document directly.
type Command interface {
	apply(s *Session) error
}

// AddPoint asks for a point at a raw pointer position.
type AddPoint struct {
	Raw    geometry.Point2D
	Button Button
}

// SelectPoint selects a point by document index.
type SelectPoint struct {
	Index int
}

// SelectMarker selects the point behind a marker id from Markers.
type SelectMarker struct {
	ID string
}

// ClearSelection returns to the region description.
type ClearSelection struct{}

// EditDescription reports new editor text.
type EditDescription struct {
	Text string
}

// SetReadOnly toggles read-only mode.
type SetReadOnly struct {
	ReadOnly bool
}

// RemovePoint deletes a point by document index.
type RemovePoint struct {
	Index int
}

// Pan moves the map by a drag delta.
type Pan struct {
	Delta geometry.Point2D
}

// Zoom changes zoom by Step around a raw position.
type Zoom struct {
	At   geometry.Point2D
	Step float64
}

// Save writes the document to disk.
type Save struct{}

func (c AddPoint) apply(s *Session) error {
	_, err := s.CreateAt(c.Raw, c.Button)
	return err
}

func (c SelectPoint) apply(s *Session) error { return s.Select(c.Index) }

func (c SelectMarker) apply(s *Session) error { return s.SelectMarker(c.ID) }

func (ClearSelection) apply(s *Session) error {
	s.ClearSelection()
	return nil
}

func (c EditDescription) apply(s *Session) error {
	_, err := s.Edit(c.Text)
	return err
}

func (c SetReadOnly) apply(s *Session) error {
	s.SetReadOnly(c.ReadOnly)
	return nil
}

func (c RemovePoint) apply(s *Session) error { return s.Remove(c.Index) }

func (c Pan) apply(s *Session) error {
	s.PanBy(c.Delta)
	return nil
}

func (c Zoom) apply(s *Session) error {
	s.ZoomAt(c.At, c.Step)
	return nil
}

func (Save) apply(s *Session) error { return s.Save() }

// Apply runs a command synchronously against the session.
func (s *Session) Apply(cmd Command) error {
	return cmd.apply(s)
}
