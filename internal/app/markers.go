package app

import (
	"errors"
	"fmt"

	"region-explorer/pkg/geometry"
)

// ErrUnknownMarker is returned when a marker id no longer names a point.
var ErrUnknownMarker = errors.New("unknown marker")

// Marker is the render-time view of one point: a session-stable id, the
// document index it stands for and where to draw it. Markers are rebuilt
// from the document and the current view on every call.
type Marker struct {
	ID       string
	Index    int
	Point    geometry.Point2D // content space
	Draw     geometry.Point2D // draw space, marker centering applied
	Rect     geometry.Rect    // window space footprint
	Selected bool
}

// Markers returns the marker layout for the current document and view.
func (s *Session) Markers() []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	markers := make([]Marker, len(s.doc.Points))
	for i, p := range s.doc.Points {
		pos := p.Position()
		markers[i] = Marker{
			ID:       s.markerIDs[i],
			Index:    i,
			Point:    pos,
			Draw:     s.mapper.ToDraw(pos),
			Rect:     s.mapper.MarkerRect(pos),
			Selected: i == s.sel.Index,
		}
	}
	return markers
}

// MarkerAt returns the marker under a raw window position. The bool is
// false when no marker is hit.
func (s *Session) MarkerAt(raw geometry.Point2D) (Marker, bool) {
	markers := s.Markers()
	points := make([]geometry.Point2D, len(markers))
	for i, m := range markers {
		points[i] = m.Point
	}

	s.mu.RLock()
	i := s.mapper.MarkerAt(raw, points)
	s.mu.RUnlock()
	if i < 0 {
		return Marker{}, false
	}
	return markers[i], true
}

// IndexOf returns the current document index of a marker id, or -1.
func (s *Session) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, mid := range s.markerIDs {
		if mid == id {
			return i
		}
	}
	return -1
}

// SelectMarker selects the point a marker id stands for. Ids survive
// removals of other points, so a marker picked before a renumbering still
// selects the same point.
func (s *Session) SelectMarker(id string) error {
	i := s.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMarker, id)
	}
	return s.Select(i)
}
