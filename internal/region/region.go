// Package region provides the region document: a named map image with
// annotated points of interest.
package region

import (
	"region-explorer/pkg/geometry"
)

// MapPoint is a single annotated location. X and Y are content-space
// coordinates, relative to the unscaled image origin.
type MapPoint struct {
	X           float64 `json:"x" yaml:"x" toml:"x"`
	Y           float64 `json:"y" yaml:"y" toml:"y"`
	Description string  `json:"description" yaml:"description" toml:"description"`
}

// NewMapPoint creates a MapPoint.
func NewMapPoint(x, y float64, description string) MapPoint {
	return MapPoint{X: x, Y: y, Description: description}
}

// Position returns the point's content-space position.
func (p MapPoint) Position() geometry.Point2D {
	return geometry.Point2D{X: p.X, Y: p.Y}
}

// Document is a region: its name, backing image filename, region-level
// description and ordered list of points. Points are kept in insertion order.
type Document struct {
	Name        string     `json:"name" yaml:"name" toml:"name"`
	Image       string     `json:"image" yaml:"image" toml:"image"`
	Description string     `json:"description" yaml:"description" toml:"description"`
	Points      []MapPoint `json:"points" yaml:"points" toml:"points"`
}

// New creates an empty document.
func New(name, image string) *Document {
	return &Document{
		Name:   name,
		Image:  image,
		Points: []MapPoint{},
	}
}

// Len returns the number of points.
func (d *Document) Len() int {
	return len(d.Points)
}

// AddPoint appends a point with an empty description and returns its index,
// which is always the last one.
func (d *Document) AddPoint(p geometry.Point2D) int {
	d.Points = append(d.Points, MapPoint{X: p.X, Y: p.Y})
	return len(d.Points) - 1
}

// Point returns the point at index i.
func (d *Document) Point(i int) (MapPoint, error) {
	if i < 0 || i >= len(d.Points) {
		return MapPoint{}, &IndexError{Index: i, Len: len(d.Points)}
	}
	return d.Points[i], nil
}

// UpdatePointDescription replaces the description of point i.
func (d *Document) UpdatePointDescription(i int, text string) error {
	if i < 0 || i >= len(d.Points) {
		return &IndexError{Index: i, Len: len(d.Points)}
	}
	d.Points[i].Description = text
	return nil
}

// UpdateRegionDescription replaces the region-level description.
func (d *Document) UpdateRegionDescription(text string) {
	d.Description = text
}

// RemovePoint deletes point i. Later points shift down by one.
func (d *Document) RemovePoint(i int) error {
	if i < 0 || i >= len(d.Points) {
		return &IndexError{Index: i, Len: len(d.Points)}
	}
	d.Points = append(d.Points[:i], d.Points[i+1:]...)
	return nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.Points = make([]MapPoint, len(d.Points))
	copy(c.Points, d.Points)
	return &c
}

// Equal reports whether two documents match field for field, including
// point order. A nil and an empty point list compare equal.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Name != other.Name || d.Image != other.Image || d.Description != other.Description {
		return false
	}
	if len(d.Points) != len(other.Points) {
		return false
	}
	for i := range d.Points {
		if d.Points[i] != other.Points[i] {
			return false
		}
	}
	return true
}
