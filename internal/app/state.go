// Package app provides the editing session, selection state and events.
package app

import (
	"errors"
	"path/filepath"
	"sync"

	"region-explorer/internal/image"
	"region-explorer/internal/project"
	"region-explorer/internal/region"
	"region-explorer/internal/viewport"
	"region-explorer/pkg/geometry"

	"github.com/google/uuid"
)

// EventType identifies different session events.
type EventType int

const (
	EventDocumentLoaded EventType = iota
	EventPointAdded
	EventPointRemoved
	EventSelectionChanged
	EventDescriptionChanged
	EventReadOnlyChanged
	EventViewChanged
	EventSaved
	EventExternalChange
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Options configures a Session.
type Options struct {
	Viewport viewport.Config

	// DescriptionCapacity caps the edit buffer in runes; 0 disables the cap.
	DescriptionCapacity int
}

// Session owns the open region document and everything the UI edits about
// it. All mutations go through the session; UI layers only forward inputs.
type Session struct {
	mu sync.RWMutex

	path        string
	resourceDir string
	decoder     image.Decoder

	doc       *region.Document
	layer     *image.Layer
	mapper    *viewport.Mapper
	sel       Selection
	markerIDs []string
	capacity  int
	dirty     bool

	watcher *DocumentWatcher

	// Event listeners
	listeners map[EventType][]EventListener
}

// NewSession creates a session with an empty document.
func NewSession(opts Options) *Session {
	s := &Session{
		doc:       region.New("", ""),
		mapper:    viewport.New(opts.Viewport),
		sel:       Selection{Index: NoSelection},
		capacity:  opts.DescriptionCapacity,
		listeners: make(map[EventType][]EventListener),
	}
	return s
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Open loads the region file at path and decodes its image from resourceDir.
// Either failure is returned as a *region.LoadError and leaves the session
// unchanged.
func (s *Session) Open(path, resourceDir string, dec image.Decoder) error {
	doc, err := project.Load(path)
	if err != nil {
		return err
	}

	imagePath := filepath.Join(resourceDir, doc.Image)
	layer, err := dec.Decode(imagePath)
	if err != nil {
		return &region.LoadError{Path: imagePath, Err: err}
	}

	s.mu.Lock()
	s.resourceDir = resourceDir
	s.decoder = dec
	s.mu.Unlock()

	s.SetDocument(doc, path, layer)
	return nil
}

// Reload re-reads the current document from disk, discarding unsaved edits.
func (s *Session) Reload() error {
	s.mu.RLock()
	path, dir, dec := s.path, s.resourceDir, s.decoder
	s.mu.RUnlock()

	if path == "" || dec == nil {
		return errors.New("no document open")
	}
	return s.Open(path, dir, dec)
}

// SetDocument replaces the session's document. layer may be nil when no
// image is needed. Selection resets to the region description.
func (s *Session) SetDocument(doc *region.Document, path string, layer *image.Layer) {
	s.mu.Lock()
	s.doc = doc
	if s.doc.Points == nil {
		s.doc.Points = []region.MapPoint{}
	}
	s.path = path
	s.layer = layer
	s.dirty = false
	s.sel = Selection{Index: NoSelection, ReadOnly: s.sel.ReadOnly, Buffer: doc.Description}
	s.markerIDs = make([]string, len(doc.Points))
	for i := range s.markerIDs {
		s.markerIDs[i] = uuid.NewString()
	}
	s.mu.Unlock()

	s.Emit(EventDocumentLoaded, path)
}

// Path returns the document's file path.
func (s *Session) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Document returns a copy of the current document.
func (s *Session) Document() *region.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Image returns the decoded map image, or nil.
func (s *Session) Image() *image.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layer
}

// Dirty reports whether the document changed since it was loaded or saved.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Save writes the document back to its path, keeping a backup of the
// previous file. Saving is refused in read-only mode.
func (s *Session) Save() error {
	s.mu.Lock()
	if s.sel.ReadOnly {
		s.mu.Unlock()
		return region.ErrReadOnly
	}
	if s.path == "" {
		s.mu.Unlock()
		return &region.SaveError{Op: "write", Err: errors.New("document has no path")}
	}
	doc := s.doc.Clone()
	path := s.path
	w := s.watcher
	s.mu.Unlock()

	save := func() error { return project.Save(doc, path) }
	var err error
	if w != nil {
		err = w.Suppress(save)
	} else {
		err = save()
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.doc.Equal(doc) {
		s.dirty = false
	}
	s.mu.Unlock()

	s.Emit(EventSaved, path)
	return nil
}

// Watch starts reporting external modifications of the document file as
// EventExternalChange.
func (s *Session) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	if s.path == "" {
		return errors.New("no document open")
	}

	w, err := NewDocumentWatcher(s.path)
	if err != nil {
		return err
	}
	path := s.path
	w.OnChange(func() { s.Emit(EventExternalChange, path) })
	w.Start()
	s.watcher = w
	return nil
}

// Close stops the file watcher, if any.
func (s *Session) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w != nil {
		return w.Stop()
	}
	return nil
}

// Viewport returns the fixed map frame layout.
func (s *Session) Viewport() viewport.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapper.Config()
}

// View returns the current pan offset and zoom factor.
func (s *Session) View() (pan geometry.Point2D, zoom float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapper.Pan(), s.mapper.Zoom()
}

// PanBy moves the map by a drag delta. Only an actual move is reported as
// EventViewChanged; the same holds for the zoom calls below.
func (s *Session) PanBy(delta geometry.Point2D) {
	s.mu.Lock()
	changed := s.mapper.PanBy(delta)
	s.mu.Unlock()
	if changed {
		s.Emit(EventViewChanged, nil)
	}
}

// ZoomAt zooms by step around the raw window position.
func (s *Session) ZoomAt(raw geometry.Point2D, step float64) {
	s.mu.Lock()
	changed := s.mapper.ZoomAt(raw, step)
	s.mu.Unlock()
	if changed {
		s.Emit(EventViewChanged, nil)
	}
}

// SetZoom sets the zoom factor, clamped to the configured range.
func (s *Session) SetZoom(zoom float64) {
	s.mu.Lock()
	changed := s.mapper.SetZoom(zoom)
	s.mu.Unlock()
	if changed {
		s.Emit(EventViewChanged, nil)
	}
}

// CenterImage centers the map image in the frame.
func (s *Session) CenterImage() {
	s.mu.Lock()
	if s.layer != nil {
		s.mapper.Center(s.layer.Size())
	}
	s.mu.Unlock()
	s.Emit(EventViewChanged, nil)
}
