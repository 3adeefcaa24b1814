package app

import (
	"errors"
	goimage "image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"region-explorer/internal/image"
	"region-explorer/internal/project"
	"region-explorer/internal/region"
	"region-explorer/internal/viewport"
	"region-explorer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDecoder struct {
	w, h int
	err  error
	path string
}

func (d *fakeDecoder) Decode(path string) (*image.Layer, error) {
	d.path = path
	if d.err != nil {
		return nil, d.err
	}
	return &image.Layer{Path: path, Image: goimage.NewRGBA(goimage.Rect(0, 0, d.w, d.h))}, nil
}

func testOptions() Options {
	return Options{Viewport: viewport.DefaultConfig(), DescriptionCapacity: 5000}
}

func newTestSession(t *testing.T, points ...region.MapPoint) *Session {
	t.Helper()
	doc := region.New("Kellua Saari", "kellua_saari.png")
	doc.Description = "region"
	doc.Points = append(doc.Points, points...)

	path := filepath.Join(t.TempDir(), "kellua_saari.ron")
	require.NoError(t, project.Save(doc, path))

	s := NewSession(testOptions())
	require.NoError(t, s.Open(path, t.TempDir(), &fakeDecoder{w: 800, h: 600}))
	return s
}

func TestOpenResolvesImageAgainstResourceDir(t *testing.T) {
	doc := region.New("r", "map.png")
	path := filepath.Join(t.TempDir(), "r.json")
	require.NoError(t, project.Save(doc, path))

	dec := &fakeDecoder{w: 10, h: 20}
	s := NewSession(testOptions())
	require.NoError(t, s.Open(path, "resources", dec))

	assert.Equal(t, filepath.Join("resources", "map.png"), dec.path)
	assert.Equal(t, 10, s.Image().Width())
	assert.Equal(t, path, s.Path())
}

func TestOpenImageFailureIsLoadError(t *testing.T) {
	doc := region.New("r", "map.png")
	path := filepath.Join(t.TempDir(), "r.json")
	require.NoError(t, project.Save(doc, path))

	s := NewSession(testOptions())
	err := s.Open(path, "resources", &fakeDecoder{err: errors.New("corrupt")})
	var loadErr *region.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, filepath.Join("resources", "map.png"), loadErr.Path)
	assert.Equal(t, "", s.Path())
}

func TestInitialSelectionEditsRegion(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(10, 20, "a"))

	sel := s.Selection()
	assert.Equal(t, NoSelection, sel.Index)
	assert.False(t, sel.HasPoint())
	assert.Equal(t, "region", sel.Buffer)
	assert.False(t, s.Dirty())
}

func TestSelectThenEditBindsToPoint(t *testing.T) {
	s := newTestSession(t,
		region.NewMapPoint(1, 1, "one"),
		region.NewMapPoint(2, 2, "two"),
		region.NewMapPoint(3, 3, "three"),
	)

	require.NoError(t, s.Select(1))
	assert.Equal(t, "two", s.Selection().Buffer)

	committed, err := s.Edit("T")
	require.NoError(t, err)
	assert.True(t, committed)

	doc := s.Document()
	assert.Equal(t, "T", doc.Points[1].Description)
	assert.Equal(t, "one", doc.Points[0].Description)
	assert.Equal(t, "three", doc.Points[2].Description)
	assert.Equal(t, "region", doc.Description)
	assert.True(t, s.Dirty())
}

func TestEditWithoutSelectionUpdatesRegion(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"))

	_, err := s.Edit("new region text")
	require.NoError(t, err)

	doc := s.Document()
	assert.Equal(t, "new region text", doc.Description)
	assert.Equal(t, "one", doc.Points[0].Description)
}

func TestSelectOutOfRange(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"))

	var idxErr *region.IndexError
	assert.True(t, errors.As(s.Select(1), &idxErr))
	assert.True(t, errors.As(s.Select(-1), &idxErr))
	assert.Equal(t, NoSelection, s.Selection().Index)
}

func TestSelectionChangeKeepsCommittedEdits(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"), region.NewMapPoint(2, 2, "two"))

	require.NoError(t, s.Select(0))
	_, err := s.Edit("typed")
	require.NoError(t, err)
	require.NoError(t, s.Select(1))

	assert.Equal(t, "two", s.Selection().Buffer)
	assert.Equal(t, "typed", s.Document().Points[0].Description)

	s.ClearSelection()
	assert.Equal(t, "region", s.Selection().Buffer)
}

func TestReadOnlyFreezesMutations(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"))
	require.NoError(t, s.Select(0))
	before := s.Document()

	s.SetReadOnly(true)

	_, err := s.AddPoint(geometry.NewPoint2D(5, 5))
	assert.True(t, errors.Is(err, region.ErrReadOnly))

	_, err = s.CreateAt(geometry.NewPoint2D(200, 200), ButtonSecondary)
	assert.True(t, errors.Is(err, region.ErrReadOnly))

	committed, err := s.Edit("ignored")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, "ignored", s.Selection().Buffer)

	assert.True(t, errors.Is(s.Remove(0), region.ErrReadOnly))
	assert.True(t, errors.Is(s.Save(), region.ErrReadOnly))

	assert.True(t, before.Equal(s.Document()))
	assert.False(t, s.Dirty())
}

func TestLeavingReadOnlyDoesNotRevertOrCommit(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"))
	require.NoError(t, s.Select(0))

	s.SetReadOnly(true)
	_, err := s.Edit("pending")
	require.NoError(t, err)
	s.SetReadOnly(false)

	assert.Equal(t, "pending", s.Selection().Buffer)
	assert.Equal(t, "one", s.Document().Points[0].Description)

	_, err = s.Edit("pending!")
	require.NoError(t, err)
	assert.Equal(t, "pending!", s.Document().Points[0].Description)
}

func TestSelectDiscardsUncommittedBuffer(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"), region.NewMapPoint(2, 2, "two"))
	require.NoError(t, s.Select(0))

	s.SetReadOnly(true)
	_, err := s.Edit("lost")
	require.NoError(t, err)
	require.NoError(t, s.Select(1))
	s.SetReadOnly(false)
	require.NoError(t, s.Select(0))

	assert.Equal(t, "one", s.Selection().Buffer)
	assert.Equal(t, "one", s.Document().Points[0].Description)
}

func TestEditTruncatesToCapacity(t *testing.T) {
	opts := testOptions()
	opts.DescriptionCapacity = 3
	s := NewSession(opts)
	s.SetDocument(region.New("r", "r.png"), "", nil)

	_, err := s.Edit("äbcdef")
	require.NoError(t, err)
	assert.Equal(t, "äbc", s.Document().Description)

	opts.DescriptionCapacity = 0
	s = NewSession(opts)
	s.SetDocument(region.New("r", "r.png"), "", nil)
	long := strings.Repeat("x", 6000)
	_, err = s.Edit(long)
	require.NoError(t, err)
	assert.Equal(t, long, s.Document().Description)
}

func TestCreateAtPlacesPointInContentSpace(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"))
	require.NoError(t, s.Select(0))
	s.SetZoom(0.5)
	s.PanBy(geometry.NewPoint2D(100, 50))

	// raw (237,154) - origin (17,54) - pan (100,50) = (120,50) / 0.5
	idx, err := s.CreateAt(geometry.NewPoint2D(237, 154), ButtonSecondary)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	doc := s.Document()
	require.Len(t, doc.Points, 2)
	assert.Equal(t, region.MapPoint{X: 240, Y: 100}, doc.Points[1])
	assert.Equal(t, 0, s.Selection().Index, "selection stays on the previous point")
}

func TestCreateAtRejectsWrongGestureAndOutsideFrame(t *testing.T) {
	s := newTestSession(t)

	_, err := s.CreateAt(geometry.NewPoint2D(200, 200), ButtonPrimary)
	assert.True(t, errors.Is(err, region.ErrNotCreateGesture))

	_, err = s.CreateAt(geometry.NewPoint2D(650, 200), ButtonSecondary)
	assert.True(t, errors.Is(err, region.ErrOutsideRegion))

	assert.Equal(t, 0, s.Document().Len())
}

func TestRemoveRenumbersSelection(t *testing.T) {
	pts := []region.MapPoint{
		region.NewMapPoint(0, 0, "p0"),
		region.NewMapPoint(1, 1, "p1"),
		region.NewMapPoint(2, 2, "p2"),
	}

	t.Run("selected point removed", func(t *testing.T) {
		s := newTestSession(t, pts...)
		require.NoError(t, s.Select(1))
		require.NoError(t, s.Remove(1))
		assert.Equal(t, NoSelection, s.Selection().Index)
		assert.Equal(t, "region", s.Selection().Buffer)
	})

	t.Run("earlier point removed", func(t *testing.T) {
		s := newTestSession(t, pts...)
		require.NoError(t, s.Select(2))
		require.NoError(t, s.Remove(0))
		assert.Equal(t, 1, s.Selection().Index)
		assert.Equal(t, "p2", s.Selection().Buffer)

		_, err := s.Edit("still p2")
		require.NoError(t, err)
		assert.Equal(t, "still p2", s.Document().Points[1].Description)
	})

	t.Run("later point removed", func(t *testing.T) {
		s := newTestSession(t, pts...)
		require.NoError(t, s.Select(0))
		require.NoError(t, s.Remove(2))
		assert.Equal(t, 0, s.Selection().Index)
	})

	t.Run("out of range", func(t *testing.T) {
		s := newTestSession(t, pts...)
		var idxErr *region.IndexError
		assert.True(t, errors.As(s.Remove(3), &idxErr))
	})
}

func TestSaveThenReload(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(10, 20, "a"))
	require.NoError(t, s.Select(0))
	_, err := s.Edit("b")
	require.NoError(t, err)
	require.NoError(t, s.Save())
	assert.False(t, s.Dirty())

	_, err = os.Stat(project.BackupPath(s.Path()))
	require.NoError(t, err)

	require.NoError(t, s.Reload())
	assert.Equal(t, "b", s.Document().Points[0].Description)
}

func TestEventsFire(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"))

	var mu sync.Mutex
	var got []EventType
	record := func(ev EventType) EventListener {
		return func(interface{}) {
			mu.Lock()
			got = append(got, ev)
			mu.Unlock()
		}
	}
	for _, ev := range []EventType{EventPointAdded, EventSelectionChanged, EventDescriptionChanged, EventReadOnlyChanged, EventSaved} {
		s.On(ev, record(ev))
	}

	_, err := s.AddPoint(geometry.NewPoint2D(3, 3))
	require.NoError(t, err)
	require.NoError(t, s.Select(1))
	_, err = s.Edit("x")
	require.NoError(t, err)
	require.NoError(t, s.Save())
	s.SetReadOnly(true)
	s.SetReadOnly(true)

	assert.Equal(t, []EventType{
		EventPointAdded,
		EventSelectionChanged,
		EventDescriptionChanged,
		EventSaved,
		EventReadOnlyChanged,
	}, got)
}

func TestMarkersFollowView(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(40, 40, "a"), region.NewMapPoint(100, 100, "b"))
	require.NoError(t, s.Select(1))
	s.SetZoom(0.5)
	s.PanBy(geometry.NewPoint2D(100, 50))

	markers := s.Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, geometry.NewPoint2D(116, 60), markers[0].Draw)
	assert.False(t, markers[0].Selected)
	assert.True(t, markers[1].Selected)
	assert.NotEqual(t, markers[0].ID, markers[1].ID)

	id := markers[1].ID
	require.NoError(t, s.Remove(0))
	assert.Equal(t, 0, s.IndexOf(id))
	assert.Equal(t, -1, s.IndexOf("missing"))

	// marker rect starts at draw + origin (17,54)
	r := s.Markers()[0].Rect
	hit, ok := s.MarkerAt(geometry.NewPoint2D(r.X+1, r.Y+1))
	require.True(t, ok)
	assert.Equal(t, id, hit.ID)
	assert.Equal(t, 0, hit.Index)

	_, ok = s.MarkerAt(geometry.NewPoint2D(r.X-50, r.Y-50))
	assert.False(t, ok)
}

func TestSelectMarkerFollowsRenumbering(t *testing.T) {
	s := newTestSession(t,
		region.NewMapPoint(40, 40, "a"),
		region.NewMapPoint(100, 100, "b"),
		region.NewMapPoint(160, 160, "c"),
	)
	id := s.Markers()[2].ID

	require.NoError(t, s.Remove(0))
	require.NoError(t, s.Apply(SelectMarker{ID: id}))
	assert.Equal(t, 1, s.Selection().Index)
	assert.Equal(t, "c", s.Selection().Buffer)

	require.NoError(t, s.Remove(1))
	err := s.Apply(SelectMarker{ID: id})
	assert.ErrorIs(t, err, ErrUnknownMarker)
	assert.Equal(t, NoSelection, s.Selection().Index)
}

func TestViewChangedOnlyOnRealChange(t *testing.T) {
	s := newTestSession(t)
	var count int
	s.On(EventViewChanged, func(interface{}) { count++ })

	s.SetZoom(1.0)
	require.Equal(t, 1, count)
	pan, _ := s.View()

	require.NoError(t, s.Apply(Zoom{At: geometry.NewPoint2D(300, 200), Step: 0.1}))
	require.NoError(t, s.Apply(Pan{}))
	s.SetZoom(4)
	assert.Equal(t, 1, count)
	gotPan, zoom := s.View()
	assert.Equal(t, pan, gotPan)
	assert.Equal(t, 1.0, zoom)

	require.NoError(t, s.Apply(Zoom{At: geometry.NewPoint2D(300, 200), Step: -0.1}))
	require.NoError(t, s.Apply(Pan{Delta: geometry.NewPoint2D(5, 5)}))
	assert.Equal(t, 3, count)
}

func TestWatchReportsExternalChange(t *testing.T) {
	s := newTestSession(t, region.NewMapPoint(1, 1, "one"))
	require.NoError(t, s.Watch())
	t.Cleanup(func() { s.Close() })

	changes := make(chan struct{}, 8)
	s.On(EventExternalChange, func(interface{}) { changes <- struct{}{} })

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Save())
	}
	// Give the watcher time to deliver whatever fsnotify queued for the saves.
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, changes, "own saves must not be reported")

	// Ensure a distinct modification time on coarse filesystems.
	time.Sleep(20 * time.Millisecond)
	other := region.New("edited elsewhere", "x.png")
	require.NoError(t, project.Save(other, s.Path()))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("external change not reported")
	}
}
