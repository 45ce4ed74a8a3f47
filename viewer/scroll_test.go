package viewer

import (
	"testing"

	"github.com/gogpu/gg"
)

// recordingScroller captures the last scroll request
type recordingScroller struct {
	offset float64
	smooth bool
	calls  int
}

func (s *recordingScroller) ScrollTo(offset float64, smooth bool) {
	s.offset = offset
	s.smooth = smooth
	s.calls++
}

// newScrollViewer builds a viewer with hand-placed pages, bypassing the
// pipeline so offsets and scales can be exact
func newScrollViewer(pages ...*Page) *Viewer {
	v := New(nil, testViewerConfig())
	for _, page := range pages {
		if page.Overlay == nil {
			page.Overlay = gg.NewContext(1, 1)
		}
		v.registry.Register(page)
	}
	return v
}

func TestJumpToUpperThird(t *testing.T) {
	v := newScrollViewer(
		&Page{Number: 1, Scale: 1.5, OffsetTop: 0},
		&Page{Number: 2, Scale: 1.5, OffsetTop: 1200},
		&Page{Number: 3, Scale: 1.5, OffsetTop: 2400},
	)
	scroller := &recordingScroller{}
	v.SetScroller(scroller)

	// Page 3 at offset 2400, y1=50 at scale 1.5, 900px viewport:
	// 2400 + 75 - 300 = 2175
	offset, ok := v.JumpTo(2, 0, 50, 0, 0)
	if !ok {
		t.Fatal("Expected jump to a registered page to succeed")
	}
	if offset != 2175 {
		t.Errorf("Expected scroll offset 2175, got: %f", offset)
	}
	if scroller.calls != 1 || scroller.offset != 2175 || !scroller.smooth {
		t.Errorf("Expected one smooth scroll to 2175, got: %+v", scroller)
	}
}

func TestJumpToClampsAtZero(t *testing.T) {
	v := newScrollViewer(&Page{Number: 1, Scale: 1.0, OffsetTop: 0})

	offset, ok := v.JumpTo(0, 0, 10, 0, 0)
	if !ok {
		t.Fatal("Expected jump to succeed")
	}
	if offset != 0 {
		t.Errorf("Expected offset clamped to 0, got: %f", offset)
	}
}

func TestJumpToUnregisteredPage(t *testing.T) {
	v := newScrollViewer(&Page{Number: 1, Scale: 1.0, OffsetTop: 0})
	scroller := &recordingScroller{}
	v.SetScroller(scroller)

	offset, ok := v.JumpTo(5, 0, 50, 0, 0)
	if ok {
		t.Error("Expected jump to an unregistered page to report failure")
	}
	if offset != 0 {
		t.Errorf("Expected zero offset for missing page, got: %f", offset)
	}
	if scroller.calls != 0 {
		t.Error("Expected no scroll for a missing page")
	}
}

func TestJumpToNominalScaleFallback(t *testing.T) {
	v := newScrollViewer(&Page{Number: 1, Scale: 0, OffsetTop: 600})
	v.nominalScale = 2.0

	offset, ok := v.JumpTo(0, 0, 100, 0, 0)
	if !ok {
		t.Fatal("Expected jump to succeed")
	}
	// 600 + 100*2.0 - 300 = 500
	if offset != 500 {
		t.Errorf("Expected offset 500 via nominal scale fallback, got: %f", offset)
	}
}

func TestJumpToWithoutScroller(t *testing.T) {
	v := newScrollViewer(&Page{Number: 1, Scale: 1.0, OffsetTop: 0})

	// No scroller registered; the computation still succeeds
	if _, ok := v.JumpTo(0, 0, 500, 0, 0); !ok {
		t.Error("Expected jump to succeed with no scroller attached")
	}
}
