package viewer

import (
	"bytes"
	"image"
	"testing"
)

// overlayImageBytes snapshots the overlay pixels of a page
func overlayImageBytes(t *testing.T, page *Page) []byte {
	t.Helper()
	img, ok := page.Overlay.Image().(*image.RGBA)
	if !ok {
		t.Fatalf("Expected overlay image to be *image.RGBA, got %T", page.Overlay.Image())
	}
	out := make([]byte, len(img.Pix))
	copy(out, img.Pix)
	return out
}

// overlayBlank reports whether every overlay pixel is fully transparent
func overlayBlank(t *testing.T, page *Page) bool {
	t.Helper()
	for _, b := range overlayImageBytes(t, page) {
		if b != 0 {
			return false
		}
	}
	return true
}

func TestParsePositions(t *testing.T) {
	raw := [][]float64{
		{0, 10, 10, 20, 20},
		{1, 5, 5}, //malformed, dropped
		{2, 1, 2, 3, 4},
	}
	positions := ParsePositions(raw)
	if len(positions) != 2 {
		t.Fatalf("Expected 2 valid positions, got: %d", len(positions))
	}
	if positions[0].PageIndex != 0 || positions[0].X2 != 20 {
		t.Errorf("First position parsed wrong: %+v", positions[0])
	}
	if positions[1].PageNumber() != 3 {
		t.Errorf("Expected 1-based page number 3, got: %d", positions[1].PageNumber())
	}
}

func TestRedrawEmptyClearsAllOverlays(t *testing.T) {
	v := newReadyViewer(t,
		fakePage{width: 400, height: 500},
		fakePage{width: 400, height: 500},
	)

	v.SetHighlights([]Position{
		{PageIndex: 0, X1: 10, Y1: 10, X2: 100, Y2: 50},
		{PageIndex: 1, X1: 20, Y1: 20, X2: 80, Y2: 60},
	})
	if overlayBlank(t, v.Page(1)) || overlayBlank(t, v.Page(2)) {
		t.Fatal("Expected highlights to paint both overlays")
	}

	v.SetHighlights(nil)
	if !overlayBlank(t, v.Page(1)) || !overlayBlank(t, v.Page(2)) {
		t.Error("Expected empty highlight set to clear every overlay to transparent")
	}
}

func TestRedrawGroupsByPage(t *testing.T) {
	pages := make([]fakePage, 5)
	for i := range pages {
		pages[i] = fakePage{width: 400, height: 500}
	}
	v := newReadyViewer(t, pages...)

	// Page indexes 0, 2 and 4 map to pages 1, 3 and 5
	v.SetHighlights([]Position{
		{PageIndex: 0, X1: 10, Y1: 10, X2: 100, Y2: 50},
		{PageIndex: 2, X1: 10, Y1: 10, X2: 100, Y2: 50},
		{PageIndex: 4, X1: 10, Y1: 10, X2: 100, Y2: 50},
	})

	for _, pageNumber := range []int{1, 3, 5} {
		if overlayBlank(t, v.Page(pageNumber)) {
			t.Errorf("Expected page %d overlay to be painted", pageNumber)
		}
	}
	for _, pageNumber := range []int{2, 4} {
		if !overlayBlank(t, v.Page(pageNumber)) {
			t.Errorf("Expected page %d overlay to stay clear", pageNumber)
		}
	}
}

func TestRedrawIdempotent(t *testing.T) {
	v := newReadyViewer(t, fakePage{width: 400, height: 500})

	set := []Position{{PageIndex: 0, X1: 10, Y1: 20, X2: 110, Y2: 40}}
	v.SetHighlights(set)
	first := overlayImageBytes(t, v.Page(1))

	v.Redraw()
	second := overlayImageBytes(t, v.Page(1))

	if !bytes.Equal(first, second) {
		t.Error("Expected two redraws of the same set to produce identical overlay pixels")
	}
}

func TestRedrawSkipsMalformedEntries(t *testing.T) {
	v := newReadyViewer(t,
		fakePage{width: 400, height: 500},
		fakePage{width: 400, height: 500},
	)

	// The malformed second entry is dropped at parse time; the valid entry
	// still draws
	positions := ParsePositions([][]float64{
		{0, 10, 10, 20, 20},
		{1, 5, 5},
	})
	v.SetHighlights(positions)

	if overlayBlank(t, v.Page(1)) {
		t.Error("Expected the valid entry to be drawn")
	}
	if !overlayBlank(t, v.Page(2)) {
		t.Error("Expected no drawing for the malformed entry's page")
	}
}

func TestRedrawUnregisteredPageSkipped(t *testing.T) {
	v := newReadyViewer(t, fakePage{width: 400, height: 500})

	// Page index 7 is far beyond the registered set; the draw must not fail
	v.SetHighlights([]Position{
		{PageIndex: 7, X1: 10, Y1: 10, X2: 100, Y2: 50},
		{PageIndex: 0, X1: 10, Y1: 10, X2: 100, Y2: 50},
	})
	if overlayBlank(t, v.Page(1)) {
		t.Error("Expected registered page to be painted even when the set references missing pages")
	}
}

func TestHighlightPixelAlignment(t *testing.T) {
	// 400pt page in an 840px container with 40px padding renders at scale 2,
	// so a box at (10, 20)-(110, 40) in points lands at (20, 40)-(220, 80)
	v := newReadyViewer(t, fakePage{width: 400, height: 500})
	v.SetHighlights([]Position{{PageIndex: 0, X1: 10, Y1: 20, X2: 110, Y2: 40}})

	img, ok := v.Page(1).Overlay.Image().(*image.RGBA)
	if !ok {
		t.Fatal("Expected RGBA overlay")
	}

	// Inside the box there is fill; well outside there is nothing
	if _, _, _, a := img.At(120, 60).RGBA(); a == 0 {
		t.Error("Expected paint inside the scaled highlight box")
	}
	if _, _, _, a := img.At(400, 400).RGBA(); a != 0 {
		t.Error("Expected no paint far outside the highlight box")
	}
}
