package viewer

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestCompositePageCarriesHighlight(t *testing.T) {
	v := newReadyViewer(t, fakePage{width: 400, height: 500})
	v.SetHighlights([]Position{{PageIndex: 0, X1: 10, Y1: 20, X2: 110, Y2: 40}})

	composited, err := v.CompositePage(1)
	if err != nil {
		t.Fatalf("CompositePage failed: %v", err)
	}

	bounds := composited.Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 1000 {
		t.Errorf("Expected 800x1000 composite, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	// The highlight box center (in pixel space) must differ from the blank
	// raster; a corner far from any highlight must not
	r, _, _, _ := composited.At(120, 60).RGBA()
	if r == 0 {
		t.Error("Expected highlight fill to show in the composite")
	}
	r, g, b, _ := composited.At(700, 900).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Error("Expected untouched raster outside the highlight")
	}
}

func TestCompositePageUnregistered(t *testing.T) {
	v := newReadyViewer(t, fakePage{width: 400, height: 500})

	if _, err := v.CompositePage(9); err == nil {
		t.Error("Expected an error compositing an unregistered page")
	}
}

func TestThumbnailWidth(t *testing.T) {
	v := newReadyViewer(t, fakePage{width: 400, height: 500})

	thumb, err := v.Thumbnail(1, 200)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if thumb.Bounds().Dx() != 200 {
		t.Errorf("Expected 200px wide thumbnail, got: %d", thumb.Bounds().Dx())
	}
	// Aspect ratio preserved: 800x1000 -> 200x250
	if thumb.Bounds().Dy() != 250 {
		t.Errorf("Expected 250px tall thumbnail, got: %d", thumb.Bounds().Dy())
	}
}

func TestExportPage(t *testing.T) {
	v := newReadyViewer(t, fakePage{width: 400, height: 500})
	exportDir := t.TempDir()

	fileName, err := v.ExportPage(1, exportDir)
	if err != nil {
		t.Fatalf("ExportPage failed: %v", err)
	}
	if filepath.Dir(fileName) != exportDir {
		t.Errorf("Expected export under %s, got: %s", exportDir, fileName)
	}

	info, err := os.Stat(fileName)
	if err != nil {
		t.Fatalf("Exported file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected a non-empty PNG export")
	}
}

func TestCompositePageConcurrentWithHighlights(t *testing.T) {
	v := newReadyViewer(t, fakePage{width: 50, height: 50})

	// Repainting and compositing the same page must be safe to interleave;
	// the overlay snapshot is taken under the viewer lock
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			v.SetHighlights([]Position{{PageIndex: 0, X1: 5, Y1: 5, X2: 45, Y2: 45}})
			v.SetHighlights(nil)
		}
	}()

	for i := 0; i < 200; i++ {
		if _, err := v.CompositePage(1); err != nil {
			t.Fatalf("CompositePage failed: %v", err)
		}
	}
	<-done
}

func TestCompositeDoesNotMutateRaster(t *testing.T) {
	v := newReadyViewer(t, fakePage{width: 400, height: 500})
	v.SetHighlights([]Position{{PageIndex: 0, X1: 10, Y1: 20, X2: 110, Y2: 40}})

	if _, err := v.CompositePage(1); err != nil {
		t.Fatalf("CompositePage failed: %v", err)
	}

	raster, ok := v.Page(1).Raster.(*image.RGBA)
	if !ok {
		t.Fatal("Expected RGBA raster from fake decoder")
	}
	for _, b := range raster.Pix {
		if b != 0 {
			t.Fatal("Expected the raster to stay untouched by compositing")
		}
	}
}
