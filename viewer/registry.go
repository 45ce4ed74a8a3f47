// Package viewer implements the paginated-document coordinate-overlay engine:
// it rasterizes each page of a document at a scale derived from the viewer
// container width, keeps a per-page overlay surface aligned with the raster,
// paints highlight boxes given in document-point space, and computes scroll
// offsets that bring a requested box into view.
package viewer

import (
	"image"
	"log/slog"

	"github.com/gogpu/gg"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Page holds the render state of one document page. The raster and the
// overlay are always the same size in device pixels; the overlay is the only
// layer repainted after the initial render.
type Page struct {
	Number       int     //1-based page number
	NativeWidth  float64 //document points at scale 1.0
	NativeHeight float64
	Scale        float64
	OffsetTop    float64 //pixel offset of the page top within the scroll region
	Raster       image.Image
	Overlay      *gg.Context
}

// Registry maps page numbers to their render state. It is pure bookkeeping:
// the pipeline writes to it, the highlight renderer and scroll navigator only
// read. Callers serialize access; see Viewer.
type Registry struct {
	pages map[int]*Page
	order []int
}

// NewRegistry creates an empty page registry
func NewRegistry() *Registry {
	return &Registry{pages: make(map[int]*Page)}
}

// Register adds a page. Registering the same page number twice within one
// document lifetime is a host logic error; the newer entry wins but the fault
// is logged rather than silently ignored.
func (r *Registry) Register(page *Page) {
	if _, exists := r.pages[page.Number]; exists {
		Logger.Error("Page registered twice within one document lifetime", "page", page.Number)
	} else {
		r.order = append(r.order, page.Number)
	}
	r.pages[page.Number] = page
}

// Get returns the page for a 1-based page number, or nil if not registered
func (r *Registry) Get(pageNumber int) *Page {
	return r.pages[pageNumber]
}

// Pages returns all registered pages in registration order
func (r *Registry) Pages() []*Page {
	pages := make([]*Page, 0, len(r.order))
	for _, number := range r.order {
		pages = append(pages, r.pages[number])
	}
	return pages
}

// Len returns the number of registered pages
func (r *Registry) Len() int {
	return len(r.pages)
}

// UnregisterAll clears the registry. It must run before a new document load
// starts so that nothing from a superseded load can outlive the source swap.
func (r *Registry) UnregisterAll() {
	r.pages = make(map[int]*Page)
	r.order = nil
}
