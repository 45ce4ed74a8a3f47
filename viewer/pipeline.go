package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg"

	"github.com/drummonds/goDocView/config"
	"github.com/drummonds/goDocView/viewer/decoder"
)

// LoadState is the document load pipeline state
type LoadState string

const (
	StateIdle           LoadState = "idle"
	StateLoading        LoadState = "loading"
	StatePageCountKnown LoadState = "page_count_known"
	StateRenderingPages LoadState = "rendering_pages"
	StateReady          LoadState = "ready"
	StateFailed         LoadState = "failed"
)

// ErrSourceLoad marks document-level failures: the source cannot be opened
// or its page count read. Per-page render failures are not wrapped in this;
// they are logged and the page is skipped.
var ErrSourceLoad = errors.New("document source load failed")

// ErrSuperseded is returned when a load is abandoned because a newer load
// started while it was still running.
var ErrSuperseded = errors.New("document load superseded by a newer load")

// ProgressFunc receives pipeline progress: a 0-100 percentage and a step label
type ProgressFunc func(progress int, step string)

// Scroller receives computed scroll offsets. The host owns the actual
// scrolling; smooth indicates an animated scroll is wanted.
type Scroller interface {
	ScrollTo(offset float64, smooth bool)
}

// Viewer owns the page registry and runs the load pipeline. Loads render
// pages strictly in increasing page-number order, one at a time; this bounds
// peak memory on large documents and means that once Ready every page is
// registered. The highlight renderer and scroll navigator read the registry
// synchronously under the same lock.
type Viewer struct {
	dec decoder.Decoder
	cfg config.ViewerConfig

	mu           sync.Mutex
	registry     *Registry
	state        LoadState
	pageCount    int
	nominalScale float64 //first page's scale, cached for cross-page consumers
	highlights   []Position
	scroller     Scroller

	// generation distinguishes one load attempt from a later, superseding
	// one. Every resume point in the pipeline compares against it and
	// discards results from superseded generations instead of writing into
	// the reset registry.
	generation atomic.Int64
}

// New creates a Viewer over the given decoder and viewer geometry
func New(dec decoder.Decoder, cfg config.ViewerConfig) *Viewer {
	return &Viewer{
		dec:      dec,
		cfg:      cfg,
		registry: NewRegistry(),
		state:    StateIdle,
	}
}

// SetScroller registers the host's scroll sink. Pass nil to detach.
func (v *Viewer) SetScroller(s Scroller) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scroller = s
}

// State returns the current pipeline state
func (v *Viewer) State() LoadState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// PageCount returns the page count of the current document, 0 before a load
func (v *Viewer) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pageCount
}

// NominalScale returns the document's nominal display scale: the first
// page's scale, cached for consumers that need a single value. Later pages
// may legitimately use a different per-page scale.
func (v *Viewer) NominalScale() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.nominalScale
}

// Page returns a snapshot of one page's geometry, or nil if not registered
func (v *Viewer) Page(pageNumber int) *Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.registry.Get(pageNumber)
}

// LoadDocument runs the full pipeline for one document source: reset the
// registry, open the source, discover the page count, then render and
// register each page in order. Any page that fails to render is logged and
// left unregistered; the pipeline continues. On completion the current
// highlight set is redrawn once, unconditionally, so highlights selected
// before the load finished still appear.
func (v *Viewer) LoadDocument(ctx context.Context, source string, progress ProgressFunc) error {
	gen := v.generation.Add(1)

	v.mu.Lock()
	v.registry.UnregisterAll()
	v.state = StateLoading
	v.pageCount = 0
	v.nominalScale = 0
	v.mu.Unlock()

	Logger.Info("Loading document", "source", source, "generation", gen)

	doc, err := v.dec.Open(source)
	if err != nil {
		v.failIfCurrent(gen)
		return fmt.Errorf("%w: %v", ErrSourceLoad, err)
	}
	defer doc.Close()

	if v.superseded(gen) {
		return ErrSuperseded
	}

	pageCount := doc.PageCount()
	if pageCount <= 0 {
		v.failIfCurrent(gen)
		return fmt.Errorf("%w: document has no pages", ErrSourceLoad)
	}

	v.mu.Lock()
	if v.generation.Load() == gen {
		v.state = StatePageCountKnown
		v.pageCount = pageCount
	}
	v.mu.Unlock()
	Logger.Info("Page count known", "pages", pageCount)

	v.setStateIfCurrent(gen, StateRenderingPages)
	offsetTop := 0.0

	for pageNumber := 1; pageNumber <= pageCount; pageNumber++ {
		if err := ctx.Err(); err != nil {
			v.failIfCurrent(gen)
			return fmt.Errorf("%w: %v", ErrSourceLoad, err)
		}

		viewport, err := doc.Viewport(pageNumber, 1.0)
		if err != nil {
			Logger.Error("Unable to fetch native viewport, skipping page",
				"page", pageNumber, "error", err)
			continue
		}
		if v.superseded(gen) {
			return ErrSuperseded
		}

		scale := ComputeScale(v.cfg.ContainerWidth, viewport.Width, v.cfg.PagePadding)

		img, err := doc.RenderPage(pageNumber, scale)
		if err != nil {
			Logger.Error("Unable to render page, skipping", "page", pageNumber, "error", err)
			continue
		}
		if v.superseded(gen) {
			return ErrSuperseded
		}

		bounds := img.Bounds()
		overlay := gg.NewContext(bounds.Dx(), bounds.Dy())

		page := &Page{
			Number:       pageNumber,
			NativeWidth:  viewport.Width,
			NativeHeight: viewport.Height,
			Scale:        scale,
			OffsetTop:    offsetTop,
			Raster:       img,
			Overlay:      overlay,
		}

		v.mu.Lock()
		if v.generation.Load() != gen {
			v.mu.Unlock()
			overlay.Close()
			return ErrSuperseded
		}
		if v.nominalScale == 0 {
			v.nominalScale = scale
		}
		v.registry.Register(page)
		v.mu.Unlock()

		offsetTop += float64(bounds.Dy()) + v.cfg.PageGap

		if progress != nil {
			progress(pageNumber*100/pageCount,
				fmt.Sprintf("Rendered page %d/%d", pageNumber, pageCount))
		}
		Logger.Debug("Page registered", "page", pageNumber, "scale", scale,
			"width", bounds.Dx(), "height", bounds.Dy())
	}

	v.mu.Lock()
	if v.generation.Load() != gen {
		v.mu.Unlock()
		return ErrSuperseded
	}
	v.state = StateReady
	v.redrawLocked()
	v.mu.Unlock()

	Logger.Info("Document ready", "pages", pageCount, "generation", gen)
	return nil
}

// superseded reports whether a newer load has started since gen
func (v *Viewer) superseded(gen int64) bool {
	if v.generation.Load() != gen {
		Logger.Info("Discarding result from superseded load", "generation", gen)
		return true
	}
	return false
}

func (v *Viewer) setStateIfCurrent(gen int64, state LoadState) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.generation.Load() == gen {
		v.state = state
	}
}

func (v *Viewer) failIfCurrent(gen int64) {
	v.setStateIfCurrent(gen, StateFailed)
}
