package viewer

// JumpTo computes the absolute scroll offset that brings a box into the
// upper third of the viewport and hands it to the registered Scroller as a
// smooth scroll. Only pageIndex and y1 feed the computation; x1, x2 and y2
// are accepted for symmetry with the Position contract.
//
// The offset and true are returned on success. An unregistered page is a
// warning and a no-op, not an error: the host may retry after the load
// pipeline reaches that page.
func (v *Viewer) JumpTo(pageIndex int, x1, y1, x2, y2 float64) (float64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pageNumber := pageIndex + 1
	page := v.registry.Get(pageNumber)
	if page == nil {
		Logger.Warn("Jump target page not registered", "page", pageNumber)
		return 0, false
	}

	// The target page's own scale is used when available; the nominal scale
	// cached from the first page covers pages that predate per-page scales.
	scale := page.Scale
	if scale <= 0 {
		scale = v.nominalScale
	}

	target := page.OffsetTop + y1*scale - v.cfg.ContainerHeight/3
	if target < 0 {
		target = 0
	}

	Logger.Debug("Jumping to position", "page", pageNumber, "y1", y1, "target", target)
	if v.scroller != nil {
		v.scroller.ScrollTo(target, true)
	}
	return target, true
}
