package viewer

import "github.com/gogpu/gg"

// Position is an externally supplied bounding box in document-point space:
// 0-based page index, top-left corner (x1, y1), bottom-right corner (x2, y2),
// origin at the page's top-left. Positions are interpreted, never mutated.
type Position struct {
	PageIndex int     `json:"pageIndex"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
}

// PageNumber returns the 1-based page number for this position
func (p Position) PageNumber() int {
	return p.PageIndex + 1
}

// ParsePositions converts raw [pageIndex, x1, y1, x2, y2] tuples into
// Positions. Malformed entries (fewer than 5 elements) are skipped with a
// warning; the remaining entries are still returned.
func ParsePositions(raw [][]float64) []Position {
	positions := make([]Position, 0, len(raw))
	for i, entry := range raw {
		if len(entry) < 5 {
			Logger.Warn("Skipping malformed position, expected 5 elements",
				"index", i, "elements", len(entry))
			continue
		}
		positions = append(positions, Position{
			PageIndex: int(entry[0]),
			X1:        entry[1],
			Y1:        entry[2],
			X2:        entry[3],
			Y2:        entry[4],
		})
	}
	return positions
}

// Highlight paint. The fill is semi-transparent so the outline drawn after
// it stays visible over page content.
var (
	highlightFill   = [4]float64{1.0, 0.84, 0.0, 0.35}
	highlightStroke = [4]float64{0.85, 0.47, 0.0, 0.9}
)

const highlightStrokeWidth = 2.0

// SetHighlights replaces the highlight set wholesale and repaints every
// registered overlay. The previous set is discarded; there is no
// incremental diffing.
func (v *Viewer) SetHighlights(positions []Position) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.highlights = positions
	v.redrawLocked()
}

// Redraw repaints every registered overlay against the current highlight
// set. Pages registered after the last call do not pick up highlights by
// themselves; the host calls Redraw again when the registered set changes.
// Redraw is idempotent: repeated calls with the same set produce identical
// overlay pixels.
func (v *Viewer) Redraw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.redrawLocked()
}

// Highlights returns the current highlight set
func (v *Viewer) Highlights() []Position {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.highlights
}

// redrawLocked does the painting. Callers hold v.mu.
//
// Every registered page's overlay is cleared to fully transparent first, so
// an empty set wipes all highlights. Entries are grouped by page; pages not
// yet registered are skipped without error and will be covered by the next
// Redraw after they register.
func (v *Viewer) redrawLocked() {
	byPage := make(map[int][]Position)
	for _, pos := range v.highlights {
		byPage[pos.PageNumber()] = append(byPage[pos.PageNumber()], pos)
	}

	for _, page := range v.registry.Pages() {
		page.Overlay.Clear()

		boxes := byPage[page.Number]
		if len(boxes) == 0 {
			continue
		}

		scale := page.Scale
		if scale <= 0 {
			scale = v.nominalScale
		}

		for _, box := range boxes {
			px1, py1, px2, py2 := ToPixelRect(scale, box.X1, box.Y1, box.X2, box.Y2)
			paintHighlight(page.Overlay, px1, py1, px2-px1, py2-py1)
		}
		Logger.Debug("Painted highlights", "page", page.Number, "count", len(boxes))
	}
}

// paintHighlight draws one highlight box: fill first, outline second, so the
// outline is never obscured by the fill.
func paintHighlight(dc *gg.Context, x, y, w, h float64) {
	dc.SetRGBA(highlightFill[0], highlightFill[1], highlightFill[2], highlightFill[3])
	dc.DrawRectangle(x, y, w, h)
	if err := dc.Fill(); err != nil {
		Logger.Error("Highlight fill failed", "error", err)
	}

	dc.SetRGBA(highlightStroke[0], highlightStroke[1], highlightStroke[2], highlightStroke[3])
	dc.SetLineWidth(highlightStrokeWidth)
	dc.DrawRectangle(x, y, w, h)
	if err := dc.Stroke(); err != nil {
		Logger.Error("Highlight stroke failed", "error", err)
	}
}
