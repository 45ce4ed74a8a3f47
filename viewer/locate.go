package viewer

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LocateText searches the document at path for a text snippet and returns a
// Position for every occurrence, in document-point top-left-origin
// coordinates ready to feed into SetHighlights. The match is
// case-insensitive. Pages that cannot be read are skipped.
func LocateText(path, needle string) ([]Position, error) {
	if strings.TrimSpace(needle) == "" {
		return nil, fmt.Errorf("empty search text")
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open document for text search: %w", err)
	}
	defer f.Close()

	var positions []Position
	totalPages := reader.NumPage()

	for pageNumber := 1; pageNumber <= totalPages; pageNumber++ {
		page := reader.Page(pageNumber)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		boxes := matchTextRows(content.Text, needle)
		if len(boxes) == 0 {
			continue
		}

		pageHeight := pageMediaHeight(page)
		for _, box := range boxes {
			flipped := FlipNativeBBox([]float64{box.x1, box.y1, box.x2, box.y2}, pageHeight)
			positions = append(positions, Position{
				PageIndex: pageNumber - 1,
				X1:        flipped[0],
				Y1:        flipped[1],
				X2:        flipped[2],
				Y2:        flipped[3],
			})
		}
		Logger.Debug("Text located", "page", pageNumber, "matches", len(boxes))
	}

	return positions, nil
}

// nativeBox is a bounding box in PDF-native coordinates (bottom-left origin)
type nativeBox struct {
	x1, y1, x2, y2 float64
}

// matchTextRows finds needle in the concatenated positioned text fragments of
// one page and returns the union box of the fragments each occurrence spans.
// Fragment Y values are baselines; the box extends one font size upward.
func matchTextRows(texts []pdf.Text, needle string) []nativeBox {
	if len(texts) == 0 {
		return nil
	}

	var builder strings.Builder
	fragmentAt := make([]int, 0, len(texts)*4)
	for i, t := range texts {
		builder.WriteString(t.S)
		for j := 0; j < len(t.S); j++ {
			fragmentAt = append(fragmentAt, i)
		}
	}

	haystack := normalizeForSearch(builder.String())
	target := normalizeForSearch(needle)
	if target == "" {
		return nil
	}

	var boxes []nativeBox
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], target)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(target)

		box, ok := unionFragments(texts, fragmentAt, start, end)
		if ok {
			boxes = append(boxes, box)
		}
		offset = end
	}
	return boxes
}

// normalizeForSearch lower-cases ASCII letters only. Matching is
// byte-positional against the fragment map, so the transformation must not
// change byte offsets.
func normalizeForSearch(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// unionFragments builds the union box over fragments covering byte range
// [start, end) of the concatenated page text
func unionFragments(texts []pdf.Text, fragmentAt []int, start, end int) (nativeBox, bool) {
	if start >= len(fragmentAt) {
		return nativeBox{}, false
	}
	if end > len(fragmentAt) {
		end = len(fragmentAt)
	}

	first := fragmentAt[start]
	last := fragmentAt[end-1]

	box := nativeBox{
		x1: texts[first].X,
		y1: texts[first].Y,
		x2: texts[first].X + texts[first].W,
		y2: texts[first].Y + texts[first].FontSize,
	}
	for i := first + 1; i <= last; i++ {
		t := texts[i]
		if t.X < box.x1 {
			box.x1 = t.X
		}
		if t.Y < box.y1 {
			box.y1 = t.Y
		}
		if t.X+t.W > box.x2 {
			box.x2 = t.X + t.W
		}
		if t.Y+t.FontSize > box.y2 {
			box.y2 = t.Y + t.FontSize
		}
	}
	return box, true
}

// pageMediaHeight reads the page's MediaBox height, falling back to A4 when
// the box is absent or malformed
func pageMediaHeight(page pdf.Page) float64 {
	mediaBox := page.V.Key("MediaBox")
	if mediaBox.IsNull() || mediaBox.Len() < 4 {
		Logger.Warn("Page has no readable MediaBox, assuming A4 height")
		return DefaultPageHeight
	}
	bottom := mediaBox.Index(1).Float64()
	top := mediaBox.Index(3).Float64()
	height := top - bottom
	if height <= 0 {
		Logger.Warn("Degenerate MediaBox height, assuming A4 height", "height", height)
		return DefaultPageHeight
	}
	return height
}
