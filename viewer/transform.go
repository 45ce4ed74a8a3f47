package viewer

import "math"

// FallbackScale is used when the container or page geometry degenerates.
// Callers are expected to have logged the degenerate case.
const FallbackScale = 1.0

// DefaultPageHeight is the A4 page height in points, used when a page's
// native height cannot be determined.
const DefaultPageHeight = 842.0

// ComputeScale derives the display scale for a page: the native page width is
// stretched to fill the container width minus the padding. A container that
// is no wider than the padding, or a non-positive page width, yields
// FallbackScale and a warning; rendering stays usable at the cost of fit.
func ComputeScale(containerWidth, nativePageWidth, padding float64) float64 {
	if containerWidth <= padding || nativePageWidth <= 0 {
		Logger.Warn("Degenerate scale inputs, using fallback scale",
			"containerWidth", containerWidth, "nativePageWidth", nativePageWidth, "padding", padding)
		return FallbackScale
	}
	scale := (containerWidth - padding) / nativePageWidth
	if math.IsInf(scale, 0) || math.IsNaN(scale) || scale <= 0 {
		Logger.Warn("Computed scale is not positive finite, using fallback scale",
			"scale", scale)
		return FallbackScale
	}
	return scale
}

// ToPixelRect converts a document-point rectangle to pixel space for a page
// rendered at the given scale. Coordinates are top-left origin in both
// spaces; no rotation or clipping is applied. Upstream producers of box
// coordinates must already have normalized page rotation away.
func ToPixelRect(scale, x1, y1, x2, y2 float64) (px1, py1, px2, py2 float64) {
	return x1 * scale, y1 * scale, x2 * scale, y2 * scale
}

// FlipNativeBBox converts a box from PDF-native coordinates (origin at the
// bottom-left, Y-axis up) to top-left-origin viewer coordinates. The Y values
// flip against the page height and swap so the result is ordered
// [x1, yTop, x2, yBottom]. Values are rounded to whole points.
func FlipNativeBBox(bbox []float64, pageHeight float64) []float64 {
	if len(bbox) != 4 {
		Logger.Warn("Invalid bbox, expected 4 elements", "bbox", bbox)
		return []float64{0, 0, 0, 0}
	}

	x1, y1, x2, y2 := bbox[0], bbox[1], bbox[2], bbox[3]
	return []float64{
		math.Round(x1),
		math.Round(pageHeight - y2),
		math.Round(x2),
		math.Round(pageHeight - y1),
	}
}

// FlipNativePosition converts a 5-element [pageIndex, x1, y1, x2, y2] entry
// from PDF-native coordinates to top-left-origin viewer coordinates.
func FlipNativePosition(position []float64, pageHeight float64) []float64 {
	if len(position) != 5 {
		Logger.Warn("Invalid position, expected 5 elements", "position", position)
		return []float64{0, 0, 0, 0, 0}
	}

	flipped := FlipNativeBBox(position[1:5], pageHeight)
	return append([]float64{position[0]}, flipped...)
}
