package viewer

import (
	"math"
	"testing"
)

func TestComputeScale(t *testing.T) {
	// Container 840 with padding 40 over a 400pt page doubles everything
	scale := ComputeScale(840, 400, 40)
	if scale != 2.0 {
		t.Errorf("Expected scale 2.0, got: %f", scale)
	}
}

func TestComputeScalePositiveFinite(t *testing.T) {
	cases := []struct {
		containerWidth, nativeWidth, padding float64
	}{
		{840, 400, 40},
		{612, 595, 0},
		{1920, 612, 80},
		{100.5, 33.3, 10},
	}
	for _, tc := range cases {
		scale := ComputeScale(tc.containerWidth, tc.nativeWidth, tc.padding)
		if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
			t.Errorf("ComputeScale(%f, %f, %f) = %f, expected positive finite",
				tc.containerWidth, tc.nativeWidth, tc.padding, scale)
		}
	}
}

func TestComputeScaleDegenerate(t *testing.T) {
	if scale := ComputeScale(40, 400, 40); scale != FallbackScale {
		t.Errorf("Expected fallback scale when container equals padding, got: %f", scale)
	}
	if scale := ComputeScale(30, 400, 40); scale != FallbackScale {
		t.Errorf("Expected fallback scale when container below padding, got: %f", scale)
	}
	if scale := ComputeScale(840, 0, 40); scale != FallbackScale {
		t.Errorf("Expected fallback scale for zero page width, got: %f", scale)
	}
	if scale := ComputeScale(840, -10, 40); scale != FallbackScale {
		t.Errorf("Expected fallback scale for negative page width, got: %f", scale)
	}
}

func TestToPixelRect(t *testing.T) {
	px1, py1, px2, py2 := ToPixelRect(2.0, 10, 20, 110, 40)
	if px1 != 20 || py1 != 40 || px2 != 220 || py2 != 80 {
		t.Errorf("Expected (20, 40, 220, 80), got: (%f, %f, %f, %f)", px1, py1, px2, py2)
	}
}

func TestToPixelRectLinear(t *testing.T) {
	// Scaling the input rectangle by k scales the output by k
	const k = 3.5
	ax1, ay1, ax2, ay2 := ToPixelRect(1.5, 10, 20, 30, 40)
	bx1, by1, bx2, by2 := ToPixelRect(1.5, 10*k, 20*k, 30*k, 40*k)

	const tolerance = 1e-9
	for _, pair := range [][2]float64{{ax1 * k, bx1}, {ay1 * k, by1}, {ax2 * k, bx2}, {ay2 * k, by2}} {
		if math.Abs(pair[0]-pair[1]) > tolerance {
			t.Errorf("Linearity violated: %f != %f", pair[0], pair[1])
		}
	}
}

func TestToPixelRectRoundTrip(t *testing.T) {
	scale := ComputeScale(840, 612, 40)
	x1, y1, x2, y2 := 72.5, 144.25, 300.0, 451.75

	px1, py1, px2, py2 := ToPixelRect(scale, x1, y1, x2, y2)

	const tolerance = 1e-9
	for _, pair := range [][2]float64{{px1 / scale, x1}, {py1 / scale, y1}, {px2 / scale, x2}, {py2 / scale, y2}} {
		if math.Abs(pair[0]-pair[1]) > tolerance {
			t.Errorf("Round trip violated: %f != %f", pair[0], pair[1])
		}
	}
}

func TestFlipNativeBBox(t *testing.T) {
	// A block with bottom-left (100, 500) and top-right (300, 520) on an
	// 800pt page lands 280pt from the top
	flipped := FlipNativeBBox([]float64{100, 500, 300, 520}, 800)
	want := []float64{100, 280, 300, 300}
	for i := range want {
		if flipped[i] != want[i] {
			t.Errorf("Flip mismatch at %d: expected %f, got %f", i, want[i], flipped[i])
		}
	}
}

func TestFlipNativeBBoxInvalid(t *testing.T) {
	flipped := FlipNativeBBox([]float64{1, 2, 3}, 800)
	for i, v := range flipped {
		if v != 0 {
			t.Errorf("Expected zero box for malformed input, got %f at %d", v, i)
		}
	}
	if len(flipped) != 4 {
		t.Errorf("Expected 4-element zero box, got %d elements", len(flipped))
	}
}

func TestFlipNativePosition(t *testing.T) {
	flipped := FlipNativePosition([]float64{2, 100, 500, 300, 520}, 800)
	want := []float64{2, 100, 280, 300, 300}
	if len(flipped) != 5 {
		t.Fatalf("Expected 5 elements, got %d", len(flipped))
	}
	for i := range want {
		if flipped[i] != want[i] {
			t.Errorf("Flip mismatch at %d: expected %f, got %f", i, want[i], flipped[i])
		}
	}
}
