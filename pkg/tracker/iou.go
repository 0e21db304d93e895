package tracker

import "math"

// Box is an axis-aligned bounding box.
//
//	The (X1, Y1) position is at the top left corner,
//	The (X2, Y2) position is at the bottom right corner
//
// Inverted or empty boxes are accepted and behave as zero-area boxes.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Area returns the area of the box, with negative width or height clamped to 0.
func (b Box) Area() float64 {
	return clamp(b.X2-b.X1) * clamp(b.Y2-b.Y1)
}

// IoU calculates the Intersection over Union of two bounding boxes.
// Returns 0.0 if the boxes do not overlap or if the union area is zero.
func IoU(bb1, bb2 Box) float64 {
	xLeft := math.Max(bb1.X1, bb2.X1)
	yTop := math.Max(bb1.Y1, bb2.Y1)
	xRight := math.Min(bb1.X2, bb2.X2)
	yBottom := math.Min(bb1.Y2, bb2.Y2)

	intersectionArea := clamp(xRight-xLeft) * clamp(yBottom-yTop)
	unionArea := bb1.Area() + bb2.Area() - intersectionArea
	if !(unionArea > 0) {
		return 0.0
	}

	iou := intersectionArea / unionArea
	if math.IsNaN(iou) {
		return 0.0
	}
	return math.Min(iou, 1.0)
}

func clamp(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
