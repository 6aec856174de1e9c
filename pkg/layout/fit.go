package layout

import "math"

// Placement describes how one image sits inside its cell: whether it is
// rotated 90 degrees, the uniform scale factor applied, the resulting size in
// millimeters, and the centering offsets from the cell origin.
type Placement struct {
	Rotate  bool
	Scale   float64
	Width   float64
	Height  float64
	OffsetX float64
	OffsetY float64
}

// FitCell computes the placement of an image of imgW x imgH pixels inside a
// cell of cellW x cellH millimeters with the given padding inset.
//
// The rotation test compares the image's aspect mismatch against the mismatch
// of its reciprocal: rotate when |imgAspect - cellAspect| exceeds
// |1/imgAspect - cellAspect|. This is a fit-improvement heuristic, not a
// guarantee of the optimal orientation near the aspect boundary, and is kept
// as-is deliberately.
//
// The scale factor is uniform, min(paddedW/w, paddedH/h), so the image always
// fits entirely inside the padded cell with its aspect ratio preserved.
// Leftover space splits evenly on each axis.
func FitCell(imgW, imgH int, cellW, cellH, padding float64) Placement {
	imgAspect := float64(imgW) / float64(imgH)
	cellAspect := cellW / cellH

	rotate := math.Abs(imgAspect-cellAspect) > math.Abs(1/imgAspect-cellAspect)

	w, h := float64(imgW), float64(imgH)
	if rotate {
		w, h = h, w
	}

	paddedW := cellW - 2*padding
	paddedH := cellH - 2*padding
	scale := math.Min(paddedW/w, paddedH/h)

	scaledW := w * scale
	scaledH := h * scale
	return Placement{
		Rotate:  rotate,
		Scale:   scale,
		Width:   scaledW,
		Height:  scaledH,
		OffsetX: (cellW - scaledW) / 2,
		OffsetY: (cellH - scaledH) / 2,
	}
}
