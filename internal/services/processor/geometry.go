package processor

import (
	"image"
	"math"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

// CropRect returns the largest rectangle centered on a w×h image whose
// sides follow ratio. Callers validate ratio before calling.
func CropRect(w, h int, ratio models.AspectRatio) image.Rectangle {
	cropW, cropH := w, h

	// Cross-multiplied to keep the comparison exact.
	if w*ratio.H > h*ratio.W {
		cropW = roundInt(float64(h) * float64(ratio.W) / float64(ratio.H))
	} else {
		cropH = roundInt(float64(w) * float64(ratio.H) / float64(ratio.W))
	}

	cropW = max(1, cropW)
	cropH = max(1, cropH)

	x := (w - cropW) / 2
	y := (h - cropH) / 2

	return image.Rect(x, y, x+cropW, y+cropH)
}

// OutputSize scales crop to the given width, keeping its proportions.
func OutputSize(crop image.Rectangle, width int) (int, int) {
	height := roundInt(float64(width) * float64(crop.Dy()) / float64(crop.Dx()))
	return width, max(1, height)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
