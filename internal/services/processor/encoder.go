package processor

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

// Encode writes img as JPEG. quality is a factor in (0,1].
func Encode(w io.Writer, img image.Image, quality float64) error {
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality(quality))); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

func jpegQuality(q float64) int {
	return min(100, max(1, int(math.Round(q*100))))
}
