package processor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop cuts rect out of img. rect is relative to the image origin.
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	cropped := imaging.Crop(img, rect.Add(img.Bounds().Min))
	if cropped.Bounds().Empty() {
		return nil, fmt.Errorf("%w: crop %v outside image bounds %v", ErrRenderContext, rect, img.Bounds())
	}
	return cropped, nil
}
