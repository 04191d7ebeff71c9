package processor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Scale resamples img to exactly width×height using Lanczos.
func Scale(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid output size %dx%d", ErrRenderContext, width, height)
	}

	resized := imaging.Resize(img, width, height, imaging.Lanczos)
	if resized.Bounds().Dx() != width || resized.Bounds().Dy() != height {
		return nil, fmt.Errorf("%w: resize produced %v, want %dx%d",
			ErrRenderContext, resized.Bounds().Size(), width, height)
	}

	return resized, nil
}
