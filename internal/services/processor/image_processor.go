package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

// ImageProcessor runs the decode → crop → scale → encode pipeline for a
// single image. It holds no state and is safe for concurrent use.
type ImageProcessor struct{}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// Transform processes one source image with opts. Errors wrap one of
// ErrRead, ErrDecode, ErrRenderContext or ErrEncode, or the ctx error.
func (p *ImageProcessor) Transform(ctx context.Context, src models.SourceImage, opts models.ProcessingOptions) (*models.EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := p.read(src)
	if err != nil {
		return nil, err
	}

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Filename, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rect := CropRect(bounds.Dx(), bounds.Dy(), opts.AspectRatio)

	cropped, err := Crop(img, rect)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Filename, err)
	}

	width, height := OutputSize(rect, opts.Width)
	scaled, err := Scale(cropped, width, height)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Filename, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	if err := Encode(buffer, scaled, opts.Quality); err != nil {
		return nil, fmt.Errorf("%s: %w", src.Filename, err)
	}

	return &models.EncodedImage{
		Filename: src.Filename,
		Data:     buffer.Bytes(),
		Width:    width,
		Height:   height,
	}, nil
}

func (p *ImageProcessor) read(src models.SourceImage) ([]byte, error) {
	if src.Open == nil {
		return nil, fmt.Errorf("%w: %s: no data source", ErrRead, src.Filename)
	}

	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, src.Filename, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, src.Filename, err)
	}

	return data, nil
}
