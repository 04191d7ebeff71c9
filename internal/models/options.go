package models

import (
	"errors"
	"fmt"
)

const (
	MinWidth   = 100
	MaxWidth   = 10000
	WidthStep  = 10
	MinQuality = 0.1
	MaxQuality = 1.0

	DefaultWidth   = 1080
	DefaultQuality = 0.8
)

var DefaultAspectRatio = AspectRatio{W: 1, H: 1}

var (
	ErrIncompleteOptions = errors.New("processing options are incomplete")
	ErrOutOfRange        = errors.New("processing options out of range")
)

// ProcessingOptions is shared read-only by every image of a batch.
// It is passed by value so no task can mutate another's copy.
type ProcessingOptions struct {
	AspectRatio AspectRatio `json:"aspect_ratio"`
	Width       int         `json:"width"`
	Quality     float64     `json:"quality"`
}

// Complete reports whether all three settings are present and in range
// for the pipeline: a positive ratio, a positive width and a quality in (0,1].
func (o ProcessingOptions) Complete() bool {
	return o.AspectRatio.Valid() && o.Width > 0 && o.Quality > 0 && o.Quality <= 1
}

func (o ProcessingOptions) Validate() error {
	if !o.Complete() {
		return fmt.Errorf("%w: ratio=%s width=%d quality=%.2f",
			ErrIncompleteOptions, o.AspectRatio, o.Width, o.Quality)
	}
	return nil
}

// CheckLimits applies the bounds users are held to: a supported ratio,
// a width in [MinWidth, MaxWidth] on a WidthStep grid and a quality in
// [MinQuality, MaxQuality].
func (o ProcessingOptions) CheckLimits() error {
	switch {
	case !o.AspectRatio.Supported():
		return fmt.Errorf("%w: ratio %s is not supported", ErrOutOfRange, o.AspectRatio)
	case o.Width < MinWidth || o.Width > MaxWidth:
		return fmt.Errorf("%w: width %d not in [%d, %d]", ErrOutOfRange, o.Width, MinWidth, MaxWidth)
	case o.Width%WidthStep != 0:
		return fmt.Errorf("%w: width %d is not a multiple of %d", ErrOutOfRange, o.Width, WidthStep)
	case o.Quality < MinQuality || o.Quality > MaxQuality:
		return fmt.Errorf("%w: quality %.2f not in [%.1f, %.1f]", ErrOutOfRange, o.Quality, MinQuality, MaxQuality)
	}
	return nil
}

// ArchiveName is the download name for a batch built with these options.
func (o ProcessingOptions) ArchiveName() string {
	return fmt.Sprintf("images_%dpx_%s.zip", o.Width, o.AspectRatio)
}
