package models

import (
	"bytes"
	"io"
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypeZip  = "application/zip"
)

// SourceImage is a user-selected image. Open may be called once per
// processing attempt.
type SourceImage struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// NewSourceImage wraps in-memory bytes as a SourceImage.
func NewSourceImage(filename string, data []byte) SourceImage {
	return SourceImage{
		Filename: filename,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// EncodedImage is the JPEG produced for one source, named after it.
type EncodedImage struct {
	Filename string
	Data     []byte
	Width    int
	Height   int
}

// Outcome is the tagged result of one item in a batch: exactly one of
// Image or Err is set.
type Outcome struct {
	Index int
	Name  string
	Image *EncodedImage
	Err   error
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Image != nil
}

// Archive is the finalized zip for one batch.
type Archive struct {
	Name    string
	Data    []byte
	Entries int
}

func (a *Archive) ContentType() string {
	return ContentTypeZip
}
