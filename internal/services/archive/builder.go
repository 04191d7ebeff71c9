package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

var (
	ErrArchive = errors.New("archive error")
	ErrClosed  = errors.New("archive already finalized")
)

// Builder writes a zip container entry by entry. Add may be called from
// several goroutines; Close finalizes the container exactly once.
type Builder struct {
	mu      sync.Mutex
	zw      *zip.Writer
	entries int
	closed  bool
	now     func() time.Time
}

func NewBuilder(w io.Writer) *Builder {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	return &Builder{
		zw:  zw,
		now: time.Now,
	}
}

// Add stores data under name exactly as given. Duplicate names are
// written as separate entries.
func (b *Builder) Add(name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: b.now(),
	}

	w, err := b.zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("%w: create entry %q: %w", ErrArchive, name, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write entry %q: %w", ErrArchive, name, err)
	}

	b.entries++
	return nil
}

func (b *Builder) Entries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries
}

// Close writes the central directory. A second call returns ErrClosed.
func (b *Builder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.closed = true

	if err := b.zw.Close(); err != nil {
		return fmt.Errorf("%w: finalize: %w", ErrArchive, err)
	}
	return nil
}

// Build zips images in memory and returns the finalized archive bytes.
func Build(images []models.EncodedImage) ([]byte, error) {
	buffer := &bytes.Buffer{}
	b := NewBuilder(buffer)

	for _, img := range images {
		if err := b.Add(img.Filename, img.Data); err != nil {
			return nil, err
		}
	}

	if err := b.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
