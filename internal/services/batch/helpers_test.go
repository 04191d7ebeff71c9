package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phambaophuc/image-batch-crop/internal/models"
)

var testOptions = models.ProcessingOptions{
	AspectRatio: models.AspectRatio{W: 1, H: 1},
	Width:       100,
	Quality:     0.8,
}

func pngSource(t *testing.T, name string, w, h int) models.SourceImage {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 200, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return models.NewSourceImage(name, buf.Bytes())
}

func zipEntries(t *testing.T, data []byte) map[string]*zip.File {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		out[f.Name] = f
	}
	return out
}

// fakeTransformer fails for names listed in fail and tracks concurrency.
type fakeTransformer struct {
	fail    map[string]error
	delay   time.Duration
	release chan struct{}

	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeTransformer) Transform(ctx context.Context, src models.SourceImage, opts models.ProcessingOptions) (*models.EncodedImage, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, src.Filename)
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := f.fail[src.Filename]; err != nil {
		return nil, err
	}

	return &models.EncodedImage{
		Filename: src.Filename,
		Data:     []byte("jpeg:" + src.Filename),
		Width:    opts.Width,
		Height:   opts.Width,
	}, nil
}

func (f *fakeTransformer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.BatchEvent
}

func (r *recordingNotifier) Notify(_ context.Context, e models.BatchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) statuses() []models.BatchStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BatchStatus, len(r.events))
	for i, e := range r.events {
		out[i] = e.Status
	}
	return out
}

func names(n int) []models.SourceImage {
	out := make([]models.SourceImage, n)
	for i := range out {
		out[i] = models.NewSourceImage(string(rune('a'+i))+".jpg", nil)
	}
	return out
}
