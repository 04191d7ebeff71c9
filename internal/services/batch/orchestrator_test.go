package batch

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-batch-crop/internal/models"
	"github.com/phambaophuc/image-batch-crop/internal/services/processor"
)

func TestOrchestrator_ProducesArchive(t *testing.T) {
	notifier := &recordingNotifier{}
	o := NewOrchestrator(processor.NewImageProcessor(), zap.NewNop(), WithWorkers(2), WithNotifier(notifier))

	sources := []models.SourceImage{
		pngSource(t, "wide.png", 80, 40),
		pngSource(t, "tall.png", 30, 90),
		pngSource(t, "square.png", 50, 50),
	}

	res, err := o.Start(context.Background(), sources, testOptions)
	require.NoError(t, err)
	require.NotNil(t, res.Archive)

	assert.Equal(t, models.StatusDone, o.Status())
	assert.Equal(t, "images_100px_1:1.zip", res.Archive.Name)
	assert.Equal(t, 3, res.Archive.Entries)
	assert.Zero(t, res.Failed())
	assert.NotEmpty(t, res.ID)

	entries := zipEntries(t, res.Archive.Data)
	require.Len(t, entries, 3)
	for _, src := range sources {
		f, ok := entries[src.Filename]
		require.True(t, ok, src.Filename)

		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(body))
		require.NoError(t, err, src.Filename)
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 100, cfg.Height)
	}

	assert.Equal(t, []models.BatchStatus{models.StatusProcessing, models.StatusDone}, notifier.statuses())
}

func TestOrchestrator_OneCorruptImageFailsBatch(t *testing.T) {
	notifier := &recordingNotifier{}
	o := NewOrchestrator(processor.NewImageProcessor(), zap.NewNop(), WithNotifier(notifier))

	sources := []models.SourceImage{
		pngSource(t, "one.png", 40, 40),
		models.NewSourceImage("corrupt.jpg", []byte("\xff\xd8garbage")),
		pngSource(t, "three.png", 40, 40),
	}

	res, err := o.Start(context.Background(), sources, testOptions)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailed)
	assert.ErrorIs(t, err, processor.ErrDecode)

	require.NotNil(t, res)
	assert.Nil(t, res.Archive, "no partial archive")
	assert.Equal(t, models.StatusFailed, o.Status())
	assert.Equal(t, []models.BatchStatus{models.StatusProcessing, models.StatusFailed}, notifier.statuses())
}

func TestOrchestrator_PartialPolicy(t *testing.T) {
	ft := &fakeTransformer{fail: map[string]error{"b.jpg": processor.ErrDecode}}
	o := NewOrchestrator(ft, zap.NewNop(), WithFailurePolicy(Partial))

	res, err := o.Start(context.Background(), names(3), testOptions)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDone, o.Status())
	assert.Equal(t, 1, res.Failed())
	assert.Equal(t, 2, res.Archive.Entries)

	entries := zipEntries(t, res.Archive.Data)
	assert.Contains(t, entries, "a.jpg")
	assert.Contains(t, entries, "c.jpg")
	assert.NotContains(t, entries, "b.jpg")

	assert.False(t, res.Outcomes[1].OK())
	assert.ErrorIs(t, res.Outcomes[1].Err, processor.ErrDecode)
}

func TestOrchestrator_PartialPolicyAllFailed(t *testing.T) {
	ft := &fakeTransformer{fail: map[string]error{
		"a.jpg": processor.ErrDecode,
		"b.jpg": processor.ErrEncode,
	}}
	o := NewOrchestrator(ft, zap.NewNop(), WithFailurePolicy(Partial))

	res, err := o.Start(context.Background(), names(2), testOptions)
	assert.ErrorIs(t, err, ErrFailed)
	assert.Nil(t, res.Archive)
	assert.Equal(t, models.StatusFailed, o.Status())
}

func TestOrchestrator_NoOp(t *testing.T) {
	ft := &fakeTransformer{}
	notifier := &recordingNotifier{}
	o := NewOrchestrator(ft, zap.NewNop(), WithNotifier(notifier))

	tests := []struct {
		name    string
		sources []models.SourceImage
		opts    models.ProcessingOptions
	}{
		{"empty batch", nil, testOptions},
		{"missing ratio", names(1), models.ProcessingOptions{Width: 100, Quality: 0.8}},
		{"missing width", names(1), models.ProcessingOptions{AspectRatio: testOptions.AspectRatio, Quality: 0.8}},
		{"missing quality", names(1), models.ProcessingOptions{AspectRatio: testOptions.AspectRatio, Width: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := o.Start(context.Background(), tt.sources, tt.opts)
			assert.NoError(t, err)
			assert.Nil(t, res)
			assert.Equal(t, models.StatusIdle, o.Status())
		})
	}

	assert.Zero(t, ft.callCount())
	assert.Empty(t, notifier.statuses())
}

func TestOrchestrator_RejectsSecondBatchWhileProcessing(t *testing.T) {
	ft := &fakeTransformer{release: make(chan struct{})}
	o := NewOrchestrator(ft, zap.NewNop())

	done := make(chan error, 1)
	started, err := o.Launch(context.Background(), "first", names(2), testOptions, func(_ *Result, err error) {
		done <- err
	})
	require.NoError(t, err)
	require.True(t, started)
	assert.Equal(t, models.StatusProcessing, o.Status())

	_, err = o.Start(context.Background(), names(1), testOptions)
	assert.ErrorIs(t, err, ErrBusy)

	close(ft.release)
	require.NoError(t, <-done)
	assert.Equal(t, models.StatusDone, o.Status())

	res, err := o.Start(context.Background(), names(1), testOptions)
	require.NoError(t, err, "a finished orchestrator accepts a new batch")
	assert.Equal(t, 1, res.Archive.Entries)
}

func TestOrchestrator_BoundedWorkers(t *testing.T) {
	ft := &fakeTransformer{delay: 5 * time.Millisecond}
	o := NewOrchestrator(ft, zap.NewNop(), WithWorkers(3))

	res, err := o.Start(context.Background(), names(20), testOptions)
	require.NoError(t, err)

	assert.Equal(t, 20, res.Archive.Entries)
	assert.LessOrEqual(t, ft.peak.Load(), int32(3))
	assert.Equal(t, 3, o.Workers())
}

func TestOrchestrator_FirstFailureCancelsRemaining(t *testing.T) {
	ft := &fakeTransformer{
		delay: 20 * time.Millisecond,
		fail:  map[string]error{"a.jpg": errors.New("boom")},
	}
	notifier := &recordingNotifier{}
	o := NewOrchestrator(ft, zap.NewNop(), WithWorkers(1), WithNotifier(notifier))

	res, err := o.Start(context.Background(), names(10), testOptions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// With one worker, images after the failure see a cancelled context.
	for _, out := range res.Outcomes[1:] {
		if out.Err != nil {
			assert.ErrorIs(t, out.Err, context.Canceled)
		}
	}
	assert.Equal(t, 1, res.Failed(), "cancelled siblings are not failures")
	assert.Equal(t, 9, res.Skipped())
	assert.Zero(t, res.Succeeded())

	notifier.mu.Lock()
	last := notifier.events[len(notifier.events)-1]
	notifier.mu.Unlock()
	assert.Equal(t, models.StatusFailed, last.Status)
	assert.Equal(t, 1, last.Failed)
	assert.Equal(t, 9, last.Skipped)
}

func TestParseFailurePolicy(t *testing.T) {
	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, AllOrNothing, p)

	p, err = ParseFailurePolicy(" Partial ")
	require.NoError(t, err)
	assert.Equal(t, Partial, p)

	_, err = ParseFailurePolicy("best-effort")
	assert.Error(t, err)
}
