package models

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    AspectRatio
		wantErr bool
	}{
		{"16:9", AspectRatio{16, 9}, false},
		{" 1:1 ", AspectRatio{1, 1}, false},
		{"5:4", AspectRatio{5, 4}, false},
		{"16x9", AspectRatio{}, true},
		{"0:1", AspectRatio{}, true},
		{"1:-2", AspectRatio{}, true},
		{"a:b", AspectRatio{}, true},
		{"", AspectRatio{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAspectRatio(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAspectRatioSupported(t *testing.T) {
	assert.Len(t, SupportedRatios, 10)
	for _, r := range SupportedRatios {
		assert.True(t, r.Supported(), r.String())
	}
	assert.False(t, AspectRatio{5, 4}.Supported())
	assert.Equal(t, "21:9", SupportedRatioStrings()[7])
}

func TestProcessingOptions(t *testing.T) {
	opts := ProcessingOptions{AspectRatio: AspectRatio{16, 9}, Width: 1920, Quality: 0.9}
	assert.True(t, opts.Complete())
	assert.NoError(t, opts.Validate())
	assert.Equal(t, "images_1920px_16:9.zip", opts.ArchiveName())

	for _, bad := range []ProcessingOptions{
		{Width: 1080, Quality: 0.8},
		{AspectRatio: DefaultAspectRatio, Quality: 0.8},
		{AspectRatio: DefaultAspectRatio, Width: 1080},
		{AspectRatio: DefaultAspectRatio, Width: 1080, Quality: 1.2},
	} {
		assert.False(t, bad.Complete())
		assert.True(t, errors.Is(bad.Validate(), ErrIncompleteOptions))
	}
}

func TestNewSourceImageReopens(t *testing.T) {
	src := NewSourceImage("a.png", []byte("pixels"))
	assert.EqualValues(t, 6, src.Size)

	for i := 0; i < 2; i++ {
		rc, err := src.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "pixels", string(data))
		rc.Close()
	}
}

func TestBatchStatusTerminal(t *testing.T) {
	assert.False(t, StatusIdle.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestProcessingOptionsCheckLimits(t *testing.T) {
	ok := ProcessingOptions{AspectRatio: DefaultAspectRatio, Width: DefaultWidth, Quality: DefaultQuality}
	assert.NoError(t, ok.CheckLimits())
	assert.NoError(t, ProcessingOptions{AspectRatio: AspectRatio{21, 9}, Width: MinWidth, Quality: MinQuality}.CheckLimits())
	assert.NoError(t, ProcessingOptions{AspectRatio: AspectRatio{2, 1}, Width: MaxWidth, Quality: MaxQuality}.CheckLimits())

	for _, bad := range []ProcessingOptions{
		{AspectRatio: AspectRatio{5, 4}, Width: 1080, Quality: 0.8},
		{AspectRatio: DefaultAspectRatio, Width: 105, Quality: 0.8},
		{AspectRatio: DefaultAspectRatio, Width: 90, Quality: 0.8},
		{AspectRatio: DefaultAspectRatio, Width: 10010, Quality: 0.8},
		{AspectRatio: DefaultAspectRatio, Width: 1080, Quality: 0.05},
	} {
		assert.ErrorIs(t, bad.CheckLimits(), ErrOutOfRange, "%+v", bad)
	}
}
