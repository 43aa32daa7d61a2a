package detector

import (
	"testing"

	"github.com/bjoernQ/svd2html/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name     string
		single   bool
		output   string
		wantMode Mode
	}{
		{
			name:     "single flag with directory output",
			single:   true,
			output:   "out",
			wantMode: SinglePage,
		},
		{
			name:     "single flag without output",
			single:   true,
			wantMode: SinglePage,
		},
		{
			name:     "detect from .html extension",
			output:   "esp32c3.html",
			wantMode: SinglePage,
		},
		{
			name:     "directory output",
			output:   "docs/esp32c3",
			wantMode: Directory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Program{
				Parameters: options.Parameters{Output: tt.output},
				Flags:      options.Flags{Single: tt.single},
			}

			got := d.Detect(opts)
			assert.Equal(t, tt.wantMode, got)
		})
	}
}

func TestDetectFromPath(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name     string
		path     string
		wantMode Mode
	}{
		{
			name:     ".html extension",
			path:     "chip.html",
			wantMode: SinglePage,
		},
		{
			name:     ".HTM extension (uppercase)",
			path:     "CHIP.HTM",
			wantMode: SinglePage,
		},
		{
			name:     "no extension",
			path:     "chip",
			wantMode: Directory,
		},
		{
			name:     "other extension",
			path:     "chip.out",
			wantMode: Directory,
		},
		{
			name:     "empty path",
			path:     "",
			wantMode: Directory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.detectFromPath(tt.path)
			assert.Equal(t, tt.wantMode, got)
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "directory", Directory.String())
	assert.Equal(t, "single page", SinglePage.String())
}
