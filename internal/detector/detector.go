// Package detector handles output mode detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/bjoernQ/svd2html/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Mode defines how the pages of a chip are written.
type Mode int

const (
	// Directory writes an index page and one page per peripheral into a directory.
	Directory Mode = iota
	// SinglePage writes all peripherals into one document.
	SinglePage
)

func (m Mode) String() string {
	if m == SinglePage {
		return "single page"
	}
	return "directory"
}

// Detector handles output mode detection from the output path and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new output mode detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the output mode. The -single flag forces single page
// output, otherwise an output path with an HTML file extension selects it.
func (d *Detector) Detect(opts options.Program) Mode {
	if opts.Single {
		return SinglePage
	}

	mode := d.detectFromPath(opts.Output)
	d.logger.Debug("Auto-detected output mode",
		log.Stringer("mode", mode),
		log.String("output", opts.Output))
	return mode
}

// detectFromPath determines the output mode based on file extension.
func (d *Detector) detectFromPath(path string) Mode {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".html", ".htm":
		return SinglePage
	default:
		return Directory
	}
}
