// Package fileprocessor handles file selection and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bjoernQ/svd2html/internal/options"
	"github.com/bjoernQ/svd2html/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ErrOutputIsInput is returned when the output path names the input file.
var ErrOutputIsInput = errors.New("output file would overwrite the input file")

// ProcessFile converts a single chip description file.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, settings options.Settings) error {
	if filepath.Clean(opts.Output) == filepath.Clean(opts.Input) {
		return fmt.Errorf("processing file '%s': %w", opts.Input, ErrOutputIsInput)
	}

	pipe := pipeline.New(logger)
	paths, err := pipe.Execute(ctx, opts, settings)
	if err != nil {
		return fmt.Errorf("processing file '%s': %w", opts.Input, err)
	}

	logger.Debug("Conversion finished",
		log.String("input", opts.Input),
		log.Int("files", len(paths)))
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match batch pattern '%s'", opts.Batch)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".html"
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	if len(commit) > 7 {
		commit = commit[:7]
	}
	if strings.Contains(date, "unknown") {
		date = ""
	}
	logger.Info("svd2html", log.String("version", buildinfo.Version(version, commit, date)))
}
