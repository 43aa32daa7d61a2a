// Package pipeline orchestrates the conversion workflow stages.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bjoernQ/svd2html/internal/detector"
	"github.com/bjoernQ/svd2html/internal/device"
	"github.com/bjoernQ/svd2html/internal/loader"
	"github.com/bjoernQ/svd2html/internal/options"
	"github.com/bjoernQ/svd2html/internal/page"
	"github.com/bjoernQ/svd2html/internal/render"
	"github.com/bjoernQ/svd2html/internal/verification"
	"github.com/bjoernQ/svd2html/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

var errNoOutput = errors.New("no output path given")

// Pipeline orchestrates the complete conversion workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
	writer   *writer.Writer
}

// New creates a new conversion pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
		writer:   writer.New(logger),
	}
}

// Execute runs the complete conversion pipeline and returns the paths of
// the written files.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, settings options.Settings) ([]string, error) {
	chip, err := p.loader.Load(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("loading chip description: %w", err)
	}
	return p.ExecuteWithChip(ctx, chip, opts, settings)
}

// ExecuteWithDocument runs the conversion pipeline for an in-memory chip
// description.
func (p *Pipeline) ExecuteWithDocument(ctx context.Context, data []byte, opts options.Program,
	settings options.Settings) ([]string, error) {

	chip, err := p.loader.LoadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading chip description: %w", err)
	}
	return p.ExecuteWithChip(ctx, chip, opts, settings)
}

// ExecuteWithChip runs the conversion pipeline with a resolved chip.
// All pages are rendered before the first file is written, a failure or
// cancellation leaves no partial output behind.
func (p *Pipeline) ExecuteWithChip(ctx context.Context, chip *device.Chip, opts options.Program,
	settings options.Settings) ([]string, error) {

	if opts.Output == "" {
		return nil, errNoOutput
	}

	site, err := page.Assemble(chip, page.Options{
		SortRegisters: opts.Sort || settings.SortByOffset,
	})
	if err != nil {
		return nil, fmt.Errorf("assembling pages: %w", err)
	}

	mode := p.detector.Detect(opts)
	p.printInfo(opts, chip, mode)

	theme := render.Theme{
		Title:      settings.Title,
		Stylesheet: settings.Stylesheet,
	}

	var paths []string
	switch mode {
	case detector.SinglePage:
		data, err := renderSingle(ctx, site, theme)
		if err != nil {
			return nil, err
		}
		if err := p.writer.WriteFile(opts.Output, data); err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}
		paths = []string{opts.Output}

	default:
		files, err := renderDirectory(ctx, site, theme)
		if err != nil {
			return nil, err
		}
		paths, err = p.writer.WriteFiles(opts.Output, files)
		if err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}
	}

	if opts.Verify {
		if err := verification.VerifyOutput(p.logger, paths); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return paths, nil
}

// renderDirectory renders the index and one document per peripheral.
func renderDirectory(ctx context.Context, site *page.Site, theme render.Theme) ([]writer.File, error) {
	files := make([]writer.File, 0, len(site.Pages)+1)

	var buf bytes.Buffer
	if err := render.Index(&buf, site.Index, theme); err != nil {
		return nil, fmt.Errorf("rendering index: %w", err)
	}
	files = append(files, writer.File{Name: render.IndexFile, Data: bytes.Clone(buf.Bytes())})

	for _, pg := range site.Pages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rendering pages: %w", err)
		}

		buf.Reset()
		if err := render.Peripheral(&buf, pg, theme); err != nil {
			return nil, fmt.Errorf("rendering peripheral '%s': %w", pg.Name, err)
		}
		files = append(files, writer.File{Name: pg.File, Data: bytes.Clone(buf.Bytes())})
	}
	return files, nil
}

func renderSingle(ctx context.Context, site *page.Site, theme render.Theme) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rendering pages: %w", err)
	}

	var buf bytes.Buffer
	if err := render.Single(&buf, site, theme); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return buf.Bytes(), nil
}

// printInfo prints information about the chip being processed.
func (p *Pipeline) printInfo(opts options.Program, chip *device.Chip, mode detector.Mode) {
	if opts.Quiet {
		return
	}

	var registers int
	for _, peripheral := range chip.Peripherals {
		registers += len(peripheral.Registers)
	}

	p.logger.Info("Processing chip description",
		log.String("file", opts.Input),
		log.String("chip", chip.Name),
		log.Int("peripherals", len(chip.Peripherals)),
		log.Int("registers", registers),
		log.Stringer("mode", mode),
	)
}
