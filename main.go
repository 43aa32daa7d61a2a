// Package main implements the main entry point for the SVD to HTML register documentation generator
package main

import (
	"context"
	"errors"
	"os"

	"github.com/bjoernQ/svd2html/internal/cli"
	"github.com/bjoernQ/svd2html/internal/config"
	"github.com/bjoernQ/svd2html/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
			if msg := usageErr.Message(); msg != "" {
				logger.Error(msg)
			}
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	settings, err := config.LoadSettings(opts.Config)
	if err != nil {
		logger.Fatal("Loading settings failed", log.Err(err))
	}

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	var failed bool
	for _, file := range files {
		opts.Input = file
		if len(files) > 1 || opts.Output == "" {
			opts.Output = fileprocessor.GenerateOutputFilename(file)
		}

		if err := fileprocessor.ProcessFile(ctx, logger, opts, settings); err != nil {
			// Handle context cancellation (Ctrl+C) gracefully
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				os.Exit(1)
			}
			logger.Error("Conversion failed", log.Err(err))
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
