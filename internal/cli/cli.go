// Package cli handles command line interface logic
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bjoernQ/svd2html/internal/options"
	"github.com/retroenv/retrogolib/cli"
)

const programName = "svd2html"

// ParseFlags parses command line arguments, excluding the program name,
// and returns the program options.
func ParseFlags(args []string) (options.Program, error) {
	var opts options.Program
	var positional options.Positional

	flags := cli.NewFlagSet(programName)
	flags.AddSection("Parameters", &opts.Parameters)
	flags.AddSection("Flags", &opts.Flags)
	flags.AddPositional(&positional)

	remaining, err := flags.Parse(args)
	if err != nil {
		if errors.Is(err, cli.ErrHelpRequested) {
			return opts, &UsageError{flags: flags}
		}
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	if err := validateArgs(remaining); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	if opts.Input == "" {
		opts.Input = positional.File
	} else if positional.File != "" {
		return opts, &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("input file given twice: '%s' and '%s'", opts.Input, positional.File),
		}
	}

	if opts.Input == "" && opts.Batch == "" {
		return opts, &UsageError{flags: flags}
	}
	if opts.Batch != "" && opts.Input != "" {
		return opts, &UsageError{flags: flags, msg: "batch mode does not accept an input file"}
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *cli.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	if e.msg == "" {
		return "no input file given"
	}
	return e.msg
}

// Message returns the reason for the usage error, it is empty when only the
// usage information was requested or no input was given.
func (e *UsageError) Message() string {
	return e.msg
}

// ShowUsage prints the usage information.
func (e *UsageError) ShowUsage() {
	if e.flags != nil {
		e.flags.ShowUsage()
	}
}

// validateArgs checks that no flags follow the input file, the standard
// flag parser stops at the first positional argument.
func validateArgs(args []string) error {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return fmt.Errorf("argument %s found after the input file, please pass the input file as last argument", arg)
		}
	}
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	return nil
}
