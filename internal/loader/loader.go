// Package loader handles SVD file loading operations.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bjoernQ/svd2html/internal/device"
	"github.com/bjoernQ/svd2html/internal/svd"
)

// Loader handles loading chip descriptions from disk.
type Loader struct{}

// New creates a new chip description loader.
func New() *Loader {
	return &Loader{}
}

// Load reads, decodes and resolves the chip description file.
func (l *Loader) Load(path string) (*device.Chip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return l.load(file)
}

// LoadFromBytes decodes and resolves an in-memory chip description.
func (l *Loader) LoadFromBytes(data []byte) (*device.Chip, error) {
	return l.load(bytes.NewReader(data))
}

func (l *Loader) load(reader io.Reader) (*device.Chip, error) {
	dev, err := svd.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("decoding chip description: %w", err)
	}

	chip, err := device.Resolve(dev)
	if err != nil {
		return nil, fmt.Errorf("resolving chip description: %w", err)
	}
	return chip, nil
}
