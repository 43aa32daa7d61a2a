// Package writer implements writing of the rendered documents to disk.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/log"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// File is a rendered document that is held in memory until all documents
// of a run have been rendered successfully.
type File struct {
	Name string // path relative to the output directory
	Data []byte
}

// Writer writes rendered documents strictly sequentially.
type Writer struct {
	logger *log.Logger
}

// New creates a new writer.
func New(logger *log.Logger) *Writer {
	return &Writer{
		logger: logger,
	}
}

// WriteFiles writes all files into the directory, creating it if needed.
// It returns the paths of the written files.
func (w *Writer) WriteFiles(dir string, files []File) ([]string, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating output directory '%s': %w", dir, err)
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		path := filepath.Join(dir, file.Name)
		if err := w.WriteFile(path, file.Data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteFile writes a single file, creating its parent directory if needed.
func (w *Writer) WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("creating output directory '%s': %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("writing file '%s': %w", path, err)
	}

	w.logger.Debug("Wrote file",
		log.String("path", path),
		log.Int("size", len(data)))
	return nil
}
