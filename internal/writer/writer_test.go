package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestWriteFiles(t *testing.T) {
	w := New(log.NewTestLogger(t))
	dir := filepath.Join(t.TempDir(), "out", "html")

	files := []File{
		{Name: "index.html", Data: []byte("<p>index</p>")},
		{Name: "gpio.html", Data: []byte("<p>gpio</p>")},
	}

	paths, err := w.WriteFiles(dir, files)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "index.html"),
		filepath.Join(dir, "gpio.html"),
	}, paths)

	for i, path := range paths {
		data, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, string(files[i].Data), string(data))
	}
}

func TestWriteFile(t *testing.T) {
	w := New(log.NewTestLogger(t))
	path := filepath.Join(t.TempDir(), "nested", "chip.html")

	assert.NoError(t, w.WriteFile(path, []byte("chip")))
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "chip", string(data))
}

func TestWriteFileError(t *testing.T) {
	w := New(log.NewTestLogger(t))
	dir := t.TempDir()

	// a directory occupies the target path
	target := filepath.Join(dir, "page.html")
	assert.NoError(t, os.Mkdir(target, 0o755))

	err := w.WriteFile(target, []byte("x"))
	assert.ErrorContains(t, err, "writing file")
}
