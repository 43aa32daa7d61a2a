package verification

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bjoernQ/svd2html/internal/page"
	"github.com/bjoernQ/svd2html/internal/render"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

func testSite() *page.Site {
	pg := &page.PeripheralPage{
		Chip:        "CHIP",
		Name:        "GPIO",
		Anchor:      "p0",
		File:        "gpio.html",
		BaseAddress: "0x40000000",
		Registers: []page.RegisterView{{
			Name:    "STATUS",
			Offset:  "0x0004",
			Address: "0x40000004",
			Spans: []page.SpanView{
				{Width: 31, Msb: 31, Lsb: 1, Bits: "31 - 1", Reserved: true},
				{Width: 1, Bits: "0", Name: "READY"},
			},
		}},
	}
	return &page.Site{
		Index: &page.Index{
			Chip:    "CHIP",
			Entries: []page.IndexEntry{{Name: "GPIO", Anchor: "p0", File: "gpio.html"}},
		},
		Pages: []*page.PeripheralPage{pg},
	}
}

func writePage(t *testing.T, path string, data []byte) string {
	t.Helper()
	assert.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestVerifyOutputDirectory(t *testing.T) {
	site := testSite()
	dir := t.TempDir()

	var index, peripheral bytes.Buffer
	assert.NoError(t, render.Index(&index, site.Index, render.Theme{}))
	assert.NoError(t, render.Peripheral(&peripheral, site.Pages[0], render.Theme{}))

	paths := []string{
		writePage(t, filepath.Join(dir, render.IndexFile), index.Bytes()),
		writePage(t, filepath.Join(dir, "gpio.html"), peripheral.Bytes()),
	}
	assert.NoError(t, VerifyOutput(log.NewTestLogger(t), paths))
}

func TestVerifyOutputSingle(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, render.Single(&buf, testSite(), render.Theme{}))

	path := writePage(t, filepath.Join(t.TempDir(), "chip.html"), buf.Bytes())
	assert.NoError(t, VerifyOutput(log.NewTestLogger(t), []string{path}))
}

func TestVerifyOutputProblems(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "short row",
			content: `<table class="register"><tr><td colspan="31">x</td></tr></table>`,
		},
		{
			name:    "invalid colspan",
			content: `<table class="register"><tr><td colspan="x">x</td><td colspan="31"></td></tr></table>`,
		},
		{
			name:    "empty table",
			content: `<table class="register"></table>`,
		},
		{
			name:    "missing anchor",
			content: `<a href="#p3">GPIO</a>`,
		},
		{
			name:    "missing file",
			content: `<a href="gpio.html">GPIO</a>`,
		},
		{
			name:    "link without target",
			content: `<a>GPIO</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePage(t, filepath.Join(t.TempDir(), "page.html"), []byte(tt.content))
			err := VerifyOutput(log.NewNop(), []string{path})
			assert.ErrorContains(t, err, "problems found")
		})
	}
}

func TestVerifyOutputMissingFile(t *testing.T) {
	err := VerifyOutput(log.NewNop(), []string{filepath.Join(t.TempDir(), "missing.html")})
	assert.ErrorContains(t, err, "reading file")
}

func TestCheckLink(t *testing.T) {
	dir := t.TempDir()
	ids := set.NewFromSlice([]string{"p0"})
	written := set.NewFromSlice([]string{filepath.Join(dir, "gpio.html")})

	assert.NoError(t, checkLink("#p0", dir, ids, written))
	assert.NoError(t, checkLink("gpio.html", dir, ids, written))
	assert.NoError(t, checkLink("https://example.com/", dir, ids, written))
	assert.Error(t, checkLink("#p1", dir, ids, written))
	assert.Error(t, checkLink("uart.html", dir, ids, written))
}
