// Package verification verifies that the written pages are well formed.
package verification

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bjoernQ/svd2html/internal/device"
	"github.com/bjoernQ/svd2html/internal/render"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxLoggedProblems = 10

// VerifyOutput parses every written page again and checks that every row of
// every register table covers exactly 32 bit columns and that every link
// points to an existing file or element.
func VerifyOutput(logger *log.Logger, paths []string) error {
	written := set.NewFromSlice(paths)

	var problems uint64
	for _, path := range paths {
		issues, err := verifyFile(path, written)
		if err != nil {
			return err
		}

		for _, issue := range issues {
			problems++
			if problems <= maxLoggedProblems {
				logger.Error("Page problem",
					log.String("file", path),
					log.String("problem", issue))
			}
		}
	}

	if problems == 0 {
		return nil
	}
	return fmt.Errorf("%d problems found in written pages", problems)
}

func verifyFile(path string, written set.Set[string]) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file for verification: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing file '%s': %w", path, err)
	}

	ids := set.New[string]()
	var tables, links []*html.Node
	walk(doc, func(n *html.Node) {
		if id := attribute(n, "id"); id != "" {
			ids.Add(id)
		}
		switch n.DataAtom {
		case atom.Table:
			if hasClass(n, render.RegisterTableClass) {
				tables = append(tables, n)
			}
		case atom.A:
			links = append(links, n)
		}
	})

	var issues []string
	for i, table := range tables {
		issues = append(issues, checkTable(i, table)...)
	}

	dir := filepath.Dir(path)
	for _, link := range links {
		target := attribute(link, "href")
		if err := checkLink(target, dir, ids, written); err != nil {
			issues = append(issues, err.Error())
		}
	}
	return issues, nil
}

func checkTable(index int, table *html.Node) []string {
	var issues []string
	var rows int
	walk(table, func(n *html.Node) {
		if n.DataAtom != atom.Tr {
			return
		}
		rows++

		var columns uint64
		for cell := n.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type != html.ElementNode || cell.DataAtom != atom.Td {
				continue
			}
			span := uint64(1)
			if val := attribute(cell, "colspan"); val != "" {
				parsed, err := strconv.ParseUint(val, 10, 32)
				if err != nil {
					issues = append(issues, fmt.Sprintf("register table %d: invalid colspan '%s'", index, val))
					continue
				}
				span = parsed
			}
			columns += span
		}

		if columns != device.RegisterWidth {
			issues = append(issues, fmt.Sprintf("register table %d: row %d covers %d bits instead of %d",
				index, rows, columns, device.RegisterWidth))
		}
	})

	if rows == 0 {
		issues = append(issues, fmt.Sprintf("register table %d has no rows", index))
	}
	return issues
}

func checkLink(target, dir string, ids, written set.Set[string]) error {
	switch {
	case target == "":
		return errors.New("link without target")

	case strings.HasPrefix(target, "#"):
		if !ids.Contains(target[1:]) {
			return fmt.Errorf("link target '%s' not found", target)
		}
		return nil

	case strings.Contains(target, "://"):
		return nil

	default:
		path := filepath.Join(dir, target)
		if written.Contains(path) {
			return nil
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("link target '%s' not found", target)
		}
		return nil
	}
}

func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attribute(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attribute(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
