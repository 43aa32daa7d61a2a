// Package render turns page view models into HTML documents.
//
// Documents are built as golang.org/x/net/html node trees and serialized
// with html.Render, which escapes all text and attribute values.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bjoernQ/svd2html/internal/page"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IndexFile is the file name of the index page in directory output.
const IndexFile = "index.html"

// RegisterTableClass marks the bit layout tables of registers.
const RegisterTableClass = "register"

// DefaultStylesheet is used when no stylesheet is configured.
const DefaultStylesheet = `
body {
    font-family: "Segoe UI", Tahoma, Geneva, Verdana, sans-serif;
    margin: 16px;
}

h1 {
    background: white;
    position: sticky;
    top: 0;
}

table, td {
    width: 100%;
    border-collapse: collapse;
}

table td {
    width: 1%;
    border: 1px solid black;
    text-align: center;
}

table td.header {
    writing-mode: vertical-lr;
    transform: rotate(180deg) translate(0px, 8px);
    width: 1%;
    border: none;
    text-align: start;
}

table td.reserved {
    background: #eeeeee;
}

a {
    font-family: "Segoe UI", Tahoma, Geneva, Verdana, sans-serif;
    margin: 16px;
    color: black;
}
`

// Theme controls the presentation of the generated documents.
type Theme struct {
	Title      string // document title prefix, the chip name is used if empty
	Stylesheet string
}

// Index writes the navigation page linking to every peripheral page.
func Index(w io.Writer, idx *page.Index, theme Theme) error {
	doc, body := newDocument(theme, idx.Chip, "")

	appendBlock(body, element(atom.H1, nil, text(title(idx.Chip, idx.Vendor))))
	if idx.Description != "" {
		appendBlock(body, element(atom.P, nil, text(idx.Description)))
	}
	appendBlock(body, element(atom.H2, nil, text("Peripheral List")))
	appendBlock(body, peripheralList(idx.Entries, func(entry page.IndexEntry) string {
		return entry.File
	}))

	return renderDocument(w, doc)
}

// Peripheral writes the page of a single peripheral.
func Peripheral(w io.Writer, pg *page.PeripheralPage, theme Theme) error {
	doc, body := newDocument(theme, pg.Chip, pg.Name)

	appendBlock(body, element(atom.P, nil,
		element(atom.A, []html.Attribute{{Key: "href", Val: IndexFile}}, text("Peripheral List"))))
	appendPeripheral(body, pg)

	return renderDocument(w, doc)
}

// Single writes all peripherals of the site into one document, preceded by
// a list of links to the peripheral headings.
func Single(w io.Writer, site *page.Site, theme Theme) error {
	doc, body := newDocument(theme, site.Index.Chip, "")

	appendBlock(body, element(atom.H1, nil, text("Peripheral List")))
	appendBlock(body, peripheralList(site.Index.Entries, func(entry page.IndexEntry) string {
		return "#" + entry.Anchor
	}))

	for _, pg := range site.Pages {
		appendPeripheral(body, pg)
	}

	return renderDocument(w, doc)
}

func appendPeripheral(body *html.Node, pg *page.PeripheralPage) {
	heading := fmt.Sprintf("%s (Base %s)", pg.Name, pg.BaseAddress)
	var attrs []html.Attribute
	if pg.Anchor != "" {
		attrs = []html.Attribute{{Key: "id", Val: pg.Anchor}}
	}
	appendBlock(body, element(atom.H1, attrs, text(heading)))
	appendBlock(body, element(atom.P, nil, text(pg.Description)))

	if len(pg.Interrupts) > 0 {
		appendBlock(body, element(atom.H2, nil, text("Peripheral Interrupts")))
		for _, irq := range pg.Interrupts {
			appendBlock(body, legendEntry(irq.Name, irq.Value, irq.Description))
		}
	}

	for _, reg := range pg.Registers {
		appendRegister(body, reg)
	}
}

func appendRegister(body *html.Node, reg page.RegisterView) {
	heading := fmt.Sprintf("%s (Offset %s Absolute %s)", reg.Name, reg.Offset, reg.Address)
	appendBlock(body, element(atom.H2, nil, text(heading)))
	appendBlock(body, element(atom.P, nil, text(reg.Description)))
	appendBlock(body, registerTable(reg))

	for _, field := range reg.Fields {
		appendBlock(body, legendEntry(field.Name, field.Access, field.Description))
		if len(field.Values) > 0 {
			appendBlock(body, valueList(field.Values))
		}
	}
}

// registerTable creates the bit layout table: a row of field names and a row
// of bit ranges, both spanning the bits of each span, followed by a row of
// the 32 bit numbers.
func registerTable(reg page.RegisterView) *html.Node {
	names := element(atom.Tr, nil)
	ranges := element(atom.Tr, nil)
	for _, span := range reg.Spans {
		colspan := html.Attribute{Key: "colspan", Val: strconv.FormatUint(uint64(span.Width), 10)}

		nameClass := "header"
		if span.Reserved {
			nameClass = "header reserved"
		}
		nameCell := element(atom.Td, []html.Attribute{colspan, {Key: "class", Val: nameClass}}, text(span.Name))
		if span.Description != "" {
			nameCell.Attr = append(nameCell.Attr, html.Attribute{Key: "title", Val: span.Description})
		}
		names.AppendChild(nameCell)

		rangeAttrs := []html.Attribute{colspan}
		if span.Reserved {
			rangeAttrs = append(rangeAttrs, html.Attribute{Key: "class", Val: "reserved"})
		}
		ranges.AppendChild(element(atom.Td, rangeAttrs, text(span.Bits)))
	}

	bits := element(atom.Tr, nil)
	for bit := 31; bit >= 0; bit-- {
		bits.AppendChild(element(atom.Td, nil, text(strconv.Itoa(bit))))
	}

	table := element(atom.Table, []html.Attribute{{Key: "class", Val: RegisterTableClass}})
	tbody := element(atom.Tbody, nil, names, ranges, bits)
	table.AppendChild(tbody)
	return table
}

// legendEntry creates a "<b>name</b> <i>detail</i> description" paragraph.
func legendEntry(name, detail, description string) *html.Node {
	p := element(atom.P, nil,
		element(atom.B, nil, text(name)),
		text(" "),
		element(atom.I, nil, text(detail)),
	)
	if description != "" {
		p.AppendChild(text(" " + description))
	}
	return p
}

func valueList(values []page.ValueView) *html.Node {
	list := element(atom.Ul, nil)
	for _, value := range values {
		item := element(atom.Li, nil, element(atom.Code, nil, text(value.Value)), text(" "+value.Name))
		if value.Description != "" {
			item.AppendChild(text(": " + value.Description))
		}
		list.AppendChild(item)
	}
	return list
}

func peripheralList(entries []page.IndexEntry, target func(page.IndexEntry) string) *html.Node {
	list := element(atom.Div, []html.Attribute{{Key: "class", Val: "peripherals"}})
	for _, entry := range entries {
		link := element(atom.A, []html.Attribute{{Key: "href", Val: target(entry)}}, text(entry.Name))
		p := element(atom.P, nil, link, text(" "+entry.BaseAddress))
		if entry.Description != "" {
			p.AppendChild(text(" " + entry.Description))
		}
		appendBlock(list, p)
	}
	return list
}

// newDocument creates the document skeleton and returns the document and
// body nodes.
func newDocument(theme Theme, chip, name string) (*html.Node, *html.Node) {
	stylesheet := theme.Stylesheet
	if stylesheet == "" {
		stylesheet = DefaultStylesheet
	}
	docTitle := theme.Title
	if docTitle == "" {
		docTitle = chip
	}
	if name != "" {
		docTitle = title(docTitle, name)
	}

	head := element(atom.Head, nil,
		element(atom.Meta, []html.Attribute{{Key: "charset", Val: "utf-8"}}),
		element(atom.Title, nil, text(docTitle)),
		element(atom.Style, []html.Attribute{{Key: "type", Val: "text/css"}}, text(stylesheet)),
	)
	body := element(atom.Body, nil)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(element(atom.Html, []html.Attribute{{Key: "lang", Val: "en"}}, head, body))
	return doc, body
}

func renderDocument(w io.Writer, doc *html.Node) error {
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing html: %w", err)
	}
	return nil
}

func title(parts ...string) string {
	var result string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if result != "" {
			result += " - "
		}
		result += part
	}
	return result
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
	for _, child := range children {
		n.AppendChild(child)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// appendBlock appends the child followed by a line break in the markup
// to keep the generated files readable.
func appendBlock(parent, child *html.Node) {
	parent.AppendChild(child)
	parent.AppendChild(text("\n"))
}
