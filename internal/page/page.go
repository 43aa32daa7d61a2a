// Package page assembles the view models that the renderer turns into HTML.
//
// All numeric values are formatted here, the renderer only places text.
package page

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bjoernQ/svd2html/internal/device"
	"github.com/bjoernQ/svd2html/internal/layout"
	"github.com/retroenv/retrogolib/set"
)

// Options control the assembly of pages.
type Options struct {
	SortRegisters bool // order registers by offset instead of declaration order
}

// Site contains all view models of a chip.
type Site struct {
	Index *Index
	Pages []*PeripheralPage
}

// Index is the navigation page listing all peripherals.
type Index struct {
	Chip        string
	Vendor      string
	Description string
	Entries     []IndexEntry
}

// IndexEntry links to the page of one peripheral.
type IndexEntry struct {
	Name        string
	Anchor      string // element id of the peripheral heading in single page output
	File        string // file name of the peripheral page in directory output
	BaseAddress string
	Description string
	GroupName   string
}

// PeripheralPage is the view model of a single peripheral.
type PeripheralPage struct {
	Chip        string
	Name        string
	Anchor      string
	File        string
	Description string
	BaseAddress string
	Interrupts  []InterruptView
	Registers   []RegisterView
}

// InterruptView is an interrupt line of a peripheral.
type InterruptView struct {
	Name        string
	Value       string
	Description string
}

// RegisterView is a register with its bit layout.
type RegisterView struct {
	Name        string
	Description string
	Offset      string
	Address     string
	Access      string
	Spans       []SpanView
	Fields      []FieldView
}

// SpanView is one column group of the register table.
type SpanView struct {
	Width       uint
	Msb         uint
	Lsb         uint
	Bits        string // "31 - 8" for multi bit spans, "3" for single bits
	Name        string
	Access      string
	Description string
	Reserved    bool
	Values      []ValueView
}

// FieldView is an entry of the field legend below a register table.
type FieldView struct {
	Name        string
	Bits        string
	Access      string
	Description string
	Values      []ValueView
}

// ValueView is an enumerated value of a field.
type ValueView struct {
	Value       string
	Name        string
	Description string
}

// Assemble builds the index and one page per peripheral of the chip.
// Layout failures are returned with the peripheral and register name.
func Assemble(chip *device.Chip, opts Options) (*Site, error) {
	site := &Site{
		Index: &Index{
			Chip:        chip.Name,
			Vendor:      chip.Vendor,
			Description: chip.Description,
			Entries:     make([]IndexEntry, 0, len(chip.Peripherals)),
		},
		Pages: make([]*PeripheralPage, 0, len(chip.Peripherals)),
	}

	files := set.New[string]()
	for i, peripheral := range chip.Peripherals {
		pg, err := AssemblePeripheral(chip.Name, peripheral, opts)
		if err != nil {
			return nil, err
		}
		pg.Anchor = "p" + strconv.Itoa(i)
		pg.File = uniqueFileName(peripheral.Name, files)

		site.Pages = append(site.Pages, pg)
		site.Index.Entries = append(site.Index.Entries, IndexEntry{
			Name:        pg.Name,
			Anchor:      pg.Anchor,
			File:        pg.File,
			BaseAddress: pg.BaseAddress,
			Description: pg.Description,
			GroupName:   peripheral.GroupName,
		})
	}
	return site, nil
}

// AssemblePeripheral builds the page of a single peripheral. Anchor and File
// are left empty, they depend on the position of the peripheral in the chip.
func AssemblePeripheral(chipName string, peripheral *device.Peripheral, opts Options) (*PeripheralPage, error) {
	pg := &PeripheralPage{
		Chip:        chipName,
		Name:        peripheral.Name,
		Description: peripheral.Description,
		BaseAddress: formatAddress(peripheral.BaseAddress),
		Interrupts:  make([]InterruptView, 0, len(peripheral.Interrupts)),
		Registers:   make([]RegisterView, 0, len(peripheral.Registers)),
	}

	for _, irq := range peripheral.Interrupts {
		pg.Interrupts = append(pg.Interrupts, InterruptView{
			Name:        irq.Name,
			Value:       strconv.FormatUint(irq.Value, 10),
			Description: irq.Description,
		})
	}

	registers := peripheral.Registers
	if opts.SortRegisters {
		registers = slices.Clone(registers)
		slices.SortStableFunc(registers, func(a, b *device.Register) int {
			switch {
			case a.Offset < b.Offset:
				return -1
			case a.Offset > b.Offset:
				return 1
			default:
				return 0
			}
		})
	}

	for _, reg := range registers {
		view, err := assembleRegister(peripheral, reg)
		if err != nil {
			return nil, fmt.Errorf("peripheral '%s': register '%s': %w", peripheral.Name, reg.Name, err)
		}
		pg.Registers = append(pg.Registers, view)
	}
	return pg, nil
}

func assembleRegister(peripheral *device.Peripheral, reg *device.Register) (RegisterView, error) {
	spans, err := layout.Compute(reg)
	if err != nil {
		return RegisterView{}, fmt.Errorf("computing layout: %w", err)
	}

	view := RegisterView{
		Name:        reg.Name,
		Description: reg.Description,
		Offset:      fmt.Sprintf("0x%04x", reg.Offset),
		Address:     formatAddress(reg.Address(peripheral.BaseAddress)),
		Access:      reg.Access.Label(),
		Spans:       make([]SpanView, 0, len(spans)),
		Fields:      make([]FieldView, 0, len(reg.Fields)),
	}

	for _, span := range spans {
		sv := SpanView{
			Width:    span.Width(),
			Msb:      span.Msb,
			Lsb:      span.Lsb,
			Bits:     bitRange(span.Msb, span.Lsb),
			Reserved: span.Reserved(),
		}
		if !span.Reserved() {
			sv.Name = span.Field.Name
			sv.Access = span.Field.Access.Label()
			sv.Description = span.Field.Description
			sv.Values = valueViews(span.Field.Values)
		}
		view.Spans = append(view.Spans, sv)
	}

	for _, field := range reg.Fields {
		view.Fields = append(view.Fields, FieldView{
			Name:        field.Name,
			Bits:        bitRange(field.Msb(), field.Offset),
			Access:      field.Access.Label(),
			Description: field.Description,
			Values:      valueViews(field.Values),
		})
	}
	return view, nil
}

func valueViews(values []*device.EnumeratedValue) []ValueView {
	if len(values) == 0 {
		return nil
	}
	views := make([]ValueView, 0, len(values))
	for _, value := range values {
		vv := ValueView{
			Name:        value.Name,
			Description: value.Description,
			Value:       strconv.FormatUint(value.Value, 10),
		}
		if value.IsDefault {
			vv.Value = "default"
		}
		views = append(views, vv)
	}
	return views
}

func formatAddress(address uint64) string {
	return fmt.Sprintf("0x%08x", address)
}

func bitRange(msb, lsb uint) string {
	if msb == lsb {
		return strconv.FormatUint(uint64(msb), 10)
	}
	return fmt.Sprintf("%d - %d", msb, lsb)
}

// uniqueFileName derives a file name from the peripheral name that only
// contains characters safe for all common file systems.
func uniqueFileName(name string, used set.Set[string]) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		default:
			return '_'
		}
	}, name)
	if base == "" || base == "index" {
		base = "peripheral_" + base
	}

	file := base + ".html"
	for i := 2; used.Contains(file); i++ {
		file = fmt.Sprintf("%s_%d.html", base, i)
	}
	used.Add(file)
	return file
}
