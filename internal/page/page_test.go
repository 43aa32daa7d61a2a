package page

import (
	"errors"
	"strings"
	"testing"

	"github.com/bjoernQ/svd2html/internal/device"
	"github.com/bjoernQ/svd2html/internal/layout"
	"github.com/bjoernQ/svd2html/internal/svd"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/set"
)

const statusDocument = `<?xml version="1.0" encoding="utf-8"?>
<device>
  <name>CHIP</name>
  <peripherals>
    <peripheral>
      <name>GPIO</name>
      <baseAddress>0x40000000</baseAddress>
      <registers>
        <register>
          <name>STATUS</name>
          <addressOffset>0x04</addressOffset>
          <fields>
            <field>
              <name>READY</name>
              <bitOffset>0</bitOffset>
              <bitWidth>1</bitWidth>
            </field>
          </fields>
        </register>
      </registers>
    </peripheral>
  </peripherals>
</device>`

func TestAssembleEndToEnd(t *testing.T) {
	dev, err := svd.Decode(strings.NewReader(statusDocument))
	assert.NoError(t, err)
	chip, err := device.Resolve(dev)
	assert.NoError(t, err)

	site, err := Assemble(chip, Options{})
	assert.NoError(t, err)
	assert.Len(t, site.Pages, 1)

	pg := site.Pages[0]
	assert.Equal(t, "CHIP", pg.Chip)
	assert.Equal(t, "GPIO", pg.Name)
	assert.Equal(t, "0x40000000", pg.BaseAddress)
	assert.Len(t, pg.Registers, 1)

	reg := pg.Registers[0]
	assert.Equal(t, "STATUS", reg.Name)
	assert.Equal(t, "0x0004", reg.Offset)
	assert.Equal(t, "0x40000004", reg.Address)

	assert.Len(t, reg.Spans, 2)
	assert.True(t, reg.Spans[0].Reserved)
	assert.Equal(t, uint(31), reg.Spans[0].Width)
	assert.Equal(t, "", reg.Spans[0].Name)
	assert.Equal(t, "31 - 1", reg.Spans[0].Bits)
	assert.False(t, reg.Spans[1].Reserved)
	assert.Equal(t, "READY", reg.Spans[1].Name)
	assert.Equal(t, uint(1), reg.Spans[1].Width)
	assert.Equal(t, "0", reg.Spans[1].Bits)

	assert.Equal(t, "CHIP", site.Index.Chip)
	assert.Len(t, site.Index.Entries, 1)
	assert.Equal(t, "p0", site.Index.Entries[0].Anchor)
	assert.Equal(t, "gpio.html", site.Index.Entries[0].File)
}

func testChip() *device.Chip {
	enable := &device.Field{
		Name:        "EN",
		Description: "Enable",
		Offset:      0,
		Width:       1,
		Access:      device.ReadWrite,
		Values: []*device.EnumeratedValue{
			{Name: "OFF", Value: 0},
			{Name: "ON", Value: 1, Description: "Running"},
			{Name: "OTHER", IsDefault: true},
		},
	}
	baud := &device.Field{Name: "BAUD", Offset: 8, Width: 16, Access: device.ReadOnly}

	return &device.Chip{
		Name:   "ESP32C3",
		Vendor: "Espressif",
		Peripherals: []*device.Peripheral{
			{
				Name:        "UART0",
				Description: "UART controller",
				GroupName:   "UART",
				BaseAddress: 0x60000000,
				Interrupts:  []*device.Interrupt{{Name: "UART0", Value: 21, Description: "UART0 interrupt"}},
				Registers: []*device.Register{
					{Name: "STATUS", Offset: 0x1c, Access: device.ReadOnly},
					{Name: "CTRL", Offset: 0x0, Access: device.ReadWrite, Fields: []*device.Field{enable, baud}},
				},
			},
			{
				Name:        "uart0",
				BaseAddress: 0x60010000,
			},
		},
	}
}

func TestAssembleViews(t *testing.T) {
	site, err := Assemble(testChip(), Options{})
	assert.NoError(t, err)
	assert.Len(t, site.Pages, 2)

	pg := site.Pages[0]
	assert.Equal(t, "UART controller", pg.Description)
	assert.Equal(t, []InterruptView{{Name: "UART0", Value: "21", Description: "UART0 interrupt"}}, pg.Interrupts)

	// declaration order is kept without sorting
	assert.Equal(t, "STATUS", pg.Registers[0].Name)
	assert.Equal(t, "R", pg.Registers[0].Access)

	ctrl := pg.Registers[1]
	assert.Equal(t, "0x60000000", ctrl.Address)
	assert.Len(t, ctrl.Spans, 4)
	assert.Equal(t, "31 - 24", ctrl.Spans[0].Bits)
	assert.Equal(t, "BAUD", ctrl.Spans[1].Name)
	assert.Equal(t, "R", ctrl.Spans[1].Access)
	assert.Equal(t, "23 - 8", ctrl.Spans[1].Bits)
	assert.Equal(t, "7 - 1", ctrl.Spans[2].Bits)
	assert.Equal(t, "EN", ctrl.Spans[3].Name)
	assert.Equal(t, "RW", ctrl.Spans[3].Access)
	assert.Equal(t, []ValueView{
		{Value: "0", Name: "OFF"},
		{Value: "1", Name: "ON", Description: "Running"},
		{Value: "default", Name: "OTHER"},
	}, ctrl.Spans[3].Values)

	// legend keeps field declaration order
	assert.Len(t, ctrl.Fields, 2)
	assert.Equal(t, "EN", ctrl.Fields[0].Name)
	assert.Equal(t, "0", ctrl.Fields[0].Bits)
	assert.Equal(t, "BAUD", ctrl.Fields[1].Name)
	assert.Equal(t, "23 - 8", ctrl.Fields[1].Bits)

	var width uint
	for _, span := range ctrl.Spans {
		width += span.Width
	}
	assert.Equal(t, uint(32), width)

	entries := site.Index.Entries
	assert.Len(t, entries, 2)
	assert.Equal(t, "UART", entries[0].GroupName)
	assert.Equal(t, "0x60000000", entries[0].BaseAddress)
	assert.Equal(t, "uart0.html", entries[0].File)
	assert.Equal(t, "uart0_2.html", entries[1].File)
	assert.Equal(t, "p1", entries[1].Anchor)
}

func TestAssembleSortRegisters(t *testing.T) {
	site, err := Assemble(testChip(), Options{SortRegisters: true})
	assert.NoError(t, err)

	registers := site.Pages[0].Registers
	assert.Equal(t, "CTRL", registers[0].Name)
	assert.Equal(t, "STATUS", registers[1].Name)
}

func TestAssembleOverlapContext(t *testing.T) {
	chip := &device.Chip{
		Name: "CHIP",
		Peripherals: []*device.Peripheral{{
			Name: "TIMER",
			Registers: []*device.Register{{
				Name: "CFG",
				Fields: []*device.Field{
					{Name: "MODE", Offset: 0, Width: 4},
					{Name: "PRESCALE", Offset: 2, Width: 4},
				},
			}},
		}},
	}

	_, err := Assemble(chip, Options{})
	assert.ErrorIs(t, err, layout.ErrOverlappingFields)
	assert.ErrorContains(t, err, "peripheral 'TIMER': register 'CFG'")

	var overlap *layout.OverlapError
	assert.True(t, errors.As(err, &overlap))
	assert.Equal(t, "CFG", overlap.Register.Name)
}

func TestUniqueFileName(t *testing.T) {
	used := set.New[string]()

	tests := []struct {
		name     string
		expected string
	}{
		{name: "GPIO", expected: "gpio.html"},
		{name: "gpio", expected: "gpio_2.html"},
		{name: "I2C/0", expected: "i2c_0.html"},
		{name: "INDEX", expected: "peripheral_index.html"},
		{name: "", expected: "peripheral_.html"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, uniqueFileName(tt.name, used))
		})
	}
}
