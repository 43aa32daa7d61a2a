// Package device contains the resolved register model of a chip.
//
// A Chip is built once by Resolve from a decoded source document and is
// read-only afterwards. Derived peripherals are flattened into plain data,
// no entity references another entity of the same kind.
package device

// RegisterWidth is the fixed width of all registers in bits.
const RegisterWidth = 32

// Chip is a resolved chip description.
type Chip struct {
	Name        string
	Vendor      string
	Description string
	Peripherals []*Peripheral
}

// Peripheral is a hardware block exposing memory mapped registers.
type Peripheral struct {
	Name        string
	Description string
	GroupName   string
	DerivedFrom string // name of the base peripheral, empty if not derived
	BaseAddress uint64
	Registers   []*Register
	Interrupts  []*Interrupt
}

// Register is a 32-bit register within a peripheral.
type Register struct {
	Name        string
	Description string
	Offset      uint64 // byte offset relative to the peripheral base
	Access      Access
	Dim         uint64 // number of array elements, 0 for a single register
	Fields      []*Field
}

// Field is a contiguous bit range within a register.
type Field struct {
	Name        string
	Description string
	Offset      uint // lowest bit position
	Width       uint
	Access      Access
	Values      []*EnumeratedValue
}

// Interrupt is an interrupt line associated with a peripheral.
type Interrupt struct {
	Name        string
	Description string
	Value       uint64
}

// EnumeratedValue assigns a meaning to a value of a field.
type EnumeratedValue struct {
	Name        string
	Description string
	Value       uint64
	IsDefault   bool
}

// Peripheral returns the peripheral with the given name.
func (c *Chip) Peripheral(name string) (*Peripheral, bool) {
	for _, p := range c.Peripherals {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Register returns the register with the given name.
func (p *Peripheral) Register(name string) (*Register, bool) {
	for _, r := range p.Registers {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Address returns the absolute address of the register for the given
// peripheral base address.
func (r *Register) Address(base uint64) uint64 {
	return base + r.Offset
}

// Msb returns the most significant bit position of the field.
func (f *Field) Msb() uint {
	return f.Offset + f.Width - 1
}
