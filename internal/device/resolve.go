package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bjoernQ/svd2html/internal/svd"
	"github.com/retroenv/retrogolib/set"
)

var (
	// ErrMissingRequiredAttribute is returned when an element lacks a mandatory name,
	// address, offset or bit position.
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	// ErrUnresolvedDerivation is returned when a derivedFrom reference names an
	// element that does not exist or when derivations form a cycle.
	ErrUnresolvedDerivation = errors.New("unresolved derivation")
)

const arrayPlaceholder = "%s"

// declaration is a peripheral converted from its own document element,
// before its derivation is applied.
type declaration struct {
	peripheral  *Peripheral
	derivedFrom string
}

type resolver struct {
	defaultAccess       Access
	declared            map[string]declaration
	resolved            map[string]*Peripheral
	registerDerivations map[*Register]registerDerivation
}

// Resolve converts a decoded source document into a Chip. Peripheral
// derivations are resolved independent of the declaration order: the first
// pass converts every peripheral's own declarations, the second pass copies
// the registers of the base peripheral and replaces them by name with the
// registers declared by the derived peripheral. Register derivations are
// resolved last, when the registers of every peripheral are known.
func Resolve(dev *svd.Device) (*Chip, error) {
	defaultAccess, err := ParseAccess(dev.Access)
	if err != nil {
		return nil, fmt.Errorf("device '%s': %w", dev.Name, err)
	}

	r := &resolver{
		defaultAccess:       defaultAccess,
		declared:            make(map[string]declaration, len(dev.Peripherals.Elements)),
		resolved:            make(map[string]*Peripheral, len(dev.Peripherals.Elements)),
		registerDerivations: make(map[*Register]registerDerivation),
	}

	order := make([]string, 0, len(dev.Peripherals.Elements))
	for i := range dev.Peripherals.Elements {
		elem := &dev.Peripherals.Elements[i]
		p, err := r.convertPeripheral(elem)
		if err != nil {
			return nil, fmt.Errorf("peripheral %s: %w", elementName(elem.Name, i), err)
		}
		if _, ok := r.declared[p.Name]; ok {
			return nil, fmt.Errorf("peripheral '%s': %w: duplicate peripheral name", p.Name, svd.ErrStructuralParse)
		}
		r.declared[p.Name] = declaration{
			peripheral:  p,
			derivedFrom: strings.TrimSpace(elem.DerivedFrom),
		}
		order = append(order, p.Name)
	}

	chip := &Chip{
		Name:        strings.TrimSpace(dev.Name),
		Vendor:      strings.TrimSpace(dev.Vendor),
		Description: normalizeText(dev.Description),
		Peripherals: make([]*Peripheral, 0, len(order)),
	}
	for _, name := range order {
		p, err := r.flatten(name, set.New[string]())
		if err != nil {
			return nil, fmt.Errorf("peripheral '%s': %w", name, err)
		}
		chip.Peripherals = append(chip.Peripherals, p)
	}
	for _, name := range order {
		if err := r.resolveRegisterDerivations(name); err != nil {
			return nil, fmt.Errorf("peripheral '%s': %w", name, err)
		}
	}
	return chip, nil
}

// flatten returns the peripheral with its derivation chain applied.
func (r *resolver) flatten(name string, visiting set.Set[string]) (*Peripheral, error) {
	if p, ok := r.resolved[name]; ok {
		return p, nil
	}

	decl := r.declared[name]
	if decl.derivedFrom == "" {
		r.resolved[name] = decl.peripheral
		return decl.peripheral, nil
	}

	if visiting.Contains(name) {
		return nil, fmt.Errorf("%w: derivation cycle through '%s'", ErrUnresolvedDerivation, name)
	}
	visiting.Add(name)

	if _, ok := r.declared[decl.derivedFrom]; !ok {
		return nil, fmt.Errorf("%w: base peripheral '%s' not found", ErrUnresolvedDerivation, decl.derivedFrom)
	}
	base, err := r.flatten(decl.derivedFrom, visiting)
	if err != nil {
		return nil, fmt.Errorf("deriving from '%s': %w", decl.derivedFrom, err)
	}

	p := derive(base, decl.peripheral)
	r.resolved[name] = p
	return p, nil
}

// derive returns a copy of own with the registers of base that own does not
// override. An override replaces the whole register, fields are not merged.
// Registers are immutable, so base and derived peripheral share them.
func derive(base, own *Peripheral) *Peripheral {
	p := *own
	p.DerivedFrom = base.Name
	if p.Description == "" {
		p.Description = base.Description
	}
	if p.GroupName == "" {
		p.GroupName = base.GroupName
	}

	overrides := make(map[string]*Register, len(own.Registers))
	for _, reg := range own.Registers {
		overrides[reg.Name] = reg
	}

	registers := make([]*Register, 0, len(base.Registers)+len(own.Registers))
	used := set.New[string]()
	for _, reg := range base.Registers {
		if override, ok := overrides[reg.Name]; ok {
			registers = append(registers, override)
			used.Add(reg.Name)
			continue
		}
		registers = append(registers, reg)
	}
	for _, reg := range own.Registers {
		if !used.Contains(reg.Name) {
			registers = append(registers, reg)
		}
	}

	p.Registers = registers
	return &p
}

func (r *resolver) convertPeripheral(elem *svd.Peripheral) (*Peripheral, error) {
	name := strings.TrimSpace(elem.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingRequiredAttribute)
	}
	if strings.TrimSpace(elem.BaseAddress) == "" {
		return nil, fmt.Errorf("%w: baseAddress", ErrMissingRequiredAttribute)
	}
	base, err := svd.ParseNumber(elem.BaseAddress)
	if err != nil {
		return nil, fmt.Errorf("baseAddress: %w", err)
	}

	p := &Peripheral{
		Name:        name,
		Description: normalizeText(elem.Description),
		GroupName:   strings.TrimSpace(elem.GroupName),
		BaseAddress: base,
	}

	for i := range elem.Interrupts {
		interrupt, err := convertInterrupt(&elem.Interrupts[i])
		if err != nil {
			return nil, fmt.Errorf("interrupt %s: %w", elementName(elem.Interrupts[i].Name, i), err)
		}
		p.Interrupts = append(p.Interrupts, interrupt)
	}

	registers := newRegisterList()
	if err := r.convertRegisters(registers, &elem.Registers, "", 0); err != nil {
		return nil, err
	}
	for reg, base := range registers.derivations {
		r.registerDerivations[reg] = registerDerivation{peripheral: name, base: base}
	}
	p.Registers = registers.registers
	return p, nil
}

func convertInterrupt(elem *svd.Interrupt) (*Interrupt, error) {
	name := strings.TrimSpace(elem.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingRequiredAttribute)
	}
	if strings.TrimSpace(elem.Value) == "" {
		return nil, fmt.Errorf("%w: value", ErrMissingRequiredAttribute)
	}
	value, err := svd.ParseNumber(elem.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return &Interrupt{
		Name:        name,
		Description: normalizeText(elem.Description),
		Value:       value,
	}, nil
}

// convertRegisters converts the registers of a peripheral or cluster, clusters
// are flattened into the register list with their offset and name prefix applied.
func (r *resolver) convertRegisters(list *registerList, elems *svd.Registers, prefix string, offset uint64) error {
	for i := range elems.Registers {
		elem := &elems.Registers[i]
		reg, err := r.convertRegister(elem, prefix, offset)
		if err != nil {
			return fmt.Errorf("register %s: %w", elementName(elem.Name, i), err)
		}
		if err := list.add(reg, strings.TrimSpace(elem.DerivedFrom)); err != nil {
			return err
		}
	}

	for i := range elems.Clusters {
		if err := r.convertCluster(list, &elems.Clusters[i], prefix, offset); err != nil {
			return fmt.Errorf("cluster %s: %w", elementName(elems.Clusters[i].Name, i), err)
		}
	}
	return nil
}

func (r *resolver) convertCluster(list *registerList, elem *svd.Cluster, prefix string, offset uint64) error {
	name := strings.TrimSpace(elem.Name)
	if name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequiredAttribute)
	}
	if strings.TrimSpace(elem.AddressOffset) == "" {
		return fmt.Errorf("%w: addressOffset", ErrMissingRequiredAttribute)
	}
	clusterOffset, err := svd.ParseNumber(elem.AddressOffset)
	if err != nil {
		return fmt.Errorf("addressOffset: %w", err)
	}
	var dim uint64
	if strings.TrimSpace(elem.Dim) != "" {
		dim, err = svd.ParseNumber(elem.Dim)
		if err != nil {
			return fmt.Errorf("dim: %w", err)
		}
	}

	nested := &svd.Registers{
		Registers: elem.Registers,
		Clusters:  elem.Clusters,
	}
	prefix += arrayName(name, dim) + "."
	return r.convertRegisters(list, nested, prefix, offset+clusterOffset)
}

func (r *resolver) convertRegister(elem *svd.Register, prefix string, offset uint64) (*Register, error) {
	name := strings.TrimSpace(elem.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingRequiredAttribute)
	}
	if strings.TrimSpace(elem.AddressOffset) == "" {
		return nil, fmt.Errorf("%w: addressOffset", ErrMissingRequiredAttribute)
	}
	registerOffset, err := svd.ParseNumber(elem.AddressOffset)
	if err != nil {
		return nil, fmt.Errorf("addressOffset: %w", err)
	}
	access, err := ParseAccess(elem.Access)
	if err != nil {
		return nil, err
	}

	reg := &Register{
		Name:        prefix + name,
		Description: normalizeText(elem.Description),
		Offset:      offset + registerOffset,
		Access:      access.Or(r.defaultAccess),
	}

	if strings.TrimSpace(elem.Dim) != "" {
		reg.Dim, err = svd.ParseNumber(elem.Dim)
		if err != nil {
			return nil, fmt.Errorf("dim: %w", err)
		}
	}
	reg.Name = arrayName(reg.Name, reg.Dim)

	for i := range elem.Fields.Elements {
		field, err := convertField(&elem.Fields.Elements[i], reg.Access)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", elementName(elem.Fields.Elements[i].Name, i), err)
		}
		reg.Fields = append(reg.Fields, field)
	}
	return reg, nil
}

func convertField(elem *svd.Field, registerAccess Access) (*Field, error) {
	name := strings.TrimSpace(elem.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingRequiredAttribute)
	}

	offset, width, err := fieldPosition(elem)
	if err != nil {
		return nil, err
	}
	if offset >= RegisterWidth || width == 0 || width > RegisterWidth || offset+width > RegisterWidth {
		return nil, fmt.Errorf("%w: bit offset %d width %d exceeds the %d bit register",
			svd.ErrStructuralParse, offset, width, RegisterWidth)
	}

	access, err := ParseAccess(elem.Access)
	if err != nil {
		return nil, err
	}

	field := &Field{
		Name:        name,
		Description: normalizeText(elem.Description),
		Offset:      uint(offset),
		Width:       uint(width),
		Access:      access.Or(registerAccess),
	}

	for i := range elem.EnumeratedValues {
		for j := range elem.EnumeratedValues[i].Elements {
			value, err := convertEnumeratedValue(&elem.EnumeratedValues[i].Elements[j])
			if err != nil {
				return nil, fmt.Errorf("enumerated value %s: %w",
					elementName(elem.EnumeratedValues[i].Elements[j].Name, j), err)
			}
			field.Values = append(field.Values, value)
		}
	}
	return field, nil
}

// fieldPosition returns the bit offset and width of a field, which can be
// declared in one of three styles.
func fieldPosition(elem *svd.Field) (offset, width uint64, err error) {
	switch {
	case strings.TrimSpace(elem.BitOffset) != "":
		offset, err = svd.ParseNumber(elem.BitOffset)
		if err != nil {
			return 0, 0, fmt.Errorf("bitOffset: %w", err)
		}
		width = 1
		if strings.TrimSpace(elem.BitWidth) != "" {
			width, err = svd.ParseNumber(elem.BitWidth)
			if err != nil {
				return 0, 0, fmt.Errorf("bitWidth: %w", err)
			}
		}
		return offset, width, nil

	case strings.TrimSpace(elem.Lsb) != "" && strings.TrimSpace(elem.Msb) != "":
		lsb, err := svd.ParseNumber(elem.Lsb)
		if err != nil {
			return 0, 0, fmt.Errorf("lsb: %w", err)
		}
		msb, err := svd.ParseNumber(elem.Msb)
		if err != nil {
			return 0, 0, fmt.Errorf("msb: %w", err)
		}
		return bitSpan(msb, lsb)

	case strings.TrimSpace(elem.BitRange) != "":
		msb, lsb, err := svd.ParseBitRange(elem.BitRange)
		if err != nil {
			return 0, 0, fmt.Errorf("bitRange: %w", err)
		}
		return bitSpan(msb, lsb)

	default:
		return 0, 0, fmt.Errorf("%w: bitOffset, lsb/msb or bitRange", ErrMissingRequiredAttribute)
	}
}

func bitSpan(msb, lsb uint64) (offset, width uint64, err error) {
	if msb < lsb {
		return 0, 0, fmt.Errorf("%w: msb %d is below lsb %d", svd.ErrStructuralParse, msb, lsb)
	}
	return lsb, msb - lsb + 1, nil
}

func convertEnumeratedValue(elem *svd.EnumeratedValue) (*EnumeratedValue, error) {
	name := strings.TrimSpace(elem.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingRequiredAttribute)
	}

	value := &EnumeratedValue{
		Name:        name,
		Description: normalizeText(elem.Description),
		IsDefault:   strings.EqualFold(strings.TrimSpace(elem.IsDefault), "true") || strings.TrimSpace(elem.IsDefault) == "1",
	}

	if strings.TrimSpace(elem.Value) == "" {
		if !value.IsDefault {
			return nil, fmt.Errorf("%w: value", ErrMissingRequiredAttribute)
		}
		return value, nil
	}

	var err error
	value.Value, err = svd.ParseNumber(elem.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return value, nil
}

// arrayName replaces the array index placeholder of a register or cluster name with
// the index range of the array.
func arrayName(name string, dim uint64) string {
	if !strings.Contains(name, arrayPlaceholder) {
		return name
	}
	indexes := "<n>"
	if dim > 0 {
		indexes = fmt.Sprintf("<0..%d>", dim-1)
	}
	name = strings.ReplaceAll(name, "["+arrayPlaceholder+"]", arrayPlaceholder)
	return strings.ReplaceAll(name, arrayPlaceholder, indexes)
}

// elementName returns a quoted element name for error messages, or its
// position if the element has no name.
func elementName(name string, index int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("#%d", index)
	}
	return "'" + name + "'"
}

// normalizeText collapses the line breaks and indentation that descriptions
// carry from the source document.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
