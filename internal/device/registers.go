package device

import (
	"fmt"
	"strings"

	"github.com/bjoernQ/svd2html/internal/svd"
	"github.com/retroenv/retrogolib/set"
)

// registerList collects the registers declared by one peripheral.
type registerList struct {
	registers   []*Register
	names       set.Set[string]
	derivations map[*Register]string // register to the name of its base register
}

func newRegisterList() *registerList {
	return &registerList{
		names:       set.New[string](),
		derivations: make(map[*Register]string),
	}
}

func (l *registerList) add(reg *Register, derivedFrom string) error {
	if l.names.Contains(reg.Name) {
		return fmt.Errorf("register '%s': %w: duplicate register name", reg.Name, svd.ErrStructuralParse)
	}
	l.names.Add(reg.Name)
	l.registers = append(l.registers, reg)
	if derivedFrom != "" {
		l.derivations[reg] = derivedFrom
	}
	return nil
}

// registerDerivation is a pending derivedFrom reference of a register.
type registerDerivation struct {
	peripheral string // peripheral that declares the derived register
	base       string
}

// resolveRegisterDerivations copies fields and description of the base
// register to the registers declared by the named peripheral that are
// derived from another register and do not declare their own. All
// peripherals must be flattened before, a base register can be declared
// by any peripheral.
func (r *resolver) resolveRegisterDerivations(name string) error {
	for _, reg := range r.declared[name].peripheral.Registers {
		if err := r.inherit(reg, set.New[*Register]()); err != nil {
			return fmt.Errorf("register '%s': %w", reg.Name, err)
		}
	}
	return nil
}

func (r *resolver) inherit(reg *Register, visiting set.Set[*Register]) error {
	derivation, ok := r.registerDerivations[reg]
	if !ok {
		return nil
	}
	if visiting.Contains(reg) {
		return fmt.Errorf("%w: derivation cycle through register '%s'", ErrUnresolvedDerivation, reg.Name)
	}
	visiting.Add(reg)

	base, err := r.findRegister(derivation.peripheral, derivation.base)
	if err != nil {
		return err
	}
	if err := r.inherit(base, visiting); err != nil {
		return err
	}

	if len(reg.Fields) == 0 {
		reg.Fields = base.Fields
	}
	if reg.Description == "" {
		reg.Description = base.Description
	}
	delete(r.registerDerivations, reg)
	return nil
}

// findRegister looks up the base register of a derivedFrom reference. A
// dotted path whose first segment names a peripheral is looked up in that
// peripheral, any other reference in the peripheral of the derived register.
func (r *resolver) findRegister(scope, path string) (*Register, error) {
	if reg, ok := r.resolved[scope].Register(path); ok {
		return reg, nil
	}

	peripheral, name := scope, path
	if i := strings.IndexByte(path, '.'); i >= 0 {
		if _, ok := r.resolved[path[:i]]; ok {
			peripheral, name = path[:i], path[i+1:]
		}
	}

	p := r.resolved[peripheral]
	if reg, ok := p.Register(name); ok {
		return reg, nil
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		if reg, ok := p.Register(name[i+1:]); ok {
			return reg, nil
		}
	}
	return nil, fmt.Errorf("%w: base register '%s' not found", ErrUnresolvedDerivation, path)
}
