// Package layout computes the bit layout of registers for display.
//
// A register is shown as a sequence of spans from bit 31 down to bit 0.
// Every declared field becomes one span, consecutive bits that are not
// covered by any field are merged into a single reserved span.
package layout

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bjoernQ/svd2html/internal/device"
)

// ErrOverlappingFields is returned when two fields of a register claim the same bit.
var ErrOverlappingFields = errors.New("overlapping fields")

// OverlapError names the two fields whose bit ranges intersect.
type OverlapError struct {
	Register *device.Register
	First    *device.Field // field that claimed the bits first, in most significant bit order
	Second   *device.Field
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: field '%s' [%d:%d] intersects field '%s' [%d:%d]",
		ErrOverlappingFields,
		e.Second.Name, e.Second.Msb(), e.Second.Offset,
		e.First.Name, e.First.Msb(), e.First.Offset)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlappingFields
}

// Span is a contiguous run of bits, either covered by a field or reserved.
type Span struct {
	Msb   uint
	Lsb   uint
	Field *device.Field // nil for reserved bits
}

// Width returns the number of bits covered by the span, which is also the
// display width of the span in table columns.
func (s Span) Width() uint {
	return s.Msb - s.Lsb + 1
}

// Reserved returns whether the span covers bits that no field declares.
func (s Span) Reserved() bool {
	return s.Field == nil
}

// Compute returns the spans of the register ordered from the most significant
// bit to the least significant bit. The spans cover every bit of the register
// exactly once. Intersecting fields result in an *OverlapError.
func Compute(reg *device.Register) ([]Span, error) {
	fields := slices.Clone(reg.Fields)
	// stable sort keeps the declaration order for fields at the same offset
	slices.SortStableFunc(fields, func(a, b *device.Field) int {
		switch {
		case a.Offset > b.Offset:
			return -1
		case a.Offset < b.Offset:
			return 1
		default:
			return 0
		}
	})

	spans := make([]Span, 0, 2*len(fields)+1)
	next := uint(device.RegisterWidth) // one above the highest bit not yet claimed
	var previous *device.Field

	for _, field := range fields {
		if field.Width == 0 || field.Offset+field.Width > device.RegisterWidth {
			return nil, fmt.Errorf("field '%s' with offset %d and width %d does not fit the register",
				field.Name, field.Offset, field.Width)
		}

		msb := field.Msb()
		if msb >= next {
			return nil, &OverlapError{Register: reg, First: previous, Second: field}
		}
		if msb+1 < next {
			spans = append(spans, Span{Msb: next - 1, Lsb: msb + 1})
		}
		spans = append(spans, Span{Msb: msb, Lsb: field.Offset, Field: field})
		next = field.Offset
		previous = field
	}

	if next > 0 {
		spans = append(spans, Span{Msb: next - 1, Lsb: 0})
	}
	return spans, nil
}
