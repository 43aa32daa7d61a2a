package svd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedNumber is returned when a numeric token is neither a decimal
// nor a hexadecimal (or binary) number.
var ErrMalformedNumber = errors.New("malformed number")

// ParseNumber parses a non negative number given in decimal, hexadecimal
// (0x prefix) or binary (# or 0b prefix) textual form.
func ParseNumber(s string) (uint64, error) {
	text := strings.TrimSpace(s)
	lower := strings.ToLower(text)

	var (
		digits string
		base   int
	)
	switch {
	case strings.HasPrefix(lower, "0x"):
		digits, base = lower[2:], 16
	case strings.HasPrefix(lower, "#"):
		digits, base = lower[1:], 2
	case strings.HasPrefix(lower, "0b"):
		digits, base = lower[2:], 2
	default:
		digits, base = lower, 10
	}

	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, fmt.Errorf("%w: '%s'", ErrMalformedNumber, s)
	}
	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s'", ErrMalformedNumber, s)
	}
	return value, nil
}

// ParseBitRange parses a bit range in the form [msb:lsb].
func ParseBitRange(s string) (msb, lsb uint64, err error) {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return 0, 0, fmt.Errorf("%w: bit range '%s' is not in [msb:lsb] form", ErrStructuralParse, s)
	}
	high, low, ok := strings.Cut(text[1:len(text)-1], ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: bit range '%s' is not in [msb:lsb] form", ErrStructuralParse, s)
	}

	msb, err = ParseNumber(high)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing bit range msb: %w", err)
	}
	lsb, err = ParseNumber(low)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing bit range lsb: %w", err)
	}
	return msb, lsb, nil
}
