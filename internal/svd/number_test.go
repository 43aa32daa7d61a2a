package svd

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  uint64
	}{
		{name: "decimal", input: "16", want: 16},
		{name: "hexadecimal", input: "0x10", want: 16},
		{name: "upper case hexadecimal", input: "0X40000000", want: 0x40000000},
		{name: "binary hash prefix", input: "#1010", want: 10},
		{name: "binary 0b prefix", input: "0b11", want: 3},
		{name: "surrounding whitespace", input: "\n  0x04 \t", want: 4},
		{name: "zero", input: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumberDecimalAndHexAgree(t *testing.T) {
	decimal, err := ParseNumber("16")
	assert.NoError(t, err)
	hex, err := ParseNumber("0x10")
	assert.NoError(t, err)
	assert.Equal(t, decimal, hex)
}

func TestParseNumberMalformed(t *testing.T) {
	inputs := []string{"", "   ", "0x", "#", "abc", "0xZZ", "-1", "+5", "12k", "#102", "1.5"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseNumber(input)
			assert.ErrorIs(t, err, ErrMalformedNumber)
		})
	}
}

func TestParseBitRange(t *testing.T) {
	msb, lsb, err := ParseBitRange("[7:4]")
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), msb)
	assert.Equal(t, uint64(4), lsb)

	_, _, err = ParseBitRange("7:4")
	assert.ErrorIs(t, err, ErrStructuralParse)

	_, _, err = ParseBitRange("[7-4]")
	assert.ErrorIs(t, err, ErrStructuralParse)

	_, _, err = ParseBitRange("[x:4]")
	assert.ErrorIs(t, err, ErrMalformedNumber)
}
