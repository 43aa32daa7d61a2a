// Package svd decodes CMSIS-SVD style chip description documents.
//
// The element types map the document grammar as-is. All numeric values are
// kept in their textual form and converted by the device package, so that
// number errors can be reported together with the owning element.
package svd

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrStructuralParse is returned for grammar violations of the source document.
var ErrStructuralParse = errors.New("structural parse error")

// Device is the root element of a chip description.
type Device struct {
	XMLName     xml.Name    `xml:"device"`
	Name        string      `xml:"name"`
	Vendor      string      `xml:"vendor"`
	Description string      `xml:"description"`
	Access      string      `xml:"access"`
	Peripherals Peripherals `xml:"peripherals"`
}

// Peripherals wraps the peripheral list of a device.
type Peripherals struct {
	Elements []Peripheral `xml:"peripheral"`
}

// Peripheral describes a hardware block at a fixed base address.
type Peripheral struct {
	DerivedFrom string      `xml:"derivedFrom,attr"`
	Name        string      `xml:"name"`
	Description string      `xml:"description"`
	GroupName   string      `xml:"groupName"`
	BaseAddress string      `xml:"baseAddress"`
	Interrupts  []Interrupt `xml:"interrupt"`
	Registers   Registers   `xml:"registers"`
}

// Interrupt is an interrupt line owned by a peripheral.
type Interrupt struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Value       string `xml:"value"`
}

// Registers holds the registers and clusters of a peripheral or cluster.
type Registers struct {
	Registers []Register `xml:"register"`
	Clusters  []Cluster  `xml:"cluster"`
}

// Cluster groups registers at a common offset.
type Cluster struct {
	Name          string     `xml:"name"`
	Description   string     `xml:"description"`
	AddressOffset string     `xml:"addressOffset"`
	Dim           string     `xml:"dim"`
	Registers     []Register `xml:"register"`
	Clusters      []Cluster  `xml:"cluster"`
}

// Register is a 32-bit memory mapped register.
type Register struct {
	DerivedFrom   string `xml:"derivedFrom,attr"`
	Name          string `xml:"name"`
	DisplayName   string `xml:"displayName"`
	Description   string `xml:"description"`
	AddressOffset string `xml:"addressOffset"`
	Access        string `xml:"access"`
	Dim           string `xml:"dim"`
	DimIncrement  string `xml:"dimIncrement"`
	Fields        Fields `xml:"fields"`
}

// Fields wraps the field list of a register.
type Fields struct {
	Elements []Field `xml:"field"`
}

// Field is a bit range within a register. The position is given either by
// BitOffset and BitWidth, by Lsb and Msb or by BitRange.
type Field struct {
	Name             string             `xml:"name"`
	Description      string             `xml:"description"`
	BitOffset        string             `xml:"bitOffset"`
	BitWidth         string             `xml:"bitWidth"`
	Lsb              string             `xml:"lsb"`
	Msb              string             `xml:"msb"`
	BitRange         string             `xml:"bitRange"`
	Access           string             `xml:"access"`
	EnumeratedValues []EnumeratedValues `xml:"enumeratedValues"`
}

// EnumeratedValues is a named list of values of a field.
type EnumeratedValues struct {
	Name     string            `xml:"name"`
	Usage    string            `xml:"usage"`
	Elements []EnumeratedValue `xml:"enumeratedValue"`
}

// EnumeratedValue assigns a name to a field value.
type EnumeratedValue struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Value       string `xml:"value"`
	IsDefault   string `xml:"isDefault"`
}

// Decode reads a chip description document.
func Decode(reader io.Reader) (*Device, error) {
	decoder := xml.NewDecoder(reader)
	// SVD files are frequently declared as ISO-8859-1 or similar, the
	// relevant content is plain ASCII in practice.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var dev Device
	if err := decoder.Decode(&dev); err != nil {
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: line %d: %s", ErrStructuralParse, syntaxErr.Line, syntaxErr.Msg)
		}
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrStructuralParse)
		}
		return nil, fmt.Errorf("%w: %w", ErrStructuralParse, err)
	}
	return &dev, nil
}
