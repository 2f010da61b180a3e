// Package yosys models the flattened JSON netlist emitted by the synthesis
// tool and normalizes it for compilation.
package yosys

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// BitID identifies one single-bit wire strand within a module. The values 0
// and 1 are reserved for the constant low and high levels; synthesized
// netlists number real wires from 2 upward. Beyond identity the numeric value
// carries no meaning.
type BitID int

const (
	// BitLow is the reserved identifier for a constant logic-0 strand.
	BitLow BitID = 0
	// BitHigh is the reserved identifier for a constant logic-1 strand.
	BitHigh BitID = 1
)

// Const reports whether the bit denotes a literal constant level.
func (b BitID) Const() bool { return b == BitLow || b == BitHigh }

// UnmarshalJSON accepts the two encodings the synthesis tool produces: plain
// numbers for wire strands and strings for constant levels. Numeric strings
// are normalized to their numeric form; unknown and high-impedance levels
// ("x", "z") are treated as constant low.
func (b *BitID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "0", "x", "z":
			*b = BitLow
			return nil
		case "1":
			*b = BitHigh
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("bit id %q is neither a constant level nor a number", s)
		}
		if n < 0 {
			return fmt.Errorf("bit id %d is negative", n)
		}
		*b = BitID(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("bit id %d is negative", n)
	}
	*b = BitID(n)
	return nil
}

// Port directions used by the netlist document.
const (
	DirInput  = "input"
	DirOutput = "output"
)

// Netlist is the top-level input document: every module of the design, keyed
// by name. It is read-only to the compiler.
type Netlist struct {
	Creator string             `json:"creator,omitempty"`
	Modules map[string]*Module `json:"modules"`
}

// Module is one named module with its boundary ports and cell instances.
type Module struct {
	Ports map[string]*Port `json:"ports"`
	Cells map[string]*Cell `json:"cells"`
}

// Port is a module boundary port: a direction and the ordered bit strands it
// carries.
type Port struct {
	Direction string  `json:"direction"`
	Bits      []BitID `json:"bits"`
}

// Cell is one instantiated gate, submodule or unknown primitive.
type Cell struct {
	Type           string             `json:"type"`
	PortDirections map[string]string  `json:"port_directions"`
	Connections    map[string][]BitID `json:"connections"`
}

// Parse decodes a JSON netlist document.
func Parse(data []byte) (*Netlist, error) {
	var n Netlist
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("parse netlist: %w", err)
	}
	if len(n.Modules) == 0 {
		return nil, fmt.Errorf("parse netlist: document contains no modules")
	}
	return &n, nil
}

// Load reads and decodes the netlist document at path.
func Load(path string) (*Netlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load netlist: %w", err)
	}
	return Parse(data)
}
