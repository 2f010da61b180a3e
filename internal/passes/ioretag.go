package passes

import (
	"fmt"

	"github.com/tilk/yosys2simcirjs/internal/circuit"
)

// IORetag switches the top-level circuit's boundary terminals to their
// interactive variants: single-bit ports become toggle buttons and lamps,
// wider ports numeric entry and display widgets. Subcircuit terminals keep
// their plain form since they are wired to their parent instance. The remap
// is purely cosmetic.
type IORetag struct{}

// NewIORetag constructs the pass.
func NewIORetag() *IORetag {
	return &IORetag{}
}

// Name implements the Pass interface.
func (*IORetag) Name() string {
	return "io-retag"
}

// Run executes the pass over the top-level circuit only.
func (*IORetag) Run(design *circuit.Design) error {
	if design.Circuit == nil {
		return fmt.Errorf("design has no top-level circuit")
	}
	for _, id := range design.Circuit.DeviceOrder {
		switch dev := design.Circuit.Devices[id].(type) {
		case *circuit.Input:
			dev.Interactive = true
		case *circuit.Output:
			dev.Interactive = true
		}
	}
	return nil
}
