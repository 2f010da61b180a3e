package compile

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tilk/yosys2simcirjs/internal/circuit"
	"github.com/tilk/yosys2simcirjs/internal/yosys"
)

func TestReorderedBusProducesGroupOfSlices(t *testing.T) {
	// The inverter consumes the input bus with its bit order reversed:
	// positions 2,1,0 of the driving port are not consecutive, so the net
	// splits into three one-bit runs.
	mod := &yosys.Module{
		Ports: map[string]*yosys.Port{
			"a": {Direction: yosys.DirInput, Bits: bits(2, 3, 4)},
			"y": {Direction: yosys.DirOutput, Bits: bits(5, 6, 7)},
		},
		Cells: map[string]*yosys.Cell{
			"inv": {
				Type:           "$not",
				PortDirections: map[string]string{"A": "input", "Y": "output"},
				Connections: map[string][]yosys.BitID{
					"A": bits(4, 3, 2),
					"Y": bits(5, 6, 7),
				},
			},
		},
	}
	c, _, _ := compileTop(t, mod)

	groups := devicesOfType(c, "$busgroup")
	if len(groups) != 1 {
		t.Fatalf("expected one bus-group device, got %v", c.DeviceOrder)
	}
	group := c.Devices[groups[0]].(*circuit.BusGroup)
	if diff := cmp.Diff([]int{1, 1, 1}, group.Groups); diff != "" {
		t.Fatalf("unexpected group payload (-want +got):\n%s", diff)
	}

	slices := devicesOfType(c, "$busslice")
	if len(slices) != 3 {
		t.Fatalf("expected three one-bit slices, got %v", slices)
	}
	firsts := map[int]bool{}
	for _, id := range slices {
		dev := c.Devices[id].(*circuit.BusSlice)
		if dev.Count != 1 || dev.Total != 3 {
			t.Fatalf("expected 1-of-3 slices, got %+v", dev)
		}
		firsts[dev.First] = true
	}
	if !firsts[0] || !firsts[1] || !firsts[2] {
		t.Fatalf("expected slices at positions 0,1,2, got %v", firsts)
	}

	// The group feeds the inverter input.
	gate := devicesOfType(c, "$not")[0]
	if !hasConnector(c, circuit.Endpoint{Device: groups[0], Port: "out"}, circuit.Endpoint{Device: gate, Port: "in"}) {
		t.Fatalf("expected group output to drive the gate input")
	}
}

func TestConstantFolding(t *testing.T) {
	mod := &yosys.Module{
		Ports: map[string]*yosys.Port{
			"y": {Direction: yosys.DirOutput, Bits: []yosys.BitID{yosys.BitLow, yosys.BitHigh, yosys.BitLow}},
		},
	}
	c, reporter, _ := compileTop(t, mod)

	consts := devicesOfType(c, "$constant")
	if len(consts) != 1 {
		t.Fatalf("expected one constant device, got %v", c.DeviceOrder)
	}
	dev := c.Devices[consts[0]].(*circuit.Constant)
	want := []circuit.Polarity{circuit.Low, circuit.High, circuit.Low}
	if diff := cmp.Diff(want, dev.Value); diff != "" {
		t.Fatalf("unexpected constant payload (-want +got):\n%s", diff)
	}

	output := devicesOfType(c, "$output")[0]
	if !hasConnector(c, circuit.Endpoint{Device: consts[0], Port: "out"}, circuit.Endpoint{Device: output, Port: "in"}) {
		t.Fatalf("expected constant to drive the output terminal")
	}
	if reporter.WarningCount() != 0 {
		t.Fatalf("constant net must not be diagnosed as undriven")
	}
}

func TestBusSliceOfWiderPort(t *testing.T) {
	mod := &yosys.Module{
		Ports: map[string]*yosys.Port{
			"d": {Direction: yosys.DirInput, Bits: bits(2, 3, 4, 5, 6, 7, 8, 9)},
			"q": {Direction: yosys.DirOutput, Bits: bits(10, 11)},
		},
		Cells: map[string]*yosys.Cell{
			"inv": {
				Type:           "$not",
				PortDirections: map[string]string{"A": "input", "Y": "output"},
				Connections: map[string][]yosys.BitID{
					"A": bits(5, 6), // bits 3-4 of the 8-bit input port
					"Y": bits(10, 11),
				},
			},
		},
	}
	c, _, _ := compileTop(t, mod)

	slices := devicesOfType(c, "$busslice")
	if len(slices) != 1 {
		t.Fatalf("expected one bus-slice device, got %v", c.DeviceOrder)
	}
	dev := c.Devices[slices[0]].(*circuit.BusSlice)
	if dev.First != 3 || dev.Count != 2 || dev.Total != 8 {
		t.Fatalf("expected slice {first:3 count:2 total:8}, got %+v", dev)
	}

	input := devicesOfType(c, "$input")[0]
	if !hasConnector(c, circuit.Endpoint{Device: input, Port: "out"}, circuit.Endpoint{Device: slices[0], Port: "in"}) {
		t.Fatalf("expected the slice to consume the full input port")
	}
	gate := devicesOfType(c, "$not")[0]
	if !hasConnector(c, circuit.Endpoint{Device: slices[0], Port: "out"}, circuit.Endpoint{Device: gate, Port: "in"}) {
		t.Fatalf("expected the slice to drive the gate input")
	}
}

func TestGroupWithConstantRun(t *testing.T) {
	// One driven bit followed by a constant bit: two runs, the second
	// resolved recursively into a one-bit constant device.
	mod := &yosys.Module{
		Ports: map[string]*yosys.Port{
			"a": {Direction: yosys.DirInput, Bits: bits(2)},
			"y": {Direction: yosys.DirOutput, Bits: bits(5, 6)},
		},
		Cells: map[string]*yosys.Cell{
			"inv": {
				Type:           "$not",
				PortDirections: map[string]string{"A": "input", "Y": "output"},
				Connections: map[string][]yosys.BitID{
					"A": []yosys.BitID{2, yosys.BitHigh},
					"Y": bits(5, 6),
				},
			},
		},
	}
	c, reporter, _ := compileTop(t, mod)

	groups := devicesOfType(c, "$busgroup")
	if len(groups) != 1 {
		t.Fatalf("expected one bus-group device, got %v", c.DeviceOrder)
	}
	group := c.Devices[groups[0]].(*circuit.BusGroup)
	if diff := cmp.Diff([]int{1, 1}, group.Groups); diff != "" {
		t.Fatalf("unexpected group payload (-want +got):\n%s", diff)
	}

	consts := devicesOfType(c, "$constant")
	if len(consts) != 1 {
		t.Fatalf("expected a one-bit constant device for the second run, got %v", c.DeviceOrder)
	}
	dev := c.Devices[consts[0]].(*circuit.Constant)
	if diff := cmp.Diff([]circuit.Polarity{circuit.High}, dev.Value); diff != "" {
		t.Fatalf("unexpected constant payload (-want +got):\n%s", diff)
	}
	if !hasConnector(c, circuit.Endpoint{Device: consts[0], Port: "out"}, circuit.Endpoint{Device: groups[0], Port: "in1"}) {
		t.Fatalf("expected the constant to feed the group's second input")
	}
	if reporter.WarningCount() != 0 {
		t.Fatalf("fully reconciled module must not warn")
	}
}

func TestSliceAbandonedWhenBitsUnresolved(t *testing.T) {
	// Bits 8,9 are never produced by any device, so the net cannot be
	// sliced and is left to the undriven diagnostic.
	mod := &yosys.Module{
		Ports: map[string]*yosys.Port{
			"y": {Direction: yosys.DirOutput, Bits: bits(8, 9)},
		},
	}
	c, reporter, out := compileTop(t, mod)
	if got := len(c.Connectors); got != 0 {
		t.Fatalf("abandoned net must contribute no connectors, got %d", got)
	}
	if reporter.WarningCount() == 0 {
		t.Fatalf("expected an undriven diagnostic, got %q", out)
	}
}

func TestFullPortNetNeedsNoReconciliation(t *testing.T) {
	// A consumer using the driver's exact bit sequence shares the net and
	// needs no synthesized device even though the net is 3 bits wide.
	mod := &yosys.Module{
		Ports: map[string]*yosys.Port{
			"a": {Direction: yosys.DirInput, Bits: bits(2, 3, 4)},
			"y": {Direction: yosys.DirOutput, Bits: bits(2, 3, 4)},
		},
	}
	c, reporter, _ := compileTop(t, mod)
	if len(c.Connectors) != 1 {
		t.Fatalf("expected one direct connector, got %v", c.Connectors)
	}
	if got := len(c.DeviceOrder); got != 2 {
		t.Fatalf("expected only the two terminals, got %v", c.DeviceOrder)
	}
	if reporter.WarningCount() != 0 {
		t.Fatalf("expected no diagnostics")
	}
}
