// Package compile lowers the flattened bit-indexed netlist into the
// hierarchical device graph: per module it builds the net table, synthesizes
// devices, reconciles buses and expands nets into connectors.
package compile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tilk/yosys2simcirjs/internal/circuit"
	"github.com/tilk/yosys2simcirjs/internal/diag"
	"github.com/tilk/yosys2simcirjs/internal/portmap"
	"github.com/tilk/yosys2simcirjs/internal/yosys"
)

// Options adjusts the compilation.
type Options struct {
	// Top overrides the top-level module selected from the hierarchy.
	Top string
	// PortMaps adds or overrides formal-to-display port-name mappings per
	// cell type.
	PortMaps map[string]map[string]string
}

// BuildDesign compiles every module of the netlist in bottom-up hierarchy
// order and assembles the top-level circuit with all remaining circuits
// attached as subcircuits.
func BuildDesign(netlist *yosys.Netlist, reporter *diag.Reporter, opts Options) (*circuit.Design, error) {
	order, top, err := ModuleOrder(netlist, reporter)
	if err != nil {
		return nil, err
	}
	if opts.Top != "" {
		if _, ok := netlist.Modules[opts.Top]; !ok {
			return nil, fmt.Errorf("top module %q not found in netlist", opts.Top)
		}
		top = opts.Top
	}

	circuits := make(map[string]*circuit.Circuit, len(order))
	for _, name := range order {
		comp := newCompiler(name, netlist, reporter, opts)
		compiled, err := comp.compile()
		if err != nil {
			return nil, err
		}
		circuits[name] = compiled
	}

	topCircuit := circuits[top]
	for name, compiled := range circuits {
		if name == top {
			continue
		}
		if topCircuit.Subcircuits == nil {
			topCircuit.Subcircuits = make(map[string]*circuit.Circuit)
		}
		topCircuit.Subcircuits[name] = compiled
	}
	return &circuit.Design{Top: top, Order: order, Circuit: topCircuit}, nil
}

// netKey canonicalizes an ordered bit sequence so nets can live in a map.
// Distinct orderings of the same bits are distinct nets.
type netKey string

func keyOf(bits []yosys.BitID) netKey {
	parts := make([]string, len(bits))
	for i, b := range bits {
		parts[i] = strconv.Itoa(int(b))
	}
	return netKey(strings.Join(parts, ","))
}

// net tracks the single driver and the consumers of one bit sequence.
type net struct {
	bits      []yosys.BitID
	driver    *circuit.Endpoint
	consumers []circuit.Endpoint
}

// bitRecord remembers which device port position drives one bit strand.
type bitRecord struct {
	dev  string
	port string
	pos  int
}

// compiler is the mutable state of a single module's compilation: its net
// table, per-bit driver map and device id generator. It is created fresh per
// module and discarded after finalize.
type compiler struct {
	reporter *diag.Reporter
	netlist  *yosys.Netlist
	name     string
	mod      *yosys.Module
	portmaps map[string]map[string]string

	devices   map[string]circuit.Device
	order     []string
	nets      map[netKey]*net
	netOrder  []netKey
	bitDriver map[yosys.BitID]bitRecord
	portBits  map[circuit.Endpoint][]yosys.BitID
	nextID    int
}

func newCompiler(name string, netlist *yosys.Netlist, reporter *diag.Reporter, opts Options) *compiler {
	return &compiler{
		reporter:  reporter,
		netlist:   netlist,
		name:      name,
		mod:       netlist.Modules[name],
		portmaps:  opts.PortMaps,
		devices:   make(map[string]circuit.Device),
		nets:      make(map[netKey]*net),
		bitDriver: make(map[yosys.BitID]bitRecord),
		portBits:  make(map[circuit.Endpoint][]yosys.BitID),
	}
}

func (c *compiler) compile() (*circuit.Circuit, error) {
	c.buildNetTable()
	if err := c.synthesizePorts(); err != nil {
		return nil, err
	}
	if err := c.synthesizeCells(); err != nil {
		return nil, err
	}
	if err := c.reconcile(); err != nil {
		return nil, err
	}
	return c.finalize(), nil
}

// buildNetTable interns every bit sequence mentioned by the module's ports
// and cell connections. Interning carries no business logic; drivers and
// consumers are recorded by the synthesis steps.
func (c *compiler) buildNetTable() {
	for _, pname := range sortedKeys(c.mod.Ports) {
		c.internNet(c.mod.Ports[pname].Bits)
	}
	for _, cname := range sortedKeys(c.mod.Cells) {
		cell := c.mod.Cells[cname]
		for _, formal := range sortedKeys(cell.Connections) {
			c.internNet(cell.Connections[formal])
		}
	}
}

func (c *compiler) internNet(bits []yosys.BitID) *net {
	key := keyOf(bits)
	if n, ok := c.nets[key]; ok {
		return n
	}
	n := &net{bits: append([]yosys.BitID(nil), bits...)}
	c.nets[key] = n
	c.netOrder = append(c.netOrder, key)
	return n
}

// recordDriver assigns the net's single driver. A second assignment is a
// contract violation and aborts the compilation.
func (c *compiler) recordDriver(bits []yosys.BitID, ep circuit.Endpoint) error {
	n := c.internNet(bits)
	if n.driver != nil {
		return fmt.Errorf("module %s: net [%s] driven by both %s.%s and %s.%s",
			c.name, keyOf(bits), n.driver.Device, n.driver.Port, ep.Device, ep.Port)
	}
	n.driver = &ep
	return nil
}

func (c *compiler) recordConsumer(bits []yosys.BitID, ep circuit.Endpoint) {
	n := c.internNet(bits)
	n.consumers = append(n.consumers, ep)
}

// recordBitPositions notes, per non-constant bit, which device port position
// produced it, and keeps the port's complete bit sequence for later slicing.
func (c *compiler) recordBitPositions(bits []yosys.BitID, dev, port string) {
	for pos, b := range bits {
		if b.Const() {
			continue
		}
		c.bitDriver[b] = bitRecord{dev: dev, port: port, pos: pos}
	}
	c.portBits[circuit.Endpoint{Device: dev, Port: port}] = append([]yosys.BitID(nil), bits...)
}

func (c *compiler) addDevice(dev circuit.Device) string {
	id := fmt.Sprintf("dev%d", c.nextID)
	c.nextID++
	c.devices[id] = dev
	c.order = append(c.order, id)
	return id
}

// synthesizePorts emits one terminal device per module port. An input
// terminal drives its net inward across the module boundary; an output
// terminal consumes the net that feeds it.
func (c *compiler) synthesizePorts() error {
	for _, pname := range sortedKeys(c.mod.Ports) {
		port := c.mod.Ports[pname]
		switch port.Direction {
		case yosys.DirInput:
			id := c.addDevice(&circuit.Input{Net: pname, Bits: len(port.Bits), Label: pname})
			if err := c.recordDriver(port.Bits, circuit.Endpoint{Device: id, Port: "out"}); err != nil {
				return err
			}
			c.recordBitPositions(port.Bits, id, "out")
		case yosys.DirOutput:
			id := c.addDevice(&circuit.Output{Net: pname, Bits: len(port.Bits), Label: pname})
			c.recordConsumer(port.Bits, circuit.Endpoint{Device: id, Port: "in"})
		default:
			return fmt.Errorf("module %s: port %s has unrecognized direction %q",
				c.name, pname, port.Direction)
		}
	}
	return nil
}

var gateOps = map[string]circuit.GateOp{
	"$not":    circuit.OpNot,
	"$_NOT_":  circuit.OpNot,
	"$and":    circuit.OpAnd,
	"$_AND_":  circuit.OpAnd,
	"$nand":   circuit.OpNand,
	"$_NAND_": circuit.OpNand,
	"$or":     circuit.OpOr,
	"$_OR_":   circuit.OpOr,
	"$nor":    circuit.OpNor,
	"$_NOR_":  circuit.OpNor,
	"$xor":    circuit.OpXor,
	"$_XOR_":  circuit.OpXor,
	"$xnor":   circuit.OpXnor,
	"$_XNOR_": circuit.OpXnor,
}

// synthesizeCells emits one device per cell and records each connection as
// the net's driver or consumer depending on the port direction.
func (c *compiler) synthesizeCells() error {
	for _, cname := range sortedKeys(c.mod.Cells) {
		cell := c.mod.Cells[cname]
		dev, err := c.deviceForCell(cname, cell)
		if err != nil {
			return err
		}
		id := c.addDevice(dev)
		pm := c.portMapFor(cell.Type)
		for _, formal := range sortedKeys(cell.Connections) {
			bits := cell.Connections[formal]
			display := formal
			if mapped, ok := pm[formal]; ok {
				display = mapped
			}
			dir, err := c.portDirection(cname, cell, formal)
			if err != nil {
				return err
			}
			ep := circuit.Endpoint{Device: id, Port: display}
			if dir == yosys.DirOutput {
				if err := c.recordDriver(bits, ep); err != nil {
					return err
				}
				c.recordBitPositions(bits, id, display)
			} else {
				c.recordConsumer(bits, ep)
			}
		}
	}
	return nil
}

func (c *compiler) deviceForCell(cname string, cell *yosys.Cell) (circuit.Device, error) {
	if _, ok := c.netlist.Modules[cell.Type]; ok {
		return &circuit.Subcircuit{Celltype: cell.Type, Label: cname}, nil
	}
	if op, ok := gateOps[cell.Type]; ok {
		bits, err := c.checkGateWidths(cname, cell, op)
		if err != nil {
			return nil, err
		}
		return &circuit.Gate{Op: op, Bits: bits, Label: cname}, nil
	}
	c.reporter.Warningf(c.scopeCell(cname),
		"unrecognized cell type %q passed through unvalidated", cell.Type)
	return &circuit.Opaque{Type: cell.Type, Label: cname}, nil
}

// checkGateWidths enforces the width contract of recognized primitives: an
// inverter's input matches its output, a binary gate's two inputs both match
// the output.
func (c *compiler) checkGateWidths(cname string, cell *yosys.Cell, op circuit.GateOp) (int, error) {
	y := len(cell.Connections["Y"])
	a := len(cell.Connections["A"])
	if op.Unary() {
		if a != y {
			return 0, fmt.Errorf("module %s: cell %s (%s): input width %d does not match output width %d",
				c.name, cname, cell.Type, a, y)
		}
		return y, nil
	}
	b := len(cell.Connections["B"])
	if a != y || b != y {
		return 0, fmt.Errorf("module %s: cell %s (%s): operand widths %d and %d do not match output width %d",
			c.name, cname, cell.Type, a, b, y)
	}
	return y, nil
}

func (c *compiler) portMapFor(cellType string) map[string]string {
	if m, ok := c.portmaps[cellType]; ok {
		return m
	}
	return portmap.For(cellType)
}

func (c *compiler) portDirection(cname string, cell *yosys.Cell, formal string) (string, error) {
	dir, ok := cell.PortDirections[formal]
	if !ok {
		// Submodule instances may omit port_directions; fall back to the
		// instantiated module's own port declaration.
		if sub, found := c.netlist.Modules[cell.Type]; found {
			if p, pok := sub.Ports[formal]; pok {
				dir, ok = p.Direction, true
			}
		}
	}
	if !ok {
		c.reporter.Warningf(c.scopeCell(cname),
			"connection %s has no declared direction; treating as input", formal)
		return yosys.DirInput, nil
	}
	if dir != yosys.DirInput && dir != yosys.DirOutput {
		return "", fmt.Errorf("module %s: cell %s port %s has unrecognized direction %q",
			c.name, cname, formal, dir)
	}
	return dir, nil
}

// finalize expands every driven net into one connector per consumer and
// diagnoses the nets left without a driver.
func (c *compiler) finalize() *circuit.Circuit {
	out := circuit.NewCircuit()
	out.Devices = c.devices
	out.DeviceOrder = c.order
	for _, key := range c.netOrder {
		n := c.nets[key]
		if n.driver == nil {
			c.reporter.Warning(c.scopeNet(key), "net has no driver; its consumers are left unconnected")
			continue
		}
		for _, to := range n.consumers {
			out.Connectors = append(out.Connectors, circuit.Connector{From: *n.driver, To: to})
		}
	}
	return out
}

func (c *compiler) scopeCell(cell string) string {
	return fmt.Sprintf("module %s cell %s", c.name, cell)
}

func (c *compiler) scopeNet(key netKey) string {
	return fmt.Sprintf("module %s net [%s]", c.name, key)
}
