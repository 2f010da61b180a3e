// Package circuit defines the compiled device graph handed to the layout and
// rendering layers.
package circuit

// Design is the full compiled output: the top-level module's circuit with
// every other module's circuit attached underneath it.
type Design struct {
	Top     string
	Order   []string // bottom-up build order; the top-level module is last
	Circuit *Circuit
}

// Circuit is the compiled graph of a single module.
type Circuit struct {
	Devices     map[string]Device
	DeviceOrder []string // device ids in creation order
	Connectors  []Connector
	Subcircuits map[string]*Circuit // populated on the top-level circuit only
}

// NewCircuit returns an empty circuit.
func NewCircuit() *Circuit {
	return &Circuit{Devices: make(map[string]Device)}
}

// Endpoint references one port of one device. It never owns the device.
type Endpoint struct {
	Device string
	Port   string
}

// Connector is a directed edge from a driving endpoint to a consuming one.
type Connector struct {
	From Endpoint
	To   Endpoint
}

// Device is implemented by every graph node variant.
type Device interface {
	// DeviceType returns the wire-format type tag of the node.
	DeviceType() string
	// DeviceLabel returns the display label, possibly empty for synthesized
	// nodes.
	DeviceLabel() string
}

// Input is a module boundary input terminal: it drives its net from outside
// the module. At the top level the ioretag pass switches it to an interactive
// variant.
type Input struct {
	Net         string
	Bits        int
	Label       string
	Interactive bool
}

func (d *Input) DeviceType() string {
	if d.Interactive {
		if d.Bits == 1 {
			return "$button"
		}
		return "$numentry"
	}
	return "$input"
}

func (d *Input) DeviceLabel() string { return d.Label }

// Output is a module boundary output terminal consuming the net that feeds
// it.
type Output struct {
	Net         string
	Bits        int
	Label       string
	Interactive bool
}

func (d *Output) DeviceType() string {
	if d.Interactive {
		if d.Bits == 1 {
			return "$lamp"
		}
		return "$numdisplay"
	}
	return "$output"
}

func (d *Output) DeviceLabel() string { return d.Label }

// GateOp enumerates the recognized primitive gates.
type GateOp int

const (
	OpNot GateOp = iota
	OpAnd
	OpNand
	OpOr
	OpNor
	OpXor
	OpXnor
)

func (op GateOp) String() string {
	switch op {
	case OpNot:
		return "$not"
	case OpAnd:
		return "$and"
	case OpNand:
		return "$nand"
	case OpOr:
		return "$or"
	case OpNor:
		return "$nor"
	case OpXor:
		return "$xor"
	case OpXnor:
		return "$xnor"
	default:
		return "$unknown"
	}
}

// Unary reports whether the gate takes a single input.
func (op GateOp) Unary() bool { return op == OpNot }

// Gate is a recognized, width-validated primitive gate.
type Gate struct {
	Op    GateOp
	Bits  int
	Label string
}

func (d *Gate) DeviceType() string  { return d.Op.String() }
func (d *Gate) DeviceLabel() string { return d.Label }

// Subcircuit instantiates another module of the same design.
type Subcircuit struct {
	Celltype string
	Label    string
}

func (d *Subcircuit) DeviceType() string  { return d.Celltype }
func (d *Subcircuit) DeviceLabel() string { return d.Label }

// Opaque is the unvalidated fallback for cell types the compiler does not
// recognize. Its ports pass through without width checks.
type Opaque struct {
	Type  string
	Label string
}

func (d *Opaque) DeviceType() string  { return d.Type }
func (d *Opaque) DeviceLabel() string { return d.Label }

// BusGroup reassembles a non-contiguous bus from contiguous driven runs. The
// Groups payload records how the output bit order partitions back into runs.
type BusGroup struct {
	Groups []int
	Bits   int
	Label  string
}

func (d *BusGroup) DeviceType() string  { return "$busgroup" }
func (d *BusGroup) DeviceLabel() string { return d.Label }

// BusSlice extracts Count bits starting at First out of a Total-wide driven
// port.
type BusSlice struct {
	First int
	Count int
	Total int
	Label string
}

func (d *BusSlice) DeviceType() string  { return "$busslice" }
func (d *BusSlice) DeviceLabel() string { return d.Label }

// Polarity is one constant bit level.
type Polarity int

const (
	Low Polarity = iota
	High
)

func (p Polarity) String() string {
	if p == High {
		return "1"
	}
	return "0"
}

// Constant drives a net whose bits are all literal levels. Value is ordered
// like the net's bit sequence.
type Constant struct {
	Value []Polarity
	Label string
}

func (d *Constant) DeviceType() string  { return "$constant" }
func (d *Constant) DeviceLabel() string { return d.Label }

// ConstantString renders the payload most significant bit first, the way the
// viewer displays literals.
func (d *Constant) ConstantString() string {
	buf := make([]byte, len(d.Value))
	for i, p := range d.Value {
		buf[len(d.Value)-1-i] = p.String()[0]
	}
	return string(buf)
}
