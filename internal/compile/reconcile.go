package compile

import (
	"fmt"

	"github.com/tilk/yosys2simcirjs/internal/circuit"
	"github.com/tilk/yosys2simcirjs/internal/yosys"
)

// reconcile resolves every net still lacking a net-level driver after device
// synthesis by synthesizing bus-group, constant and bus-slice devices. The
// three sub-passes run in a fixed order per net: non-contiguous nets must be
// grouped before any single-driver assumption is made, and constant bits
// carry no per-bit driver record to slice from.
func (c *compiler) reconcile() error {
	// Grouping interns run sub-nets, growing netOrder while iterating.
	for i := 0; i < len(c.netOrder); i++ {
		if err := c.reconcileNet(c.netOrder[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) reconcileNet(key netKey) error {
	n := c.nets[key]
	if n.driver != nil {
		return nil
	}
	grouped, err := c.groupNet(n)
	if err != nil || grouped {
		return err
	}
	if c.foldConstant(n) {
		return nil
	}
	return c.sliceNet(n)
}

// groupNet partitions the net into maximal runs of bits that are either both
// constant or driven by the same port at strictly consecutive positions.
// More than one run means the net is a non-contiguous bus: a bus-group device
// reassembles it, consuming each run's own net, which is resolved
// recursively.
func (c *compiler) groupNet(n *net) (bool, error) {
	runs := c.splitRuns(n.bits)
	if len(runs) < 2 {
		return false, nil
	}
	groups := make([]int, len(runs))
	for i, run := range runs {
		groups[i] = len(run)
	}
	id := c.addDevice(&circuit.BusGroup{Groups: groups, Bits: len(n.bits)})
	for i, run := range runs {
		c.recordConsumer(run, circuit.Endpoint{Device: id, Port: fmt.Sprintf("in%d", i)})
		if err := c.reconcileNet(keyOf(run)); err != nil {
			return false, err
		}
	}
	return true, c.recordDriver(n.bits, circuit.Endpoint{Device: id, Port: "out"})
}

func (c *compiler) splitRuns(bits []yosys.BitID) [][]yosys.BitID {
	var runs [][]yosys.BitID
	start := 0
	for i := 1; i < len(bits); i++ {
		if !c.adjacent(bits[i-1], bits[i]) {
			runs = append(runs, bits[start:i])
			start = i
		}
	}
	return append(runs, bits[start:])
}

func (c *compiler) adjacent(a, b yosys.BitID) bool {
	if a.Const() && b.Const() {
		return true
	}
	ra, aok := c.bitDriver[a]
	rb, bok := c.bitDriver[b]
	return aok && bok && ra.dev == rb.dev && ra.port == rb.port && rb.pos == ra.pos+1
}

// foldConstant synthesizes a constant device when every bit of the net is a
// literal level. The payload keeps the net's own bit order.
func (c *compiler) foldConstant(n *net) bool {
	value := make([]circuit.Polarity, len(n.bits))
	for i, b := range n.bits {
		switch b {
		case yosys.BitLow:
			value[i] = circuit.Low
		case yosys.BitHigh:
			value[i] = circuit.High
		default:
			return false
		}
	}
	id := c.addDevice(&circuit.Constant{Value: value})
	n.driver = &circuit.Endpoint{Device: id, Port: "out"}
	return true
}

// sliceNet resolves a contiguous sub-range of a single driven port. A bit
// with no per-bit record abandons the net to the undriven diagnostic; bits
// resolving to distinct ports mean grouping failed to split the net, which is
// an internal contract violation.
func (c *compiler) sliceNet(n *net) error {
	first, ok := c.bitDriver[n.bits[0]]
	if !ok {
		return nil
	}
	for _, b := range n.bits[1:] {
		rec, ok := c.bitDriver[b]
		if !ok {
			return nil
		}
		if rec.dev != first.dev || rec.port != first.port {
			return fmt.Errorf("module %s: net [%s]: bits resolve to distinct drivers %s.%s and %s.%s after grouping",
				c.name, keyOf(n.bits), first.dev, first.port, rec.dev, rec.port)
		}
	}
	src, ok := c.portBits[circuit.Endpoint{Device: first.dev, Port: first.port}]
	if !ok {
		return fmt.Errorf("module %s: net [%s]: no recorded bits for driving port %s.%s",
			c.name, keyOf(n.bits), first.dev, first.port)
	}
	id := c.addDevice(&circuit.BusSlice{First: first.pos, Count: len(n.bits), Total: len(src)})
	c.recordConsumer(src, circuit.Endpoint{Device: id, Port: "in"})
	return c.recordDriver(n.bits, circuit.Endpoint{Device: id, Port: "out"})
}
