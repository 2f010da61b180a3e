package circuit

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Dump writes a simple human-readable representation of the design.
func Dump(design *Design, w io.Writer) {
	if design == nil || design.Circuit == nil {
		fmt.Fprintln(w, "<nil design>")
		return
	}
	dumpCircuit(design.Top, design.Circuit, w)
	names := make([]string, 0, len(design.Circuit.Subcircuits))
	for name := range design.Circuit.Subcircuits {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(w)
		dumpCircuit(name, design.Circuit.Subcircuits[name], w)
	}
}

func dumpCircuit(name string, c *Circuit, w io.Writer) {
	fmt.Fprintf(w, "circuit %s\n", name)
	fmt.Fprintln(w, "  devices:")
	for _, id := range c.DeviceOrder {
		dev := c.Devices[id]
		fmt.Fprintf(w, "    %-6s %-10s%s\n", id, dev.DeviceType(), renderDevice(dev))
	}
	if len(c.Connectors) == 0 {
		return
	}
	fmt.Fprintln(w, "  connectors:")
	for _, conn := range c.Connectors {
		fmt.Fprintf(w, "    %s.%s -> %s.%s\n",
			conn.From.Device, conn.From.Port,
			conn.To.Device, conn.To.Port,
		)
	}
}

func renderDevice(dev Device) string {
	switch d := dev.(type) {
	case *Input:
		return fmt.Sprintf(" net=%s bits=%d", d.Net, d.Bits)
	case *Output:
		return fmt.Sprintf(" net=%s bits=%d", d.Net, d.Bits)
	case *Gate:
		return fmt.Sprintf(" %q bits=%d", d.Label, d.Bits)
	case *Subcircuit:
		return fmt.Sprintf(" %q", d.Label)
	case *Opaque:
		return fmt.Sprintf(" %q (unvalidated)", d.Label)
	case *BusGroup:
		groups := make([]string, len(d.Groups))
		for i, g := range d.Groups {
			groups[i] = fmt.Sprintf("%d", g)
		}
		return fmt.Sprintf(" groups=[%s]", strings.Join(groups, " "))
	case *BusSlice:
		return fmt.Sprintf(" first=%d count=%d total=%d", d.First, d.Count, d.Total)
	case *Constant:
		return fmt.Sprintf(" value=%s", d.ConstantString())
	default:
		return ""
	}
}
