// Package layout assigns deterministic 2D coordinates to the devices of a
// compiled circuit so the rendered page has a sensible initial arrangement.
// The compiler does not depend on these coordinates, it only annotates the
// emitted document with them.
package layout

import "github.com/tilk/yosys2simcirjs/internal/circuit"

// Grid spacing in viewer units.
const (
	columnWidth = 96
	rowHeight   = 48
)

// Point is a device position on the page.
type Point struct {
	X int
	Y int
}

// Place layers the devices by longest driver distance and stacks each layer
// vertically in device creation order. Feedback edges are tolerated: layer
// relaxation is capped at the device count, so cyclic graphs settle instead
// of looping.
func Place(c *circuit.Circuit) map[string]Point {
	layer := make(map[string]int, len(c.DeviceOrder))
	for pass := 0; pass < len(c.DeviceOrder); pass++ {
		changed := false
		for _, conn := range c.Connectors {
			want := layer[conn.From.Device] + 1
			if want > len(c.DeviceOrder) {
				continue
			}
			if layer[conn.To.Device] < want {
				layer[conn.To.Device] = want
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	rows := make(map[int]int)
	points := make(map[string]Point, len(c.DeviceOrder))
	for _, id := range c.DeviceOrder {
		col := layer[id]
		points[id] = Point{X: col * columnWidth, Y: rows[col] * rowHeight}
		rows[col]++
	}
	return points
}
