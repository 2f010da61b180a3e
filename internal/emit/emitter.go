// Package emit serializes a compiled design into the JSON document the
// viewer consumes.
package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tilk/yosys2simcirjs/internal/circuit"
	"github.com/tilk/yosys2simcirjs/internal/layout"
)

// Options adjusts the emitted document.
type Options struct {
	// Layout annotates every device with deterministic page coordinates.
	Layout bool
}

type jsonCircuit struct {
	Devices     map[string]*jsonDevice  `json:"devices"`
	Connectors  []jsonConnector         `json:"connectors"`
	Subcircuits map[string]*jsonCircuit `json:"subcircuits,omitempty"`
}

type jsonDevice struct {
	Type     string     `json:"type"`
	Label    string     `json:"label,omitempty"`
	Net      string     `json:"net,omitempty"`
	Bits     int        `json:"bits,omitempty"`
	Groups   []int      `json:"groups,omitempty"`
	Slice    *jsonSlice `json:"slice,omitempty"`
	Constant string     `json:"constant,omitempty"`
	Celltype string     `json:"celltype,omitempty"`
	Position *jsonPoint `json:"position,omitempty"`
}

type jsonSlice struct {
	First int `json:"first"`
	Count int `json:"count"`
	Total int `json:"total"`
}

type jsonPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type jsonConnector struct {
	From jsonEndpoint `json:"from"`
	To   jsonEndpoint `json:"to"`
}

type jsonEndpoint struct {
	ID   string `json:"id"`
	Port string `json:"port"`
}

// JSON renders the design as an indented JSON document.
func JSON(design *circuit.Design, opts Options) ([]byte, error) {
	if design == nil || design.Circuit == nil {
		return nil, fmt.Errorf("emit: design is nil")
	}
	doc := convertCircuit(design.Circuit, opts)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	return append(data, '\n'), nil
}

// Emit writes the JSON document to outputPath. When outputPath is empty or
// "-", the result is written to stdout.
func Emit(design *circuit.Design, outputPath string, opts Options) error {
	data, err := JSON(design, opts)
	if err != nil {
		return err
	}
	var w io.Writer
	if outputPath == "" || outputPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err = w.Write(data)
	return err
}

func convertCircuit(c *circuit.Circuit, opts Options) *jsonCircuit {
	var points map[string]layout.Point
	if opts.Layout {
		points = layout.Place(c)
	}

	out := &jsonCircuit{
		Devices:    make(map[string]*jsonDevice, len(c.Devices)),
		Connectors: make([]jsonConnector, 0, len(c.Connectors)),
	}
	for _, id := range c.DeviceOrder {
		jd := convertDevice(c.Devices[id])
		if p, ok := points[id]; ok {
			jd.Position = &jsonPoint{X: p.X, Y: p.Y}
		}
		out.Devices[id] = jd
	}
	for _, conn := range c.Connectors {
		out.Connectors = append(out.Connectors, jsonConnector{
			From: jsonEndpoint{ID: conn.From.Device, Port: conn.From.Port},
			To:   jsonEndpoint{ID: conn.To.Device, Port: conn.To.Port},
		})
	}
	if len(c.Subcircuits) > 0 {
		out.Subcircuits = make(map[string]*jsonCircuit, len(c.Subcircuits))
		for name, sub := range c.Subcircuits {
			out.Subcircuits[name] = convertCircuit(sub, opts)
		}
	}
	return out
}

func convertDevice(dev circuit.Device) *jsonDevice {
	jd := &jsonDevice{
		Type:  dev.DeviceType(),
		Label: dev.DeviceLabel(),
	}
	switch d := dev.(type) {
	case *circuit.Input:
		jd.Net = d.Net
		jd.Bits = d.Bits
	case *circuit.Output:
		jd.Net = d.Net
		jd.Bits = d.Bits
	case *circuit.Gate:
		jd.Bits = d.Bits
	case *circuit.Subcircuit:
		jd.Celltype = d.Celltype
	case *circuit.BusGroup:
		jd.Groups = d.Groups
		jd.Bits = d.Bits
	case *circuit.BusSlice:
		jd.Slice = &jsonSlice{First: d.First, Count: d.Count, Total: d.Total}
	case *circuit.Constant:
		jd.Constant = d.ConstantString()
	}
	return jd
}
