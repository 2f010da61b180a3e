// Package validate performs structural checks on an ingested netlist before
// compilation so malformed documents fail with actionable diagnostics instead
// of surfacing mid-lowering.
package validate

import (
	"fmt"
	"sort"

	"github.com/tilk/yosys2simcirjs/internal/diag"
	"github.com/tilk/yosys2simcirjs/internal/yosys"
)

// CheckNetlist verifies the document's structural contract: every port and
// cell connection declares a recognized direction, bit sequences are
// non-empty, and submodule connections match the instantiated module's port
// widths. Violations are reported through the reporter; an error is returned
// when any of them is fatal.
func CheckNetlist(netlist *yosys.Netlist, reporter *diag.Reporter) error {
	if netlist == nil || len(netlist.Modules) == 0 {
		return fmt.Errorf("netlist contains no modules")
	}
	c := &checker{netlist: netlist, reporter: reporter}
	for _, name := range sortedKeys(netlist.Modules) {
		c.checkModule(name, netlist.Modules[name])
	}
	if reporter.HasErrors() {
		return fmt.Errorf("netlist validation reported errors")
	}
	return nil
}

type checker struct {
	netlist  *yosys.Netlist
	reporter *diag.Reporter
}

func (c *checker) checkModule(name string, mod *yosys.Module) {
	scope := "module " + name
	if len(mod.Ports) == 0 && len(mod.Cells) == 0 {
		c.reporter.Warning(scope, "module is empty")
	}
	for _, pname := range sortedKeys(mod.Ports) {
		port := mod.Ports[pname]
		if port.Direction != yosys.DirInput && port.Direction != yosys.DirOutput {
			c.reporter.Error(scope, fmt.Sprintf("port %s has unrecognized direction %q", pname, port.Direction))
		}
		if len(port.Bits) == 0 {
			c.reporter.Error(scope, fmt.Sprintf("port %s has no bits", pname))
		}
	}
	for _, cname := range sortedKeys(mod.Cells) {
		c.checkCell(name, cname, mod.Cells[cname])
	}
}

func (c *checker) checkCell(modName, cellName string, cell *yosys.Cell) {
	scope := fmt.Sprintf("module %s cell %s", modName, cellName)
	if cell.Type == "" {
		c.reporter.Error(scope, "cell has no type")
		return
	}
	sub := c.netlist.Modules[cell.Type]
	for _, formal := range sortedKeys(cell.Connections) {
		bits := cell.Connections[formal]
		if len(bits) == 0 {
			c.reporter.Error(scope, fmt.Sprintf("connection %s has no bits", formal))
		}
		dir, hasDir := cell.PortDirections[formal]
		if hasDir && dir != yosys.DirInput && dir != yosys.DirOutput {
			c.reporter.Error(scope, fmt.Sprintf("port %s has unrecognized direction %q", formal, dir))
			continue
		}
		if sub == nil {
			if !hasDir {
				c.reporter.Warning(scope, fmt.Sprintf("connection %s has no declared direction", formal))
			}
			continue
		}
		subPort, ok := sub.Ports[formal]
		if !ok {
			c.reporter.Warning(scope, fmt.Sprintf("connection %s does not exist on module %s", formal, cell.Type))
			continue
		}
		if len(subPort.Bits) != len(bits) {
			c.reporter.Warning(scope, fmt.Sprintf("connection %s is %d bits wide but module %s declares %d",
				formal, len(bits), cell.Type, len(subPort.Bits)))
		}
	}
	for _, formal := range sortedKeys(cell.PortDirections) {
		if _, ok := cell.Connections[formal]; !ok {
			c.reporter.Warning(scope, fmt.Sprintf("port %s has a direction but no connection", formal))
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
