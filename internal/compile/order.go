package compile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tilk/yosys2simcirjs/internal/diag"
	"github.com/tilk/yosys2simcirjs/internal/yosys"
)

// ModuleOrder returns a bottom-up build order over the design hierarchy:
// whenever module P instantiates module C, C precedes P. It also selects the
// top-level module, the one no other module instantiates. When several
// modules qualify the hierarchy alone does not determine the answer, so the
// lexically smallest name is chosen and a warning is emitted. A dependency
// cycle is a fatal error.
func ModuleOrder(netlist *yosys.Netlist, reporter *diag.Reporter) ([]string, string, error) {
	names := sortedKeys(netlist.Modules)

	children := make(map[string]map[string]bool, len(names))
	dependents := make(map[string]map[string]bool, len(names))
	instantiated := make(map[string]bool, len(names))
	for _, parent := range names {
		mod := netlist.Modules[parent]
		for _, cellName := range sortedKeys(mod.Cells) {
			child := mod.Cells[cellName].Type
			if _, ok := netlist.Modules[child]; !ok {
				continue
			}
			if children[parent] == nil {
				children[parent] = make(map[string]bool)
			}
			children[parent][child] = true
			if dependents[child] == nil {
				dependents[child] = make(map[string]bool)
			}
			dependents[child][parent] = true
			instantiated[child] = true
		}
	}

	indeg := make(map[string]int, len(names))
	var ready []string
	for _, name := range names {
		indeg[name] = len(children[name])
		if indeg[name] == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(names))
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, parent := range sortedKeys(dependents[name]) {
			indeg[parent]--
			if indeg[parent] == 0 {
				ready = append(ready, parent)
			}
		}
	}
	if len(order) != len(names) {
		var remaining []string
		done := make(map[string]bool, len(order))
		for _, name := range order {
			done[name] = true
		}
		for _, name := range names {
			if !done[name] {
				remaining = append(remaining, name)
			}
		}
		return nil, "", fmt.Errorf("module hierarchy contains a dependency cycle involving %s",
			strings.Join(remaining, ", "))
	}

	var roots []string
	for _, name := range names {
		if !instantiated[name] {
			roots = append(roots, name)
		}
	}
	top := roots[0]
	if len(roots) > 1 {
		reporter.Warningf("hierarchy",
			"multiple root modules (%s); selecting %q by name", strings.Join(roots, ", "), top)
	}
	return order, top, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
