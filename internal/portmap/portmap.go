// Package portmap maps the formal port names of recognized primitive cells
// onto the names the visualization library expects.
package portmap

var unary = map[string]string{
	"A": "in",
	"Y": "out",
}

var binary = map[string]string{
	"A": "in1",
	"B": "in2",
	"Y": "out",
}

var tables = map[string]map[string]string{
	"$not":    unary,
	"$_NOT_":  unary,
	"$and":    binary,
	"$_AND_":  binary,
	"$nand":   binary,
	"$_NAND_": binary,
	"$or":     binary,
	"$_OR_":   binary,
	"$nor":    binary,
	"$_NOR_":  binary,
	"$xor":    binary,
	"$_XOR_":  binary,
	"$xnor":   binary,
	"$_XNOR_": binary,
}

// For returns the formal-to-display port-name mapping of cellType, or nil
// when the type has no mapping and port names pass through unchanged.
func For(cellType string) map[string]string {
	return tables[cellType]
}
