// Package passes hosts the transformations applied to a compiled design
// after the per-module lowering.
package passes

import (
	"fmt"

	"github.com/tilk/yosys2simcirjs/internal/circuit"
)

// Pass is one named transformation over a compiled design.
type Pass interface {
	Name() string
	Run(design *circuit.Design) error
}

// Manager runs a sequence of passes in registration order.
type Manager struct {
	passes []Pass
}

// NewManager returns an empty pass manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add appends a pass to the sequence.
func (m *Manager) Add(p Pass) {
	m.passes = append(m.passes, p)
}

// Run executes every registered pass, stopping at the first failure.
func (m *Manager) Run(design *circuit.Design) error {
	if design == nil {
		return fmt.Errorf("passes require a non-nil design")
	}
	for _, p := range m.passes {
		if err := p.Run(design); err != nil {
			return fmt.Errorf("pass %s: %w", p.Name(), err)
		}
	}
	return nil
}
