// Package reactive keeps the dashboard outputs consistent with the current
// parameter state. Each output declares the parameters it reads; a change
// event recomputes exactly the outputs that read a changed parameter.
package reactive

import (
	"fmt"
	"slices"

	"github.com/okian/edupanel/internal/domain/params"
	"github.com/okian/edupanel/internal/domain/views"
)

// Graph is a validated, static set of output declarations.
type Graph struct {
	defs  []views.Definition
	index map[views.OutputID]int
}

// NewGraph validates defs: at least one output, unique ids, a builder for
// each, and dependencies drawn from the known parameter names.
func NewGraph(defs []views.Definition) (*Graph, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no outputs", ErrInvalidGraph)
	}
	g := &Graph{defs: make([]views.Definition, len(defs)), index: make(map[views.OutputID]int, len(defs))}
	for i, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: output %d has no id", ErrInvalidGraph, i)
		}
		if _, dup := g.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate output %q", ErrInvalidGraph, d.ID)
		}
		if d.Build == nil {
			return nil, fmt.Errorf("%w: output %q has no builder", ErrInvalidGraph, d.ID)
		}
		for _, n := range d.DependsOn {
			if !slices.Contains(params.Names, n) {
				return nil, fmt.Errorf("%w: output %q depends on unknown parameter %q", ErrInvalidGraph, d.ID, n)
			}
		}
		d.DependsOn = slices.Clone(d.DependsOn)
		g.defs[i] = d
		g.index[d.ID] = i
	}
	return g, nil
}

// Outputs lists output ids in declaration order.
func (g *Graph) Outputs() []views.OutputID {
	out := make([]views.OutputID, len(g.defs))
	for i, d := range g.defs {
		out[i] = d.ID
	}
	return out
}

// Definition looks up an output declaration.
func (g *Graph) Definition(id views.OutputID) (views.Definition, bool) {
	i, ok := g.index[id]
	if !ok {
		return views.Definition{}, false
	}
	return g.defs[i], true
}

// Stale returns the outputs that read any of changed, in declaration order.
func (g *Graph) Stale(changed []params.Name) []views.OutputID {
	var out []views.OutputID
	for _, d := range g.defs {
		for _, n := range d.DependsOn {
			if slices.Contains(changed, n) {
				out = append(out, d.ID)
				break
			}
		}
	}
	return out
}

// Dependents returns the outputs that read n, in declaration order.
func (g *Graph) Dependents(n params.Name) []views.OutputID {
	return g.Stale([]params.Name{n})
}
