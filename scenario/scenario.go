// Package scenario re-annotates a flow tree under a symbolic execution
// environment: fixed variable bindings plus knobs for how deep and how
// much kernel-internal detail to show. Annotation never mutates the
// source tree — every visited node is cloned before its fields change.
package scenario

import (
	"github.com/flowsight/flowsight/eval"
)

// ValueBinding pins one identifier to a known symbolic value for the
// lifetime of a Scenario.
type ValueBinding struct {
	Name  string
	Value eval.Value
}

// Options controls how the executor walks and renders a flow tree.
type Options struct {
	FollowAsync    bool
	ShowKernelAPI  bool
	MaxDepth       int
}

// DefaultOptions mirrors the analysis-default ambient stack setting:
// follow async edges, hide kernel-API leaves to keep the tree readable,
// and respect the same depth cap the flow builder itself enforces.
func DefaultOptions() Options {
	return Options{FollowAsync: true, ShowKernelAPI: false, MaxDepth: 20}
}

// Scenario is a named symbolic execution environment.
type Scenario struct {
	Name     string
	Bindings []ValueBinding
	Options  Options
}

// New returns a Scenario with DefaultOptions and the given bindings.
func New(name string, bindings ...ValueBinding) *Scenario {
	return &Scenario{Name: name, Bindings: bindings, Options: DefaultOptions()}
}

func (s *Scenario) toEvalBindings() eval.Bindings {
	b := eval.Bindings{}
	for _, v := range s.Bindings {
		b[v.Name] = v.Value
	}
	return b
}
