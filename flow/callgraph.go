// Package flow builds the resolved call graph and the per-entry-point
// execution-flow trees FlowSight reports to callers.
package flow

import (
	"sort"

	"github.com/flowsight/flowsight/model"
)

// BuildCallEdges derives every CallEdge from a project's parsed functions
// and detected async bindings. Direct edges come straight from each
// function's recorded Calls list. An async edge is produced per trigger
// site in TriggerLocations (not the bind site) — it is the code that
// schedules/fires a handler that becomes the caller, which for kernel code
// is routinely a different function than the one that bound the handler
// (e.g. a work_struct bound in probe() but scheduled from an IRQ handler).
// Each trigger site is attributed to the innermost function whose Location
// contains it.
func BuildCallEdges(functions map[string]*model.FunctionDef, bindings []model.AsyncBinding) []model.CallEdge {
	var edges []model.CallEdge

	names := sortedKeys(functions)
	for _, name := range names {
		fn := functions[name]
		for _, callee := range fn.Calls {
			edges = append(edges, model.CallEdge{
				Caller: fn.Name,
				Callee: callee,
				CallType: model.CallType{
					Kind: model.CallDirect,
				},
			})
		}
	}

	for _, b := range bindings {
		for _, trigger := range b.TriggerLocations {
			caller := enclosingFunction(functions, trigger)
			if caller == "" {
				continue
			}
			loc := trigger
			edges = append(edges, model.CallEdge{
				Caller: caller,
				Callee: b.Handler,
				Site:   &loc,
				CallType: model.CallType{
					Kind:      model.CallAsync,
					Mechanism: b.Mechanism,
				},
			})
		}
	}

	return edges
}

// enclosingFunction returns the name of the function whose Location
// contains loc.Line, preferring the narrowest (innermost) match when
// locations are nested.
func enclosingFunction(functions map[string]*model.FunctionDef, loc model.Location) string {
	best := ""
	bestSpan := -1
	for name, fn := range functions {
		if fn.Location == nil || fn.Location.File != loc.File {
			continue
		}
		if !fn.Location.Contains(loc.Line) {
			continue
		}
		span := fn.Location.Span()
		if bestSpan == -1 || span < bestSpan {
			best, bestSpan = name, span
		}
	}
	return best
}

func sortedKeys(functions map[string]*model.FunctionDef) []string {
	keys := make([]string, 0, len(functions))
	for k := range functions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddIndirectEdges appends one CallEdge per resolved function-pointer
// target, e.g. from pointer.PointsToResult.GetFunctionTargets at a call
// site, tagged with the supplied confidence.
func AddIndirectEdges(edges []model.CallEdge, caller, calleeExpr string, site *model.Location, targets map[string]bool, confidence model.Confidence) []model.CallEdge {
	names := make([]string, 0, len(targets))
	for t := range targets {
		names = append(names, t)
	}
	sort.Strings(names)
	for _, t := range names {
		edges = append(edges, model.CallEdge{
			Caller: caller,
			Callee: t,
			Site:   site,
			CallType: model.CallType{
				Kind:       model.CallIndirect,
				Confidence: confidence,
			},
		})
	}
	return edges
}

// EntryPoints orders the module's entry points per FlowSight's fixed
// precedence: module_init first, module_exit second, then every remaining
// callback function (any function marked IsCallback) ordered by source line.
func EntryPoints(functions map[string]*model.FunctionDef) []string {
	var init, exit string
	var callbacks []*model.FunctionDef

	for _, fn := range functions {
		switch fn.Name {
		case "module_init", "init_module":
			init = fn.Name
			continue
		case "module_exit", "cleanup_module":
			exit = fn.Name
			continue
		}
		if fn.IsCallback {
			callbacks = append(callbacks, fn)
		}
	}

	sort.Slice(callbacks, func(i, j int) bool {
		li, lj := lineOf(callbacks[i]), lineOf(callbacks[j])
		if li != lj {
			return li < lj
		}
		return callbacks[i].Name < callbacks[j].Name
	})

	var out []string
	if init != "" {
		out = append(out, init)
	}
	if exit != "" {
		out = append(out, exit)
	}
	for _, fn := range callbacks {
		out = append(out, fn.Name)
	}
	return out
}

func lineOf(fn *model.FunctionDef) int {
	if fn.Location == nil {
		return 0
	}
	return fn.Location.Line
}

// adjacency builds a caller -> ordered, deduplicated callee list from a
// set of edges, preserving first-seen edge order within each caller.
func adjacency(edges []model.CallEdge) map[string][]model.CallEdge {
	out := map[string][]model.CallEdge{}
	seen := map[string]map[string]bool{}
	for _, e := range edges {
		if seen[e.Caller] == nil {
			seen[e.Caller] = map[string]bool{}
		}
		key := e.Callee + "|" + string(e.CallType.Kind)
		if seen[e.Caller][key] {
			continue
		}
		seen[e.Caller][key] = true
		out[e.Caller] = append(out[e.Caller], e)
	}
	return out
}
