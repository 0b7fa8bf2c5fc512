package scenario

import (
	"strings"

	"github.com/flowsight/flowsight/eval"
	"github.com/flowsight/flowsight/model"
)

// Executor re-walks a flow tree under one Scenario's bindings, producing an
// annotated copy with Reachable set on every node.
type Executor struct {
	scenario   *Scenario
	propagator *eval.Propagator
}

// NewExecutor builds an Executor for a Scenario.
func NewExecutor(s *Scenario) *Executor {
	return &Executor{scenario: s, propagator: eval.NewPropagator(s.toEvalBindings())}
}

// Run annotates root and returns a new tree; root itself is never mutated.
func (e *Executor) Run(root *model.FlowNode) *model.FlowNode {
	if root == nil {
		return nil
	}
	return e.walk(root, 0, false)
}

func (e *Executor) walk(node *model.FlowNode, depth int, forcedUnreachable bool) *model.FlowNode {
	clone := node.Clone()

	reachable := true
	if forcedUnreachable {
		reachable = false
	} else if cond, ok := decodeCondition(node); ok {
		verdict := e.propagator.Classify(cond)
		reachable = verdict != eval.AlwaysFalse
		clone.Description = describeVerdict(cond, verdict)
	}
	r := reachable
	clone.Reachable = &r

	childForced := forcedUnreachable || !reachable

	clone.Children = nil
	if depth >= e.scenario.Options.MaxDepth {
		return clone
	}
	for _, child := range node.Children {
		if !e.scenario.Options.ShowKernelAPI && child.NodeType == model.NodeKernelAPI {
			continue
		}
		if child.NodeType == model.NodeAsyncCallback && !e.scenario.Options.FollowAsync {
			continue
		}
		clone.Children = append(clone.Children, e.walk(child, depth+1, childForced))
	}
	return clone
}

func describeVerdict(cond string, v eval.Verdict) string {
	return cond + " -> " + v.String()
}

// decodeCondition recovers an evaluable C-style condition expression for a
// flow node. It prefers an already-attached Description (set by whatever
// built the tree from real source conditions) and otherwise falls back to
// decoding the synthetic "if_<subject>_null" / "if_<subject>_valid" naming
// convention flow-tree branch nodes use when no literal source text was
// captured.
func decodeCondition(n *model.FlowNode) (string, bool) {
	if n.Description != "" && looksLikeExpression(n.Description) {
		return n.Description, true
	}
	const prefix = "if_"
	if !strings.HasPrefix(n.Name, prefix) {
		return "", false
	}
	suffix := n.Name[len(prefix):]
	switch {
	case strings.HasSuffix(suffix, "_null"):
		subject := strings.TrimSuffix(suffix, "_null")
		return subject + " == NULL", true
	case strings.HasSuffix(suffix, "_valid"):
		subject := strings.TrimSuffix(suffix, "_valid")
		return subject + " != NULL", true
	default:
		return "", false
	}
}

func looksLikeExpression(s string) bool {
	return strings.ContainsAny(s, "=<>!&|")
}
