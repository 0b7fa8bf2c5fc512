package flow

import (
	"fmt"
	"strings"

	"github.com/flowsight/flowsight/kb"
	"github.com/flowsight/flowsight/model"
)

// maxDepth caps flow-tree recursion so a pathological or genuinely
// recursive call graph can never produce an unbounded tree.
const maxDepth = 20

// Builder constructs execution-flow trees from a resolved call graph.
type Builder struct {
	Functions map[string]*model.FunctionDef
	adj       map[string][]model.CallEdge
	KB        *kb.KnowledgeBase
	bindings  map[string]model.AsyncBinding // keyed by Handler
}

// NewBuilder returns a Builder over a project's functions, edges, detected
// async bindings, and an optional knowledge base (nil disables kernel
// call-chain prefixing).
func NewBuilder(functions map[string]*model.FunctionDef, edges []model.CallEdge, bindings []model.AsyncBinding, knowledge *kb.KnowledgeBase) *Builder {
	byHandler := make(map[string]model.AsyncBinding, len(bindings))
	for _, b := range bindings {
		byHandler[b.Handler] = b
	}
	return &Builder{Functions: functions, adj: adjacency(edges), KB: knowledge, bindings: byHandler}
}

// BuildTree builds the flow tree rooted at entry, an entry-point function
// name as produced by EntryPoints.
func (b *Builder) BuildTree(entry string) *model.FlowNode {
	root := b.buildNode(entry, map[string]bool{}, 0)
	if root == nil {
		return nil
	}
	if root.NodeType != model.NodeAsyncCallback {
		root.NodeType = model.NodeEntryPoint
		root.Description = "entry point"
	}
	if chain := b.chainFor(entry); chain != nil {
		return prefixChain(chain, root)
	}
	return root
}

// BuildForest builds one tree per entry point, in EntryPoints order.
func (b *Builder) BuildForest() []*model.FlowNode {
	var out []*model.FlowNode
	for _, e := range EntryPoints(b.Functions) {
		out = append(out, b.BuildTree(e))
	}
	return out
}

func (b *Builder) buildNode(name string, ancestors map[string]bool, depth int) *model.FlowNode {
	if ancestors[name] {
		return &model.FlowNode{
			ID:          name + ":recursion",
			Name:        name,
			DisplayName: name,
			NodeType:    model.NodeRecursionRef,
			Description: "recursive call back to " + name,
		}
	}

	fn, known := b.Functions[name]
	node := &model.FlowNode{
		ID:          name,
		Name:        name,
		DisplayName: name,
	}

	switch {
	case known && fn.IsCallback && strings.HasPrefix(fn.CallbackContext, "async_"):
		node.NodeType = model.NodeAsyncCallback
		node.Location = fn.Location
		if binding, ok := b.bindings[name]; ok {
			m := binding.Mechanism
			node.Mechanism = &m
			node.Description = "async callback (" + m.Tag() + ")"
		} else {
			node.Description = "async callback (" + fn.CallbackContext + ")"
		}
	case known && fn.IsCallback:
		node.NodeType = model.NodeEntryPoint
		node.Location = fn.Location
		node.Description = "callback entry point (" + fn.CallbackContext + ")"
	case known:
		node.NodeType = model.NodeFunction
		node.Location = fn.Location
	default:
		if api, ok := b.lookupKernelAPI(name); ok {
			node.NodeType = model.NodeKernelAPI
			node.Description = api.Description
		} else {
			node.NodeType = model.NodeExternal
			node.Description = "external symbol"
		}
	}

	if depth >= maxDepth {
		node.Description = fmt.Sprintf("%s (depth limit reached)", node.Description)
		return node
	}

	if !known {
		return node
	}

	childAncestors := make(map[string]bool, len(ancestors)+1)
	for k := range ancestors {
		childAncestors[k] = true
	}
	childAncestors[name] = true

	for _, edge := range b.adj[name] {
		node.Children = append(node.Children, b.buildChild(edge, childAncestors, depth+1))
	}
	return node
}

// buildChild dispatches on edge kind: EntryPoint (ops-table callback) and
// AsyncCallback children are prefixed with the knowledge base's
// kernel-internal call chain, if one is registered for the callee's
// callback context, before the callee's own subtree.
func (b *Builder) buildChild(edge model.CallEdge, ancestors map[string]bool, depth int) *model.FlowNode {
	child := b.buildNode(edge.Callee, ancestors, depth)
	if child.NodeType == model.NodeAsyncCallback || child.NodeType == model.NodeEntryPoint {
		if chain := b.chainFor(edge.Callee); chain != nil {
			return prefixChain(chain, child)
		}
	}
	if edge.CallType.Kind == model.CallIndirect {
		child.ConfidenceLabel = edge.CallType.Confidence.String()
	}
	if edge.CallType.Kind == model.CallAsync {
		m := edge.CallType.Mechanism
		child.Mechanism = &m
	}
	return child
}

func (b *Builder) chainFor(callbackName string) *kb.CallChain {
	if b.KB == nil {
		return nil
	}
	fn, ok := b.Functions[callbackName]
	if !ok || fn.CallbackContext == "" {
		return nil
	}
	return b.KB.FindCallChain(fn.CallbackContext)
}

func (b *Builder) lookupKernelAPI(name string) (kb.KernelAPI, bool) {
	if b.KB == nil {
		return kb.KernelAPI{}, false
	}
	api, ok := b.KB.KernelAPIs[name]
	return api, ok
}

// prefixChain wraps leaf in a sequence of synthetic FlowNodes representing
// chain's kernel-internal frames, attaching leaf as the child of the
// user-entry frame (there is always exactly one).
func prefixChain(chain *kb.CallChain, leaf *model.FlowNode) *model.FlowNode {
	if len(chain.Nodes) == 0 {
		return leaf
	}
	nodes := make([]*model.FlowNode, len(chain.Nodes))
	for i, n := range chain.Nodes {
		nodes[i] = &model.FlowNode{
			ID:          chain.TriggerSource + ":" + n.Name,
			Name:        n.Name,
			DisplayName: n.Name,
			NodeType:    model.NodeKernelAPI,
			Description: n.Description,
		}
	}
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].Children = []*model.FlowNode{nodes[i+1]}
	}
	userEntryIdx := chain.UserEntryIndex()
	if userEntryIdx == -1 {
		userEntryIdx = len(nodes) - 1
	}
	nodes[userEntryIdx].Children = append(nodes[userEntryIdx].Children, leaf)
	return nodes[0]
}
