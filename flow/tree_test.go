package flow

import (
	"testing"

	"github.com/flowsight/flowsight/kb"
	"github.com/flowsight/flowsight/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildTreeRecursionDetection(t *testing.T) {
	functions := map[string]*model.FunctionDef{
		"a": fn("a", 1, 5, "b"),
		"b": fn("b", 10, 15, "a"),
	}
	edges := BuildCallEdges(functions, nil)
	builder := NewBuilder(functions, edges, nil, nil)
	tree := builder.BuildTree("a")

	assert.Equal(t, model.NodeEntryPoint, tree.NodeType)
	assert.Len(t, tree.Children, 1)
	b := tree.Children[0]
	assert.Equal(t, model.NodeFunction, b.NodeType)
	assert.Len(t, b.Children, 1)
	assert.Equal(t, model.NodeRecursionRef, b.Children[0].NodeType)
	assert.Equal(t, "a", b.Children[0].Name)
}

func TestBuildTreeExternalAndKernelAPI(t *testing.T) {
	functions := map[string]*model.FunctionDef{
		"probe": fn("probe", 1, 5, "kzalloc", "my_helper_in_another_tu"),
	}
	edges := BuildCallEdges(functions, nil)
	knowledge := kb.BuiltIn()
	builder := NewBuilder(functions, edges, nil, knowledge)
	tree := builder.BuildTree("probe")

	var kernelAPI, external *model.FlowNode
	for _, c := range tree.Children {
		switch c.Name {
		case "kzalloc":
			kernelAPI = c
		case "my_helper_in_another_tu":
			external = c
		}
	}
	assert.NotNil(t, kernelAPI)
	assert.Equal(t, model.NodeKernelAPI, kernelAPI.NodeType)
	assert.NotNil(t, external)
	assert.Equal(t, model.NodeExternal, external.NodeType)
}

// TestBuildTreePrefixesKernelCallChainForOpsTableEntryPoint covers the
// "Full flow-tree variant": an ops-table callback (no "async_" context
// prefix) is classified as an entry point, and building its tree directly
// (as BuildForest would for any entry point) still prefixes the registered
// kernel call chain for its callback context.
func TestBuildTreePrefixesKernelCallChainForOpsTableEntryPoint(t *testing.T) {
	usbProbeCallback := fn("my_usb_probe", 30, 40)
	usbProbeCallback.IsCallback = true
	usbProbeCallback.CallbackContext = "usb_driver.probe"

	functions := map[string]*model.FunctionDef{
		"my_usb_probe": usbProbeCallback,
	}
	edges := BuildCallEdges(functions, nil)
	knowledge := kb.BuiltIn()
	builder := NewBuilder(functions, edges, nil, knowledge)
	tree := builder.BuildTree("my_usb_probe")

	assert.Equal(t, model.NodeKernelAPI, tree.NodeType)
	assert.Equal(t, "usb_new_device", tree.Name)

	// Walk down the chain to the user-entry frame and confirm the real
	// callback subtree is attached beneath it, classified as EntryPoint
	// (not AsyncCallback — this context has no "async_" prefix).
	node := tree
	var entry *model.FlowNode
	for i := 0; i < 10 && node != nil; i++ {
		for _, c := range node.Children {
			if c.Name == "my_usb_probe" {
				entry = c
			}
		}
		if len(node.Children) == 0 {
			break
		}
		node = node.Children[0]
	}
	if assert.NotNil(t, entry) {
		assert.Equal(t, model.NodeEntryPoint, entry.NodeType)
	}
}

// TestBuildTreeClassifiesAsyncPrefixAsAsyncCallback covers the other branch
// of the is_callback classification rule: a callback_context starting with
// "async_" is an async callback, with its Mechanism sourced from the
// matching AsyncBinding rather than an ops-table entry point.
func TestBuildTreeClassifiesAsyncPrefixAsAsyncCallback(t *testing.T) {
	workHandler := fn("my_work_handler", 50, 60)
	workHandler.IsCallback = true
	workHandler.CallbackContext = "async_WorkQueue{delayed:false}"

	opsCallback := fn("my_open", 70, 80)
	opsCallback.IsCallback = true
	opsCallback.CallbackContext = "file_operations.open"

	functions := map[string]*model.FunctionDef{
		"my_work_handler": workHandler,
		"my_open":         opsCallback,
	}
	bindings := []model.AsyncBinding{
		{
			Mechanism: model.AsyncMechanism{Kind: model.AsyncWorkQueue},
			Handler:   "my_work_handler",
		},
	}
	edges := BuildCallEdges(functions, nil)
	builder := NewBuilder(functions, edges, bindings, nil)

	workTree := builder.BuildTree("my_work_handler")
	assert.Equal(t, model.NodeAsyncCallback, workTree.NodeType)
	if assert.NotNil(t, workTree.Mechanism) {
		assert.Equal(t, model.AsyncWorkQueue, workTree.Mechanism.Kind)
	}

	opsTree := builder.BuildTree("my_open")
	assert.Equal(t, model.NodeEntryPoint, opsTree.NodeType)
}

func TestBuildForestOrdersEntryPoints(t *testing.T) {
	functions := map[string]*model.FunctionDef{
		"module_init": fn("module_init", 1, 2),
		"module_exit": fn("module_exit", 3, 4),
	}
	edges := BuildCallEdges(functions, nil)
	builder := NewBuilder(functions, edges, nil, nil)
	forest := builder.BuildForest()
	assert.Len(t, forest, 2)
	assert.Equal(t, "module_init", forest[0].Name)
	assert.Equal(t, "module_exit", forest[1].Name)
}
