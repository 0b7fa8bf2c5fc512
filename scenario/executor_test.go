package scenario

import (
	"testing"

	"github.com/flowsight/flowsight/eval"
	"github.com/flowsight/flowsight/model"
	"github.com/stretchr/testify/assert"
)

func TestNullCheckMakesBranchUnreachable(t *testing.T) {
	tree := &model.FlowNode{
		Name:     "probe",
		NodeType: model.NodeFunction,
		Children: []*model.FlowNode{
			{Name: "if_ptr_null", NodeType: model.NodeFunction, Children: []*model.FlowNode{
				{Name: "handle_error", NodeType: model.NodeFunction},
			}},
			{Name: "if_ptr_valid", NodeType: model.NodeFunction, Children: []*model.FlowNode{
				{Name: "continue_probe", NodeType: model.NodeFunction},
			}},
		},
	}

	s := New("ptr-is-null", ValueBinding{Name: "ptr", Value: eval.Int(0)})
	result := NewExecutor(s).Run(tree)

	nullBranch := result.Children[0]
	validBranch := result.Children[1]

	// ptr is bound null: the "is null" branch executes, the "is valid"
	// branch does not.
	assert.True(t, *nullBranch.Reachable)
	assert.False(t, *validBranch.Reachable)

	// Descendants of the unreachable branch are unreachable too.
	assert.True(t, *nullBranch.Children[0].Reachable)
	assert.False(t, *validBranch.Children[0].Reachable)
}

func TestUnknownBindingDefaultsReachable(t *testing.T) {
	tree := &model.FlowNode{
		Name:     "probe",
		NodeType: model.NodeFunction,
		Children: []*model.FlowNode{
			{Name: "if_ptr_null", NodeType: model.NodeFunction},
		},
	}
	s := New("no-binding")
	result := NewExecutor(s).Run(tree)
	assert.True(t, *result.Children[0].Reachable)
}

func TestKernelAPIFilteredWhenOptionDisabled(t *testing.T) {
	tree := &model.FlowNode{
		Name:     "probe",
		NodeType: model.NodeFunction,
		Children: []*model.FlowNode{
			{Name: "kzalloc", NodeType: model.NodeKernelAPI},
			{Name: "helper", NodeType: model.NodeFunction},
		},
	}
	s := New("hide-kernel")
	s.Options.ShowKernelAPI = false
	result := NewExecutor(s).Run(tree)
	assert.Len(t, result.Children, 1)
	assert.Equal(t, "helper", result.Children[0].Name)
}

func TestSourceRootNeverMutated(t *testing.T) {
	tree := &model.FlowNode{Name: "probe", NodeType: model.NodeFunction}
	s := New("x")
	NewExecutor(s).Run(tree)
	assert.Nil(t, tree.Reachable)
}
