package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDirectCallIsCertain(t *testing.T) {
	c := NewClassifier()
	edge := c.ClassifyDirectCall("main", "main:10", "helper")
	assert.Equal(t, Certain, edge.OverallConfidence)
}

func TestClassifyFuncPtrCallByTargetCount(t *testing.T) {
	c := NewClassifier()

	none := c.ClassifyFuncPtrCall("dispatch", "dispatch:3", nil)
	assert.Equal(t, Unknown, none.OverallConfidence)

	one := c.ClassifyFuncPtrCall("dispatch", "dispatch:4", []string{"handler1"})
	assert.Equal(t, Certain, one.OverallConfidence)

	many := c.ClassifyFuncPtrCall("dispatch", "dispatch:5", []string{"handler1", "handler2"})
	assert.Equal(t, Possible, many.OverallConfidence)
}

func TestClassifyAsyncBindingKnownVsUnknownMechanism(t *testing.T) {
	c := NewClassifier()
	known := c.ClassifyAsyncBinding("probe", "probe:1", "work_handler", "INIT_WORK")
	assert.Equal(t, Certain, known.OverallConfidence)

	unknown := c.ClassifyAsyncBinding("probe", "probe:2", "custom_handler", "custom_register_fn")
	assert.Equal(t, Possible, unknown.OverallConfidence)
}

func TestClassifyOpsCallbackWellKnownType(t *testing.T) {
	c := NewClassifier()
	edge := c.ClassifyOpsCallback("init", "init:1", "my_open", "file_operations")
	assert.Equal(t, Certain, edge.OverallConfidence)

	unknownType := c.ClassifyOpsCallback("init", "init:2", "my_open", "custom_ops")
	assert.Equal(t, Possible, unknownType.OverallConfidence)
}

func TestApplyAnnotationOverridesToCertain(t *testing.T) {
	c := NewClassifier()
	edge := c.ApplyAnnotation(UserAnnotation{CallSite: "dispatch:5", Targets: []string{"handler1"}, Note: "confirmed by trace"})
	assert.Equal(t, Certain, edge.OverallConfidence)

	found, ok := c.FindAnnotation("dispatch:5")
	assert.True(t, ok)
	assert.Equal(t, "confirmed by trace", found.Note)
}

func TestSummarizeComputesPercentage(t *testing.T) {
	c := NewClassifier()
	edges := []ClassifiedEdge{
		c.ClassifyDirectCall("a", "a:1", "b"),
		c.ClassifyFuncPtrCall("c", "c:1", []string{"d", "e"}),
		c.ClassifyFuncPtrCall("f", "f:1", nil),
	}
	summary := Summarize(edges)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.CertainCount)
	assert.Equal(t, 1, summary.PossibleCount)
	assert.Equal(t, 1, summary.UnknownCount)
	assert.Equal(t, 33, summary.CertainPercentage)
}
