package async

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsight/flowsight/model"
)

const workQueueSource = `static void h(struct work_struct *w){}
static int p(struct d *d){
    INIT_WORK(&d->work, h);
    schedule_work(&d->work);
    return 0;
}`

func TestWorkQueueBindingScenario(t *testing.T) {
	functions := map[string]*model.FunctionDef{
		"h": {Name: "h"},
		"p": {Name: "p"},
	}
	tracker := NewTracker()
	bindings := tracker.Analyze(workQueueSource, "sample.c", functions)

	require.Len(t, bindings, 1)
	b := bindings[0]
	assert.Equal(t, model.AsyncWorkQueue, b.Mechanism.Kind)
	assert.False(t, b.Mechanism.Delayed)
	assert.Equal(t, "h", b.Handler)
	require.Len(t, b.TriggerLocations, 1)

	assert.True(t, functions["h"].IsCallback)
	assert.Equal(t, "async_WorkQueue{delayed:false}", functions["h"].CallbackContext)
}

func TestBindDiscardedWhenHandlerUnknown(t *testing.T) {
	functions := map[string]*model.FunctionDef{"p": {Name: "p"}}
	tracker := NewTracker()
	bindings := tracker.Analyze(workQueueSource, "sample.c", functions)
	assert.Empty(t, bindings)
}

func TestNormalizeVariable(t *testing.T) {
	assert.Equal(t, "d.work", normalizeVariable("&d->work"))
	assert.Equal(t, "d.work", normalizeVariable("d.work"))
}
