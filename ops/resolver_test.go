package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsight/flowsight/model"
)

const opsSource = `
static int my_open(struct inode *i, struct file *f) { return 0; }
static ssize_t my_read(struct file *f, char *b, size_t c, loff_t *o) { return 0; }
static const struct file_operations my_fops = {
    .owner = THIS_MODULE,
    .open = my_open,
    .read = my_read,
};`

func TestOpsTableAnalysis(t *testing.T) {
	functions := map[string]*model.FunctionDef{
		"my_open": {Name: "my_open"},
		"my_read": {Name: "my_read"},
	}
	r := NewResolver()
	mappings := r.AnalyzeOpsTables(opsSource, functions)

	assert.Equal(t, "my_open", mappings["file_operations.open"])
	assert.Equal(t, "my_read", mappings["file_operations.read"])
	assert.True(t, functions["my_open"].IsCallback)
	assert.Equal(t, "file_operations.open", functions["my_open"].CallbackContext)
}

func TestResolveIndirectCall(t *testing.T) {
	mappings := map[string]string{"file_operations.open": "my_open"}
	target, ok := ResolveIndirectCall("fops->open(inode, file)", mappings)
	require.True(t, ok)
	assert.Equal(t, "my_open", target)

	_, ok = ResolveIndirectCall("other->close()", mappings)
	assert.False(t, ok)
}

func TestWellKnownOpsTypes(t *testing.T) {
	assert.True(t, WellKnownOpsTypes["file_operations"])
	assert.False(t, WellKnownOpsTypes["my_custom_ops"])
}
