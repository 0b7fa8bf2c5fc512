package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInUsbProbeCallChain(t *testing.T) {
	base := BuiltIn()
	chain := base.FindCallChain("usb_driver.probe")
	require.NotNil(t, chain)
	idx := chain.UserEntryIndex()
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "drv->probe", chain.Nodes[idx].Name)
}

func TestFindCallChainUnknownContext(t *testing.T) {
	base := BuiltIn()
	assert.Nil(t, base.FindCallChain("not_a_framework.callback"))
	assert.Nil(t, base.FindCallChain("nodot"))
}

func TestMergeOverridesBuiltIn(t *testing.T) {
	base := BuiltIn()
	overlay := New()
	overlay.KernelAPIs["kzalloc"] = KernelAPI{Name: "kzalloc", Header: "custom.h", Description: "overridden"}
	base.Merge(overlay)
	assert.Equal(t, "custom.h", base.KernelAPIs["kzalloc"].Header)
}
