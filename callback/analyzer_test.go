package callback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArrayDispatchResolution(t *testing.T) {
	source := `
static void handler1(void) {}
static void handler2(void) {}
static void (*handlers[2])(void);
static void setup(void) {
    handlers[0] = handler1;
    handlers[1] = handler2;
}
static void dispatch(int i) {
    handlers[i]();
}`
	a := NewAnalyzer(map[string]bool{"handler1": true, "handler2": true, "setup": true, "dispatch": true})
	result := a.Analyze(source)

	resolved := result.Resolved["handlers[*]"]
	assert.True(t, resolved["handler1"])
	assert.True(t, resolved["handler2"])
}

func TestRegistrationDetection(t *testing.T) {
	source := `
static void on_event(void) {}
static void setup(void) {
    register_callback(on_event);
}`
	a := NewAnalyzer(map[string]bool{"on_event": true, "setup": true})
	result := a.Analyze(source)
	assert.Len(t, result.Registrations, 1)
	assert.Equal(t, "on_event", result.Registrations[0].Handler)
}

func TestNormalizeTarget(t *testing.T) {
	assert.Equal(t, "handlers[*]", normalizeTarget("handlers[7]"))
	assert.Equal(t, "a.b", normalizeTarget("a.b"))
}
