package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsight/flowsight/pointer"
)

func TestCollectInitWork(t *testing.T) {
	source := `
static void h(struct work_struct *w) {}
static int probe(struct dev *d) {
    INIT_WORK(&d->work, h);
    return 0;
}`
	col := NewCollector(map[string]bool{"h": true, "probe": true})
	cs := col.Collect(source)

	var found bool
	for _, c := range cs {
		if c.Kind == pointer.FieldStore && c.Field == "func" && c.Src.Name == "h" {
			found = true
		}
	}
	assert.True(t, found, "expected a FieldStore{field:func, src:h} constraint, got %+v", cs)
}

func TestCollectAddressOfAssignment(t *testing.T) {
	source := `
static void a(void) {}
static void b(void) {}
static void use(void) {
    void (*fp)(void);
    fp = &a;
    fp = &b;
}`
	col := NewCollector(map[string]bool{"a": true, "b": true, "use": true})
	cs := col.Collect(source)

	require.NotEmpty(t, cs)
	var targets []string
	for _, c := range cs {
		if c.Kind == pointer.AddressOf && c.Pointer.Name == "fp" {
			targets = append(targets, c.Target.Name)
		}
	}
	assert.ElementsMatch(t, []string{"a", "b"}, targets)
}

func TestCollectArrayLiteralInitializer(t *testing.T) {
	source := `
typedef void (*handler_t)(void);
static void h1(void) {}
static void h2(void) {}
static void h3(void) {}
static handler_t arr[] = {h1, h2, h3};
`
	col := NewCollector(map[string]bool{"h1": true, "h2": true, "h3": true})
	cs := col.Collect(source)

	var targets []string
	for _, c := range cs {
		if c.Kind == pointer.ArrayStore && c.Array.Name == "arr" {
			targets = append(targets, c.Src.Name)
		}
	}
	assert.ElementsMatch(t, []string{"h1", "h2", "h3"}, targets)
}

func TestCollectArraySubscriptAssignment(t *testing.T) {
	source := `
static void h(struct work_struct *w) {}
static void rebind(void) {
    arr[3] = h;
}`
	col := NewCollector(map[string]bool{"h": true, "rebind": true})
	cs := col.Collect(source)

	require.NotEmpty(t, cs)
	var found bool
	for _, c := range cs {
		if c.Kind == pointer.ArrayStore && c.Array.Name == "arr" && c.Src.Name == "h" {
			found = true
		}
	}
	assert.True(t, found, "expected ArrayStore{array:arr, src:h}, got %+v", cs)
}

func TestCollectArraySubscriptCallEmitsArrayLoad(t *testing.T) {
	source := `
static void dispatch(int i) {
    arr[i]();
}`
	col := NewCollector(map[string]bool{"dispatch": true})
	cs := col.Collect(source)

	require.NotEmpty(t, cs)
	var found bool
	for _, c := range cs {
		if c.Kind == pointer.ArrayLoad && c.Array.Name == "arr" && c.Dest.Name == "__call_from_arr" {
			found = true
		}
	}
	assert.True(t, found, "expected ArrayLoad{array:arr, dest:__call_from_arr}, got %+v", cs)
}

// TestCollectArrayDispatchScenario mirrors the array-dispatch pattern end
// to end: three ArrayStore constraints from the initializer plus one
// ArrayLoad from the indirect call, solvable into __call_from_arr pointing
// at all three handlers.
func TestCollectArrayDispatchScenario(t *testing.T) {
	source := `
typedef void (*handler_t)(void);
static void h1(void) {}
static void h2(void) {}
static void h3(void) {}
static handler_t arr[] = {h1, h2, h3};
static void dispatch(int i) {
    arr[i]();
}`
	col := NewCollector(map[string]bool{"h1": true, "h2": true, "h3": true, "dispatch": true})
	cs := col.Collect(source)

	var stores, loads int
	for _, c := range cs {
		switch c.Kind {
		case pointer.ArrayStore:
			stores++
		case pointer.ArrayLoad:
			loads++
		}
	}
	assert.Equal(t, 3, stores)
	assert.Equal(t, 1, loads)

	solver := pointer.NewSolver()
	solver.AddAll(cs)
	result := solver.Solve()
	targets := result.GetFunctionTargets("__call_from_arr")
	assert.True(t, targets["h1"])
	assert.True(t, targets["h2"])
	assert.True(t, targets["h3"])
}

func TestSplitFieldExpr(t *testing.T) {
	base, field := splitFieldExpr("d->work")
	assert.Equal(t, "d", base)
	assert.Equal(t, "work", field)

	base, field = splitFieldExpr("obj.field")
	assert.Equal(t, "obj", base)
	assert.Equal(t, "field", field)
}
