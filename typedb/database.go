// Package typedb extracts function-pointer types (typedefs, struct
// fields, function parameters) and function signatures, and scores
// signature compatibility between a function-pointer type and a candidate
// function.
package typedb

import "strings"

// FuncPtrDefKind tags where a function-pointer type was found.
type FuncPtrDefKind string

const (
	DefTypedef       FuncPtrDefKind = "Typedef"
	DefStructField   FuncPtrDefKind = "StructField"
	DefFunctionParam FuncPtrDefKind = "FunctionParam"
	DefGlobalVar     FuncPtrDefKind = "GlobalVar"
)

// FuncPtrType is one discovered function-pointer type.
type FuncPtrType struct {
	Name        string
	ReturnType  string
	ParamTypes  []string
	Location    string
	DefKind     FuncPtrDefKind
}

// FunctionSignature is a function's (return type, parameter types) shape.
type FunctionSignature struct {
	Name       string
	ReturnType string
	ParamTypes []string
}

// Database indexes discovered function-pointer types and function
// signatures, and a precomputed compatibility map between them.
type Database struct {
	FuncPtrTypes     map[string]FuncPtrType
	FunctionSigs     map[string]FunctionSignature
	CompatibleFuncs  map[string]map[string]bool
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{
		FuncPtrTypes:    map[string]FuncPtrType{},
		FunctionSigs:    map[string]FunctionSignature{},
		CompatibleFuncs: map[string]map[string]bool{},
	}
}

// AddType registers a discovered function-pointer type.
func (d *Database) AddType(t FuncPtrType) { d.FuncPtrTypes[t.Name] = t }

// AddFunction registers a discovered function signature.
func (d *Database) AddFunction(s FunctionSignature) { d.FunctionSigs[s.Name] = s }

// IsCompatible reports whether function fn can be assigned to a variable
// of function-pointer type t: same arity, compatible return type, each
// parameter compatible in order.
func (d *Database) IsCompatible(t FuncPtrType, fn FunctionSignature) bool {
	if len(t.ParamTypes) != len(fn.ParamTypes) {
		return false
	}
	if !TypesCompatible(t.ReturnType, fn.ReturnType) {
		return false
	}
	for i := range t.ParamTypes {
		if !TypesCompatible(t.ParamTypes[i], fn.ParamTypes[i]) {
			return false
		}
	}
	return true
}

// BuildCompatibilityMap computes, for every function-pointer type, the set
// of compatible function names — an O(types x functions) brute-force
// cross-product, acceptable at the project sizes FlowSight targets.
func (d *Database) BuildCompatibilityMap() {
	for typeName, t := range d.FuncPtrTypes {
		set := map[string]bool{}
		for fnName, sig := range d.FunctionSigs {
			if d.IsCompatible(t, sig) {
				set[fnName] = true
			}
		}
		if len(set) > 0 {
			d.CompatibleFuncs[typeName] = set
		}
	}
}

// GetCompatibleFunctions returns the compatible-function set for a
// function-pointer type name, computing BuildCompatibilityMap lazily if it
// has not run yet for this type.
func (d *Database) GetCompatibleFunctions(typeName string) map[string]bool {
	if set, ok := d.CompatibleFuncs[typeName]; ok {
		return set
	}
	d.BuildCompatibilityMap()
	return d.CompatibleFuncs[typeName]
}

var intFamily = map[string]bool{
	"int": true, "long": true, "unsigned": true, "unsigned int": true,
	"unsigned long": true, "size_t": true, "ssize_t": true,
}

// TypesCompatible is a text-based, conservative type-compatibility check:
// it strips const/volatile/struct qualifiers, treats void* as compatible
// with any pointer type, and treats the int/long/size_t family as
// mutually interchangeable.
func TypesCompatible(a, b string) bool {
	a, b = NormalizeType(a), NormalizeType(b)
	if a == b {
		return true
	}
	if (a == "void*" && strings.HasSuffix(b, "*")) || (b == "void*" && strings.HasSuffix(a, "*")) {
		return true
	}
	if intFamily[a] && intFamily[b] {
		return true
	}
	return false
}

// NormalizeType strips const/volatile/struct qualifiers and collapses
// repeated whitespace, so e.g. "const struct foo *" and "struct foo*"
// compare equal.
func NormalizeType(t string) string {
	t = strings.ReplaceAll(t, "const ", "")
	t = strings.ReplaceAll(t, "volatile ", "")
	t = strings.ReplaceAll(t, "struct ", "")
	for strings.Contains(t, "  ") {
		t = strings.ReplaceAll(t, "  ", " ")
	}
	t = strings.ReplaceAll(t, " *", "*")
	return strings.TrimSpace(t)
}
