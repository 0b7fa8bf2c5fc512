// Package pointer implements a flow-insensitive, context-insensitive,
// field-sensitive Andersen-style points-to analysis over constraints
// extracted by package constraint.
package pointer

import "fmt"

// LocationKind tags the abstract domain a Location belongs to.
type LocationKind int

const (
	KindVariable LocationKind = iota
	KindField
	KindFunction
	KindAlloc
	KindArrayElement
)

// Location is one abstract storage location in the points-to domain.
type Location struct {
	Kind  LocationKind
	Name  string // Variable, Function, Alloc, ArrayElement
	Base  string // Field only
	Field string // Field only
}

// Var constructs a Variable location.
func Var(name string) Location { return Location{Kind: KindVariable, Name: name} }

// Field constructs a Field location.
func Field(base, field string) Location { return Location{Kind: KindField, Base: base, Field: field} }

// Func constructs a Function location.
func Func(name string) Location { return Location{Kind: KindFunction, Name: name} }

// Alloc constructs an allocation-site location.
func Alloc(site string) Location { return Location{Kind: KindAlloc, Name: site} }

// ArrayElem constructs an array-element location (index-insensitive: the
// whole array is a single abstract cell).
func ArrayElem(name string) Location { return Location{Kind: KindArrayElement, Name: name} }

// Key renders the canonical string used as a map key during solving. The
// exact encoding matters: FieldLoad/FieldStore build field keys by string
// concatenation against resolved base locations, so this must stay stable.
func (l Location) Key() string {
	switch l.Kind {
	case KindVariable:
		return l.Name
	case KindField:
		return fmt.Sprintf("%s.%s", l.Base, l.Field)
	case KindFunction:
		return l.Name
	case KindAlloc:
		return "alloc:" + l.Name
	case KindArrayElement:
		return l.Name + "[]"
	}
	return ""
}

// ConstraintKind tags a Constraint's payload shape.
type ConstraintKind int

const (
	AddressOf ConstraintKind = iota
	Copy
	Load
	Store
	FieldLoad
	FieldStore
	ArrayStore
	ArrayLoad
)

// Constraint is one pointer-analysis constraint emitted by the collector.
type Constraint struct {
	Kind ConstraintKind

	// AddressOf: Pointer = &Target
	Pointer Location
	Target  Location

	// Copy: Dest = Src (also used generically as the field names below)
	Dest Location
	Src  Location

	// Load: Dest = *SrcPtr
	SrcPtr Location

	// Store: *DestPtr = Src
	DestPtr Location

	// FieldLoad: Dest = BasePtr->Field
	// FieldStore: BasePtr->Field = Src
	BasePtr Location
	Field   string

	// ArrayStore: Array[i] = Src ; ArrayLoad: Dest = Array[i]
	Array Location
}

// PointsToResult is the output of a solved AndersenSolver.
type PointsToResult struct {
	PointsTo       map[string]map[string]bool
	FuncPtrTargets map[string]map[string]bool
}

// GetTargets returns the raw points-to set for a location key.
func (r *PointsToResult) GetTargets(key string) map[string]bool {
	return r.PointsTo[key]
}

// GetFunctionTargets returns only the function-name targets for a
// location key (excluding allocation sites and field-qualified keys),
// the view the call-graph builder and classifier consume.
func (r *PointsToResult) GetFunctionTargets(key string) map[string]bool {
	return r.FuncPtrTargets[key]
}
