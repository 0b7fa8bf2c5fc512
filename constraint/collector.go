// Package constraint walks a C AST and emits pointer-analysis constraints
// consumed by package pointer's Andersen solver, including specialised
// rules for known kernel registration calls.
package constraint

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/flowsight/flowsight/pointer"
)

// Collector walks one source file's AST and accumulates constraints.
type Collector struct {
	constraints     []pointer.Constraint
	functions       map[string]bool
	currentFunction string
}

// NewCollector returns a Collector that treats the given function names as
// known (address-of on a known function name is implicit, without needing
// a leading '&').
func NewCollector(knownFunctions map[string]bool) *Collector {
	return &Collector{functions: knownFunctions}
}

// Collect parses source and returns every constraint found.
func (col *Collector) Collect(source string) []pointer.Constraint {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil || tree == nil {
		return col.constraints
	}
	src := []byte(source)
	col.visit(tree.RootNode(), src)
	return col.constraints
}

func (col *Collector) visit(n *sitter.Node, src []byte) {
	switch n.Type() {
	case "function_definition":
		if d := n.ChildByFieldName("declarator"); d != nil {
			col.currentFunction = funcName(d, src)
		}
		col.visitChildren(n, src)
	case "init_declarator":
		col.handleInitDeclarator(n, src)
		col.visitChildren(n, src)
	case "assignment_expression":
		col.handleAssignment(n, src)
		col.visitChildren(n, src)
	case "call_expression":
		col.handleCall(n, src)
		col.visitChildren(n, src)
	case "initializer_list":
		col.handleInitializerList(n, src)
		col.visitChildren(n, src)
	default:
		col.visitChildren(n, src)
	}
}

func (col *Collector) visitChildren(n *sitter.Node, src []byte) {
	for i := 0; i < int(n.ChildCount()); i++ {
		col.visit(n.Child(i), src)
	}
}

func funcName(declarator *sitter.Node, src []byte) string {
	switch declarator.Type() {
	case "function_declarator":
		if inner := declarator.ChildByFieldName("declarator"); inner != nil {
			return funcName(inner, src)
		}
	case "pointer_declarator":
		if inner := declarator.ChildByFieldName("declarator"); inner != nil {
			return funcName(inner, src)
		}
	case "identifier":
		return declarator.Content(src)
	}
	return ""
}

func (col *Collector) handleInitDeclarator(n *sitter.Node, src []byte) {
	declNode := n.ChildByFieldName("declarator")
	valueNode := n.ChildByFieldName("value")
	if declNode == nil || valueNode == nil {
		return
	}
	// Descend through `(*arr[])(void)`-style wrappers to find an array of
	// function pointers.
	arrDecl := declNode
	for arrDecl.Type() == "function_declarator" || arrDecl.Type() == "parenthesized_declarator" || arrDecl.Type() == "pointer_declarator" {
		inner := arrDecl.ChildByFieldName("declarator")
		if inner == nil {
			inner = arrDecl.NamedChild(0)
		}
		if inner == nil {
			break
		}
		arrDecl = inner
	}
	if arrDecl.Type() == "array_declarator" {
		if arrName := extractDeclaratorName(arrDecl, src); arrName != "" {
			col.emitArrayInitializer(arrName, valueNode, src)
		}
		return
	}
	varName := extractDeclaratorName(declNode, src)
	if varName == "" {
		return
	}
	col.emitFromRHS(pointer.Var(varName), valueNode, src)
}

// emitArrayInitializer handles function-pointer array literals, e.g.
// `void (*arr[])(void) = {h1, h2, h3};`, emitting one ArrayStore per
// element that resolves to a known function (plain identifier or &ident).
func (col *Collector) emitArrayInitializer(arrName string, valueNode *sitter.Node, src []byte) {
	if valueNode.Type() != "initializer_list" {
		return
	}
	arr := pointer.ArrayElem(arrName)
	for i := 0; i < int(valueNode.NamedChildCount()); i++ {
		loc, ok := col.resolveArrayElementSrc(valueNode.NamedChild(i), src)
		if !ok {
			continue
		}
		col.constraints = append(col.constraints, pointer.Constraint{Kind: pointer.ArrayStore, Array: arr, Src: loc})
	}
}

// resolveArrayElementSrc resolves one array-initialiser element or the RHS
// of an `arr[i] = ...` store to the Location an ArrayStore's Src should
// carry: a known function name (bare or address-of) resolves to Func,
// anything else to Var.
func (col *Collector) resolveArrayElementSrc(elem *sitter.Node, src []byte) (pointer.Location, bool) {
	switch elem.Type() {
	case "identifier":
		name := elem.Content(src)
		if col.functions[name] {
			return pointer.Func(name), true
		}
		return pointer.Var(name), true
	case "pointer_expression", "unary_expression":
		op := elem.Child(0)
		if op == nil || op.Content(src) != "&" {
			return pointer.Location{}, false
		}
		target := elem.ChildByFieldName("argument")
		if target == nil && elem.NamedChildCount() > 0 {
			target = elem.NamedChild(0)
		}
		if target == nil {
			return pointer.Location{}, false
		}
		name := strings.TrimSpace(target.Content(src))
		if col.functions[name] {
			return pointer.Func(name), true
		}
		return pointer.Var(name), true
	}
	return pointer.Location{}, false
}

func extractDeclaratorName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier":
		return n.Content(src)
	case "pointer_declarator", "array_declarator":
		if inner := n.ChildByFieldName("declarator"); inner != nil {
			return extractDeclaratorName(inner, src)
		}
	}
	return ""
}

func (col *Collector) handleAssignment(n *sitter.Node, src []byte) {
	lhsNode := n.ChildByFieldName("left")
	rhsNode := n.ChildByFieldName("right")
	if lhsNode == nil || rhsNode == nil {
		return
	}
	if lhsNode.Type() == "subscript_expression" {
		col.handleArrayStore(lhsNode, rhsNode, src)
		return
	}
	lhsText := strings.TrimSpace(lhsNode.Content(src))
	col.emitAssignmentConstraint(lhsText, rhsNode, src)
}

// handleArrayStore handles `arr[i] = h;`, emitting an ArrayStore against
// the array's single abstract cell rather than routing the subscript
// expression's text through the generic identifier-assignment path.
func (col *Collector) handleArrayStore(lhsNode, rhsNode *sitter.Node, src []byte) {
	base := arraySubscriptBase(lhsNode, src)
	if base == "" {
		return
	}
	loc, ok := col.resolveArrayElementSrc(rhsNode, src)
	if !ok {
		return
	}
	col.constraints = append(col.constraints, pointer.Constraint{
		Kind: pointer.ArrayStore, Array: pointer.ArrayElem(base), Src: loc,
	})
}

// arraySubscriptBase extracts the array variable name from a
// subscript_expression node (`arr[i]` -> "arr"), the shape both
// handleArrayStore and handleArrayCall dispatch on.
func arraySubscriptBase(n *sitter.Node, src []byte) string {
	arg := n.ChildByFieldName("argument")
	if arg == nil {
		return ""
	}
	if arg.Type() == "identifier" {
		return arg.Content(src)
	}
	return ""
}

// emitAssignmentConstraint is the core dispatcher shared by plain
// assignment and (indirectly) init-declarators: it decides which
// constraint kind an "lhs = rhs" shape produces based on the RHS node
// kind and the LHS's textual shape.
func (col *Collector) emitAssignmentConstraint(lhsText string, rhsNode *sitter.Node, src []byte) {
	switch rhsNode.Type() {
	case "pointer_expression", "unary_expression":
		op := rhsNode.Child(0)
		if op != nil && op.Content(src) == "&" {
			target := rhsNode.ChildByFieldName("argument")
			if target == nil && rhsNode.NamedChildCount() > 0 {
				target = rhsNode.NamedChild(0)
			}
			if target != nil {
				col.emitAddressOf(lhsText, target.Content(src))
				return
			}
		}
		if op != nil && op.Content(src) == "*" {
			ptrName := rhsNode.Content(src)[1:]
			col.constraints = append(col.constraints, pointer.Constraint{
				Kind: pointer.Load, Dest: lhsLocation(lhsText), SrcPtr: pointer.Var(strings.TrimSpace(ptrName)),
			})
			return
		}
	case "field_expression":
		base, field := splitFieldExpr(rhsNode.Content(src))
		col.constraints = append(col.constraints, pointer.Constraint{
			Kind: pointer.FieldLoad, Dest: lhsLocation(lhsText), BasePtr: pointer.Var(base), Field: field,
		})
		return
	case "identifier":
		name := rhsNode.Content(src)
		if col.functions[name] {
			col.emitAddressOf(lhsText, name)
			return
		}
		col.constraints = append(col.constraints, pointer.Constraint{
			Kind: pointer.Copy, Dest: lhsLocation(lhsText), Src: pointer.Var(name),
		})
		return
	}

	if strings.HasPrefix(lhsText, "*") {
		col.constraints = append(col.constraints, pointer.Constraint{
			Kind: pointer.Store, DestPtr: pointer.Var(strings.TrimPrefix(lhsText, "*")), Src: pointer.Var(rhsNode.Content(src)),
		})
		return
	}
	if strings.Contains(lhsText, "->") || strings.Contains(lhsText, ".") {
		base, field := splitFieldExpr(lhsText)
		col.constraints = append(col.constraints, pointer.Constraint{
			Kind: pointer.FieldStore, BasePtr: pointer.Var(base), Field: field, Src: pointer.Var(rhsNode.Content(src)),
		})
		return
	}
	col.constraints = append(col.constraints, pointer.Constraint{
		Kind: pointer.Copy, Dest: lhsLocation(lhsText), Src: pointer.Var(rhsNode.Content(src)),
	})
}

func (col *Collector) emitFromRHS(dest pointer.Location, rhsNode *sitter.Node, src []byte) {
	switch rhsNode.Type() {
	case "pointer_expression", "unary_expression":
		op := rhsNode.Child(0)
		if op != nil && op.Content(src) == "&" && rhsNode.NamedChildCount() > 0 {
			target := rhsNode.NamedChild(0)
			col.constraints = append(col.constraints, pointer.Constraint{Kind: pointer.AddressOf, Pointer: dest, Target: targetLocation(target.Content(src))})
			return
		}
	case "identifier":
		name := rhsNode.Content(src)
		if col.functions[name] {
			col.constraints = append(col.constraints, pointer.Constraint{Kind: pointer.AddressOf, Pointer: dest, Target: pointer.Func(name)})
			return
		}
		col.constraints = append(col.constraints, pointer.Constraint{Kind: pointer.Copy, Dest: dest, Src: pointer.Var(name)})
		return
	case "call_expression":
		return // allocation-call initialisers are not modelled here
	case "field_expression":
		base, field := splitFieldExpr(rhsNode.Content(src))
		col.constraints = append(col.constraints, pointer.Constraint{Kind: pointer.FieldLoad, Dest: dest, BasePtr: pointer.Var(base), Field: field})
		return
	}
}

func (col *Collector) emitAddressOf(lhsText, targetText string) {
	col.constraints = append(col.constraints, pointer.Constraint{
		Kind: pointer.AddressOf, Pointer: lhsLocation(lhsText), Target: targetLocation(targetText),
	})
}

func targetLocation(text string) pointer.Location {
	text = strings.TrimSpace(text)
	return pointer.Var(text)
}

func lhsLocation(text string) pointer.Location {
	return pointer.Var(strings.TrimSpace(text))
}

func splitFieldExpr(text string) (base, field string) {
	if idx := strings.LastIndex(text, "->"); idx >= 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+2:])
	}
	if idx := strings.LastIndex(text, "."); idx >= 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+1:])
	}
	return text, ""
}

// handleCall recognises INIT_WORK/INIT_DELAYED_WORK, timer_setup, and
// request_irq/request_threaded_irq registration shortcuts, which must
// produce the same points-to shape as the equivalent expanded code.
func (col *Collector) handleCall(n *sitter.Node, src []byte) {
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil {
		return
	}
	if fnNode.Type() == "subscript_expression" {
		col.handleArrayCall(fnNode, src)
		return
	}
	if fnNode.Type() != "identifier" {
		return
	}
	name := fnNode.Content(src)
	args := callArgs(n, src)

	switch name {
	case "INIT_WORK", "INIT_DELAYED_WORK":
		if len(args) >= 2 && col.functions[args[1]] {
			base, _ := splitFieldExpr(strings.TrimPrefix(args[0], "&"))
			col.constraints = append(col.constraints, pointer.Constraint{
				Kind: pointer.FieldStore, BasePtr: pointer.Var(base), Field: "func", Src: pointer.Func(args[1]),
			})
		}
	case "timer_setup":
		if len(args) >= 2 && col.functions[args[1]] {
			base, _ := splitFieldExpr(strings.TrimPrefix(args[0], "&"))
			col.constraints = append(col.constraints, pointer.Constraint{
				Kind: pointer.FieldStore, BasePtr: pointer.Var(base), Field: "function", Src: pointer.Func(args[1]),
			})
		}
	case "request_irq", "request_threaded_irq":
		handlerIdx := 1
		if name == "request_threaded_irq" {
			handlerIdx = 2
		}
		if len(args) > handlerIdx && col.functions[args[handlerIdx]] {
			col.constraints = append(col.constraints, pointer.Constraint{
				Kind: pointer.AddressOf, Pointer: pointer.Var("irq_" + args[0]), Target: pointer.Func(args[handlerIdx]),
			})
		}
	}
}

// handleArrayCall handles an indirect call through a subscript expression,
// `arr[i]()`, emitting an ArrayLoad into the synthetic variable the flow
// classifier looks up to resolve the call's candidate targets.
func (col *Collector) handleArrayCall(subscript *sitter.Node, src []byte) {
	base := arraySubscriptBase(subscript, src)
	if base == "" {
		return
	}
	col.constraints = append(col.constraints, pointer.Constraint{
		Kind: pointer.ArrayLoad, Dest: pointer.Var("__call_from_" + base), Array: pointer.ArrayElem(base),
	})
}

func callArgs(call *sitter.Node, src []byte) []string {
	argsNode := call.ChildByFieldName("arguments")
	if argsNode == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(argsNode.NamedChildCount()); i++ {
		out = append(out, strings.TrimSpace(argsNode.NamedChild(i).Content(src)))
	}
	return out
}

// handleInitializerList handles struct-literal designated initialisers
// (".field = func"), recording a placeholder AddressOf the flow builder
// later attributes to the enclosing variable once it is known.
func (col *Collector) handleInitializerList(n *sitter.Node, src []byte) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		pair := n.NamedChild(i)
		if pair.Type() != "initializer_pair" {
			continue
		}
		var fieldName string
		for j := 0; j < int(pair.NamedChildCount()); j++ {
			c := pair.NamedChild(j)
			if c.Type() == "field_identifier" {
				fieldName = c.Content(src)
			}
		}
		valueNode := pair.ChildByFieldName("value")
		if valueNode == nil || fieldName == "" {
			continue
		}
		if valueNode.Type() == "identifier" {
			fn := valueNode.Content(src)
			if col.functions[fn] {
				col.constraints = append(col.constraints, pointer.Constraint{
					Kind: pointer.AddressOf, Pointer: pointer.Field("__init__", fieldName), Target: pointer.Func(fn),
				})
			}
		}
	}
}
