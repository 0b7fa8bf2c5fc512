// Package cparser implements the concrete parser collaborator for C source
// — the interface the rest of FlowSight treats as an external boundary,
// backed here by a real tree-sitter C grammar.
package cparser

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/flowsight/flowsight/model"
)

// Parser is the contract every parse-result producer in FlowSight
// implements; the index package's Indexer depends only on this.
type Parser interface {
	Parse(source []byte, filename string) (*model.ParseResult, error)
	ParseFile(path string) (*model.ParseResult, error)
	Name() string
	IsAvailable() bool
}

// Preprocessor is the optional Clang-driven macro/include expansion
// collaborator described in spec.md §1 as out of scope for the core; it is
// defined here only as an interface seam so an implementation can be
// plugged in without changing TreeSitterParser's contract.
type Preprocessor interface {
	Preprocess(source []byte, filename string) ([]byte, error)
}

// TreeSitterParser parses C source with the tree-sitter C grammar and
// extracts FunctionDef/StructDef records plus each direct call a function
// makes, following the AST-dispatch-by-node-kind style of the teacher's
// own tree-sitter inspector.
type TreeSitterParser struct {
	Preprocessor Preprocessor
}

// New returns a ready-to-use TreeSitterParser with no preprocessor.
func New() *TreeSitterParser {
	return &TreeSitterParser{}
}

func (p *TreeSitterParser) Name() string      { return "tree-sitter-c" }
func (p *TreeSitterParser) IsAvailable() bool { return true }

// ParseFile reads path and delegates to Parse.
func (p *TreeSitterParser) ParseFile(path string) (*model.ParseResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cparser: read %s: %w", path, err)
	}
	return p.Parse(src, path)
}

// Parse parses source and extracts its functions and structs. Syntax
// errors from the grammar are recorded in the result's Errors list and
// never surfaced as a Go error, so a syntactically broken file still yields
// a (possibly partial) result; only a failure of the tree-sitter parser
// itself is returned as an error.
func (p *TreeSitterParser) Parse(source []byte, filename string) (*model.ParseResult, error) {
	if p.Preprocessor != nil {
		expanded, err := p.Preprocessor.Preprocess(source, filename)
		if err == nil {
			source = expanded
		}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("cparser: parse %s: %w", filename, err)
	}

	result := model.NewParseResult()
	root := tree.RootNode()
	walkTopLevel(root, source, filename, result)
	collectSyntaxErrors(root, source, filename, result)
	return result, nil
}

func collectSyntaxErrors(n *sitter.Node, src []byte, filename string, result *model.ParseResult) {
	if n.IsError() || n.IsMissing() {
		pt := n.StartPoint()
		result.Errors = append(result.Errors, fmt.Sprintf("%s:%d: syntax error near %q", filename, pt.Row+1, truncate(n.Content(src), 40)))
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectSyntaxErrors(n.Child(i), src, filename, result)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func walkTopLevel(root *sitter.Node, src []byte, filename string, result *model.ParseResult) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "function_definition":
			if fn := parseFunctionDefinition(child, src, filename); fn != nil {
				result.Functions[fn.Name] = fn
			}
		case "declaration":
			parseTopLevelDeclaration(child, src, filename, result)
		case "struct_specifier":
			if st := parseStructSpecifier(child, src, filename); st != nil {
				result.Structs[st.Name] = st
			}
		case "type_definition":
			// typedef struct { ... } Name; — descend to pick up the inner struct body
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if sub := child.NamedChild(j); sub.Type() == "struct_specifier" {
					if st := parseStructSpecifier(sub, src, filename); st != nil {
						if st.Name == "" {
							if name := typedefName(child, src); name != "" {
								st.Name = name
							}
						}
						if st.Name != "" {
							result.Structs[st.Name] = st
						}
					}
				}
			}
		}
	}
}

func typedefName(typeDef *sitter.Node, src []byte) string {
	// the last identifier-ish child of a type_definition is the alias name
	var name string
	for j := 0; j < int(typeDef.NamedChildCount()); j++ {
		c := typeDef.NamedChild(j)
		if c.Type() == "type_identifier" {
			name = c.Content(src)
		}
	}
	return name
}

func parseTopLevelDeclaration(decl *sitter.Node, src []byte, filename string, result *model.ParseResult) {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		c := decl.NamedChild(i)
		if c.Type() == "struct_specifier" {
			if st := parseStructSpecifier(c, src, filename); st != nil {
				result.Structs[st.Name] = st
			}
		}
	}
}

func nodeLocation(n *sitter.Node, filename string) *model.Location {
	start := n.StartPoint()
	end := n.EndPoint()
	loc := model.WithRange(filename, int(start.Row)+1, int(start.Column), int(end.Row)+1, int(end.Column))
	return &loc
}

func parseFunctionDefinition(n *sitter.Node, src []byte, filename string) *model.FunctionDef {
	declarator := n.ChildByFieldName("declarator")
	if declarator == nil {
		return nil
	}
	name, params := extractFuncDeclarator(declarator, src)
	if name == "" {
		return nil
	}

	returnType := ""
	if t := n.ChildByFieldName("type"); t != nil {
		returnType = t.Content(src)
	}

	fn := &model.FunctionDef{
		Name:       name,
		ReturnType: returnType,
		Params:     params,
		Location:   nodeLocation(n, filename),
	}

	if body := n.ChildByFieldName("body"); body != nil {
		collectCalls(body, src, fn)
	}
	return fn
}

// extractFuncDeclarator descends through possible pointer_declarator
// wrappers (for functions returning a pointer type) to find the
// function_declarator, returning its name and parameter list.
func extractFuncDeclarator(n *sitter.Node, src []byte) (string, []model.Parameter) {
	switch n.Type() {
	case "function_declarator":
		nameNode := n.ChildByFieldName("declarator")
		name := ""
		if nameNode != nil {
			name = identifierText(nameNode, src)
		}
		var params []model.Parameter
		if pl := n.ChildByFieldName("parameters"); pl != nil {
			params = extractParameters(pl, src)
		}
		return name, params
	case "pointer_declarator":
		if d := n.ChildByFieldName("declarator"); d != nil {
			return extractFuncDeclarator(d, src)
		}
	}
	return "", nil
}

func identifierText(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier", "field_identifier", "type_identifier":
		return n.Content(src)
	case "pointer_declarator", "parenthesized_declarator":
		if d := n.ChildByFieldName("declarator"); d != nil {
			return identifierText(d, src)
		}
	}
	// fall back: last identifier child
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		if t := identifierText(n.NamedChild(i), src); t != "" {
			return t
		}
	}
	return ""
}

func extractParameters(paramList *sitter.Node, src []byte) []model.Parameter {
	var params []model.Parameter
	for i := 0; i < int(paramList.NamedChildCount()); i++ {
		p := paramList.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		typeText := ""
		if t := p.ChildByFieldName("type"); t != nil {
			typeText = t.Content(src)
		}
		name := ""
		if d := p.ChildByFieldName("declarator"); d != nil {
			name = identifierText(d, src)
		}
		params = append(params, model.Parameter{Name: name, Type: typeText})
	}
	return params
}

func parseStructSpecifier(n *sitter.Node, src []byte, filename string) *model.StructDef {
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = nameNode.Content(src)
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	st := &model.StructDef{Name: name, Location: nodeLocation(n, filename)}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		fd := body.NamedChild(i)
		if fd.Type() != "field_declaration" {
			continue
		}
		st.Fields = append(st.Fields, parseFieldDeclaration(fd, src)...)
	}
	return st
}

func parseFieldDeclaration(fd *sitter.Node, src []byte) []model.StructField {
	typeText := ""
	if t := fd.ChildByFieldName("type"); t != nil {
		typeText = t.Content(src)
	}
	typeNode := fd.ChildByFieldName("type")
	var fields []model.StructField
	for i := 0; i < int(fd.NamedChildCount()); i++ {
		d := fd.NamedChild(i)
		if d == typeNode || d.Type() == "type_qualifier" {
			continue
		}
		switch d.Type() {
		case "field_identifier":
			fields = append(fields, model.StructField{Name: d.Content(src), Type: typeText})
		case "pointer_declarator":
			name := identifierText(d, src)
			fields = append(fields, model.StructField{Name: name, Type: typeText, IsPointer: true})
		case "function_declarator":
			// R (*f)(P...) — function-pointer field
			inner := d.ChildByFieldName("declarator")
			name := ""
			if inner != nil {
				name = identifierText(inner, src)
			}
			sig := typeText + " (*)(" + paramTypesText(d, src) + ")"
			fields = append(fields, model.StructField{Name: name, Type: typeText, IsPointer: true, IsFunctionPtr: true, FuncPtrSignature: &sig})
		case "array_declarator":
			name := ""
			if inner := d.ChildByFieldName("declarator"); inner != nil {
				name = identifierText(inner, src)
			}
			fields = append(fields, model.StructField{Name: name, Type: typeText})
		}
	}
	return fields
}

func paramTypesText(funcDeclarator *sitter.Node, src []byte) string {
	pl := funcDeclarator.ChildByFieldName("parameters")
	if pl == nil {
		return ""
	}
	text := ""
	for i := 0; i < int(pl.NamedChildCount()); i++ {
		p := pl.NamedChild(i)
		if i > 0 {
			text += ", "
		}
		if t := p.ChildByFieldName("type"); t != nil {
			text += t.Content(src)
		}
	}
	return text
}

// collectCalls walks a function body recording the name of every direct
// call_expression target, deduplicated and sorted via FunctionDef.AddCall.
// Indirect call shapes (field_expression, parenthesized/subscript callee)
// are intentionally left unrecorded here — resolving them is the job of
// the pointer analysis, ops resolver, and callback analyser, not the
// parser collaborator.
func collectCalls(n *sitter.Node, src []byte, fn *model.FunctionDef) {
	if n.Type() == "call_expression" {
		if callee := n.ChildByFieldName("function"); callee != nil {
			if callee.Type() == "identifier" {
				fn.AddCall(callee.Content(src))
			}
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectCalls(n.Child(i), src, fn)
	}
}
