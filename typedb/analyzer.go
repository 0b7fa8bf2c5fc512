package typedb

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

var (
	typedefFuncPtrRe = regexp.MustCompile(`typedef\s+(\w[\w\s]*?)\s*\(\s*\*\s*(\w+)\s*\)\s*\(([^)]*)\)`)
	fieldFuncPtrRe   = regexp.MustCompile(`(\w[\w\s]*?)\s*\(\s*\*\s*(\w+)\s*\)\s*\(([^)]*)\)`)
)

// Analyzer walks a C AST (falling back to regex scans for the
// typedef/field-pointer sub-patterns, exactly as the original combines
// both techniques) and populates a Database.
type Analyzer struct {
	DB *Database
}

// NewAnalyzer returns an Analyzer backed by a fresh Database.
func NewAnalyzer() *Analyzer {
	return &Analyzer{DB: NewDatabase()}
}

// Analyze extracts typedefs, struct-field function pointers, function
// parameters, and function signatures from source.
func (a *Analyzer) Analyze(source string) *Database {
	a.collectTypedefs(source)

	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err == nil && tree != nil {
		src := []byte(source)
		root := tree.RootNode()
		a.collectStructFields(root, src)
		a.collectFunctionSignatures(root, src)
	}

	a.DB.BuildCompatibilityMap()
	return a.DB
}

func (a *Analyzer) collectTypedefs(source string) {
	for _, m := range typedefFuncPtrRe.FindAllStringSubmatch(source, -1) {
		returnType, name, paramsText := strings.TrimSpace(m[1]), m[2], m[3]
		a.DB.AddType(FuncPtrType{
			Name: name, ReturnType: returnType, ParamTypes: splitParamTypes(paramsText), DefKind: DefTypedef,
		})
	}
}

func splitParamTypes(paramsText string) []string {
	paramsText = strings.TrimSpace(paramsText)
	if paramsText == "" || paramsText == "void" {
		return nil
	}
	parts := strings.Split(paramsText, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, simplifyType(strings.TrimSpace(p)))
	}
	return out
}

// simplifyType strips a trailing parameter-name token, e.g.
// "int arg" -> "int" and "struct device *dev" -> "struct device *".
func simplifyType(param string) string {
	fields := strings.Fields(param)
	if len(fields) <= 1 {
		return param
	}
	last := fields[len(fields)-1]
	if name := strings.TrimLeft(last, "*"); name != last && isIdent(name) {
		return strings.Join(fields[:len(fields)-1], " ") + " " + last[:len(last)-len(name)]
	}
	if strings.HasPrefix(last, "*") || !isIdent(last) {
		return param
	}
	return strings.TrimSpace(strings.Join(fields[:len(fields)-1], " "))
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

func (a *Analyzer) collectStructFields(root *sitter.Node, src []byte) {
	walk(root, func(n *sitter.Node) {
		if n.Type() != "struct_specifier" {
			return
		}
		structName := ""
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			structName = nameNode.Content(src)
		}
		body := n.ChildByFieldName("body")
		if body == nil || structName == "" {
			return
		}
		for i := 0; i < int(body.NamedChildCount()); i++ {
			fd := body.NamedChild(i)
			if fd.Type() != "field_declaration" {
				continue
			}
			text := fd.Content(src)
			if !strings.Contains(text, "(*") {
				continue
			}
			if m := fieldFuncPtrRe.FindStringSubmatch(text); m != nil {
				key := structName + "." + m[2]
				a.DB.AddType(FuncPtrType{
					Name: key, ReturnType: strings.TrimSpace(m[1]), ParamTypes: splitParamTypes(m[3]), DefKind: DefStructField,
				})
			}
		}
	})
}

func (a *Analyzer) collectFunctionSignatures(root *sitter.Node, src []byte) {
	walk(root, func(n *sitter.Node) {
		if n.Type() != "function_definition" {
			return
		}
		declarator := n.ChildByFieldName("declarator")
		if declarator == nil {
			return
		}
		name, params := funcNameAndParamTypes(declarator, src)
		if name == "" {
			return
		}
		returnType := ""
		if t := n.ChildByFieldName("type"); t != nil {
			returnType = t.Content(src)
		}
		a.DB.AddFunction(FunctionSignature{Name: name, ReturnType: returnType, ParamTypes: params})
		a.collectFuncPtrParams(declarator, name, src)
	})
}

func funcNameAndParamTypes(declarator *sitter.Node, src []byte) (string, []string) {
	if declarator.Type() == "pointer_declarator" {
		if inner := declarator.ChildByFieldName("declarator"); inner != nil {
			return funcNameAndParamTypes(inner, src)
		}
	}
	if declarator.Type() != "function_declarator" {
		return "", nil
	}
	nameNode := declarator.ChildByFieldName("declarator")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	var params []string
	if pl := declarator.ChildByFieldName("parameters"); pl != nil {
		for i := 0; i < int(pl.NamedChildCount()); i++ {
			p := pl.NamedChild(i)
			if p.Type() != "parameter_declaration" {
				continue
			}
			if t := p.ChildByFieldName("type"); t != nil {
				typ := t.Content(src)
				for d := p.ChildByFieldName("declarator"); d != nil && d.Type() == "pointer_declarator"; d = d.ChildByFieldName("declarator") {
					typ += "*"
				}
				params = append(params, typ)
			}
		}
	}
	return name, params
}

// collectFuncPtrParams records any function-pointer-typed parameter under
// the key "FN::PARAM" (or "FN::paramN" if unnamed).
func (a *Analyzer) collectFuncPtrParams(declarator *sitter.Node, funcName string, src []byte) {
	if declarator.Type() == "pointer_declarator" {
		if inner := declarator.ChildByFieldName("declarator"); inner != nil {
			a.collectFuncPtrParams(inner, funcName, src)
		}
		return
	}
	if declarator.Type() != "function_declarator" {
		return
	}
	pl := declarator.ChildByFieldName("parameters")
	if pl == nil {
		return
	}
	for i := 0; i < int(pl.NamedChildCount()); i++ {
		p := pl.NamedChild(i)
		if p.Type() != "parameter_declaration" {
			continue
		}
		text := p.Content(src)
		if !strings.Contains(text, "(*") {
			continue
		}
		if m := fieldFuncPtrRe.FindStringSubmatch(text); m != nil {
			paramName := m[2]
			key := funcName + "::" + paramName
			a.DB.AddType(FuncPtrType{
				Name: key, ReturnType: strings.TrimSpace(m[1]), ParamTypes: splitParamTypes(m[3]), DefKind: DefFunctionParam,
			})
		}
	}
}

func walk(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}
