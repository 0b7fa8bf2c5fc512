// Package ops resolves kernel ops-table struct initializers
// ("static struct file_operations fops = { .open = my_open, ... }") into
// (TYPE.field, function) bindings.
package ops

import (
	"regexp"
	"strings"

	"github.com/flowsight/flowsight/model"
)

var structInitRe = regexp.MustCompile(`(?s)(?:static\s+)?(?:const\s+)?struct\s+(\w+)\s+\w+\s*=\s*\{([^}]+)\}`)
var fieldAssignRe = regexp.MustCompile(`\.(\w+)\s*=\s*(\w+)`)

// Resolver extracts ops-table bindings from raw source text.
type Resolver struct{}

// NewResolver returns a ready-to-use Resolver.
func NewResolver() *Resolver { return &Resolver{} }

// AnalyzeOpsTables scans source for struct-literal initializers and
// returns a map of "TYPE.field" -> function name for every pair whose
// function is present in the known-functions map. Matched handlers are
// marked IsCallback with CallbackContext set to the context key.
func (r *Resolver) AnalyzeOpsTables(source string, functions map[string]*model.FunctionDef) map[string]string {
	result := map[string]string{}
	for _, m := range structInitRe.FindAllStringSubmatch(source, -1) {
		structType, body := m[1], m[2]
		for _, fm := range fieldAssignRe.FindAllStringSubmatch(body, -1) {
			field, funcName := fm[1], fm[2]
			fn, ok := functions[funcName]
			if !ok {
				continue
			}
			context := structType + "." + field
			result[context] = funcName
			fn.IsCallback = true
			fn.CallbackContext = context
		}
	}
	return result
}

// ResolveIndirectCall checks whether the textual callee expression accesses
// the field of a known "TYPE.field" ops-table context, e.g.
// "fops->open(inode, file)" or "fops.open(...)" matches
// "file_operations.open". Only the field name is compared: the type of the
// accessed variable is not checked, and when several contexts share a field
// name, which of them is returned is not defined.
func ResolveIndirectCall(calleeExpr string, opsMappings map[string]string) (string, bool) {
	if i := strings.Index(calleeExpr, "("); i >= 0 {
		calleeExpr = calleeExpr[:i]
	}
	calleeExpr = strings.TrimSpace(calleeExpr)
	for context, target := range opsMappings {
		field := context[strings.LastIndex(context, ".")+1:]
		if strings.HasSuffix(calleeExpr, "->"+field) || strings.HasSuffix(calleeExpr, "."+field) {
			return target, true
		}
	}
	return "", false
}

// WellKnownOpsTypes is the set of kernel ops-table types whose callback
// resolution is treated as Certain rather than Possible by the classifier.
var WellKnownOpsTypes = map[string]bool{
	"file_operations": true,
	"usb_driver":      true,
	"i2c_driver":      true,
	"platform_driver": true,
	"pci_driver":      true,
}
