// Package callback detects generic, framework-agnostic callback patterns:
// field/array bindings, indirect invocations, registration calls, event
// loops, queue patterns, and signal/slot patterns — complementing the
// kernel-specific async and ops packages for everything else.
package callback

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// Binding is a struct/field/array assignment whose RHS is a known function.
type Binding struct {
	Target  string
	Handler string
	Line    int
}

// Invocation is an indirect call site via a field or subscript expression.
type Invocation struct {
	Expr string
	Line int
}

// Registration is a call whose name heuristically looks like a
// registration function and whose arguments include a known function.
type Registration struct {
	RegisterFunc string
	Handler      string
	Line         int
}

// EventLoop is a `while(1){ ... dispatch(); ... }` pattern.
type EventLoop struct {
	DispatchExpr string
	Line         int
}

// QueuePattern is a producer/consumer dispatch call (schedule_work,
// queue_work, ...).
type QueuePattern struct {
	EnqueueFunc    string
	DequeueFunc    string
	CallbackField  string
	Line           int
}

// SignalSlot is a signal/slot connection call (g_signal_connect, ...).
type SignalSlot struct {
	ConnectFunc string
	Signal      string
	Handler     string
	Line        int
}

// Analysis is the full result of one Analyze call.
type Analysis struct {
	Bindings      []Binding
	Invocations   []Invocation
	Registrations []Registration
	EventLoops    []EventLoop
	QueuePatterns []QueuePattern
	SignalSlots   []SignalSlot
	Resolved      map[string]map[string]bool
}

// Analyzer detects the patterns above against a set of known function
// names (so a plausible-looking RHS identifier is only treated as a
// handler when it really is a parsed function).
type Analyzer struct {
	Functions map[string]bool
}

// NewAnalyzer returns an Analyzer scoped to the given known function names.
func NewAnalyzer(functions map[string]bool) *Analyzer {
	return &Analyzer{Functions: functions}
}

var (
	registerNameRe = regexp.MustCompile(`(?i)(register|subscribe|connect|bind|attach|add_handler|set_callback|on_|listen)`)
	queueNameRe    = regexp.MustCompile(`^(queue_work|schedule_work|schedule_delayed_work|enqueue|push|add_task|submit|kthread_queue_work|queue_delayed_work|tasklet_schedule|tasklet_hi_schedule)$`)
	signalNameRe   = regexp.MustCompile(`^(connect|signal_connect|g_signal_connect|on|bind|subscribe|attach_handler|add_signal_handler|notify_register)$`)
	arrayIndexRe   = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// Analyze runs every pattern pass over source and returns the combined,
// resolved analysis.
func (a *Analyzer) Analyze(source string) *Analysis {
	result := &Analysis{Resolved: map[string]map[string]bool{}}

	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	if err != nil || tree == nil {
		return result
	}
	src := []byte(source)
	root := tree.RootNode()

	a.collectBindings(root, src, result)
	a.collectInvocations(root, src, result)
	a.collectRegistrations(root, src, result)
	a.collectEventLoops(root, src, result)
	a.collectQueuePatterns(root, src, result)
	a.collectSignalSlots(root, src, result)
	a.resolve(result)

	return result
}

func lineOf(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }

func (a *Analyzer) collectBindings(n *sitter.Node, src []byte, result *Analysis) {
	walk(n, func(node *sitter.Node) {
		if node.Type() != "assignment_expression" {
			return
		}
		lhs := node.ChildByFieldName("left")
		rhs := node.ChildByFieldName("right")
		if lhs == nil || rhs == nil || rhs.Type() != "identifier" {
			return
		}
		handler := rhs.Content(src)
		if !a.Functions[handler] {
			return
		}
		target := normalizeTarget(lhs.Content(src))
		result.Bindings = append(result.Bindings, Binding{Target: target, Handler: handler, Line: lineOf(node)})
	})
}

func (a *Analyzer) collectInvocations(n *sitter.Node, src []byte, result *Analysis) {
	walk(n, func(node *sitter.Node) {
		if node.Type() != "call_expression" {
			return
		}
		fn := node.ChildByFieldName("function")
		if fn == nil {
			return
		}
		if fn.Type() == "field_expression" || fn.Type() == "subscript_expression" {
			result.Invocations = append(result.Invocations, Invocation{
				Expr: normalizeTarget(fn.Content(src)), Line: lineOf(node),
			})
		}
	})
}

func (a *Analyzer) collectRegistrations(n *sitter.Node, src []byte, result *Analysis) {
	walk(n, func(node *sitter.Node) {
		if node.Type() != "call_expression" {
			return
		}
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Type() != "identifier" {
			return
		}
		name := fn.Content(src)
		if !registerNameRe.MatchString(name) {
			return
		}
		args := node.ChildByFieldName("arguments")
		if args == nil {
			return
		}
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "identifier" && a.Functions[arg.Content(src)] {
				result.Registrations = append(result.Registrations, Registration{
					RegisterFunc: name, Handler: arg.Content(src), Line: lineOf(node),
				})
			}
		}
	})
}

func (a *Analyzer) collectEventLoops(n *sitter.Node, src []byte, result *Analysis) {
	walk(n, func(node *sitter.Node) {
		if node.Type() != "while_statement" {
			return
		}
		cond := node.ChildByFieldName("condition")
		if cond == nil {
			return
		}
		condText := strings.TrimSpace(cond.Content(src))
		if condText != "(1)" && condText != "(true)" {
			return
		}
		body := node.ChildByFieldName("body")
		if body == nil {
			return
		}
		walk(body, func(inner *sitter.Node) {
			if inner.Type() != "call_expression" {
				return
			}
			fn := inner.ChildByFieldName("function")
			if fn != nil && fn.Type() == "subscript_expression" {
				result.EventLoops = append(result.EventLoops, EventLoop{
					DispatchExpr: normalizeTarget(fn.Content(src)), Line: lineOf(inner),
				})
			}
		})
	})
}

func (a *Analyzer) collectQueuePatterns(n *sitter.Node, src []byte, result *Analysis) {
	walk(n, func(node *sitter.Node) {
		if node.Type() != "call_expression" {
			return
		}
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Type() != "identifier" {
			return
		}
		name := fn.Content(src)
		if !queueNameRe.MatchString(name) {
			return
		}
		result.QueuePatterns = append(result.QueuePatterns, QueuePattern{EnqueueFunc: name, Line: lineOf(node)})
	})
}

func (a *Analyzer) collectSignalSlots(n *sitter.Node, src []byte, result *Analysis) {
	walk(n, func(node *sitter.Node) {
		if node.Type() != "call_expression" {
			return
		}
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Type() != "identifier" {
			return
		}
		name := fn.Content(src)
		if !signalNameRe.MatchString(name) {
			return
		}
		args := node.ChildByFieldName("arguments")
		ss := SignalSlot{ConnectFunc: name, Line: lineOf(node)}
		if args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				arg := args.NamedChild(i)
				if arg.Type() == "identifier" && a.Functions[arg.Content(src)] {
					ss.Handler = arg.Content(src)
				}
				if arg.Type() == "string_literal" {
					ss.Signal = arg.Content(src)
				}
			}
		}
		result.SignalSlots = append(result.SignalSlots, ss)
	})
}

// resolve matches each invocation expression against bindings by exact
// equality or by sharing the same array base, populating Resolved.
func (a *Analyzer) resolve(result *Analysis) {
	for _, inv := range result.Invocations {
		for _, b := range result.Bindings {
			if targetsMatch(inv.Expr, b.Target) {
				set, ok := result.Resolved[inv.Expr]
				if !ok {
					set = map[string]bool{}
					result.Resolved[inv.Expr] = set
				}
				set[b.Handler] = true
			}
		}
	}
}

func targetsMatch(invExpr, bindTarget string) bool {
	if invExpr == bindTarget {
		return true
	}
	invBase := strings.SplitN(invExpr, "[", 2)[0]
	bindBase := strings.SplitN(bindTarget, "[", 2)[0]
	return invBase != "" && invBase == bindBase && strings.Contains(invExpr, "[") && strings.Contains(bindTarget, "[")
}

// normalizeTarget strips whitespace and generalises array indices, literal
// or variable, to "[*]" so "handlers[0]", "handlers[7]" and "handlers[i]"
// are recognised as the same dispatch site.
func normalizeTarget(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	return arrayIndexRe.ReplaceAllString(s, "[*]")
}

func walk(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}
