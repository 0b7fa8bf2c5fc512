package model

import "sort"

// Parameter is a single function parameter: name plus raw C type text.
type Parameter struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// FunctionDef is the canonical representation of a parsed C function.
//
// Invariant: every name in Calls is either the name of another FunctionDef
// in the same ParseResult, or an external (kernel API / library) name.
type FunctionDef struct {
	Name             string     `json:"name" yaml:"name"`
	ReturnType       string     `json:"returnType" yaml:"returnType"`
	Params           []Parameter `json:"params" yaml:"params"`
	Location         *Location  `json:"location,omitempty" yaml:"location,omitempty"`
	Calls            []string   `json:"calls" yaml:"calls"`
	Callers          []string   `json:"callers,omitempty" yaml:"callers,omitempty"`
	IsCallback       bool       `json:"isCallback" yaml:"isCallback"`
	CallbackContext  string     `json:"callbackContext,omitempty" yaml:"callbackContext,omitempty"`
	Attributes       []string   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// AddCall records a unique, sorted outgoing call.
func (f *FunctionDef) AddCall(name string) {
	for _, c := range f.Calls {
		if c == name {
			return
		}
	}
	f.Calls = append(f.Calls, name)
	sort.Strings(f.Calls)
}

// AddCaller records a unique incoming caller, populated during the
// call-graph pass.
func (f *FunctionDef) AddCaller(name string) {
	for _, c := range f.Callers {
		if c == name {
			return
		}
	}
	f.Callers = append(f.Callers, name)
	sort.Strings(f.Callers)
}

// StructField describes one member of a StructDef.
type StructField struct {
	Name            string  `json:"name" yaml:"name"`
	Type            string  `json:"type" yaml:"type"`
	IsPointer       bool    `json:"isPointer" yaml:"isPointer"`
	IsFunctionPtr   bool    `json:"isFunctionPtr" yaml:"isFunctionPtr"`
	FuncPtrSignature *string `json:"funcPtrSignature,omitempty" yaml:"funcPtrSignature,omitempty"`
	ArraySize       *int    `json:"arraySize,omitempty" yaml:"arraySize,omitempty"`
}

// StructDef is the canonical representation of a parsed C struct.
type StructDef struct {
	Name             string        `json:"name" yaml:"name"`
	Fields           []StructField `json:"fields" yaml:"fields"`
	Location         *Location     `json:"location,omitempty" yaml:"location,omitempty"`
	ReferencedStructs []string     `json:"referencedStructs,omitempty" yaml:"referencedStructs,omitempty"`
}

// DeriveReferencedStructs scans field types for other struct names and
// deduplicates them into ReferencedStructs.
func (s *StructDef) DeriveReferencedStructs(knownStructs map[string]bool) {
	seen := map[string]bool{}
	var out []string
	for _, f := range s.Fields {
		for name := range knownStructs {
			if name == s.Name {
				continue
			}
			if containsWord(f.Type, name) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	s.ReferencedStructs = out
}

func containsWord(haystack, word string) bool {
	for i := 0; i+len(word) <= len(haystack); i++ {
		if haystack[i:i+len(word)] != word {
			continue
		}
		before := byte(' ')
		if i > 0 {
			before = haystack[i-1]
		}
		after := byte(' ')
		if i+len(word) < len(haystack) {
			after = haystack[i+len(word)]
		}
		if !isIdentChar(before) && !isIdentChar(after) {
			return true
		}
	}
	return false
}

func isIdentChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// ParseResult is the output of the parser collaborator for one source file.
type ParseResult struct {
	Functions map[string]*FunctionDef `json:"functions"`
	Structs   map[string]*StructDef   `json:"structs"`
	Errors    []string                `json:"errors,omitempty"`
}

// NewParseResult returns an empty, ready-to-populate result.
func NewParseResult() *ParseResult {
	return &ParseResult{
		Functions: map[string]*FunctionDef{},
		Structs:   map[string]*StructDef{},
	}
}

// Merge folds other into r, later entries overwriting earlier ones on name
// collision (mirrors the original's flatten-by-extend merge semantics).
func (r *ParseResult) Merge(other *ParseResult) {
	for name, fn := range other.Functions {
		r.Functions[name] = fn
	}
	for name, st := range other.Structs {
		r.Structs[name] = st
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// Confidence expresses how compatible a candidate indirect-call target is,
// used only inside CallType.Indirect. Distinct from classify.Confidence,
// which labels the overall call-graph edge rather than a single candidate.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "High"
	case ConfidenceMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// AsyncMechanism tags the kernel async-dispatch mechanism an AsyncBinding
// was recognised from.
type AsyncMechanism struct {
	Kind           AsyncKind `json:"kind" yaml:"kind"`
	Delayed        bool      `json:"delayed,omitempty" yaml:"delayed,omitempty"`
	HighResolution bool      `json:"highResolution,omitempty" yaml:"highResolution,omitempty"`
	Threaded       bool      `json:"threaded,omitempty" yaml:"threaded,omitempty"`
	Custom         string    `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// AsyncKind enumerates the recognised async mechanisms.
type AsyncKind string

const (
	AsyncWorkQueue    AsyncKind = "WorkQueue"
	AsyncTimer        AsyncKind = "Timer"
	AsyncInterrupt    AsyncKind = "Interrupt"
	AsyncTasklet      AsyncKind = "Tasklet"
	AsyncSoftirq      AsyncKind = "Softirq"
	AsyncKThread      AsyncKind = "KThread"
	AsyncRcuCallback  AsyncKind = "RcuCallback"
	AsyncNotifier     AsyncKind = "Notifier"
	AsyncCompletion   AsyncKind = "Completion"
	AsyncWaitqueue    AsyncKind = "Waitqueue"
	AsyncIrqWork      AsyncKind = "IrqWork"
	AsyncCustom       AsyncKind = "Custom"
)

// Tag renders a stable string identifying this mechanism, used as the
// callback-context tag ("async_<mechanism>") on bound handler functions.
func (m AsyncMechanism) Tag() string {
	switch m.Kind {
	case AsyncWorkQueue:
		if m.Delayed {
			return "async_WorkQueue{delayed:true}"
		}
		return "async_WorkQueue{delayed:false}"
	case AsyncTimer:
		if m.HighResolution {
			return "async_Timer{highResolution:true}"
		}
		return "async_Timer{highResolution:false}"
	case AsyncInterrupt:
		if m.Threaded {
			return "async_Interrupt{threaded:true}"
		}
		return "async_Interrupt{threaded:false}"
	case AsyncCustom:
		return "async_Custom(" + m.Custom + ")"
	default:
		return "async_" + string(m.Kind)
	}
}

// ExecutionContext is the kernel execution context a handler runs in.
type ExecutionContext string

const (
	ContextProcess ExecutionContext = "Process"
	ContextSoftIrq ExecutionContext = "SoftIrq"
	ContextHardIrq ExecutionContext = "HardIrq"
	ContextUser    ExecutionContext = "User"
	ContextUnknown ExecutionContext = "Unknown"
)

// CanSleep reports whether code running in this context may block.
func (c ExecutionContext) CanSleep() bool {
	return c == ContextProcess || c == ContextUser
}

// AsyncBinding records a handler bound to a kernel async-dispatch
// mechanism, e.g. a work_struct initialised with INIT_WORK.
type AsyncBinding struct {
	Mechanism       AsyncMechanism   `json:"mechanism" yaml:"mechanism"`
	Variable        string           `json:"variable" yaml:"variable"`
	Handler         string           `json:"handler" yaml:"handler"`
	BindLocation    Location         `json:"bindLocation" yaml:"bindLocation"`
	TriggerLocations []Location      `json:"triggerLocations" yaml:"triggerLocations"`
	Context         ExecutionContext `json:"context" yaml:"context"`
}

// CallTypeKind tags the kind of a CallEdge.
type CallTypeKind string

const (
	CallDirect   CallTypeKind = "Direct"
	CallIndirect CallTypeKind = "Indirect"
	CallAsync    CallTypeKind = "Async"
)

// CallType is the tagged payload of a CallEdge.
type CallType struct {
	Kind       CallTypeKind   `json:"kind" yaml:"kind"`
	Confidence Confidence     `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Mechanism  AsyncMechanism `json:"mechanism,omitempty" yaml:"mechanism,omitempty"`
}

// CallEdge is one resolved relationship between a caller and a callee.
type CallEdge struct {
	Caller   string    `json:"caller" yaml:"caller"`
	Callee   string    `json:"callee" yaml:"callee"`
	Site     *Location `json:"site,omitempty" yaml:"site,omitempty"`
	CallType CallType  `json:"callType" yaml:"callType"`
}

// FlowNodeType tags the kind of a FlowNode.
type FlowNodeType string

const (
	NodeFunction        FlowNodeType = "Function"
	NodeEntryPoint      FlowNodeType = "EntryPoint"
	NodeAsyncCallback   FlowNodeType = "AsyncCallback"
	NodeKernelAPI       FlowNodeType = "KernelApi"
	NodeExternal        FlowNodeType = "External"
	NodeRecursionRef    FlowNodeType = "RecursionReference"
)

// FlowNode is one node of a reconstructed execution-flow tree.
type FlowNode struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	DisplayName     string          `json:"displayName" yaml:"displayName"`
	Location        *Location       `json:"location,omitempty" yaml:"location,omitempty"`
	NodeType        FlowNodeType    `json:"nodeType" yaml:"nodeType"`
	Mechanism       *AsyncMechanism `json:"mechanism,omitempty" yaml:"mechanism,omitempty"`
	Children        []*FlowNode     `json:"children" yaml:"children"`
	Description     string          `json:"description,omitempty" yaml:"description,omitempty"`
	ConfidenceLabel string          `json:"confidenceLabel,omitempty" yaml:"confidenceLabel,omitempty"`
	Reachable       *bool           `json:"reachable,omitempty" yaml:"reachable,omitempty"`
}

// Clone returns a shallow copy of the node with an independent children
// slice, used by the scenario executor so annotation never mutates the
// tree it was given.
func (n *FlowNode) Clone() *FlowNode {
	cp := *n
	cp.Children = make([]*FlowNode, len(n.Children))
	copy(cp.Children, n.Children)
	return &cp
}
