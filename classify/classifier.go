// Package classify assigns a human-facing confidence label to every
// resolved call-graph relationship. Its Confidence vocabulary
// (Certain/Possible/Unknown) is distinct from model.Confidence
// (High/Medium/Low), which instead rates a single indirect-call candidate.
package classify

import "fmt"

// Confidence is the overall certainty of a classified call-graph edge.
type Confidence int

const (
	Unknown Confidence = iota
	Possible
	Certain
)

func (c Confidence) String() string {
	switch c {
	case Certain:
		return "Certain"
	case Possible:
		return "Possible"
	default:
		return "Unknown"
	}
}

// Symbol returns a short glyph for UI rendering.
func (c Confidence) Symbol() string {
	switch c {
	case Certain:
		return "●"
	case Possible:
		return "◐"
	default:
		return "○"
	}
}

// Reason tags why a target was classified the way it was.
type Reason string

const (
	ReasonDirectCall          Reason = "DirectCall"
	ReasonKnownAsyncMechanism Reason = "KnownAsyncMechanism"
	ReasonOpsTableAssignment  Reason = "OpsTableAssignment"
	ReasonVariableAssignment  Reason = "VariableAssignment"
	ReasonConditionalAssign   Reason = "ConditionalAssignment"
	ReasonArrayIndex          Reason = "ArrayIndex"
	ReasonExternalLibrary     Reason = "ExternalLibrary"
	ReasonComplexIndirectCall Reason = "ComplexIndirectCall"
	ReasonUserAnnotation      Reason = "UserAnnotation"
)

// DefaultConfidence is the confidence a reason implies absent any
// overriding evidence.
func (r Reason) DefaultConfidence() Confidence {
	switch r {
	case ReasonDirectCall, ReasonUserAnnotation:
		return Certain
	case ReasonKnownAsyncMechanism, ReasonOpsTableAssignment:
		return Certain
	case ReasonVariableAssignment:
		return Certain
	case ReasonConditionalAssign, ReasonArrayIndex:
		return Possible
	case ReasonExternalLibrary, ReasonComplexIndirectCall:
		return Unknown
	default:
		return Unknown
	}
}

func (r Reason) Description() string {
	switch r {
	case ReasonDirectCall:
		return "direct call"
	case ReasonKnownAsyncMechanism:
		return "bound via a recognised async mechanism"
	case ReasonOpsTableAssignment:
		return "assigned in a known ops table"
	case ReasonVariableAssignment:
		return "assigned directly to a variable"
	case ReasonConditionalAssign:
		return "assigned under more than one branch"
	case ReasonArrayIndex:
		return "dispatched through an array index"
	case ReasonExternalLibrary:
		return "resolved to an external library call"
	case ReasonComplexIndirectCall:
		return "complex indirect call expression"
	case ReasonUserAnnotation:
		return "confirmed by a user annotation"
	default:
		return string(r)
	}
}

// ClassifiedTarget is one candidate callee of a classified edge.
type ClassifiedTarget struct {
	Name       string
	Confidence Confidence
	Reason     Reason
}

// ClassifiedEdge is a call relationship normalised into one-or-more
// candidate targets plus an overall confidence (the minimum over targets).
type ClassifiedEdge struct {
	Caller           string
	CallSite         string
	Targets          []ClassifiedTarget
	OverallConfidence Confidence
}

func newEdge(caller, callSite string, targets []ClassifiedTarget) ClassifiedEdge {
	overall := Certain
	for _, t := range targets {
		if t.Confidence < overall {
			overall = t.Confidence
		}
	}
	return ClassifiedEdge{Caller: caller, CallSite: callSite, Targets: targets, OverallConfidence: overall}
}

// UserAnnotation records a user's manual resolution of an ambiguous call
// site: the call-site key, the confirmed targets and an optional note.
type UserAnnotation struct {
	CallSite string
	Targets  []string
	Note     string
}

// Summary aggregates classification statistics across a set of edges.
type Summary struct {
	Total             int
	CertainCount      int
	PossibleCount     int
	UnknownCount      int
	CertainPercentage int
}

func (s Summary) String() string {
	return fmt.Sprintf("Analysis: %d edges (%d certain [%d%%], %d possible, %d unknown)",
		s.Total, s.CertainCount, s.CertainPercentage, s.PossibleCount, s.UnknownCount)
}

// Classifier turns resolved call-graph facts into ClassifiedEdges.
type Classifier struct {
	knownMechanisms map[string]bool
	knownOpsTypes   map[string]bool
	annotations     []UserAnnotation
}

// NewClassifier returns a Classifier preloaded with the well-known kernel
// async mechanisms and ops-table types.
func NewClassifier() *Classifier {
	return &Classifier{
		knownMechanisms: map[string]bool{
			"INIT_WORK": true, "INIT_DELAYED_WORK": true, "timer_setup": true,
			"setup_timer": true, "tasklet_init": true, "request_irq": true,
			"request_threaded_irq": true, "kthread_create": true,
		},
		knownOpsTypes: map[string]bool{
			"file_operations": true, "usb_driver": true, "i2c_driver": true,
			"platform_driver": true, "pci_driver": true,
		},
	}
}

// ClassifyDirectCall always returns Certain.
func (c *Classifier) ClassifyDirectCall(caller, callSite, target string) ClassifiedEdge {
	return newEdge(caller, callSite, []ClassifiedTarget{{Name: target, Confidence: Certain, Reason: ReasonDirectCall}})
}

// ClassifyAsyncBinding returns Certain if mechanism is one of the
// well-known registration calls, Possible otherwise.
func (c *Classifier) ClassifyAsyncBinding(caller, callSite, target, mechanism string) ClassifiedEdge {
	conf := Possible
	if c.knownMechanisms[mechanism] {
		conf = Certain
	}
	return newEdge(caller, callSite, []ClassifiedTarget{{Name: target, Confidence: conf, Reason: ReasonKnownAsyncMechanism}})
}

// ClassifyFuncPtrCall implements P5: zero targets -> Unknown, one target
// -> Certain, two or more -> Possible.
func (c *Classifier) ClassifyFuncPtrCall(caller, callSite string, targets []string) ClassifiedEdge {
	if len(targets) == 0 {
		return newEdge(caller, callSite, []ClassifiedTarget{{Name: "", Confidence: Unknown, Reason: ReasonComplexIndirectCall}})
	}
	conf := Certain
	reason := ReasonVariableAssignment
	if len(targets) > 1 {
		conf = Possible
		reason = ReasonConditionalAssign
	}
	out := make([]ClassifiedTarget, 0, len(targets))
	for _, t := range targets {
		out = append(out, ClassifiedTarget{Name: t, Confidence: conf, Reason: reason})
	}
	return newEdge(caller, callSite, out)
}

// ClassifyOpsCallback returns Certain for well-known ops-table types,
// Possible otherwise.
func (c *Classifier) ClassifyOpsCallback(caller, callSite, target, opsType string) ClassifiedEdge {
	conf := Possible
	if c.knownOpsTypes[opsType] {
		conf = Certain
	}
	return newEdge(caller, callSite, []ClassifiedTarget{{Name: target, Confidence: conf, Reason: ReasonOpsTableAssignment}})
}

// ApplyAnnotation overrides any prior classification at callSite with
// Certain, keyed by exact call-site match.
func (c *Classifier) ApplyAnnotation(a UserAnnotation) ClassifiedEdge {
	c.annotations = append(c.annotations, a)
	out := make([]ClassifiedTarget, 0, len(a.Targets))
	for _, t := range a.Targets {
		out = append(out, ClassifiedTarget{Name: t, Confidence: Certain, Reason: ReasonUserAnnotation})
	}
	return newEdge("", a.CallSite, out)
}

// FindAnnotation looks up a prior annotation by exact call-site key.
func (c *Classifier) FindAnnotation(callSite string) (UserAnnotation, bool) {
	for _, a := range c.annotations {
		if a.CallSite == callSite {
			return a, true
		}
	}
	return UserAnnotation{}, false
}

// Summarize aggregates a batch of classified edges.
func Summarize(edges []ClassifiedEdge) Summary {
	s := Summary{Total: len(edges)}
	for _, e := range edges {
		switch e.OverallConfidence {
		case Certain:
			s.CertainCount++
		case Possible:
			s.PossibleCount++
		default:
			s.UnknownCount++
		}
	}
	if s.Total > 0 {
		s.CertainPercentage = s.CertainCount * 100 / s.Total
	}
	return s
}
