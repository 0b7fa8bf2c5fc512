package eval

// Verdict is a condition's symbolic truth value.
type Verdict int

const (
	AlwaysTrue Verdict = iota
	AlwaysFalse
	VerdictUnknown
)

func (v Verdict) String() string {
	switch v {
	case AlwaysTrue:
		return "AlwaysTrue"
	case AlwaysFalse:
		return "AlwaysFalse"
	default:
		return "Unknown"
	}
}

// Propagator classifies a condition's truth value given symbolic
// bindings. It first gives definitive answers for pointer null checks,
// then uses real interval arithmetic for a comparison against a
// Range-typed binding (instead of the direct evaluator's midpoint
// collapse), and only then evaluates the condition directly.
type Propagator struct {
	vars Bindings
}

// NewPropagator returns a Propagator over the given bindings.
func NewPropagator(vars Bindings) *Propagator {
	return &Propagator{vars: vars}
}

// Classify evaluates cond and reports its symbolic verdict.
func (p *Propagator) Classify(cond string) Verdict {
	if v, ok := p.classifyNullCheck(cond); ok {
		return v
	}
	if v, ok := p.classifyRangeComparison(cond); ok {
		return v
	}

	result := Eval(cond, p.vars)
	switch result.Kind {
	case KindBool:
		if result.Bool {
			return AlwaysTrue
		}
		return AlwaysFalse
	case KindInt:
		if result.Int != 0 {
			return AlwaysTrue
		}
		return AlwaysFalse
	case KindNull:
		return AlwaysFalse
	default:
		return VerdictUnknown
	}
}

// classifyNullCheck recognises "x == NULL", "x != NULL", "!x" and "x"
// (bare pointer truthiness) patterns and answers definitively when x is
// bound to a known Pointer-shaped value encoded as Int(0) (null) or
// Int(non-zero) (non-null) — the Go encoding of the original's
// Pointer{is_null} variant.
func (p *Propagator) classifyNullCheck(cond string) (Verdict, bool) {
	trimmed := stripOuterParens(cond)
	negate := false
	if len(trimmed) > 0 && trimmed[0] == '!' {
		negate = true
		trimmed = stripOuterParens(trimmed[1:])
	}

	ident, wantNull, matched := parseNullComparison(trimmed)
	if !matched {
		return VerdictUnknown, false
	}
	v, ok := p.vars.lookup(ident)
	if !ok || v.Kind != KindInt {
		return VerdictUnknown, false
	}
	isNull := v.Int == 0
	result := isNull == wantNull
	if negate {
		result = !result
	}
	if result {
		return AlwaysTrue, true
	}
	return AlwaysFalse, true
}

func parseNullComparison(s string) (ident string, wantNull bool, ok bool) {
	for _, op := range []string{"==", "!="} {
		if idx := indexOf(s, op); idx != -1 {
			left := trimSpace(s[:idx])
			right := trimSpace(s[idx+len(op):])
			if isNullLiteral(right) {
				return left, op == "==", true
			}
			if isNullLiteral(left) {
				return right, op == "==", true
			}
			return "", false, false
		}
	}
	id := trimSpace(s)
	if id == "" || !isIdentStart(id[0]) {
		return "", false, false
	}
	return id, false, true // bare "ptr" truthy check: non-null is "true"
}

func isNullLiteral(s string) bool {
	s = trimSpace(s)
	return s == "NULL" || s == "nullptr" || s == "null" || s == "0"
}

// classifyRangeComparison handles "x < N", "x <= N", "x > N", "x >= N"
// against a Range-bound variable using true interval arithmetic: the
// comparison is decidable only if every value in the range agrees.
func (p *Propagator) classifyRangeComparison(cond string) (Verdict, bool) {
	for _, op := range []string{"<=", ">=", "<", ">"} {
		idx := indexOf(cond, op)
		if idx == -1 {
			continue
		}
		if (op == "<" || op == ">") && isShiftAt(cond, idx) {
			continue
		}
		left := trimSpace(cond[:idx])
		right := trimSpace(cond[idx+len(op):])
		v, ok := p.vars.lookup(left)
		if !ok || v.Kind != KindRange {
			continue
		}
		bound := Eval(right, p.vars)
		n, ok := bound.AsInt64()
		if !ok {
			continue
		}
		return rangeVerdict(v.RangeLo, v.RangeHi, op, n), true
	}
	return VerdictUnknown, false
}

// isShiftAt reports whether the single-char relational operator at idx is
// actually one half of a "<<" or ">>" shift operator.
func isShiftAt(cond string, idx int) bool {
	c := cond[idx]
	return (idx+1 < len(cond) && cond[idx+1] == c) || (idx > 0 && cond[idx-1] == c)
}

func rangeVerdict(lo, hi int64, op string, n int64) Verdict {
	var allTrue, allFalse bool
	switch op {
	case "<":
		allTrue, allFalse = hi < n, lo >= n
	case "<=":
		allTrue, allFalse = hi <= n, lo > n
	case ">":
		allTrue, allFalse = lo > n, hi <= n
	case ">=":
		allTrue, allFalse = lo >= n, hi < n
	}
	switch {
	case allTrue:
		return AlwaysTrue
	case allFalse:
		return AlwaysFalse
	default:
		return VerdictUnknown
	}
}

func stripOuterParens(s string) string {
	s = trimSpace(s)
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && balanced(s) {
		s = trimSpace(s[1 : len(s)-1])
	}
	return s
}

func balanced(s string) bool {
	depth := 0
	for i, c := range s {
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			// avoid matching inside "==" when searching for "=" etc; here
			// sub is always >=1 char and callers pass disjoint operator sets.
			return i
		}
	}
	return -1
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
