package pointer

import "strings"

const maxIterations = 1000

// AndersenSolver accumulates constraints and solves them to a fixed point.
type AndersenSolver struct {
	constraints []Constraint
	pts         map[string]map[string]bool
}

// NewSolver returns an empty solver ready to accept constraints.
func NewSolver() *AndersenSolver {
	return &AndersenSolver{pts: map[string]map[string]bool{}}
}

// Add appends one constraint.
func (s *AndersenSolver) Add(c Constraint) {
	s.constraints = append(s.constraints, c)
}

// AddAll appends every constraint in cs.
func (s *AndersenSolver) AddAll(cs []Constraint) {
	s.constraints = append(s.constraints, cs...)
}

func (s *AndersenSolver) addToPts(key, target string) bool {
	set, ok := s.pts[key]
	if !ok {
		set = map[string]bool{}
		s.pts[key] = set
	}
	if set[target] {
		return false
	}
	set[target] = true
	return true
}

func (s *AndersenSolver) unionPts(destKey, srcKey string) bool {
	src := s.pts[srcKey]
	if len(src) == 0 {
		return false
	}
	changed := false
	for t := range src {
		if s.addToPts(destKey, t) {
			changed = true
		}
	}
	return changed
}

func (s *AndersenSolver) initialize() {
	for _, c := range s.constraints {
		if c.Kind == AddressOf {
			s.addToPts(c.Pointer.Key(), c.Target.Key())
		}
	}
}

// Solve runs the constraint set to a fixed point, or until the safety
// ceiling of 1,000 iterations is hit — a bug signal, not a normal
// outcome, so solving never loops forever. It returns a PointsToResult
// whose function-target view excludes allocation sites and field-qualified
// keys.
func (s *AndersenSolver) Solve() *PointsToResult {
	s.initialize()

	for iteration := 0; iteration < maxIterations; iteration++ {
		changed := false
		for _, c := range s.constraints {
			if s.apply(c) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return s.buildResult()
}

func (s *AndersenSolver) apply(c Constraint) bool {
	switch c.Kind {
	case AddressOf:
		return false // handled in initialize
	case Copy:
		return s.flowInto(c.Dest.Key(), c.Src)
	case Load:
		changed := false
		for o := range s.pts[c.SrcPtr.Key()] {
			if s.unionPts(c.Dest.Key(), o) {
				changed = true
			}
		}
		return changed
	case Store:
		changed := false
		for o := range s.pts[c.DestPtr.Key()] {
			if s.flowInto(o, c.Src) {
				changed = true
			}
		}
		return changed
	case FieldLoad:
		changed := false
		for base := range s.pts[c.BasePtr.Key()] {
			fieldKey := base + "." + c.Field
			if s.unionPts(c.Dest.Key(), fieldKey) {
				changed = true
			}
		}
		return changed
	case FieldStore:
		changed := false
		for base := range s.pts[c.BasePtr.Key()] {
			fieldKey := base + "." + c.Field
			if s.flowInto(fieldKey, c.Src) {
				changed = true
			}
		}
		return changed
	case ArrayStore:
		return s.flowInto(c.Array.Key(), c.Src)
	case ArrayLoad:
		return s.unionPts(c.Dest.Key(), c.Array.Key())
	}
	return false
}

// flowInto adds src's points-to set to destKey. A Function location is its
// own value (a function name denotes its address), so its key is added
// directly.
func (s *AndersenSolver) flowInto(destKey string, src Location) bool {
	if src.Kind == KindFunction {
		return s.addToPts(destKey, src.Key())
	}
	return s.unionPts(destKey, src.Key())
}

func (s *AndersenSolver) buildResult() *PointsToResult {
	result := &PointsToResult{
		PointsTo:       map[string]map[string]bool{},
		FuncPtrTargets: map[string]map[string]bool{},
	}
	for key, set := range s.pts {
		copied := map[string]bool{}
		for t := range set {
			copied[t] = true
		}
		result.PointsTo[key] = copied

		funcTargets := map[string]bool{}
		for t := range set {
			if strings.HasPrefix(t, "alloc:") || strings.Contains(t, ".") {
				continue
			}
			funcTargets[t] = true
		}
		if len(funcTargets) > 0 {
			result.FuncPtrTargets[key] = funcTargets
		}
	}
	return result
}
