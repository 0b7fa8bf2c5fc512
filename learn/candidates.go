package learn

import (
	"sort"

	"github.com/flowsight/flowsight/typedb"
)

// Candidate is one scored function suggested as the resolution of an
// ambiguous function-pointer call.
type Candidate struct {
	Name  string
	Score int
}

// CandidateFinder ranks known functions against a function-pointer type's
// signature, for presenting to the user when a call site needs a manual
// answer.
type CandidateFinder struct {
	DB *typedb.Database
}

// NewCandidateFinder wraps a populated type database.
func NewCandidateFinder(db *typedb.Database) *CandidateFinder {
	return &CandidateFinder{DB: db}
}

// FindCandidates scores every known function against funcPtrTypeName's
// signature and returns those scoring above 0, ranked highest score first,
// ties broken by name. Scoring: +40 for a compatible return type, +30 for
// matching arity, and 30/arity (integer division) for each compatible
// parameter, so a perfect match scores 100 only when the arity divides 30.
func (f *CandidateFinder) FindCandidates(funcPtrTypeName string) []Candidate {
	t, ok := f.DB.FuncPtrTypes[funcPtrTypeName]
	if !ok {
		return nil
	}

	var out []Candidate
	for name, sig := range f.DB.FunctionSigs {
		score := scoreFunction(t, sig)
		if score > 0 {
			out = append(out, Candidate{Name: name, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func scoreFunction(t typedb.FuncPtrType, fn typedb.FunctionSignature) int {
	score := 0
	if typedb.TypesCompatible(t.ReturnType, fn.ReturnType) {
		score += 40
	}
	if len(t.ParamTypes) != len(fn.ParamTypes) {
		return score
	}
	score += 30
	if len(t.ParamTypes) == 0 {
		return score
	}
	perParam := 30 / len(t.ParamTypes)
	for i := range t.ParamTypes {
		if typedb.TypesCompatible(t.ParamTypes[i], fn.ParamTypes[i]) {
			score += perParam
		}
	}
	return score
}
