package learn

import (
	"testing"

	"github.com/flowsight/flowsight/typedb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCandidatesRanksPerfectMatchHighest(t *testing.T) {
	db := typedb.NewDatabase()
	db.AddType(typedb.FuncPtrType{Name: "handler_t", ReturnType: "int", ParamTypes: []string{"struct device*"}})
	db.AddFunction(typedb.FunctionSignature{Name: "exact_match", ReturnType: "int", ParamTypes: []string{"struct device*"}})
	db.AddFunction(typedb.FunctionSignature{Name: "wrong_arity", ReturnType: "int", ParamTypes: []string{"struct device*", "int"}})
	db.AddFunction(typedb.FunctionSignature{Name: "wrong_return", ReturnType: "void", ParamTypes: []string{"struct device*"}})

	finder := NewCandidateFinder(db)
	candidates := finder.FindCandidates("handler_t")
	require.NotEmpty(t, candidates)
	assert.Equal(t, "exact_match", candidates[0].Name)
	assert.Equal(t, 100, candidates[0].Score)

	for _, c := range candidates[1:] {
		assert.Less(t, c.Score, 100)
	}
}

func TestFindCandidatesUnknownTypeReturnsNil(t *testing.T) {
	db := typedb.NewDatabase()
	finder := NewCandidateFinder(db)
	assert.Nil(t, finder.FindCandidates("missing_type"))
}
