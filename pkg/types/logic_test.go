package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/kaosdraw/pkg/types"
)

func leaf(id string, role types.FunctionRole, text string) *types.LogicNode {
	f, ok := types.ParseFunction(role, text)
	if !ok {
		panic("unparseable test function: " + text)
	}
	return &types.LogicNode{Leaf: &types.LogicLeaf{Identifier: id, Function: f}}
}

func TestLogicNode_String(t *testing.T) {
	a := leaf("G2", types.RoleUtility, "x > 5")
	b := leaf("G3", types.RoleUtility, "y < 2")
	c := leaf("O1", types.RoleOperating, "has fire")

	tests := []struct {
		name string
		node *types.LogicNode
		want string
	}{
		{"nil", nil, ""},
		{"leaf", a, "x > 5"},
		{"and", &types.LogicNode{Op: types.OpAnd, Identifier: "G1", Children: []*types.LogicNode{a, b}}, "(x > 5 AND y < 2)"},
		{"or", &types.LogicNode{Op: types.OpOr, Identifier: "G1", Children: []*types.LogicNode{a, b}}, "(x > 5 OR y < 2)"},
		{"if", &types.LogicNode{Op: types.OpIf, Identifier: "O1", Children: []*types.LogicNode{c, a, b}}, "(IF has fire THEN x > 5 OR y < 2)"},
		{"iff", &types.LogicNode{Op: types.OpIff, Identifier: "O1", Children: []*types.LogicNode{c, a}}, "(IFF has fire THEN x > 5)"},
		{"nested", &types.LogicNode{Op: types.OpAnd, Identifier: "G1", Children: []*types.LogicNode{
			a,
			{Op: types.OpOr, Identifier: "G1", Children: []*types.LogicNode{b, c}},
		}}, "(x > 5 AND (y < 2 OR has fire))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.String())
		})
	}
}

func TestLogicNode_Leaves(t *testing.T) {
	a := leaf("G2", types.RoleUtility, "x > 5")
	c := leaf("O1", types.RoleOperating, "has fire")
	root := &types.LogicNode{Op: types.OpIf, Children: []*types.LogicNode{c, a}}

	leaves := root.Leaves()
	assert.Len(t, leaves, 2)
	assert.Equal(t, "O1", leaves[0].Identifier)
	assert.True(t, c.IsOperatingCondition())
	assert.False(t, a.IsOperatingCondition())
	assert.False(t, root.IsLeaf())
}

func TestExportTags(t *testing.T) {
	for _, op := range []types.Operator{types.OpAnd, types.OpOr, types.OpIf, types.OpIff} {
		tag := types.ExportTag(op)
		got, ok := types.OperatorForTag(tag)
		assert.True(t, ok, tag)
		assert.Equal(t, op, got)
	}
	_, ok := types.OperatorForTag("Negation")
	assert.False(t, ok)
}
