package logic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kaosdraw/internal/logic"
	"github.com/scrypster/kaosdraw/internal/model"
	"github.com/scrypster/kaosdraw/pkg/types"
)

type fixture struct {
	t *testing.T
	m *model.Model
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, m: model.New("M1")}
}

func (f *fixture) item(kind types.ItemKind, role types.FunctionRole, text string) *types.Item {
	f.t.Helper()
	item, err := f.m.NewItem(kind)
	require.NoError(f.t, err)
	if text == "" {
		return item
	}
	fn, ok := types.ParseFunction(role, text)
	require.True(f.t, ok, text)
	switch role {
	case types.RoleUtility:
		item.UtilityFunction = fn
	case types.RoleOperating:
		item.OperatingCondition = fn
	}
	return item
}

func (f *fixture) goal(utility string) *types.Item {
	return f.item(types.KindGoal, types.RoleUtility, utility)
}

func (f *fixture) obstacle(condition string) *types.Item {
	return f.item(types.KindObstacle, types.RoleOperating, condition)
}

func (f *fixture) link(kind types.ItemKind, source, target *types.Item) *types.Item {
	f.t.Helper()
	rel, err := f.m.NewItem(kind)
	require.NoError(f.t, err)
	require.True(f.t, f.m.SetSource(rel, source))
	require.True(f.t, f.m.SetTarget(rel, target))
	return rel
}

func (f *fixture) logic(item *types.Item) *types.LogicNode {
	f.t.Helper()
	node, err := logic.NewSynthesizer(f.m).LogicFor(item)
	require.NoError(f.t, err)
	return node
}

func TestLogicFor_LeafWithoutCondition(t *testing.T) {
	f := newFixture(t)
	g := f.goal("")
	assert.Nil(t, f.logic(g))
}

func TestLogicFor_OwnConditionOnly(t *testing.T) {
	f := newFixture(t)
	g := f.goal("speed >= 30")
	g.Objective = types.ObjectiveMaintain

	node := f.logic(g)
	require.True(t, node.IsLeaf())
	assert.Equal(t, "G1", node.Leaf.Identifier)
	assert.Equal(t, types.ObjectiveMaintain, node.Leaf.Objective)
	assert.Equal(t, "speed >= 30", node.String())
}

// TestLogicFor_SimpleChain tests that an empty sub-goal contributes nothing
func TestLogicFor_SimpleChain(t *testing.T) {
	f := newFixture(t)
	g1 := f.goal("")
	g1.OperatingCondition, _ = types.ParseFunction(types.RoleOperating, "x > 5")
	g2 := f.goal("")
	f.link(types.KindRefinement, g2, g1)

	assert.Equal(t, "x > 5", f.logic(g1).String())

	// Once G2 carries a condition the operating condition guards it
	g2.UtilityFunction, _ = types.ParseFunction(types.RoleUtility, "y < 3")
	node := f.logic(g1)
	assert.Equal(t, types.OpIf, node.Op)
	assert.Equal(t, "G1", node.Identifier)
	assert.Equal(t, "(IF x > 5 THEN y < 3)", node.String())
}

func TestLogicFor_OrRefinement(t *testing.T) {
	f := newFixture(t)
	g1 := f.goal("")
	g2 := f.goal("a > 1")
	g3 := f.goal("b > 2")
	f.link(types.KindRefinement, g2, g1)
	f.link(types.KindRefinement, g3, g1)

	node := f.logic(g1)
	assert.Equal(t, types.OpOr, node.Op)
	assert.Equal(t, "G1", node.Identifier)
	assert.Equal(t, "(a > 1 OR b > 2)", node.String())
}

func TestLogicFor_AndBranch(t *testing.T) {
	f := newFixture(t)
	g1 := f.goal("")
	g2 := f.goal("a > 1")
	g3 := f.goal("b > 2")
	g4 := f.goal("c > 3")

	rel0 := f.link(types.KindRefinement, g4, g1)
	f.link(types.KindRefinement, g2, rel0)
	f.link(types.KindRefinement, g3, rel0)

	node := f.logic(g1)
	assert.Equal(t, types.OpAnd, node.Op)
	assert.Equal(t, "G1", node.Identifier)
	assert.Equal(t, "(c > 3 AND a > 1 AND b > 2)", node.String())
}

func TestLogicFor_AndBranchAlongsideOrAlternative(t *testing.T) {
	f := newFixture(t)
	g1 := f.goal("total >= 10")
	g2 := f.goal("a > 1")
	g3 := f.goal("b > 2")
	g4 := f.goal("c > 3")

	rel0 := f.link(types.KindRefinement, g2, g1)
	f.link(types.KindRefinement, g3, rel0)
	f.link(types.KindRefinement, g4, g1)

	assert.Equal(t, "(total >= 10 AND ((a > 1 AND b > 2) OR c > 3))", f.logic(g1).String())
}

func TestLogicFor_Conflicts(t *testing.T) {
	f := newFixture(t)
	g1 := f.goal("speed >= 30")
	o1 := f.obstacle("has ice")
	o2 := f.obstacle("has fog")
	f.link(types.KindConflict, o1, g1)

	assert.Equal(t, "(speed >= 30 AND has ice)", f.logic(g1).String())

	f.link(types.KindConflict, o2, g1)
	node := f.logic(g1)
	assert.Equal(t, "(speed >= 30 AND (has ice OR has fog))", node.String())
	require.Len(t, node.Children, 2)
	assert.Equal(t, types.OpOr, node.Children[1].Op)
}

func TestLogicFor_ObstacleGuard(t *testing.T) {
	f := newFixture(t)
	o1 := f.obstacle("temp > 40")
	o2 := f.obstacle("has smoke")
	o3 := f.obstacle("has flame")
	f.link(types.KindRefinement, o2, o1)
	f.link(types.KindRefinement, o3, o1)

	assert.Equal(t, "(IF temp > 40 THEN (has smoke OR has flame))", f.logic(o1).String())
}

func TestLogicFor_ResolutionIsAnAlternative(t *testing.T) {
	f := newFixture(t)
	o1 := f.obstacle("")
	g1 := f.goal("sprinklers == on")
	f.link(types.KindResolution, g1, o1)

	assert.Equal(t, "sprinklers == on", f.logic(o1).String())
}

func TestLogicFor_Cycle(t *testing.T) {
	f := newFixture(t)
	g1 := f.goal("a > 1")
	g2 := f.goal("b > 1")
	g3 := f.goal("c > 1")
	f.link(types.KindRefinement, g2, g1)
	f.link(types.KindRefinement, g3, g2)
	f.link(types.KindRefinement, g1, g3)

	_, err := logic.NewSynthesizer(f.m).LogicFor(g1)
	assert.ErrorIs(t, err, logic.ErrCycle)
}

func TestLogicFor_SharedSubGoalIsNotACycle(t *testing.T) {
	f := newFixture(t)
	top := f.goal("")
	left := f.goal("l > 0")
	right := f.goal("r > 0")
	shared := f.goal("s > 0")
	f.link(types.KindRefinement, left, top)
	f.link(types.KindRefinement, right, top)
	f.link(types.KindRefinement, shared, left)
	f.link(types.KindRefinement, shared, right)

	assert.Equal(t, "((l > 0 AND s > 0) OR (r > 0 AND s > 0))", f.logic(top).String())
}

func TestLogicFor_DepthLimit(t *testing.T) {
	f := newFixture(t)
	prev := f.goal("x > 0")
	top := prev
	for i := 0; i < 5; i++ {
		next := f.goal("x > 0")
		f.link(types.KindRefinement, next, prev)
		prev = next
	}

	_, err := logic.NewSynthesizer(f.m, logic.WithMaxDepth(3)).LogicFor(top)
	assert.ErrorIs(t, err, logic.ErrBoundsExceeded)

	s := logic.NewSynthesizer(f.m)
	_, err = s.LogicFor(top)
	require.NoError(t, err)
	assert.Equal(t, 5, s.LastStats().DepthReached)
	assert.Equal(t, 6, s.LastStats().NodesVisited)
}

func TestForRootsAndText(t *testing.T) {
	f := newFixture(t)
	g1 := f.goal("a > 1")
	g2 := f.goal("b > 2")
	f.goal("")
	f.link(types.KindRefinement, g2, g1)

	roots, err := logic.NewSynthesizer(f.m).ForRoots()
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Same(t, g1, roots[0].Root)
	assert.Nil(t, roots[1].Logic)
	assert.Equal(t, "(a > 1 AND b > 2)\n", logic.Text(roots))
}
