package model_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kaosdraw/internal/model"
	"github.com/scrypster/kaosdraw/pkg/types"
)

func newItem(t *testing.T, m *model.Model, kind types.ItemKind) *types.Item {
	t.Helper()
	item, err := m.NewItem(kind)
	require.NoError(t, err)
	return item
}

func link(t *testing.T, m *model.Model, kind types.ItemKind, source, target *types.Item) *types.Item {
	t.Helper()
	rel := newItem(t, m, kind)
	require.True(t, m.SetSource(rel, source), "source rejected")
	require.True(t, m.SetTarget(rel, target), "target rejected")
	return rel
}

func TestCreateItem_IdentifiersAndReferences(t *testing.T) {
	m := model.New("M1")

	g1 := newItem(t, m, types.KindGoal)
	g2 := newItem(t, m, types.KindGoal)
	a1 := newItem(t, m, types.KindAgent)
	r1 := newItem(t, m, types.KindRefinement)

	assert.Equal(t, "G1", g1.Identifier)
	assert.Equal(t, "G2", g2.Identifier)
	assert.Equal(t, "A1", a1.Identifier)
	assert.Equal(t, "R1", r1.Identifier)
	assert.True(t, strings.HasPrefix(g1.Reference, "goal_"))
	assert.True(t, strings.HasPrefix(r1.Reference, "refinement_"))
	assert.Equal(t, 4, m.Len())
}

func TestCreateItem_CollisionRetry(t *testing.T) {
	m := model.New("M1")
	id := uuid.New()

	first, err := m.CreateItem(types.KindGoal, id)
	require.NoError(t, err)
	second, err := m.CreateItem(types.KindGoal, id)
	require.NoError(t, err)
	assert.NotEqual(t, first.Reference, second.Reference, "reference collision must be retried")

	// A user-renamed item occupies the next identifier
	second.Identifier = "G3"
	third := newItem(t, m, types.KindGoal)
	assert.Equal(t, "G4", third.Identifier)

	// Relationship kinds share the R prefix
	ref := newItem(t, m, types.KindRefinement)
	con := newItem(t, m, types.KindConflict)
	assert.Equal(t, "R1", ref.Identifier)
	assert.Equal(t, "R2", con.Identifier)
}

func TestCreateItem_UnknownKind(t *testing.T) {
	m := model.New("M1")
	_, err := m.NewItem("Requirement")
	assert.ErrorIs(t, err, model.ErrUnknownKind)
	assert.Zero(t, m.Len())
}

// TestIssueNextIdentifierNumber_Monotonic tests strictly increasing counters per kind
func TestIssueNextIdentifierNumber_Monotonic(t *testing.T) {
	m := model.New("M1")
	for i := 1; i <= 10; i++ {
		assert.Equal(t, i, m.IssueNextIdentifierNumber("Goal"))
		m.IssueNextIdentifierNumber("Obstacle")
	}
	assert.Equal(t, 11, m.IssueNextIdentifierNumber("  GOAL "))
	assert.Equal(t, 11, m.IssueNextIdentifierNumber("obstacle"))
}

func TestRemoveItem_Cascade(t *testing.T) {
	m := model.New("M1")
	g1 := newItem(t, m, types.KindGoal)
	g2 := newItem(t, m, types.KindGoal)
	g3 := newItem(t, m, types.KindGoal)
	g4 := newItem(t, m, types.KindGoal)

	rel0 := link(t, m, types.KindRefinement, g2, g1)
	branch := link(t, m, types.KindRefinement, g3, rel0)
	other := link(t, m, types.KindRefinement, g4, g1)

	m.RemoveItem(g1)

	assert.False(t, m.Contains(g1))
	assert.False(t, m.Contains(rel0))
	assert.False(t, m.Contains(branch), "branch attached to a removed refinement must be purged")
	assert.False(t, m.Contains(other))
	assert.ElementsMatch(t, []*types.Item{g2, g3, g4}, m.Items())
}

func TestRemoveItem_NotPresent(t *testing.T) {
	m := model.New("M1")
	g1 := newItem(t, m, types.KindGoal)
	stray := types.NewItem(types.KindGoal, uuid.NewString())

	m.RemoveItem(stray)
	m.RemoveItem(nil)
	assert.Equal(t, []*types.Item{g1}, m.Items())
}

func TestRequirementFlag(t *testing.T) {
	t.Run("set on agent refinement and cleared on direct removal", func(t *testing.T) {
		m := model.New("M1")
		a := newItem(t, m, types.KindAgent)
		g := newItem(t, m, types.KindGoal)

		rel := link(t, m, types.KindRefinement, a, g)
		assert.True(t, g.IsRequirement)

		m.RemoveItem(rel)
		assert.False(t, g.IsRequirement)
	})

	t.Run("cleared when the agent is removed", func(t *testing.T) {
		m := model.New("M1")
		a := newItem(t, m, types.KindAgent)
		g := newItem(t, m, types.KindGoal)
		link(t, m, types.KindRefinement, a, g)

		m.RemoveItem(a)
		assert.False(t, g.IsRequirement)
	})

	t.Run("kept while another agent still refines the goal", func(t *testing.T) {
		m := model.New("M1")
		a1 := newItem(t, m, types.KindAgent)
		a2 := newItem(t, m, types.KindAgent)
		g := newItem(t, m, types.KindGoal)
		r1 := link(t, m, types.KindRefinement, a1, g)
		link(t, m, types.KindRefinement, a2, g)

		m.RemoveItem(r1)
		assert.True(t, g.IsRequirement)

		m.RemoveItem(a2)
		assert.False(t, g.IsRequirement)
	})

	t.Run("goal refinement does not set it", func(t *testing.T) {
		m := model.New("M1")
		g1 := newItem(t, m, types.KindGoal)
		g2 := newItem(t, m, types.KindGoal)
		link(t, m, types.KindRefinement, g2, g1)
		assert.False(t, g1.IsRequirement)
	})
}

func TestFindRoots(t *testing.T) {
	m := model.New("M1")
	a := newItem(t, m, types.KindGoal)
	assert.Equal(t, []*types.Item{a}, m.FindRoots())

	b := newItem(t, m, types.KindGoal)
	link(t, m, types.KindRefinement, a, b)
	assert.Equal(t, []*types.Item{b}, m.FindRoots())
}

func TestFindItem(t *testing.T) {
	m := model.New("M1")
	g := newItem(t, m, types.KindGoal)
	a := newItem(t, m, types.KindAgent)
	g.Description = "keep it safe"
	a.Topic = "safety"

	assert.Same(t, g, m.FindItem(g.Reference, ""))
	assert.Same(t, g, m.FindItem(g.Reference, "reference"))
	assert.Same(t, a, m.FindItem("A1", "identifier"))
	assert.Same(t, a, m.FindItem("safety", "topic"))
	assert.Same(t, g, m.FindItem("keep it safe", "description"))
	assert.Nil(t, m.FindItem("missing", "identifier"))

	// Goals have no topic; an empty topic must not match them
	assert.Empty(t, m.FindItems("", "topic"))
	assert.Len(t, m.FindItems("", "objective"), 1)
	assert.Nil(t, m.FindItem("x", "noSuchAttribute"))
}

func TestGetRelationshipsFor(t *testing.T) {
	m := model.New("M1")
	g1 := newItem(t, m, types.KindGoal)
	g2 := newItem(t, m, types.KindGoal)
	g3 := newItem(t, m, types.KindGoal)

	r1 := link(t, m, types.KindRefinement, g2, g1)
	r2 := link(t, m, types.KindRefinement, g3, r1)

	assert.Equal(t, []*types.Item{r1}, m.GetRelationshipsFor(g1))
	assert.Equal(t, []*types.Item{r2}, m.GetRelationshipsFor(r1))
	assert.Nil(t, m.GetRelationshipsFor(nil))
}

func TestCheckConstraints(t *testing.T) {
	m := model.New("M1")
	o := newItem(t, m, types.KindObstacle)
	a := newItem(t, m, types.KindAgent)

	rel := newItem(t, m, types.KindRefinement)
	assert.False(t, m.CheckConstraints(rel), "no source")
	assert.True(t, m.SetSource(rel, o), "partial check passes for obstacle source")
	assert.False(t, m.SetTarget(rel, a), "obstacle to agent is not allowed")
}

func TestShiftItem(t *testing.T) {
	m := model.New("M1")
	g1 := newItem(t, m, types.KindGoal)
	g2 := newItem(t, m, types.KindGoal)
	g3 := newItem(t, m, types.KindGoal)

	m.ShiftItemForward(g1)
	assert.Equal(t, []*types.Item{g2, g1, g3}, m.Items())

	m.ShiftItemForward(g3)
	assert.Equal(t, []*types.Item{g2, g1, g3}, m.Items(), "top item stays put")

	m.ShiftItemBackward(g3)
	assert.Equal(t, []*types.Item{g2, g3, g1}, m.Items())

	m.ShiftItemBackward(g2)
	assert.Equal(t, []*types.Item{g2, g3, g1}, m.Items(), "bottom item stays put")
}

func TestString(t *testing.T) {
	m := model.New("M1")
	g1 := newItem(t, m, types.KindGoal)
	g2 := newItem(t, m, types.KindGoal)
	g1.Description = "top"
	g2.Description = "sub"
	link(t, m, types.KindRefinement, g2, g1)

	want := "Model M1\n" +
		"Goal G1 \"top\"\n" +
		"Goal G2 \"sub\"\n" +
		"G2 Refinement G1\n"
	assert.Equal(t, want, m.String())
}

func TestItemsReturnsCopy(t *testing.T) {
	m := model.New("M1")
	newItem(t, m, types.KindGoal)

	items := m.Items()
	items[0] = nil
	assert.NotNil(t, m.Items()[0])
}
