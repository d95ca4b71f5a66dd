package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kaosdraw/internal/model"
	"github.com/scrypster/kaosdraw/pkg/types"
)

func TestConnect_Refinement(t *testing.T) {
	m := model.New("M1")
	g1 := newItem(t, m, types.KindGoal)
	g2 := newItem(t, m, types.KindGoal)

	conn, err := m.BeginConnect(types.KindRefinement, g2)
	require.NoError(t, err)

	rel, err := conn.Complete(g1)
	require.NoError(t, err)
	assert.Equal(t, types.KindRefinement, rel.Kind)
	assert.Equal(t, g2.Reference, rel.Source)
	assert.Equal(t, g1.Reference, rel.Target)
	assert.Equal(t, 3, m.Len())
}

func TestConnect_Conversions(t *testing.T) {
	tests := []struct {
		name   string
		source types.ItemKind
		target types.ItemKind
		want   types.ItemKind
	}{
		{"obstacle to goal becomes conflict", types.KindObstacle, types.KindGoal, types.KindConflict},
		{"goal to obstacle becomes resolution", types.KindGoal, types.KindObstacle, types.KindResolution},
		{"domain property to obstacle becomes resolution", types.KindDomainProperty, types.KindObstacle, types.KindResolution},
		{"obstacle to obstacle stays refinement", types.KindObstacle, types.KindObstacle, types.KindRefinement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model.New("M1")
			src := newItem(t, m, tt.source)
			dst := newItem(t, m, tt.target)

			conn, err := m.BeginConnect(types.KindRefinement, src)
			require.NoError(t, err)
			rel, err := conn.Complete(dst)
			require.NoError(t, err)

			assert.Equal(t, tt.want, rel.Kind)
			assert.Equal(t, src.Reference, rel.Source)
			assert.Equal(t, dst.Reference, rel.Target)
			assert.Equal(t, 3, m.Len(), "the discarded connector must not remain")
		})
	}
}

func TestConnect_Rejections(t *testing.T) {
	m := model.New("M1")
	g1 := newItem(t, m, types.KindGoal)
	g2 := newItem(t, m, types.KindGoal)
	a := newItem(t, m, types.KindAgent)
	o := newItem(t, m, types.KindObstacle)
	base := m.Len()

	_, err := m.BeginConnect(types.KindConflict, g1)
	assert.ErrorIs(t, err, model.ErrInvalidSource)
	assert.Equal(t, base, m.Len())

	_, err = m.BeginConnect(types.KindGoal, g1)
	assert.ErrorIs(t, err, model.ErrNotRelationship)

	conn, err := m.BeginConnect(types.KindRefinement, o)
	require.NoError(t, err)
	_, err = conn.Complete(a)
	assert.ErrorIs(t, err, model.ErrInvalidTarget)
	assert.Equal(t, base, m.Len())

	conn, err = m.BeginConnect(types.KindRefinement, g1)
	require.NoError(t, err)
	_, err = conn.Complete(g1)
	assert.ErrorIs(t, err, model.ErrSelfConnection)
	assert.Equal(t, base, m.Len())

	conn, err = m.BeginConnect(types.KindRefinement, g2)
	require.NoError(t, err)
	_, err = conn.Complete(nil)
	assert.ErrorIs(t, err, model.ErrMissingTarget)
	assert.Equal(t, base, m.Len())

	// Establish g2 -> g1, then try it again and in reverse
	conn, err = m.BeginConnect(types.KindRefinement, g2)
	require.NoError(t, err)
	_, err = conn.Complete(g1)
	require.NoError(t, err)

	conn, err = m.BeginConnect(types.KindRefinement, g2)
	require.NoError(t, err)
	_, err = conn.Complete(g1)
	assert.ErrorIs(t, err, model.ErrDuplicateRelationship)

	conn, err = m.BeginConnect(types.KindRefinement, g1)
	require.NoError(t, err)
	_, err = conn.Complete(g2)
	assert.ErrorIs(t, err, model.ErrOneWayRelationship)

	assert.Equal(t, base+1, m.Len())
}

func TestConnect_DuplicateKeepsRequirement(t *testing.T) {
	m := model.New("M1")
	a := newItem(t, m, types.KindAgent)
	g := newItem(t, m, types.KindGoal)

	conn, err := m.BeginConnect(types.KindRefinement, a)
	require.NoError(t, err)
	_, err = conn.Complete(g)
	require.NoError(t, err)
	require.True(t, g.IsRequirement)

	conn, err = m.BeginConnect(types.KindRefinement, a)
	require.NoError(t, err)
	_, err = conn.Complete(g)
	assert.ErrorIs(t, err, model.ErrDuplicateRelationship)
	assert.True(t, g.IsRequirement, "a rejected duplicate must not clear the flag")
}

func TestConnect_Cancel(t *testing.T) {
	m := model.New("M1")
	g := newItem(t, m, types.KindGoal)

	conn, err := m.BeginConnect(types.KindRefinement, g)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	conn.Cancel()
	assert.Equal(t, 1, m.Len())

	_, err = conn.Complete(g)
	assert.ErrorIs(t, err, model.ErrConnectionClosed)
}
