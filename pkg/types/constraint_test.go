package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/kaosdraw/pkg/types"
)

func TestConstraints_Counts(t *testing.T) {
	assert.Len(t, types.Constraints(types.KindRefinement), 12)
	assert.Len(t, types.Constraints(types.KindConflict), 1)
	assert.Len(t, types.Constraints(types.KindResolution), 2)
	assert.Empty(t, types.Constraints(types.KindGoal))
}

func TestCheckConstraints(t *testing.T) {
	tests := []struct {
		name   string
		kind   types.ItemKind
		source types.ItemKind
		target types.ItemKind
		want   bool
	}{
		{"refinement goal to goal", types.KindRefinement, types.KindGoal, types.KindGoal, true},
		{"refinement agent to goal", types.KindRefinement, types.KindAgent, types.KindGoal, true},
		{"refinement into refinement", types.KindRefinement, types.KindDomainProperty, types.KindRefinement, true},
		{"refinement obstacle to agent rejected", types.KindRefinement, types.KindObstacle, types.KindAgent, false},
		{"refinement goal to domain property rejected", types.KindRefinement, types.KindGoal, types.KindDomainProperty, false},
		{"refinement from relationship rejected", types.KindRefinement, types.KindRefinement, types.KindGoal, false},
		{"partial check obstacle source", types.KindRefinement, types.KindObstacle, "", true},
		{"partial check refinement source", types.KindRefinement, types.KindConflict, "", false},
		{"conflict obstacle to goal", types.KindConflict, types.KindObstacle, types.KindGoal, true},
		{"conflict goal to obstacle rejected", types.KindConflict, types.KindGoal, types.KindObstacle, false},
		{"partial conflict from goal rejected", types.KindConflict, types.KindGoal, "", false},
		{"resolution goal to obstacle", types.KindResolution, types.KindGoal, types.KindObstacle, true},
		{"resolution domain property to obstacle", types.KindResolution, types.KindDomainProperty, types.KindObstacle, true},
		{"resolution agent rejected", types.KindResolution, types.KindAgent, types.KindObstacle, false},
		{"missing source", types.KindRefinement, "", types.KindGoal, false},
		{"element kind has no pairs", types.KindGoal, types.KindGoal, types.KindGoal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types.CheckConstraints(tt.kind, tt.source, tt.target))
		})
	}
}
