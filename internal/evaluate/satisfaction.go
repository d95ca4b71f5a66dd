package evaluate

import (
	"sort"

	"github.com/scrypster/kaosdraw/pkg/types"
)

// Satisfied judges each root over the recorded history. Leaves are judged by
// objective: achieve holds if any step reached the threshold, avoid if none
// did, maintain if all did, and a leaf without objective by its latest step.
// A leaf with no history is unsatisfied.
func (e *Evaluator) Satisfied() []float64 {
	out := make([]float64, 0, len(e.roots))
	for _, root := range e.roots {
		out = append(out, e.satisfied(root))
	}
	return out
}

// Violated returns the sorted identifiers of every node found unsatisfied.
// Below a conditional whose antecedent holds, only the consequent is searched.
func (e *Evaluator) Violated() []string {
	found := make(map[string]bool)
	for _, root := range e.roots {
		e.violated(root, found)
	}
	out := make([]string, 0, len(found))
	for id := range found {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Utility returns the latest score of every leaf, keyed by identifier.
func (e *Evaluator) Utility() map[string]float64 {
	out := make(map[string]float64)
	for _, root := range e.roots {
		walkLeaves(root, func(n *types.LogicNode) {
			if _, done := out[n.Leaf.Identifier]; done {
				return
			}
			if steps := e.sortedHistory(n); len(steps) > 0 {
				out[n.Leaf.Identifier] = steps[len(steps)-1]
			}
		})
	}
	return out
}

func walkLeaves(n *types.LogicNode, fn func(*types.LogicNode)) {
	if n.IsLeaf() {
		fn(n)
		return
	}
	for _, c := range n.Children {
		walkLeaves(c, fn)
	}
}

func (e *Evaluator) sortedHistory(n *types.LogicNode) []float64 {
	steps := e.history[n]
	keys := make([]int, 0, len(steps))
	for k := range steps {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = steps[k]
	}
	return out
}

func (e *Evaluator) satisfied(n *types.LogicNode) float64 {
	switch {
	case n.IsLeaf():
		return e.leafSatisfied(n)
	case n.Op == types.OpAnd:
		score := 1.0
		for _, c := range n.Children {
			score = fuzzyAnd(score, e.satisfied(c))
			if e.shortCircuit && score < e.threshold {
				break
			}
		}
		return score
	case n.Op == types.OpOr:
		return e.satisfiedOr(n.Children)
	case n.Op == types.OpIf, n.Op == types.OpIff:
		if len(n.Children) == 0 {
			return 0
		}
		left := e.satisfied(n.Children[0])
		if len(n.Children) == 1 {
			return left
		}
		right := e.satisfiedOr(n.Children[1:])
		switch {
		case left >= e.threshold:
			return right
		case n.Op == types.OpIff:
			return fuzzyNot(right)
		}
		return fuzzyNot(left)
	}
	return 0
}

func (e *Evaluator) satisfiedOr(children []*types.LogicNode) float64 {
	if len(children) == 0 {
		return 1
	}
	score := 0.0
	for _, c := range children {
		score = fuzzyOr(score, e.satisfied(c))
		if e.shortCircuit && score >= e.threshold {
			break
		}
	}
	return score
}

func (e *Evaluator) leafSatisfied(n *types.LogicNode) float64 {
	history := e.sortedHistory(n)
	if len(history) == 0 {
		return 0
	}

	reached := 0
	for _, s := range history {
		if s >= e.threshold {
			reached++
		}
	}
	switch n.Leaf.Objective {
	case types.ObjectiveAchieve:
		return boolScore(reached > 0)
	case types.ObjectiveAvoid:
		return boolScore(reached == 0)
	case types.ObjectiveMaintain:
		return boolScore(reached == len(history))
	}
	return boolScore(history[len(history)-1] >= e.threshold)
}

func (e *Evaluator) violated(n *types.LogicNode, found map[string]bool) {
	if n.IsLeaf() {
		if n.Leaf.Identifier != "" && e.satisfied(n) < e.threshold {
			found[n.Leaf.Identifier] = true
		}
		return
	}

	if n.Op == types.OpIf && len(n.Children) > 1 {
		if e.satisfied(n.Children[0]) < e.threshold {
			e.violated(n.Children[0], found)
		}
		for _, c := range n.Children[1:] {
			e.violated(c, found)
		}
		return
	}

	if n.Identifier != "" && e.satisfied(n) < e.threshold {
		found[n.Identifier] = true
	}
	for _, c := range n.Children {
		e.violated(c, found)
	}
}
