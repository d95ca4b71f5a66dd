// Package logic derives nested AND/OR/IF expressions from a KAOS model.
//
// For an item, the synthesizer combines the item's own function with the
// logic of everything that refines it:
//
//   - each refinement into the item is an alternative (OR);
//   - a refinement that has further refinements pointing at it forms one
//     alternative together with them (AND);
//   - conflicts into the item are collected as a separate OR group that is
//     ANDed with the rest;
//   - when the item's own condition is an operating condition, it guards the
//     refinement result (IF ... THEN ...).
//
// Bucket order follows the model's item order, so output is deterministic
// for a given edit history.
package logic

import (
	"strings"

	"github.com/scrypster/kaosdraw/internal/model"
	"github.com/scrypster/kaosdraw/pkg/types"
)

// Synthesizer builds logic trees over one model.
type Synthesizer struct {
	model  *model.Model
	bounds Bounds
	last   Stats
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithMaxDepth limits recursion depth.
func WithMaxDepth(n int) Option {
	return func(s *Synthesizer) { s.bounds.MaxDepth = n }
}

// WithMaxNodes limits the number of item visits per run.
func WithMaxNodes(n int) Option {
	return func(s *Synthesizer) { s.bounds.MaxNodes = n }
}

// NewSynthesizer creates a synthesizer for m.
func NewSynthesizer(m *model.Model, opts ...Option) *Synthesizer {
	s := &Synthesizer{model: m}
	for _, opt := range opts {
		opt(s)
	}
	s.bounds.Normalize()
	return s
}

// RootLogic pairs a root item with its synthesized logic.
type RootLogic struct {
	Root  *types.Item
	Logic *types.LogicNode
}

// LogicFor returns the logic tree for item. A nil tree with a nil error
// means the item contributes nothing: it has no function and nothing with a
// function refines it.
func (s *Synthesizer) LogicFor(item *types.Item) (*types.LogicNode, error) {
	b := newBoundsChecker(s.bounds)
	node, err := s.logicFor(item, b, 0)
	s.last = b.stats()
	return node, err
}

// LastStats reports traversal statistics of the most recent LogicFor call.
func (s *Synthesizer) LastStats() Stats {
	return s.last
}

// ForRoots synthesizes logic for every root in model order.
func (s *Synthesizer) ForRoots() ([]RootLogic, error) {
	roots := s.model.FindRoots()
	out := make([]RootLogic, 0, len(roots))
	for _, root := range roots {
		node, err := s.LogicFor(root)
		if err != nil {
			return nil, err
		}
		out = append(out, RootLogic{Root: root, Logic: node})
	}
	return out, nil
}

// Text renders root logic one line per root. Roots without logic render as
// empty lines.
func Text(roots []RootLogic) string {
	lines := make([]string, 0, len(roots))
	for _, r := range roots {
		lines = append(lines, r.Logic.String())
	}
	return strings.Join(lines, "\n")
}

func (s *Synthesizer) logicFor(item *types.Item, b *boundsChecker, depth int) (*types.LogicNode, error) {
	if item == nil {
		return nil, nil
	}
	if err := b.enter(item.Reference, item.Identifier, depth); err != nil {
		return nil, err
	}
	defer b.leave(item.Reference)

	var own, branches, conflicts []*types.LogicNode

	if f := item.Function(); f != nil {
		own = append(own, leafFor(item, f))
	}

	for _, rel := range s.model.GetRelationshipsFor(item) {
		if rel.Target != item.Reference {
			continue
		}

		if rel.Kind == types.KindConflict {
			node, err := s.logicFor(s.model.Lookup(rel.Source), b, depth+1)
			if err != nil {
				return nil, err
			}
			if node != nil {
				conflicts = append(conflicts, node)
			}
			continue
		}

		attached := s.model.GetRelationshipsFor(rel)
		node, err := s.logicFor(s.model.Lookup(rel.Source), b, depth+1)
		if err != nil {
			return nil, err
		}
		if len(attached) == 0 {
			if node != nil {
				branches = append(branches, node)
			}
			continue
		}

		var inner []*types.LogicNode
		if node != nil {
			inner = append(inner, node)
		}
		for _, branch := range attached {
			if branch.Target != rel.Reference {
				continue
			}
			node, err := s.logicFor(s.model.Lookup(branch.Source), b, depth+1)
			if err != nil {
				return nil, err
			}
			if node != nil {
				inner = append(inner, node)
			}
		}
		if combined := collapse(item.Identifier, types.OpAnd, inner); combined != nil {
			branches = append(branches, combined)
		}
	}

	outerA := own
	if node := collapse(item.Identifier, types.OpOr, branches); node != nil {
		outerA = append(outerA, node)
	}

	var outer []*types.LogicNode
	op := types.OpAnd
	if len(outerA) > 0 && outerA[0].IsOperatingCondition() {
		op = types.OpIf
	}
	if node := collapse(item.Identifier, op, outerA); node != nil {
		outer = append(outer, node)
	}
	if node := collapse(item.Identifier, types.OpOr, conflicts); node != nil {
		outer = append(outer, node)
	}
	return collapse(item.Identifier, types.OpAnd, outer), nil
}

// collapse turns a bucket into a single node: nothing for an empty bucket,
// the sole entry for a singleton, otherwise an op node labelled with id.
func collapse(id string, op types.Operator, nodes []*types.LogicNode) *types.LogicNode {
	switch len(nodes) {
	case 0:
		return nil
	case 1:
		return nodes[0]
	}
	return &types.LogicNode{Op: op, Identifier: id, Children: nodes}
}

func leafFor(item *types.Item, f *types.Function) *types.LogicNode {
	leaf := &types.LogicLeaf{
		Identifier: item.Identifier,
		Kind:       item.Kind,
		Function:   f.Clone(),
	}
	if item.Kind == types.KindGoal {
		leaf.Objective = item.Objective
	}
	return &types.LogicNode{Leaf: leaf}
}
