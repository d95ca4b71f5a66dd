// Package evaluate scores synthesized KAOS logic against system state using
// fuzzy logic. Conjunction takes the minimum of its children, disjunction the
// maximum, and a conditional yields its consequent when the antecedent holds
// and the complement of the antecedent otherwise.
//
// Every call to Evaluate is one step. Scores are recorded per node and step,
// and satisfaction is judged over that history using each leaf's objective.
package evaluate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/scrypster/kaosdraw/pkg/types"
)

// DefaultThreshold is the score at or above which a condition counts as held.
const DefaultThreshold = 0.5

var (
	// ErrMissingParameters is returned when the state lacks a referenced parameter.
	ErrMissingParameters = errors.New("missing utility parameters")

	// ErrUnknownOperation is returned for a function type with no operation.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrArity is returned when a function has the wrong number of operands.
	ErrArity = errors.New("invalid number of operands")

	// ErrOperandType is returned when operands cannot be used by an operation.
	ErrOperandType = errors.New("invalid operand type")

	// ErrEmptyConditional is returned for a conditional with no antecedent.
	ErrEmptyConditional = errors.New("conditional has no elements")

	// ErrUnknownOperator is returned for an internal node with an unknown operator.
	ErrUnknownOperator = errors.New("unknown logic operator")
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithThreshold sets the satisfaction threshold.
func WithThreshold(t float64) Option {
	return func(e *Evaluator) {
		e.threshold = t
	}
}

// WithShortCircuit stops conjunctions and disjunctions as soon as their
// outcome is decided. Skipped children record no history for that step.
func WithShortCircuit(enabled bool) Option {
	return func(e *Evaluator) {
		e.shortCircuit = enabled
	}
}

// Evaluator holds logic trees and the history of their scores.
type Evaluator struct {
	roots        []*types.LogicNode
	threshold    float64
	shortCircuit bool
	step         int
	history      map[*types.LogicNode]map[int]float64
}

// New creates an evaluator over the given root trees.
func New(roots []*types.LogicNode, opts ...Option) *Evaluator {
	e := &Evaluator{
		roots:     roots,
		threshold: DefaultThreshold,
		history:   make(map[*types.LogicNode]map[int]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the satisfaction threshold in use.
func (e *Evaluator) Threshold() float64 { return e.threshold }

// Step returns the number of completed evaluations.
func (e *Evaluator) Step() int { return e.step }

// Reset clears the recorded history.
func (e *Evaluator) Reset() {
	e.step = 0
	e.history = make(map[*types.LogicNode]map[int]float64)
}

// Parameters returns the sorted names of the state values the logic refers
// to. Numbers, booleans and quoted literals are not parameters.
func (e *Evaluator) Parameters() []string {
	seen := make(map[string]bool)
	for _, root := range e.roots {
		for _, leaf := range root.Leaves() {
			if leaf.Function == nil {
				continue
			}
			for _, i := range leaf.Function.SortedParameterIndices() {
				if s, ok := parseOperand(leaf.Function.Parameters[i]).(string); ok && !isQuoted(s) {
					seen[s] = true
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Evaluate scores every root against values and records the scores as one
// step. On error nothing is recorded for the step.
func (e *Evaluator) Evaluate(values map[string]any) ([]float64, error) {
	var missing []string
	for _, p := range e.Parameters() {
		if _, ok := values[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameters, strings.Join(missing, " "))
	}

	scores := make([]float64, 0, len(e.roots))
	for _, root := range e.roots {
		score, err := e.eval(root, values)
		if err != nil {
			e.discardStep()
			return nil, err
		}
		scores = append(scores, score)
	}
	e.step++
	return scores, nil
}

func (e *Evaluator) discardStep() {
	for _, steps := range e.history {
		delete(steps, e.step)
	}
}

func (e *Evaluator) record(n *types.LogicNode, score float64) {
	steps, ok := e.history[n]
	if !ok {
		steps = make(map[int]float64)
		e.history[n] = steps
	}
	steps[e.step] = score
}

func (e *Evaluator) eval(n *types.LogicNode, values map[string]any) (float64, error) {
	var (
		score float64
		err   error
	)
	switch {
	case n.IsLeaf():
		score, err = evalLeaf(n.Leaf, values)
	case n.Op == types.OpAnd:
		score, err = e.evalAnd(n.Children, values)
	case n.Op == types.OpOr:
		score, err = e.evalOr(n.Children, values)
	case n.Op == types.OpIf, n.Op == types.OpIff:
		score, err = e.evalConditional(n, values)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownOperator, n.Op)
	}
	if err != nil {
		return 0, err
	}
	e.record(n, score)
	return score, nil
}

func (e *Evaluator) evalAnd(children []*types.LogicNode, values map[string]any) (float64, error) {
	score := 1.0
	for _, c := range children {
		s, err := e.eval(c, values)
		if err != nil {
			return 0, err
		}
		score = fuzzyAnd(score, s)
		if e.shortCircuit && score < e.threshold {
			break
		}
	}
	return score, nil
}

func (e *Evaluator) evalOr(children []*types.LogicNode, values map[string]any) (float64, error) {
	if len(children) == 0 {
		return 1, nil
	}
	score := 0.0
	for _, c := range children {
		s, err := e.eval(c, values)
		if err != nil {
			return 0, err
		}
		score = fuzzyOr(score, s)
		if e.shortCircuit && score >= e.threshold {
			break
		}
	}
	return score, nil
}

// evalConditional treats the first child as the antecedent and the
// disjunction of the rest as the consequent.
func (e *Evaluator) evalConditional(n *types.LogicNode, values map[string]any) (float64, error) {
	if len(n.Children) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyConditional, n.Identifier)
	}
	left, err := e.eval(n.Children[0], values)
	if err != nil {
		return 0, err
	}
	if len(n.Children) == 1 {
		return left, nil
	}

	consequent := func() (float64, error) {
		if len(n.Children) == 2 {
			return e.eval(n.Children[1], values)
		}
		return e.evalOr(n.Children[1:], values)
	}

	if n.Op == types.OpIf && e.shortCircuit && left < e.threshold {
		return fuzzyNot(left), nil
	}
	right, err := consequent()
	if err != nil {
		return 0, err
	}
	switch {
	case left >= e.threshold:
		return right, nil
	case n.Op == types.OpIff:
		return fuzzyNot(right), nil
	}
	return fuzzyNot(left), nil
}

func evalLeaf(leaf *types.LogicLeaf, values map[string]any) (float64, error) {
	f := leaf.Function
	if f == nil {
		return 0, fmt.Errorf("%w: %s has no function", ErrUnknownOperation, leaf.Identifier)
	}
	op, ok := lookupOperation(f.Type)
	if !ok {
		return 0, fmt.Errorf("%w: %q on %s", ErrUnknownOperation, f.Type, leaf.Identifier)
	}

	indices := f.SortedParameterIndices()
	if len(indices) != op.arity {
		return 0, fmt.Errorf("%w: %s on %s takes %d, got %d", ErrArity, f.Type, leaf.Identifier, op.arity, len(indices))
	}

	args := make([]any, len(indices))
	for i, idx := range indices {
		arg := parseOperand(f.Parameters[idx])
		if name, ok := arg.(string); ok {
			if v, ok := values[name]; ok {
				arg = v
			}
		}
		args[i] = unquote(arg)
	}

	score, err := op.apply(args)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", leaf.Identifier, err)
	}
	return score, nil
}
