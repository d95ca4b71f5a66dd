package server

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/scrypster/kaosdraw/internal/evaluate"
	"github.com/scrypster/kaosdraw/internal/logic"
	"github.com/scrypster/kaosdraw/internal/workspace"
	"github.com/scrypster/kaosdraw/pkg/types"
)

// ErrNoLogic is returned when the model has no root with logic to evaluate.
var ErrNoLogic = errors.New("model has no logic to evaluate")

// ModelSource guards the workspace shown by the server. HTTP handlers and
// the file watcher reach the model only through it.
type ModelSource struct {
	mu        sync.Mutex
	path      string
	ws        *workspace.Workspace
	evalOpts  []evaluate.Option
	evaluator *evaluate.Evaluator
	evalRoots []string
}

// NewModelSource wraps ws. A non-empty path is the file Reload reads.
func NewModelSource(path string, ws *workspace.Workspace, opts ...evaluate.Option) *ModelSource {
	return &ModelSource{path: path, ws: ws, evalOpts: opts}
}

// Path returns the model file path.
func (s *ModelSource) Path() string {
	return s.path
}

// Reload reads the model file again. Evaluation history is discarded.
func (s *ModelSource) Reload() error {
	if s.path == "" {
		return errors.New("model source has no file")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read model: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ws.Open(data); err != nil {
		return err
	}
	s.evaluator = nil
	s.evalRoots = nil
	return nil
}

// View runs fn with exclusive access to the workspace.
func (s *ModelSource) View(fn func(ws *workspace.Workspace) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ws)
}

// EvaluationResult is the outcome of one evaluation step.
type EvaluationResult struct {
	Roots      []string           `json:"roots"`
	Scores     []float64          `json:"scores"`
	Satisfied  []float64          `json:"satisfied"`
	Violated   []string           `json:"violated"`
	Utility    map[string]float64 `json:"utility"`
	Parameters []string           `json:"parameters"`
	Step       int                `json:"step"`
}

// Evaluate scores the model's logic against values. History accumulates
// across calls until reset is requested or the model is reloaded.
func (s *ModelSource) Evaluate(values map[string]any, reset bool) (*EvaluationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.evaluator == nil || reset {
		roots, err := s.ws.Logic()
		if err != nil {
			return nil, err
		}
		s.evaluator, s.evalRoots = newEvaluator(roots, s.evalOpts)
	}
	if len(s.evalRoots) == 0 {
		return nil, ErrNoLogic
	}

	scores, err := s.evaluator.Evaluate(values)
	if err != nil {
		return nil, err
	}
	return &EvaluationResult{
		Roots:      s.evalRoots,
		Scores:     scores,
		Satisfied:  s.evaluator.Satisfied(),
		Violated:   s.evaluator.Violated(),
		Utility:    s.evaluator.Utility(),
		Parameters: s.evaluator.Parameters(),
		Step:       s.evaluator.Step(),
	}, nil
}

func newEvaluator(roots []logic.RootLogic, opts []evaluate.Option) (*evaluate.Evaluator, []string) {
	var (
		nodes []*types.LogicNode
		ids   []string
	)
	for _, r := range roots {
		if r.Logic == nil {
			continue
		}
		nodes = append(nodes, r.Logic)
		ids = append(ids, r.Root.Identifier)
	}
	return evaluate.New(nodes, opts...), ids
}
