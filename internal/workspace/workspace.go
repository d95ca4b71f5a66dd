// Package workspace is the editing facade driven by the CLI and the preview
// server. It owns one model, the current selection and the undo history.
// Every mutation snapshots the whole model first; undo and redo restore
// snapshots wholesale.
//
// A Workspace is not safe for concurrent use.
package workspace

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/scrypster/kaosdraw/internal/history"
	"github.com/scrypster/kaosdraw/internal/kaosxml"
	"github.com/scrypster/kaosdraw/internal/logic"
	"github.com/scrypster/kaosdraw/internal/model"
	"github.com/scrypster/kaosdraw/internal/validator"
	"github.com/scrypster/kaosdraw/pkg/types"
)

// Option configures a Workspace.
type Option func(*Workspace)

// WithHistorySize bounds the undo history.
func WithHistorySize(n int) Option {
	return func(w *Workspace) {
		w.history = history.New(n)
	}
}

// WithLogger sets the logger used for workspace events.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workspace) {
		w.logger = l
	}
}

// WithLogicOptions passes options to every logic synthesis run.
func WithLogicOptions(opts ...logic.Option) Option {
	return func(w *Workspace) {
		w.logicOpts = opts
	}
}

// Workspace holds the model being edited.
type Workspace struct {
	model     *model.Model
	history   *history.History
	selection string
	logger    zerolog.Logger
	logicOpts []logic.Option
}

// New creates a workspace with an empty model.
func New(identifier string, opts ...Option) *Workspace {
	w := &Workspace{
		model:   model.New(identifier),
		history: history.New(history.DefaultMaxEntries),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open replaces the model with a structural document. History and
// selection are cleared.
func (w *Workspace) Open(data []byte) error {
	m, err := kaosxml.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("open model: %w", err)
	}
	w.model = m
	w.selection = ""
	w.history.Clear()
	w.logger.Debug().Str("model", m.Identifier).Int("items", m.Len()).Msg("Workspace: model opened")
	return nil
}

// Model returns the model being edited.
func (w *Workspace) Model() *model.Model {
	return w.model
}

// History returns the undo history.
func (w *Workspace) History() *history.History {
	return w.history
}

// Create adds a new item of the given kind and selects it.
func (w *Workspace) Create(kind types.ItemKind) (*types.Item, error) {
	if !types.IsValidItemKind(string(kind)) {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
	var item *types.Item
	err := w.mutate(func() error {
		var err error
		item, err = w.model.NewItem(kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	w.selection = item.Reference
	return item, nil
}

// Connect links source to target with a relationship of the given kind and
// selects the result. The returned relationship may be of a different kind
// when the endpoints call for a conflict or resolution.
func (w *Workspace) Connect(kind types.ItemKind, source, target *types.Item) (*types.Item, error) {
	var rel *types.Item
	err := w.mutate(func() error {
		conn, err := w.model.BeginConnect(kind, source)
		if err != nil {
			return err
		}
		rel, err = conn.Complete(target)
		return err
	})
	if err != nil {
		return nil, err
	}
	w.selection = rel.Reference
	return rel, nil
}

// Remove deletes item and every relationship that depends on it.
func (w *Workspace) Remove(item *types.Item) bool {
	if item == nil || !w.model.Contains(item) {
		return false
	}
	_ = w.mutate(func() error {
		w.model.RemoveItem(item)
		return nil
	})
	if w.model.Lookup(w.selection) == nil {
		w.selection = ""
	}
	return true
}

// Update applies attribute edits to item and returns the combined error
// message, empty when every edit was accepted.
func (w *Workspace) Update(item *types.Item, values map[string]string) string {
	var msg string
	_ = w.mutate(func() error {
		msg = w.model.UpdateItem(item, values)
		return nil
	})
	return msg
}

// SetModelIdentifier renames the model.
func (w *Workspace) SetModelIdentifier(identifier string) {
	_ = w.mutate(func() error {
		w.model.Identifier = identifier
		return nil
	})
}

// Select makes the item with the given reference current. An empty or
// unknown reference clears the selection and reports false.
func (w *Workspace) Select(reference string) bool {
	if w.model.Lookup(reference) == nil {
		w.selection = ""
		return false
	}
	w.selection = reference
	return true
}

// Selection returns the selected item, or nil.
func (w *Workspace) Selection() *types.Item {
	return w.model.Lookup(w.selection)
}

// Undo restores the state before the most recent mutation. The model is
// replaced, so items obtained earlier must be looked up again.
func (w *Workspace) Undo() bool {
	current, err := w.snapshot()
	if err != nil {
		w.logger.Error().Err(err).Msg("Workspace: snapshot failed")
		return false
	}
	s, ok := w.history.Undo(current)
	if !ok {
		return false
	}
	return w.restore(s)
}

// Redo reapplies the most recently undone mutation.
func (w *Workspace) Redo() bool {
	current, err := w.snapshot()
	if err != nil {
		w.logger.Error().Err(err).Msg("Workspace: snapshot failed")
		return false
	}
	s, ok := w.history.Redo(current)
	if !ok {
		return false
	}
	return w.restore(s)
}

// Validate returns every violation in the model.
func (w *Workspace) Validate() []types.Violation {
	return validator.Validate(w.model)
}

// Logic synthesizes logic for every root.
func (w *Workspace) Logic() ([]logic.RootLogic, error) {
	return logic.NewSynthesizer(w.model, w.logicOpts...).ForRoots()
}

// LogicText renders root logic one line per root.
func (w *Workspace) LogicText() (string, error) {
	roots, err := w.Logic()
	if err != nil {
		return "", err
	}
	return logic.Text(roots), nil
}

// LogicXML exports root logic as a Logic document.
func (w *Workspace) LogicXML() ([]byte, error) {
	roots, err := w.Logic()
	if err != nil {
		return nil, err
	}
	return kaosxml.MarshalLogic(w.model.Identifier, roots)
}

// KAOSXML exports the model as a structural document.
func (w *Workspace) KAOSXML() ([]byte, error) {
	return kaosxml.Marshal(w.model)
}

// mutate runs fn and records the prior state when fn succeeds.
func (w *Workspace) mutate(fn func() error) error {
	before, snapErr := w.snapshot()
	if err := fn(); err != nil {
		return err
	}
	if snapErr != nil {
		w.logger.Error().Err(snapErr).Msg("Workspace: snapshot failed, change cannot be undone")
		return nil
	}
	w.history.Record(before)
	return nil
}

// snapshot captures the model and the selected item's reference. References
// survive the round trip through the structural document.
func (w *Workspace) snapshot() (history.Snapshot, error) {
	data, err := kaosxml.Marshal(w.model)
	if err != nil {
		return history.Snapshot{}, err
	}
	s := history.Snapshot{Document: data}
	if item := w.Selection(); item != nil {
		s.Selection = item.Reference
	}
	return s, nil
}

func (w *Workspace) restore(s history.Snapshot) bool {
	m, err := kaosxml.Unmarshal(s.Document)
	if err != nil {
		w.logger.Error().Err(err).Msg("Workspace: restore failed")
		return false
	}
	w.model = m
	w.selection = ""
	if item := m.Lookup(s.Selection); item != nil {
		w.selection = item.Reference
	}
	return true
}
