package model

import (
	"errors"

	"github.com/scrypster/kaosdraw/pkg/types"
)

// Connection rejection reasons.
var (
	ErrNotRelationship       = errors.New("only relationships can connect items")
	ErrInvalidSource         = errors.New("invalid source for relationship")
	ErrInvalidTarget         = errors.New("invalid target for relationship")
	ErrMissingTarget         = errors.New("no target for relationship")
	ErrSelfConnection        = errors.New("item cannot connect to itself")
	ErrDuplicateRelationship = errors.New("relationship already exists")
	ErrOneWayRelationship    = errors.New("relationships must only be one-way")
	ErrConnectionClosed      = errors.New("connection is already closed")
)

// Connection is an in-progress connect gesture: a relationship whose source
// is set and whose target is still pending. Every outcome other than a
// successful Complete removes the relationship from the model, so a
// half-built relationship is never left attached.
type Connection struct {
	model  *Model
	rel    *types.Item
	closed bool
}

// BeginConnect creates a relationship of the given kind from source. If the
// source is not allowed for the kind the relationship is discarded and
// ErrInvalidSource is returned.
func (m *Model) BeginConnect(kind types.ItemKind, source *types.Item) (*Connection, error) {
	if !kind.IsRelationship() {
		return nil, ErrNotRelationship
	}
	if source == nil || !m.Contains(source) {
		return nil, ErrInvalidSource
	}

	rel, err := m.NewItem(kind)
	if err != nil {
		return nil, err
	}
	if !m.SetSource(rel, source) {
		m.RemoveItem(rel)
		return nil, ErrInvalidSource
	}
	return &Connection{model: m, rel: rel}, nil
}

// Relationship returns the relationship being built.
func (c *Connection) Relationship() *types.Item {
	return c.rel
}

// Complete connects the pending relationship to target and returns the
// resulting relationship. An Obstacle→Goal link becomes a Conflict, and a
// Goal→Obstacle or DomainProperty→Obstacle link becomes a Resolution, so
// the returned item may differ from Relationship().
func (c *Connection) Complete(target *types.Item) (*types.Item, error) {
	if c.closed {
		return nil, ErrConnectionClosed
	}
	c.closed = true
	m := c.model

	source := m.Lookup(c.rel.Source)
	if source == nil || target == nil || !m.Contains(target) {
		m.RemoveItem(c.rel)
		return nil, ErrMissingTarget
	}
	if target.Reference == c.rel.Reference || target.Reference == source.Reference {
		m.RemoveItem(c.rel)
		return nil, ErrSelfConnection
	}

	// Endpoints are checked before the target is assigned so that a
	// rejected link never touches the target's requirement flag.
	if !types.CheckConstraints(c.rel.Kind, source.Kind, target.Kind) {
		m.RemoveItem(c.rel)
		return nil, ErrInvalidTarget
	}

	for _, other := range m.items {
		if !other.IsRelationship() || other.Reference == c.rel.Reference {
			continue
		}
		if other.Source == source.Reference && other.Target == target.Reference {
			m.RemoveItem(c.rel)
			return nil, ErrDuplicateRelationship
		}
		if other.Source == target.Reference && other.Target == source.Reference {
			m.RemoveItem(c.rel)
			return nil, ErrOneWayRelationship
		}
	}

	alt, ok := convertedKind(source.Kind, target.Kind)
	if !ok || alt == c.rel.Kind {
		m.SetTarget(c.rel, target)
		return c.rel, nil
	}

	m.RemoveItem(c.rel)
	rel, err := m.NewItem(alt)
	if err != nil {
		return nil, err
	}
	m.SetSource(rel, source)
	m.SetTarget(rel, target)
	c.rel = rel
	return rel, nil
}

// Cancel abandons the gesture and removes the pending relationship.
func (c *Connection) Cancel() {
	if c.closed {
		return
	}
	c.closed = true
	c.model.RemoveItem(c.rel)
}

// convertedKind returns the relationship kind a completed link between the
// given endpoint kinds is stored as.
func convertedKind(source, target types.ItemKind) (types.ItemKind, bool) {
	switch {
	case source == types.KindObstacle && target == types.KindGoal:
		return types.KindConflict, true
	case source == types.KindGoal && target == types.KindObstacle:
		return types.KindResolution, true
	case source == types.KindDomainProperty && target == types.KindObstacle:
		return types.KindResolution, true
	}
	return "", false
}
