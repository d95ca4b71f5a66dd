// Package model implements the KAOS graph store: it owns every item of a
// model, issues identifiers, answers lookup and adjacency queries, finds
// roots, and removes items with cascading relationship cleanup.
//
// A Model is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
package model

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/scrypster/kaosdraw/pkg/types"
)

// Model is the root graph container. Items are kept in insertion order,
// which is also the z-order and the tie-break order for logic synthesis.
type Model struct {
	// Reference is the model's own unique handle: "model_" + uuid
	Reference string

	// Identifier is the human-facing model label
	Identifier string

	items     []*types.Item
	typeCount map[string]int
}

// New creates an empty model with the given identifier.
func New(identifier string) *Model {
	return &Model{
		Reference:  "model_" + uuid.NewString(),
		Identifier: identifier,
		typeCount:  make(map[string]int),
	}
}

// Items returns the items in z-order. The returned slice is a copy; the
// items themselves are shared.
func (m *Model) Items() []*types.Item {
	out := make([]*types.Item, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the number of items in the model.
func (m *Model) Len() int {
	return len(m.items)
}

// Contains reports whether the item is a member of the model.
func (m *Model) Contains(item *types.Item) bool {
	return item != nil && m.indexOf(item.Reference) >= 0
}

// AddItem appends an item. Uniqueness is the factory's responsibility.
func (m *Model) AddItem(item *types.Item) {
	m.items = append(m.items, item)
}

// RemoveItem removes an item and, depth-first, every relationship that
// references it (including relationships attached to those relationships).
// Removing the last Agent→Goal refinement into a goal clears the goal's
// requirement flag. Removing an item that is not in the model is a no-op.
func (m *Model) RemoveItem(item *types.Item) {
	if item == nil {
		return
	}
	m.removeItem(item, make(map[string]*types.Item))
}

// removeItem keeps already-detached items in detached so that endpoint kinds
// can still be resolved while a cascade is in progress.
func (m *Model) removeItem(item *types.Item, detached map[string]*types.Item) {
	i := m.indexOf(item.Reference)
	if i < 0 {
		return
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	detached[item.Reference] = item

	for _, rel := range m.GetRelationshipsFor(item) {
		m.removeItem(rel, detached)
	}

	if item.Kind == types.KindRefinement {
		source := m.resolve(item.Source, detached)
		target := m.resolve(item.Target, detached)
		if source != nil && target != nil &&
			source.Kind == types.KindAgent && target.Kind == types.KindGoal &&
			!m.hasAgentRefinement(target) {
			target.IsRequirement = false
		}
	}
}

// hasAgentRefinement reports whether a refinement from an agent into goal is
// still in the model.
func (m *Model) hasAgentRefinement(goal *types.Item) bool {
	for _, rel := range m.GetRelationshipsFor(goal) {
		if rel.Kind != types.KindRefinement || rel.Target != goal.Reference {
			continue
		}
		if source := m.Lookup(rel.Source); source != nil && source.Kind == types.KindAgent {
			return true
		}
	}
	return false
}

// Lookup returns the item with the given reference, or nil.
func (m *Model) Lookup(reference string) *types.Item {
	if i := m.indexOf(reference); i >= 0 {
		return m.items[i]
	}
	return nil
}

// FindItem returns the first item whose attribute equals value, or nil.
// An empty attribute means "reference".
func (m *Model) FindItem(value, attribute string) *types.Item {
	for _, item := range m.items {
		if v, ok := attributeValue(item, attribute); ok && v == value {
			return item
		}
	}
	return nil
}

// FindItems returns every item whose attribute equals value, in z-order.
// Items that do not carry the attribute never match.
func (m *Model) FindItems(value, attribute string) []*types.Item {
	var out []*types.Item
	for _, item := range m.items {
		if v, ok := attributeValue(item, attribute); ok && v == value {
			out = append(out, item)
		}
	}
	return out
}

// GetRelationshipsFor returns every relationship whose source or target is
// item, in z-order. Passing a relationship finds the relationships attached
// to it.
func (m *Model) GetRelationshipsFor(item *types.Item) []*types.Item {
	if item == nil {
		return nil
	}
	var out []*types.Item
	for _, rel := range m.items {
		if !rel.IsRelationship() {
			continue
		}
		if rel.Source == item.Reference || rel.Target == item.Reference {
			out = append(out, rel)
		}
	}
	return out
}

// FindRoots returns every non-relationship item that is not the source of
// any relationship.
func (m *Model) FindRoots() []*types.Item {
	var roots []*types.Item
	for _, item := range m.items {
		if item.IsRelationship() {
			continue
		}
		isRoot := true
		for _, rel := range m.GetRelationshipsFor(item) {
			if rel.Source == item.Reference {
				isRoot = false
				break
			}
		}
		if isRoot {
			roots = append(roots, item)
		}
	}
	return roots
}

// IssueNextIdentifierNumber increments and returns the counter for a kind.
// Kind names are case- and whitespace-normalized; counters start at 1.
func (m *Model) IssueNextIdentifierNumber(kind string) int {
	key := types.NormalizeKindName(kind)
	m.typeCount[key]++
	return m.typeCount[key]
}

// reserveIdentifierNumber raises a kind's counter to at least n so that
// identifiers restored from a document are not issued again.
func (m *Model) reserveIdentifierNumber(kind string, n int) {
	key := types.NormalizeKindName(kind)
	if m.typeCount[key] < n {
		m.typeCount[key] = n
	}
}

// SetSource assigns a relationship's source and returns the partial
// constraint check. A nil item clears the source.
func (m *Model) SetSource(rel, item *types.Item) bool {
	rel.Source = ""
	if item != nil {
		rel.Source = item.Reference
	}
	return m.CheckConstraints(rel)
}

// SetTarget assigns a relationship's target and returns the full constraint
// check. Completing an Agent→Goal refinement marks the goal as a requirement.
// A nil item clears the target.
func (m *Model) SetTarget(rel, item *types.Item) bool {
	rel.Target = ""
	if item != nil {
		rel.Target = item.Reference
	}
	if rel.Kind == types.KindRefinement && item != nil && item.Kind == types.KindGoal {
		if source := m.Lookup(rel.Source); source != nil && source.Kind == types.KindAgent {
			item.IsRequirement = true
		}
	}
	return m.CheckConstraints(rel)
}

// CheckConstraints reports whether the relationship's current endpoints are
// allowed for its kind. An unassigned target checks the source only. An
// endpoint that does not resolve within the model fails the check.
func (m *Model) CheckConstraints(rel *types.Item) bool {
	if rel == nil || !rel.IsRelationship() {
		return false
	}
	source := m.Lookup(rel.Source)
	if source == nil {
		return false
	}
	var targetKind types.ItemKind
	if rel.Target != "" {
		target := m.Lookup(rel.Target)
		if target == nil {
			return false
		}
		targetKind = target.Kind
	}
	return types.CheckConstraints(rel.Kind, source.Kind, targetKind)
}

// ShiftItemForward moves an item one step up the z-order.
func (m *Model) ShiftItemForward(item *types.Item) {
	if item == nil {
		return
	}
	i := m.indexOf(item.Reference)
	if i < 0 || i == len(m.items)-1 {
		return
	}
	m.items[i], m.items[i+1] = m.items[i+1], m.items[i]
}

// ShiftItemBackward moves an item one step down the z-order.
func (m *Model) ShiftItemBackward(item *types.Item) {
	if item == nil {
		return
	}
	i := m.indexOf(item.Reference)
	if i <= 0 {
		return
	}
	m.items[i], m.items[i-1] = m.items[i-1], m.items[i]
}

// Describe renders one item. Relationships are shown as
// "<source> <Kind> <target>" and render empty until both ends are set.
func (m *Model) Describe(item *types.Item) string {
	if !item.IsRelationship() {
		return item.String()
	}
	source, target := m.Lookup(item.Source), m.Lookup(item.Target)
	if source == nil || target == nil {
		return ""
	}
	return source.Identifier + " " + string(item.Kind) + " " + target.Identifier
}

// String renders the model as a header line followed by one line per item.
func (m *Model) String() string {
	var b strings.Builder
	b.WriteString("Model " + m.Identifier + "\n")
	for _, item := range m.items {
		b.WriteString(m.Describe(item) + "\n")
	}
	return b.String()
}

func (m *Model) indexOf(reference string) int {
	for i, item := range m.items {
		if item.Reference == reference {
			return i
		}
	}
	return -1
}

func (m *Model) resolve(reference string, detached map[string]*types.Item) *types.Item {
	if item := m.Lookup(reference); item != nil {
		return item
	}
	return detached[reference]
}

// attributeValue returns an item's attribute as a string. The second result
// is false when the item's kind does not carry the attribute.
func attributeValue(item *types.Item, attribute string) (string, bool) {
	switch attribute {
	case "", "reference":
		return item.Reference, true
	case "identifier":
		return item.Identifier, true
	case "kind":
		return string(item.Kind), true
	case "description":
		return item.Description, item.IsElement()
	case "objective":
		return string(item.Objective), item.Kind == types.KindGoal
	case "isRequirement":
		return strconv.FormatBool(item.IsRequirement), item.Kind == types.KindGoal
	case "topic":
		return item.Topic, item.Kind == types.KindAgent
	case "source":
		return item.Source, item.IsRelationship()
	case "target":
		return item.Target, item.IsRelationship()
	}
	return "", false
}
