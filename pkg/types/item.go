package types

import "fmt"

// Objective is the temporal objective attached to a goal.
type Objective string

// Goal objective constants
const (
	// ObjectiveNone indicates no objective was chosen
	ObjectiveNone Objective = ""

	// ObjectiveAchieve indicates the goal must hold at some point
	ObjectiveAchieve Objective = "achieve"

	// ObjectiveAvoid indicates the goal condition must never hold
	ObjectiveAvoid Objective = "avoid"

	// ObjectiveMaintain indicates the goal must hold at all times
	ObjectiveMaintain Objective = "maintain"
)

// ValidObjectives lists every accepted objective value, including none.
var ValidObjectives = []Objective{
	ObjectiveNone,
	ObjectiveAchieve,
	ObjectiveAvoid,
	ObjectiveMaintain,
}

// IsValidObjective checks if the given string is an accepted objective value.
func IsValidObjective(s string) bool {
	for _, o := range ValidObjectives {
		if string(o) == s {
			return true
		}
	}
	return false
}

// Item is anything placeable in a KAOS model. Elements and relationships
// share this single record; fields that do not apply to an item's kind are
// left at their zero values.
//
// Source and Target hold item references rather than pointers, so removing
// an item never leaves a relationship pointing at freed state.
type Item struct {
	// Reference is the globally unique, immutable handle: lower-case kind + "_" + uuid
	Reference string `json:"reference"`

	// Identifier is the human-facing label, e.g. "G3"
	Identifier string `json:"identifier"`

	// Kind is the concrete item kind
	Kind ItemKind `json:"kind"`

	// Description is free text (elements only)
	Description string `json:"description,omitempty"`

	// Objective applies to goals only
	Objective Objective `json:"objective,omitempty"`

	// IsRequirement is true iff an agent refines this goal (goals only)
	IsRequirement bool `json:"is_requirement,omitempty"`

	// Topic is free text (agents only)
	Topic string `json:"topic,omitempty"`

	// UtilityFunction applies to goals and domain properties
	UtilityFunction *Function `json:"utility_function,omitempty"`

	// OperatingCondition applies to obstacles
	OperatingCondition *Function `json:"operating_condition,omitempty"`

	// Source is the reference of the relationship's source item
	Source string `json:"source,omitempty"`

	// Target is the reference of the relationship's target item
	Target string `json:"target,omitempty"`
}

// NewItem builds an item of the given kind with its reference derived from id.
// The identifier is left empty; the model's factory assigns it.
func NewItem(kind ItemKind, id string) *Item {
	return &Item{
		Reference: kind.ReferencePrefix() + "_" + id,
		Kind:      kind,
	}
}

// IsElement reports whether the item is an element.
func (i *Item) IsElement() bool { return i.Kind.IsElement() }

// IsRelationship reports whether the item is a relationship.
func (i *Item) IsRelationship() bool { return i.Kind.IsRelationship() }

// Function returns the item's attached function, utility first. At most one
// is expected on a well-formed item.
func (i *Item) Function() *Function {
	if i.UtilityFunction != nil {
		return i.UtilityFunction
	}
	return i.OperatingCondition
}

// Clone returns a deep copy of the item.
func (i *Item) Clone() *Item {
	c := *i
	c.UtilityFunction = i.UtilityFunction.Clone()
	c.OperatingCondition = i.OperatingCondition.Clone()
	return &c
}

// String renders an element as `Goal G1 "description"`. Relationships need
// their endpoints resolved and are rendered by the model.
func (i *Item) String() string {
	if i.IsElement() {
		return fmt.Sprintf("%s %s %q", i.Kind, i.Identifier, i.Description)
	}
	return fmt.Sprintf("%s %s", i.Kind, i.Identifier)
}

// Violation is a single validation finding attached to an item or model.
type Violation struct {
	// Reference identifies the offending item or model
	Reference string `json:"reference"`

	// Message is the human-readable description of the problem
	Message string `json:"message"`
}
