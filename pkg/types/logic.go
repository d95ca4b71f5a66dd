package types

import "strings"

// Operator is a boolean connective in a synthesized logic tree.
type Operator string

// Logic operator constants
const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
	OpIf  Operator = "IF"

	// OpIff is reserved by the export format; synthesis never produces it
	OpIff Operator = "IFF"
)

// Logic XML element names
const (
	TagConjunction   = "Conjunction"
	TagDisjunction   = "Disjunction"
	TagConditional   = "Conditional"
	TagBiconditional = "Biconditional"
)

// ExportTag maps an operator to its Logic XML element name.
func ExportTag(op Operator) string {
	switch op {
	case OpAnd:
		return TagConjunction
	case OpOr:
		return TagDisjunction
	case OpIf:
		return TagConditional
	case OpIff:
		return TagBiconditional
	}
	return ""
}

// OperatorForTag is the inverse of ExportTag.
func OperatorForTag(tag string) (Operator, bool) {
	switch tag {
	case TagConjunction:
		return OpAnd, true
	case TagDisjunction:
		return OpOr, true
	case TagConditional:
		return OpIf, true
	case TagBiconditional:
		return OpIff, true
	}
	return "", false
}

// LogicLeaf is a terminal condition: the function attached to an item.
type LogicLeaf struct {
	// Identifier is the identifier of the item carrying the function
	Identifier string `json:"id"`

	// Kind is the kind of the item carrying the function
	Kind ItemKind `json:"kind,omitempty"`

	// Objective is the owning goal's objective, if any
	Objective Objective `json:"objective,omitempty"`

	// Function is a snapshot of the attached function
	Function *Function `json:"function"`
}

// LogicNode is a node of a synthesized logic tree. Internal nodes carry an
// operator and the identifier of the item they were built for; leaves carry
// a LogicLeaf and no operator.
type LogicNode struct {
	Op         Operator     `json:"op,omitempty"`
	Identifier string       `json:"id,omitempty"`
	Children   []*LogicNode `json:"children,omitempty"`
	Leaf       *LogicLeaf   `json:"leaf,omitempty"`
}

// IsLeaf reports whether the node is a terminal condition.
func (n *LogicNode) IsLeaf() bool {
	return n != nil && n.Leaf != nil
}

// IsOperatingCondition reports whether the node is a leaf holding an
// operating condition.
func (n *LogicNode) IsOperatingCondition() bool {
	return n.IsLeaf() && n.Leaf.Function != nil && n.Leaf.Function.Role == RoleOperating
}

// Leaves returns every leaf below n in depth-first order.
func (n *LogicNode) Leaves() []*LogicLeaf {
	if n == nil {
		return nil
	}
	if n.Leaf != nil {
		return []*LogicLeaf{n.Leaf}
	}
	var out []*LogicLeaf
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// String renders the tree in its human-readable form:
//
//	AND -> (a AND b)
//	OR  -> (a OR b)
//	IF  -> (IF a THEN b OR c)
//	IFF -> (IFF a THEN b)
func (n *LogicNode) String() string {
	if n == nil {
		return ""
	}
	if n.Leaf != nil {
		return n.Leaf.Function.String()
	}

	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, c.String())
	}

	switch n.Op {
	case OpAnd:
		return "(" + strings.Join(parts, " AND ") + ")"
	case OpOr:
		return "(" + strings.Join(parts, " OR ") + ")"
	case OpIf, OpIff:
		if len(parts) == 0 {
			return ""
		}
		return "(" + string(n.Op) + " " + parts[0] + " THEN " + strings.Join(parts[1:], " OR ") + ")"
	}
	return ""
}
