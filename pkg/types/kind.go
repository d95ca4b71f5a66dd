// Package types defines the core data structures for the KAOS model engine.
// These types represent items (elements and relationships), their attached
// functions, relationship constraints, validation violations and the
// synthesized logic tree that is exported for evaluation.
package types

import "strings"

// ItemKind identifies the concrete kind of an item in a KAOS model.
// The set of kinds is closed; every switch over ItemKind is expected to
// cover all of them.
type ItemKind string

// Element kinds
const (
	// KindAgent is an actor (human or software) responsible for goals
	KindAgent ItemKind = "Agent"

	// KindGoal is a prescriptive statement the system should satisfy
	KindGoal ItemKind = "Goal"

	// KindObstacle is a condition that obstructs a goal
	KindObstacle ItemKind = "Obstacle"

	// KindDomainProperty is a descriptive statement about the environment
	KindDomainProperty ItemKind = "DomainProperty"
)

// Relationship kinds
const (
	// KindRefinement links a sub-item to the item it helps satisfy
	KindRefinement ItemKind = "Refinement"

	// KindConflict links an obstacle to the goal it prevents
	KindConflict ItemKind = "Conflict"

	// KindResolution links a goal or domain property to the obstacle it mitigates
	KindResolution ItemKind = "Resolution"
)

// ValidItemKinds is a slice of all item kinds in canonical order.
var ValidItemKinds = []ItemKind{
	KindAgent,
	KindGoal,
	KindObstacle,
	KindDomainProperty,
	KindRefinement,
	KindConflict,
	KindResolution,
}

// legacyKindPrefix is carried by element names in the structural XML dialect.
const legacyKindPrefix = "kaos"

// IsValidItemKind checks if the given kind string is one of the defined kinds.
// The comparison is exact; use ParseItemKind for user input.
func IsValidItemKind(kind string) bool {
	for _, k := range ValidItemKinds {
		if string(k) == kind {
			return true
		}
	}
	return false
}

// ParseItemKind normalizes free-form input into an ItemKind. Whitespace is
// trimmed, matching is case-insensitive and an optional "KAOS" prefix
// (as used by XML element names such as "KAOSGoal") is accepted.
func ParseItemKind(s string) (ItemKind, bool) {
	name := foldKindName(s)
	for _, k := range ValidItemKinds {
		if foldKindName(string(k)) == name {
			return k, true
		}
	}
	return "", false
}

// foldKindName lower-cases, trims and strips the legacy "KAOS" prefix.
func foldKindName(s string) string {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, legacyKindPrefix) && len(name) > len(legacyKindPrefix) {
		name = name[len(legacyKindPrefix):]
	}
	return name
}

// NormalizeKindName returns the case- and whitespace-folded key under which
// per-kind identifier counters are kept.
func NormalizeKindName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsElement reports whether the kind is a placeable element (not a relationship).
func (k ItemKind) IsElement() bool {
	switch k {
	case KindAgent, KindGoal, KindObstacle, KindDomainProperty:
		return true
	case KindRefinement, KindConflict, KindResolution:
		return false
	}
	return false
}

// IsRelationship reports whether the kind links two other items.
func (k ItemKind) IsRelationship() bool {
	switch k {
	case KindRefinement, KindConflict, KindResolution:
		return true
	case KindAgent, KindGoal, KindObstacle, KindDomainProperty:
		return false
	}
	return false
}

// SupportsUtility reports whether items of this kind may carry a utility function.
func (k ItemKind) SupportsUtility() bool {
	return k == KindGoal || k == KindDomainProperty
}

// SupportsOperating reports whether items of this kind may carry an operating condition.
func (k ItemKind) SupportsOperating() bool {
	return k == KindObstacle
}

// ReferencePrefix returns the lower-case kind name used to build references.
func (k ItemKind) ReferencePrefix() string {
	return strings.ToLower(string(k))
}

// IdentifierPrefix returns the prefix of auto-issued identifiers for a kind.
// All relationship kinds share the "R" prefix but keep separate counters.
func IdentifierPrefix(kind ItemKind) string {
	switch kind {
	case KindAgent:
		return "A"
	case KindGoal:
		return "G"
	case KindObstacle:
		return "O"
	case KindDomainProperty:
		return "D"
	case KindRefinement, KindConflict, KindResolution:
		return "R"
	}
	return ""
}

// Definition returns the one-line notation definition of a kind, as shown
// next to the kind name in editors and CLI listings.
func Definition(kind ItemKind) string {
	switch kind {
	case KindAgent:
		return "An active system component responsible for satisfying goals."
	case KindGoal:
		return "A prescriptive statement of intent the system should satisfy."
	case KindObstacle:
		return "A condition whose satisfaction prevents a goal from being achieved."
	case KindDomainProperty:
		return "A descriptive statement about the environment that holds regardless of the system."
	case KindRefinement:
		return "Links a sub-item to the item it contributes to satisfying."
	case KindConflict:
		return "Links an obstacle to the goal it obstructs."
	case KindResolution:
		return "Links a goal or domain property to the obstacle it resolves."
	}
	return ""
}
