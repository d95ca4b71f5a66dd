package types

// ConstraintPair is one legal (source kind, target kind) combination for a
// relationship kind.
type ConstraintPair struct {
	Source ItemKind `json:"source"`
	Target ItemKind `json:"target"`
}

var refinementConstraints = []ConstraintPair{
	{KindGoal, KindGoal},
	{KindGoal, KindObstacle},
	{KindGoal, KindRefinement},
	{KindObstacle, KindGoal},
	{KindObstacle, KindObstacle},
	{KindObstacle, KindRefinement},
	{KindAgent, KindGoal},
	{KindAgent, KindObstacle},
	{KindAgent, KindRefinement},
	{KindDomainProperty, KindGoal},
	{KindDomainProperty, KindObstacle},
	{KindDomainProperty, KindRefinement},
}

var conflictConstraints = []ConstraintPair{
	{KindObstacle, KindGoal},
}

var resolutionConstraints = []ConstraintPair{
	{KindGoal, KindObstacle},
	{KindDomainProperty, KindObstacle},
}

// Constraints returns the allow-list of a relationship kind. Elements have
// no constraints.
func Constraints(kind ItemKind) []ConstraintPair {
	switch kind {
	case KindRefinement:
		return refinementConstraints
	case KindConflict:
		return conflictConstraints
	case KindResolution:
		return resolutionConstraints
	case KindAgent, KindGoal, KindObstacle, KindDomainProperty:
		return nil
	}
	return nil
}

// CheckConstraints reports whether a relationship of the given kind may link
// source to target. An empty target means the target is not assigned yet and
// only the source is checked. An empty source never passes.
func CheckConstraints(kind ItemKind, source, target ItemKind) bool {
	if source == "" {
		return false
	}
	for _, c := range Constraints(kind) {
		if c.Source == source && (target == "" || c.Target == target) {
			return true
		}
	}
	return false
}
