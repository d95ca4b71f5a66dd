package logic

import (
	"errors"
	"fmt"
)

// Default traversal limits.
const (
	DefaultMaxDepth = 64
	DefaultMaxNodes = 10000
)

var (
	// ErrBoundsExceeded is returned when synthesis would exceed its depth or node limits.
	ErrBoundsExceeded = errors.New("logic synthesis bounds exceeded")

	// ErrCycle is returned when a refinement chain leads back to an item on the current path.
	ErrCycle = errors.New("refinement cycle detected")
)

// Bounds limits a single synthesis run.
type Bounds struct {
	// MaxDepth is the maximum recursion depth from the starting item
	MaxDepth int

	// MaxNodes is the maximum number of item visits across the whole run
	MaxNodes int
}

// Normalize replaces non-positive limits with defaults.
func (b *Bounds) Normalize() {
	if b.MaxDepth <= 0 {
		b.MaxDepth = DefaultMaxDepth
	}
	if b.MaxNodes <= 0 {
		b.MaxNodes = DefaultMaxNodes
	}
}

// boundsChecker tracks one synthesis run: visits, depth and the items on
// the current recursion path.
type boundsChecker struct {
	bounds       Bounds
	nodesVisited int
	maxDepth     int
	path         map[string]string
}

func newBoundsChecker(bounds Bounds) *boundsChecker {
	bounds.Normalize()
	return &boundsChecker{
		bounds: bounds,
		path:   make(map[string]string),
	}
}

// enter records a visit to the item with the given reference at depth.
func (b *boundsChecker) enter(reference, identifier string, depth int) error {
	if _, onPath := b.path[reference]; onPath {
		return fmt.Errorf("%w: %s is reached again through its own refinements", ErrCycle, identifier)
	}
	if depth > b.bounds.MaxDepth {
		return fmt.Errorf("%w: max depth (%d) exceeded at %s", ErrBoundsExceeded, b.bounds.MaxDepth, identifier)
	}
	if b.nodesVisited >= b.bounds.MaxNodes {
		return fmt.Errorf("%w: max nodes (%d) exceeded", ErrBoundsExceeded, b.bounds.MaxNodes)
	}
	b.nodesVisited++
	if depth > b.maxDepth {
		b.maxDepth = depth
	}
	b.path[reference] = identifier
	return nil
}

func (b *boundsChecker) leave(reference string) {
	delete(b.path, reference)
}

// Stats reports how much of the bounds a run consumed.
type Stats struct {
	NodesVisited int
	DepthReached int
}

func (b *boundsChecker) stats() Stats {
	return Stats{NodesVisited: b.nodesVisited, DepthReached: b.maxDepth}
}
