package clonemap

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCyclicDependency means the clones of a unit cannot be ordered.
	ErrCyclicDependency = errors.New("cyclic clone dependency")
	// ErrUnresolvedProjection means an associated type has no trait
	// instantiation to read it from.
	ErrUnresolvedProjection = errors.New("unresolved associated type projection")
	// ErrNotCloneable is returned for definitions that have no module of
	// their own, such as types and associated items.
	ErrNotCloneable = errors.New("definition cannot be cloned")
	// ErrLateProjection means a binding turned up for a clone that was
	// already emitted without it.
	ErrLateProjection = errors.New("associated type bound after its clone was emitted")
)

// CycleError names the clones of one dependency cycle in edge order.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	if len(e.Nodes) == 0 {
		return ErrCyclicDependency.Error()
	}
	return fmt.Sprintf("%s: %s -> %s", ErrCyclicDependency, strings.Join(e.Nodes, " -> "), e.Nodes[0])
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }

// ProjectionError reports the projection and the clone mentioning it.
type ProjectionError struct {
	Assoc string // associated type path
	Node  string // clone that needs it
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("%s: %s in %s", ErrUnresolvedProjection, e.Assoc, e.Node)
}

func (e *ProjectionError) Unwrap() error { return ErrUnresolvedProjection }

// LateProjectionError names the binding an emitted clone is missing.
type LateProjectionError struct {
	Assoc string
	Node  string
}

func (e *LateProjectionError) Error() string {
	return fmt.Sprintf("%s: %s in %s", ErrLateProjection, e.Assoc, e.Node)
}

func (e *LateProjectionError) Unwrap() error { return ErrLateProjection }
