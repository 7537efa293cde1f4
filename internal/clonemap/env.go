package clonemap

import "whyclone/internal/types"

// Env answers which clones a definition itself declared. The returned map
// is the definition's own dependency table: its keys are the dependencies
// under the definition's generic parameters and its names are the ones the
// definition's module uses internally.
type Env interface {
	Dependencies(def types.DefID) (*CloneMap, bool)
}

// Tables is an Env backed by a plain map.
type Tables map[types.DefID]*CloneMap

// Dependencies implements Env.
func (t Tables) Dependencies(def types.DefID) (*CloneMap, bool) {
	m, ok := t[def]
	return m, ok
}
