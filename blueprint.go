package chttp

// Routable is the registration contract for dispatchable handler types: the type declares its
// routable methods and construction strategy through a blueprint. The blueprint is read from the
// type's zero value, so the method must not depend on receiver state.
type Routable[H any] interface {
	Blueprint() Blueprint[H]
}

// Blueprint declares the routable methods of a handler type in matching order, plus how instances
// are constructed per request. Without an explicit constructor the zero value is used.
type Blueprint[H any] struct {
	construct     func() H
	constructWith func(Container) (H, error)
	methods       []Method[H]
}

// NewBlueprint declares a handler type's methods. Declaration order determines matching
// tie-breaks, see the package documentation.
func NewBlueprint[H any](methods ...Method[H]) Blueprint[H] {
	return Blueprint[H]{methods: methods}
}

// Construct sets a no-argument constructor. This is the fast path: the dependency container is
// never consulted for handler construction.
func (b Blueprint[H]) Construct(fn func() H) Blueprint[H] {
	b.construct = fn
	return b
}

// ConstructWith sets a constructor that draws the handler's dependencies from the container.
func (b Blueprint[H]) ConstructWith(fn func(Container) (H, error)) Blueprint[H] {
	b.constructWith = fn
	return b
}
