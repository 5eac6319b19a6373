package chttp

import (
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Container resolves externally provided services: handler construction on the slow path and
// Service-sourced parameters draw from it. Implementations may fault when a dependency cannot be
// satisfied; such faults are fatal to the request.
type Container interface {
	// Construct builds a fresh instance of the given type.
	Construct(typ reflect.Type) (any, error)
	// ResolveRequired returns the instance registered for the given type.
	ResolveRequired(typ reflect.Type) (any, error)
}

// Registry is the built-in [Container]: providers registered per type with [Provide] or
// [ProvideValue]. Construct builds a fresh instance on every call while ResolveRequired memoizes
// a singleton. Safe for concurrent use; racing first resolves may build twice but retain one.
type Registry struct {
	mu         sync.Mutex
	providers  map[reflect.Type]func(Container) (any, error)
	singletons map[reflect.Type]any
}

// NewRegistry inits an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers:  make(map[reflect.Type]func(Container) (any, error)),
		singletons: make(map[reflect.Type]any),
	}
}

// Provide registers a provider for T. The provider receives the registry itself so it can resolve
// its own dependencies.
func Provide[T any](r *Registry, fn func(Container) (T, error)) {
	typ := reflect.TypeFor[T]()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[typ] = func(c Container) (any, error) { return fn(c) }
}

// ProvideValue registers an already-constructed value for T.
func ProvideValue[T any](r *Registry, v T) {
	Provide(r, func(Container) (T, error) { return v, nil })
}

func (r *Registry) provider(typ reflect.Type) (func(Container) (any, error), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn, ok := r.providers[typ]
	if !ok {
		known := lo.Map(lo.Keys(r.providers), func(t reflect.Type, _ int) string { return t.String() })

		return nil, errors.Newf("no provider registered for %s, got: %v", typ, known)
	}

	return fn, nil
}

// Construct implements [Container].
func (r *Registry) Construct(typ reflect.Type) (any, error) {
	fn, err := r.provider(typ)
	if err != nil {
		return nil, err
	}

	return fn(r)
}

// ResolveRequired implements [Container].
func (r *Registry) ResolveRequired(typ reflect.Type) (any, error) {
	r.mu.Lock()
	v, ok := r.singletons[typ]
	r.mu.Unlock()

	if ok {
		return v, nil
	}

	fn, err := r.provider(typ)
	if err != nil {
		return nil, err
	}

	// built outside the lock so providers can resolve their own dependencies; a racing
	// build may run twice but only one result is retained.
	v, err = fn(r)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.singletons[typ]; ok {
		return prev, nil
	}

	r.singletons[typ] = v

	return v, nil
}

// Resolve is a typed convenience on top of [Container.ResolveRequired].
func Resolve[T any](c Container) (T, error) {
	var zero T

	v, err := c.ResolveRequired(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}

	tv, ok := v.(T)
	if !ok {
		return zero, errors.Newf("container resolved %T, want %T", v, zero)
	}

	return tv, nil
}
