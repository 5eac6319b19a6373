package chttp

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"go.uber.org/dig"
)

type digContainer struct {
	con *dig.Container
}

// FromDig adapts a dig container to the [Container] interface so fx/dig applications can plug
// their object graph in as the dependency collaborator. Dig constructs on demand, so Construct
// and ResolveRequired behave identically.
func FromDig(con *dig.Container) Container {
	return digContainer{con}
}

func (d digContainer) resolve(typ reflect.Type) (any, error) {
	var out reflect.Value

	sink := reflect.MakeFunc(
		reflect.FuncOf([]reflect.Type{typ}, nil, false),
		func(args []reflect.Value) []reflect.Value {
			out = args[0]
			return nil
		},
	)

	if err := d.con.Invoke(sink.Interface()); err != nil {
		return nil, errors.Wrapf(err, "resolve %s from dig container", typ)
	}

	return out.Interface(), nil
}

// Construct implements [Container].
func (d digContainer) Construct(typ reflect.Type) (any, error) { return d.resolve(typ) }

// ResolveRequired implements [Container].
func (d digContainer) ResolveRequired(typ reflect.Type) (any, error) { return d.resolve(typ) }
