package chttp_test

import (
	"reflect"
	"testing"

	"github.com/advdv/chttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
)

type widget struct{ serial int }

func TestRegistry(t *testing.T) {
	t.Run("construct builds fresh instances", func(t *testing.T) {
		reg := chttp.NewRegistry()

		serial := 0
		chttp.Provide(reg, func(chttp.Container) (*widget, error) {
			serial++
			return &widget{serial: serial}, nil
		})

		a, err := reg.Construct(reflect.TypeFor[*widget]())
		require.NoError(t, err)
		b, err := reg.Construct(reflect.TypeFor[*widget]())
		require.NoError(t, err)

		assert.NotSame(t, a, b)
		assert.Equal(t, 1, a.(*widget).serial)
		assert.Equal(t, 2, b.(*widget).serial)
	})

	t.Run("resolve memoizes a singleton", func(t *testing.T) {
		reg := chttp.NewRegistry()

		builds := 0
		chttp.Provide(reg, func(chttp.Container) (*widget, error) {
			builds++
			return &widget{}, nil
		})

		a, err := chttp.Resolve[*widget](reg)
		require.NoError(t, err)
		b, err := chttp.Resolve[*widget](reg)
		require.NoError(t, err)

		assert.Same(t, a, b)
		assert.Equal(t, 1, builds)
	})

	t.Run("providers resolve their own dependencies", func(t *testing.T) {
		reg := chttp.NewRegistry()
		chttp.ProvideValue(reg, 7)
		chttp.Provide(reg, func(c chttp.Container) (*widget, error) {
			n, err := chttp.Resolve[int](c)
			if err != nil {
				return nil, err
			}

			return &widget{serial: n}, nil
		})

		w, err := chttp.Resolve[*widget](reg)
		require.NoError(t, err)
		assert.Equal(t, 7, w.serial)
	})

	t.Run("missing provider names the known types", func(t *testing.T) {
		reg := chttp.NewRegistry()
		chttp.ProvideValue(reg, "present")

		_, err := chttp.Resolve[*widget](reg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no provider registered for *chttp_test.widget")
		assert.Contains(t, err.Error(), "string")
	})
}

func TestFromDig(t *testing.T) {
	con := dig.New()
	require.NoError(t, con.Provide(func() *widget { return &widget{serial: 99} }))

	adapted := chttp.FromDig(con)

	v, err := adapted.ResolveRequired(reflect.TypeFor[*widget]())
	require.NoError(t, err)
	assert.Equal(t, 99, v.(*widget).serial)

	t.Run("missing type faults", func(t *testing.T) {
		_, err := adapted.ResolveRequired(reflect.TypeFor[string]())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolve string from dig container")
	})
}
