package chttp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/chttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Pong struct{}

func (Pong) Ping() (chttp.Return, error) {
	return chttp.Value("pong"), nil
}

func (Pong) Blueprint() chttp.Blueprint[Pong] {
	return chttp.NewBlueprint(
		chttp.M0(http.MethodGet, "/ping", Pong.Ping),
	)
}

func headerMiddleware(key, value string) chttp.Middleware {
	return func(next chttp.BareHandler) chttp.BareHandler {
		return chttp.BareHandlerFunc(func(w chttp.ResponseWriter, r *http.Request) error {
			w.Header().Add(key, value)
			return next.ServeBareHTTP(w, r)
		})
	}
}

func TestServeMux(t *testing.T) {
	t.Run("middleware runs before dispatchers", func(t *testing.T) {
		mux := chttp.NewServeMux()
		mux.Use(headerMiddleware("X-Order", "first"), headerMiddleware("X-Order", "second"))
		chttp.MustMount[Pong](mux)

		rec := serve(t, mux, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"first", "second"}, rec.Header().Values("X-Order"))
		assert.JSONEq(t, `"pong"`, rec.Body.String())
	})

	t.Run("use after mount panics", func(t *testing.T) {
		mux := chttp.NewServeMux()
		chttp.MustMount[Pong](mux)

		assert.PanicsWithValue(t, "chttp: cannot call Use() after calling Mount", func() {
			mux.Use(headerMiddleware("X-Late", "late"))
		})
	})

	t.Run("mount after serving faults", func(t *testing.T) {
		mux := chttp.NewServeMux()
		chttp.MustMount[Pong](mux)

		serve(t, mux, httptest.NewRequest(http.MethodGet, "/ping", nil))

		err := chttp.Mount[Silent](mux)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot mount after the mux started serving")
	})

	t.Run("must mount panics on configuration faults", func(t *testing.T) {
		mux := chttp.NewServeMux()

		assert.Panics(t, func() {
			chttp.MustMount[BadRoutes](mux)
		})
	})

	t.Run("unhandled errors are logged and rendered as 500", func(t *testing.T) {
		logs := chttp.NewTestLogger(t)

		mux := chttp.NewServeMux(chttp.WithLogger(logs))
		chttp.MustMount[Broken](mux)

		rec := serve(t, mux, httptest.NewRequest(http.MethodGet, "/broken", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, int64(1), logs.NumLogUnhandledServeError)
	})
}

type BadRoutes struct{}

func (BadRoutes) Blueprint() chttp.Blueprint[BadRoutes] {
	return chttp.NewBlueprint(
		chttp.M0(http.MethodGet, "relative", func(BadRoutes) (chttp.Return, error) {
			return chttp.None(), nil
		}),
	)
}

type Broken struct{}

func (Broken) Explode() (chttp.Return, error) {
	return nil, assert.AnError
}

func (Broken) Blueprint() chttp.Blueprint[Broken] {
	return chttp.NewBlueprint(
		chttp.M0(http.MethodGet, "/broken", Broken.Explode),
	)
}
