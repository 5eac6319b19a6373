package chttp_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/chttp"
	"github.com/carlmjohnson/requests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Orders struct{}

type orderInput struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

func (Orders) Place(in orderInput, trace string) (chttp.Return, error) {
	if in.Quantity < 1 {
		return nil, chttp.NewError(chttp.CodeUnprocessableEntity,
			fmt.Errorf("quantity %d is below the minimum", in.Quantity))
	}

	return chttp.WithStatus(http.StatusCreated, map[string]any{
		"sku":   in.SKU,
		"trace": trace,
	}), nil
}

func (Orders) Status(id int) (chttp.Return, error) {
	return chttp.Value(map[string]any{"id": id, "state": "shipped"}), nil
}

func (Orders) Blueprint() chttp.Blueprint[Orders] {
	return chttp.NewBlueprint(
		chttp.M2(http.MethodPost, "/orders",
			chttp.Body[orderInput](), chttp.Header[string]("X-Trace-Id"),
			Orders.Place),
		chttp.M1(http.MethodGet, "/orders", chttp.Query[int]("id"), Orders.Status),
	)
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()

	mux := chttp.NewServeMux()
	chttp.MustMount[Orders](mux)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	t.Run("place an order", func(t *testing.T) {
		var out map[string]any

		err := requests.URL(srv.URL).
			Path("/orders").
			Header("X-Trace-Id", "abc-123").
			BodyJSON(orderInput{SKU: "sku-1", Quantity: 2}).
			ToJSON(&out).
			Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sku-1", out["sku"])
		assert.Equal(t, "abc-123", out["trace"])
	})

	t.Run("order status", func(t *testing.T) {
		var out map[string]any

		err := requests.URL(srv.URL).
			Path("/orders").
			Param("id", "42").
			ToJSON(&out).
			Fetch(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 42, out["id"])
		assert.Equal(t, "shipped", out["state"])
	})

	t.Run("invalid order is rejected", func(t *testing.T) {
		err := requests.URL(srv.URL).
			Path("/orders").
			BodyJSON(orderInput{SKU: "sku-1", Quantity: 0}).
			Fetch(ctx)
		require.Error(t, err)
		assert.True(t, requests.HasStatusErr(err, http.StatusUnprocessableEntity))
	})
}

func ExampleNewServeMux() {
	mux := chttp.NewServeMux()
	chttp.MustMount[Greeter](mux)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/hello?name=Gopher")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println(resp.StatusCode)
	// Output: 200
}
