package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutCounters(t *testing.T) {
	m := New()

	m.ObserveCheckout(ResultPlaced)
	m.ObserveCheckout(ResultPlaced)
	m.ObserveCheckout(ResultEmptyCart)
	m.ObserveTxRefCollision()
	m.ObserveCancel()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Checkouts.WithLabelValues(ResultPlaced)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Checkouts.WithLabelValues(ResultEmptyCart)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TxRefCollisions))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OrdersCancelled))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/products/:slug", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/a-slug", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodGet, "/products/:slug", "204")))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shop_http_requests_total"))
}
