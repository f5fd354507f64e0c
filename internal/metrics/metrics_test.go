package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.OrdersCreated.Inc()
	a.VoucherRejections.WithLabelValues("Voucher has expired").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.OrdersCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.OrdersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.VoucherRejections.WithLabelValues("Voucher has expired")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.FollowupFailures.WithLabelValues("cart_cleanup").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_checkout_followup_failures_total{step="cart_cleanup"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
