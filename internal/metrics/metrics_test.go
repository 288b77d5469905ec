package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_BuyOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBuy(OutcomeAuthorized)
	c.RecordBuy(OutcomeAuthorized)
	c.RecordBuy(OutcomeAlreadyOwned)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.buys.WithLabelValues(OutcomeAuthorized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.buys.WithLabelValues(OutcomeAlreadyOwned)))
}

func TestCollector_GatewayErrorsCountedPerProvider(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGatewayCall("stripe", 20*time.Millisecond, nil)
	c.RecordGatewayCall("stripe", 20*time.Millisecond, errors.New("card_declined"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.gatewayErrors.WithLabelValues("stripe")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.gatewayLatency))
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOrder(OutcomeCreated)
	c.RecordEntitlementGranted()
	c.RecordOrderRetry()
	c.RecordCheckoutsExpired(3)
	c.RecordCheckoutsExpired(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.orders.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.entitlementsGranted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.orderRetries))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.checkoutsExpired))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordEntitlementGranted()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "marketplace_entitlements_granted_total 1"))
}
