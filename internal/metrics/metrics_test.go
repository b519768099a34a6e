package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSale(3)
	c.RecordSale(2)
	c.RecordUndo(1)
	c.RecordInsufficientStock()
	c.RecordLowStock()
	c.RecordLowStock()

	require.Equal(t, 5.0, testutil.ToFloat64(c.unitsSold))
	require.Equal(t, 1.0, testutil.ToFloat64(c.unitsRestored))
	require.Equal(t, 1.0, testutil.ToFloat64(c.insufficientStock))
	require.Equal(t, 2.0, testutil.ToFloat64(c.lowStock))
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSale(7)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler(reg).ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "teashop_units_sold_total 7"), "body:\n%s", body)
	require.Contains(t, body, "teashop_low_stock_events_total")
}
