package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/omrisk/internal/model"
)

func TestObserveRun(t *testing.T) {
	c := New()
	s := model.SummaryMetrics{Budget: 1000, ProbOverBudget: 0.25, ExpectedOverrun: 12, P95AnnualCost: 1100}
	drivers := []model.VarianceContribution{
		{Category: "maintenance", VarianceShare: 0.8},
		{Category: "labor", VarianceShare: 0.2},
	}
	c.ObserveRun(s, drivers, 150*time.Millisecond)

	assert.Equal(t, 1000.0, testutil.ToFloat64(c.BudgetUSD))
	assert.Equal(t, 0.25, testutil.ToFloat64(c.ProbOverBudget))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.ExpectedOverrunUSD))
	assert.Equal(t, 1100.0, testutil.ToFloat64(c.AnnualCostUSD.WithLabelValues("0.95")))
	assert.Equal(t, 0.8, testutil.ToFloat64(c.VarianceShare.WithLabelValues("maintenance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RunsTotal.WithLabelValues(ResultOK)))

	// A reload that drops a category should drop its series too.
	c.ObserveRun(s, drivers[1:], time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(c.VarianceShare))
}

func TestObserveFailure(t *testing.T) {
	c := New()
	c.ObserveFailure(ResultInvalid)
	c.ObserveFailure(ResultInvalid)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.RunsTotal.WithLabelValues(ResultInvalid)))
}

func TestHandler(t *testing.T) {
	c := New()
	c.ObserveRun(model.SummaryMetrics{Budget: 5}, nil, time.Second)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "omrisk_budget_usd 5"))
	assert.Contains(t, body, "omrisk_run_duration_seconds_count 1")
}

func TestCollectorsAreIsolated(t *testing.T) {
	a, b := New(), New()
	a.ObserveFailure(ResultError)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RunsTotal.WithLabelValues(ResultError)))
}
