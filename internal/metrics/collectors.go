// Package metrics exposes run results as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theirongolddev/omrisk/internal/model"
)

const namespace = "omrisk"

// Result labels for RunsTotal.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Collectors owns a private registry so multiple services in one process
// (and tests) do not collide on the default registerer.
type Collectors struct {
	Registry *prometheus.Registry

	BudgetUSD          prometheus.Gauge
	ProbOverBudget     prometheus.Gauge
	ExpectedOverrunUSD prometheus.Gauge
	AnnualCostUSD      *prometheus.GaugeVec
	VarianceShare      *prometheus.GaugeVec
	RunsTotal          *prometheus.CounterVec
	RunDuration        prometheus.Histogram
}

// New creates and registers the omrisk collectors.
func New() *Collectors {
	c := &Collectors{
		Registry: prometheus.NewRegistry(),

		BudgetUSD: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget_usd",
			Help:      "Budget threshold of the latest run in USD",
		}),
		ProbOverBudget: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "prob_over_budget",
			Help:      "Fraction of scenarios whose annual cost exceeds the budget",
		}),
		ExpectedOverrunUSD: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expected_overrun_usd",
			Help:      "Mean overrun across all scenarios in USD",
		}),
		AnnualCostUSD: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "annual_cost_usd",
			Help:      "Annual cost statistics of the latest run in USD",
		}, []string{"quantile"}), // "mean", "std", "0.5", "0.9", "0.95", "0.99"
		VarianceShare: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "variance_share",
			Help:      "Share of across-category annual variance per category",
		}, []string{"category"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total scoring runs",
		}, []string{"result"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one simulation run",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	c.Registry.MustRegister(
		c.BudgetUSD,
		c.ProbOverBudget,
		c.ExpectedOverrunUSD,
		c.AnnualCostUSD,
		c.VarianceShare,
		c.RunsTotal,
		c.RunDuration,
	)
	return c
}

// ObserveRun records a successful run.
func (c *Collectors) ObserveRun(s model.SummaryMetrics, drivers []model.VarianceContribution, elapsed time.Duration) {
	c.BudgetUSD.Set(s.Budget)
	c.ProbOverBudget.Set(s.ProbOverBudget)
	c.ExpectedOverrunUSD.Set(s.ExpectedOverrun)

	c.AnnualCostUSD.WithLabelValues("mean").Set(s.MeanAnnualCost)
	c.AnnualCostUSD.WithLabelValues("std").Set(s.StdAnnualCost)
	c.AnnualCostUSD.WithLabelValues("0.5").Set(s.P50AnnualCost)
	c.AnnualCostUSD.WithLabelValues("0.9").Set(s.P90AnnualCost)
	c.AnnualCostUSD.WithLabelValues("0.95").Set(s.P95AnnualCost)
	c.AnnualCostUSD.WithLabelValues("0.99").Set(s.P99AnnualCost)

	// Categories can disappear across reloads.
	c.VarianceShare.Reset()
	for _, d := range drivers {
		c.VarianceShare.WithLabelValues(d.Category).Set(d.VarianceShare)
	}

	c.RunsTotal.WithLabelValues(ResultOK).Inc()
	c.RunDuration.Observe(elapsed.Seconds())
}

// ObserveFailure counts a run that did not produce a result.
func (c *Collectors) ObserveFailure(result string) {
	c.RunsTotal.WithLabelValues(result).Inc()
}

// Handler serves the private registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}
