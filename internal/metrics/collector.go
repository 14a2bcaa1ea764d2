// =============================
// File: internal/metrics/collector.go
// =============================
// Package metrics exposes launchpad counters and gauges through prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the launchpad metric set. Each collector registers its
// metrics on a private registry so independent instances never collide.
type Collector struct {
	registry *prometheus.Registry

	tradesTotal   *prometheus.CounterVec
	tradeVolume   *prometheus.CounterVec
	feesCollected prometheus.Counter
	feesWithdrawn prometheus.Counter
	tokensCreated prometheus.Counter
	graduations   prometheus.Counter
	poolLiquidity *prometheus.GaugeVec
}

// NewCollector creates a collector with all launchpad metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		tradesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Name:      "trades_total",
				Help:      "Total number of committed trades",
			},
			[]string{"side"},
		),
		tradeVolume: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Name:      "trade_volume_lamports_total",
				Help:      "Cumulative lamport volume of committed trades",
			},
			[]string{"side"},
		),
		feesCollected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Name:      "fees_collected_lamports_total",
				Help:      "Cumulative platform fees charged on trades",
			},
		),
		feesWithdrawn: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Name:      "fees_withdrawn_lamports_total",
				Help:      "Cumulative platform fees paid out to the owner",
			},
		),
		tokensCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Name:      "tokens_created_total",
				Help:      "Number of token launches",
			},
		),
		graduations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Name:      "token_graduations_total",
				Help:      "Number of tokens that reached the target pool balance",
			},
		),
		poolLiquidity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "launchpad",
				Name:      "pool_liquidity_lamports",
				Help:      "Real liquidity per token",
			},
			[]string{"token"},
		),
	}

	c.registry.MustRegister(
		c.tradesTotal,
		c.tradeVolume,
		c.feesCollected,
		c.feesWithdrawn,
		c.tokensCreated,
		c.graduations,
		c.poolLiquidity,
	)

	return c
}

// Registry returns the underlying prometheus registry for scraping.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordTrade counts one committed trade.
func (c *Collector) RecordTrade(side string, solAmount, fee uint64) {
	c.tradesTotal.WithLabelValues(side).Inc()
	c.tradeVolume.WithLabelValues(side).Add(float64(solAmount))
	c.feesCollected.Add(float64(fee))
}

// RecordTokenCreated counts a launch.
func (c *Collector) RecordTokenCreated() {
	c.tokensCreated.Inc()
}

// RecordGraduation counts a token reaching its target and pins the liquidity
// gauge at the graduating level.
func (c *Collector) RecordGraduation(token string, realLiquidity uint64) {
	c.graduations.Inc()
	c.poolLiquidity.WithLabelValues(token).Set(float64(realLiquidity))
}

// RecordFeesWithdrawn counts an owner payout.
func (c *Collector) RecordFeesWithdrawn(amount uint64) {
	c.feesWithdrawn.Add(float64(amount))
}

// UpdatePoolLiquidity tracks a token's real liquidity after a trade.
func (c *Collector) UpdatePoolLiquidity(token string, lamports uint64) {
	c.poolLiquidity.WithLabelValues(token).Set(float64(lamports))
}
