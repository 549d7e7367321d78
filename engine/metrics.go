package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	metricCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "macdbot_cycles_total",
		Help: "Decision cycles completed",
	})
	metricCyclesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "macdbot_cycles_skipped_total",
		Help: "Cycles skipped because market data was unavailable",
	})
	metricCyclePanics = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "macdbot_cycle_panics_total",
		Help: "Cycles that recovered from an unexpected panic",
	})
	metricIntents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "macdbot_intents_total",
		Help: "Transaction intents submitted, by action",
	}, []string{"action"})
	metricRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "macdbot_orders_rejected_total",
		Help: "Orders refused by the broker",
	})
	metricComplianceBlocks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "macdbot_compliance_blocks_total",
		Help: "Buy intents suppressed by the day-trade budget",
	})
)

func init() {
	prometheus.MustRegister(
		metricCycles,
		metricCyclesSkipped,
		metricCyclePanics,
		metricIntents,
		metricRejected,
		metricComplianceBlocks,
	)
}
