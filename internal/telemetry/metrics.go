// Package telemetry defines the Prometheus metrics the engine publishes via
// promauto, the same registration style the reference store's metrics
// package uses for its counters and histograms.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BuildIterationsTotal counts outer NND build iterations by outcome:
// "continue" or "converged" for a completed iteration, and "cancelled"
// once when the loop stops on a cancelled context before an iteration.
var BuildIterationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nnd_build_iterations_total",
	Help: "Total number of outer nearest-neighbor-descent build iterations run.",
}, []string{"outcome"})

// UpdatesAcceptedTotal counts neighbor-heap updates accepted by
// CheckedPush/CheckedPushPair during the build loop.
var UpdatesAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nnd_updates_accepted_total",
	Help: "Total number of neighbor heap updates accepted during build.",
})

// ConvergenceRatio reports the most recent iteration's update count divided
// by delta*K*N, the threshold the build loop stops against.
var ConvergenceRatio = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "nnd_convergence_ratio",
	Help: "Ratio of the last iteration's accepted updates to its convergence threshold.",
})

// IterationDurationSeconds observes the wall-clock cost of one outer build
// iteration.
var IterationDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "nnd_iteration_duration_seconds",
	Help:    "Duration of a single nearest-neighbor-descent build iteration.",
	Buckets: prometheus.DefBuckets,
})

// QueryIterationsTotal counts outer iterations run by the query loop.
var QueryIterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nnd_query_iterations_total",
	Help: "Total number of outer iterations run while answering queries against a reference graph.",
})

// DiversifyEdgesPrunedTotal counts edges removed by Diversify and
// DiversifySparse, labeled by the pass that removed them ("diversify").
// DegreePrune does not update it.
var DiversifyEdgesPrunedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nnd_diversify_edges_pruned_total",
	Help: "Total number of graph edges pruned by a graph-edit pass.",
}, []string{"pass"})
