package statediff

import "github.com/prometheus/client_golang/prometheus"

type engineStats struct {
	computed *prometheus.CounterVec
	entries  *prometheus.CounterVec
	filtered prometheus.Counter
}

// stats counts regardless of registration; RegisterMetrics hooks the
// counters into a registry when the process wants them scraped.
var stats = engineStats{
	computed: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "statediff_deltas_computed_total",
		Help: "Deltas computed, by snapshot container and outcome",
	}, []string{"container", "outcome"}),
	entries: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "statediff_delta_entries_total",
		Help: "Delta entries produced, by section",
	}, []string{"section"}),
	filtered: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "statediff_entries_filtered_total",
		Help: "Entries dropped from outbound deltas by version filtering",
	}),
}

func (s *engineStats) observe(container string, deletes, diffs, upserts int) {
	s.computed.WithLabelValues(container, "delta").Inc()
	s.entries.WithLabelValues("deletes").Add(float64(deletes))
	s.entries.WithLabelValues("diffs").Add(float64(diffs))
	s.entries.WithLabelValues("upserts").Add(float64(upserts))
}

// RegisterMetrics adds the engine counters to reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{stats.computed, stats.entries, stats.filtered} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
