package memory

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperast/go-hyperast/plumbing/storer"
)

// Collector exports the counters of a store as Prometheus metrics.
type Collector struct {
	s storer.StatsGetter

	nodes   *prometheus.Desc
	labels  *prometheus.Desc
	interns *prometheus.Desc
	hits    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector reading the stats of s. constLabels are
// attached to every metric, which allows registering the collectors of
// several stores side by side.
func NewCollector(s storer.StatsGetter, constLabels prometheus.Labels) *Collector {
	return &Collector{
		s: s,
		nodes: prometheus.NewDesc("hyperast_store_nodes",
			"Number of distinct nodes in the store.", nil, constLabels),
		labels: prometheus.NewDesc("hyperast_store_labels",
			"Number of distinct labels in the store.", nil, constLabels),
		interns: prometheus.NewDesc("hyperast_store_intern_total",
			"Total successful intern calls.", nil, constLabels),
		hits: prometheus.NewDesc("hyperast_store_intern_hits_total",
			"Total intern calls answered with an existing node.", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodes
	ch <- c.labels
	ch <- c.interns
	ch <- c.hits
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.s.Stats()
	ch <- prometheus.MustNewConstMetric(c.nodes, prometheus.GaugeValue, float64(st.Nodes))
	ch <- prometheus.MustNewConstMetric(c.labels, prometheus.GaugeValue, float64(st.Labels))
	ch <- prometheus.MustNewConstMetric(c.interns, prometheus.CounterValue, float64(st.Interns))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(st.Hits))
}
