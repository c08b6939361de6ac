package store

import (
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes the health of the underlying pebble instance:
// compaction pressure, memtable footprint, WAL churn and disk usage.
type Collector struct {
	db *pebble.DB

	compactionCount *prometheus.Desc
	compactionDebt  *prometheus.Desc

	memtableSize  *prometheus.Desc
	memtableCount *prometheus.Desc

	walSize         *prometheus.Desc
	walBytesWritten *prometheus.Desc

	cacheHits   *prometheus.Desc
	cacheMisses *prometheus.Desc

	diskUsage *prometheus.Desc
}

func (s *Store) Collector() *Collector {
	return &Collector{
		db: s.db,
		compactionCount: prometheus.NewDesc(
			"statediff_store_compaction_count_total",
			"Total number of compactions performed",
			nil, nil,
		),
		compactionDebt: prometheus.NewDesc(
			"statediff_store_compaction_estimated_debt_bytes",
			"Estimated number of bytes awaiting compaction",
			nil, nil,
		),
		memtableSize: prometheus.NewDesc(
			"statediff_store_memtable_size_bytes",
			"Current size of the memtables",
			nil, nil,
		),
		memtableCount: prometheus.NewDesc(
			"statediff_store_memtable_count",
			"Number of memtables",
			nil, nil,
		),
		walSize: prometheus.NewDesc(
			"statediff_store_wal_size_bytes",
			"Current size of the write-ahead log",
			nil, nil,
		),
		walBytesWritten: prometheus.NewDesc(
			"statediff_store_wal_bytes_written_total",
			"Total bytes written to the write-ahead log",
			nil, nil,
		),
		cacheHits: prometheus.NewDesc(
			"statediff_store_block_cache_hits_total",
			"Block cache hits",
			nil, nil,
		),
		cacheMisses: prometheus.NewDesc(
			"statediff_store_block_cache_misses_total",
			"Block cache misses",
			nil, nil,
		),
		diskUsage: prometheus.NewDesc(
			"statediff_store_disk_usage_bytes",
			"Total disk space used by the store",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.compactionCount
	ch <- c.compactionDebt
	ch <- c.memtableSize
	ch <- c.memtableCount
	ch <- c.walSize
	ch <- c.walBytesWritten
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.diskUsage
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.db.Metrics()
	ch <- prometheus.MustNewConstMetric(c.compactionCount, prometheus.CounterValue, float64(m.Compact.Count))
	ch <- prometheus.MustNewConstMetric(c.compactionDebt, prometheus.GaugeValue, float64(m.Compact.EstimatedDebt))
	ch <- prometheus.MustNewConstMetric(c.memtableSize, prometheus.GaugeValue, float64(m.MemTable.Size))
	ch <- prometheus.MustNewConstMetric(c.memtableCount, prometheus.GaugeValue, float64(m.MemTable.Count))
	ch <- prometheus.MustNewConstMetric(c.walSize, prometheus.GaugeValue, float64(m.WAL.Size))
	ch <- prometheus.MustNewConstMetric(c.walBytesWritten, prometheus.CounterValue, float64(m.WAL.BytesWritten))
	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(m.BlockCache.Hits))
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(m.BlockCache.Misses))
	ch <- prometheus.MustNewConstMetric(c.diskUsage, prometheus.GaugeValue, float64(m.DiskSpaceUsage()))
}
