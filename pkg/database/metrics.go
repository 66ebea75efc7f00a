package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStater is implemented by *pgxpool.Pool.
type PoolStater interface {
	Stat() *pgxpool.Stat
}

// PoolCollector exports pgxpool statistics as Prometheus metrics.
type PoolCollector struct {
	pool    PoolStater
	service string

	acquired     *prometheus.Desc
	idle         *prometheus.Desc
	total        *prometheus.Desc
	max          *prometheus.Desc
	acquireCount *prometheus.Desc
	acquireWait  *prometheus.Desc
	emptyAcquire *prometheus.Desc
}

// NewPoolCollector builds a collector for pool, labelled with service.
func NewPoolCollector(pool PoolStater, service string) *PoolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, []string{"service"}, nil)
	}
	return &PoolCollector{
		pool:         pool,
		service:      service,
		acquired:     desc("db_pool_acquired_connections", "Connections currently checked out of the pool."),
		idle:         desc("db_pool_idle_connections", "Idle connections in the pool."),
		total:        desc("db_pool_total_connections", "Open connections in the pool."),
		max:          desc("db_pool_max_connections", "Configured maximum pool size."),
		acquireCount: desc("db_pool_acquire_count_total", "Successful connection acquires."),
		acquireWait:  desc("db_pool_acquire_duration_seconds_total", "Time spent waiting to acquire connections."),
		emptyAcquire: desc("db_pool_empty_acquire_count_total", "Acquires that had to wait because the pool was empty."),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquireCount
	ch <- c.acquireWait
	ch <- c.emptyAcquire
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, c.service)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, c.service)
	}
	gauge(c.acquired, float64(s.AcquiredConns()))
	gauge(c.idle, float64(s.IdleConns()))
	gauge(c.total, float64(s.TotalConns()))
	gauge(c.max, float64(s.MaxConns()))
	counter(c.acquireCount, float64(s.AcquireCount()))
	counter(c.acquireWait, s.AcquireDuration().Seconds())
	counter(c.emptyAcquire, float64(s.EmptyAcquireCount()))
}

// RegisterPoolMetrics registers a PoolCollector for pool on reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool PoolStater, service string) error {
	return reg.Register(NewPoolCollector(pool, service))
}
