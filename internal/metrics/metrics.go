// Package metrics exposes the lifecycle counters of one world to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements ecs.Observer. Each collector owns its registry so
// that several worlds in one process never share series.
type Collector struct {
	reg *prometheus.Registry

	live        prometheus.Gauge
	spawned     *prometheus.CounterVec
	destroyed   *prometheus.CounterVec
	violations  *prometheus.CounterVec
	drains      prometheus.Counter
	drainErrors prometheus.Counter
	tasks       prometheus.Counter
	resets      prometheus.Counter
	frames      prometheus.Histogram
}

// New builds a collector whose series carry the world id as a constant
// label.
func New(namespace, world string) *Collector {
	labels := prometheus.Labels{"world": world}
	c := &Collector{
		reg: prometheus.NewRegistry(),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "entities",
			Name:        "live",
			Help:        "Entities currently registered in the store.",
			ConstLabels: labels,
		}),
		spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "entities",
			Name:        "spawned_total",
			Help:        "Entities spawned, by class.",
			ConstLabels: labels,
		}, []string{"class"}),
		destroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "entities",
			Name:        "destroyed_total",
			Help:        "Entities destroyed, by class.",
			ConstLabels: labels,
		}, []string{"class"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "entities",
			Name:        "violations_total",
			Help:        "Lifecycle contract violations, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
		drains: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "queue",
			Name:        "drains_total",
			Help:        "Deferred queue drain cycles.",
			ConstLabels: labels,
		}),
		drainErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "queue",
			Name:        "drain_errors_total",
			Help:        "Drain cycles that returned an error.",
			ConstLabels: labels,
		}),
		tasks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "queue",
			Name:        "tasks_total",
			Help:        "Deferred tasks run.",
			ConstLabels: labels,
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "resets_total",
			Help:        "Hard resets.",
			ConstLabels: labels,
		}),
		frames: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "frame",
			Name:        "duration_seconds",
			Help:        "Wall time of one runner tick.",
			Buckets:     []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
			ConstLabels: labels,
		}),
	}
	c.reg.MustRegister(c.live, c.spawned, c.destroyed, c.violations,
		c.drains, c.drainErrors, c.tasks, c.resets, c.frames)
	return c
}

func (c *Collector) EntitySpawned(class string) {
	c.live.Inc()
	c.spawned.WithLabelValues(class).Inc()
}

func (c *Collector) EntityDestroyed(class string) {
	c.live.Dec()
	c.destroyed.WithLabelValues(class).Inc()
}

func (c *Collector) Violation(kind string) {
	c.violations.WithLabelValues(kind).Inc()
}

func (c *Collector) Drained(tasks int, err error) {
	c.drains.Inc()
	c.tasks.Add(float64(tasks))
	if err != nil {
		c.drainErrors.Inc()
	}
}

func (c *Collector) Reset() {
	c.resets.Inc()
	c.live.Set(0)
}

// ObserveFrame records the duration of one frame.
func (c *Collector) ObserveFrame(d time.Duration) {
	c.frames.Observe(d.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
