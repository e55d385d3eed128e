// Package metrics exports gauge readings as Prometheus metrics.
package metrics

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/itohio/boostgauge/pkg/cluster"
	"github.com/itohio/boostgauge/pkg/gauge"
)

const namespace = "boostgauge"

// Collector tracks the latest frame values in its own registry.
type Collector struct {
	registry *prometheus.Registry

	boost     prometheus.Gauge
	oil       prometheus.Gauge
	oilDamped prometheus.Gauge
	maxBoost  prometheus.Gauge
	maxVacuum prometheus.Gauge
	oilState  *prometheus.GaugeVec
	updates   *prometheus.CounterVec
	faults    prometheus.Counter
	rollovers prometheus.Counter
}

// New creates a collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		boost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boost_psi",
			Help:      "Manifold pressure relative to atmosphere in psi.",
		}),
		oil: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oil_temperature_fahrenheit",
			Help:      "Instantaneous oil temperature.",
		}),
		oilDamped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oil_temperature_damped_fahrenheit",
			Help:      "Moving average of the oil temperature.",
		}),
		maxBoost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boost_range_max_psi",
			Help:      "Largest boost seen since the last range reset.",
		}),
		maxVacuum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vacuum_range_max_psi",
			Help:      "Deepest vacuum seen since the last range reset.",
		}),
		oilState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oil_state",
			Help:      "1 for the current oil color state, 0 otherwise.",
		}, []string{"state"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Number of gauge refreshes.",
		}, []string{"gauge"}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oil_sensor_faults_total",
			Help:      "Number of oil refreshes with a faulty thermistor reading.",
		}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_rollovers_total",
			Help:      "Number of tick counter rollovers handled by the scheduler.",
		}),
	}

	c.registry.MustRegister(
		c.boost, c.oil, c.oilDamped,
		c.maxBoost, c.maxVacuum,
		c.oilState, c.updates, c.faults, c.rollovers,
	)
	return c
}

// Observe records a frame. It is meant to be registered with Cluster.OnFrame.
func (c *Collector) Observe(f cluster.Frame) {
	c.maxBoost.Set(f.Range.MaxBoost)
	c.maxVacuum.Set(f.Range.MaxVacuum)

	if f.RolledOver {
		c.rollovers.Inc()
	}

	if f.Boost != nil {
		c.updates.WithLabelValues("boost").Inc()
		c.boost.Set(f.Boost.Value)
	}

	if f.Oil != nil {
		c.updates.WithLabelValues("oil").Inc()
		for _, s := range []gauge.ColorState{gauge.Fault, gauge.Cold, gauge.Normal, gauge.Hot} {
			v := 0.0
			if s == f.Oil.State {
				v = 1
			}
			c.oilState.WithLabelValues(strings.ToLower(s.String())).Set(v)
		}

		if f.Oil.State == gauge.Fault {
			c.faults.Inc()
			return
		}
		c.oil.Set(f.Oil.Value)
		c.oilDamped.Set(f.Oil.Damped)
	}
}

// Gather collects the current metric families.
func (c *Collector) Gather() ([]*dto.MetricFamily, error) {
	return c.registry.Gather()
}

// WriteText writes all metrics in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}

	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Wrapf(err, "encode %s", mf.GetName())
		}
	}
	return nil
}
