package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/openbar/barbot/core/metrics"
)

// PromSink records turret activity in Prometheus metrics.
type PromSink struct {
	pours     *prometheus.CounterVec
	volume    *prometheus.CounterVec
	rotations prometheus.Counter
	rotateDur prometheus.Histogram
	faults    *prometheus.CounterVec
	makeable  prometheus.Gauge
	catalog   prometheus.Gauge
}

// NewPromSink registers turret metrics on the default Prometheus registerer.
// The metrics server is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		pours: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turret_pours_total",
			Help: "Total number of completed pours",
		}, []string{"slot", "suppressed"}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turret_poured_ounces_total",
			Help: "Total dispensed volume in fluid ounces",
		}, []string{"slot"}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turret_rotations_total",
			Help: "Total number of completed rotations",
		}),
		rotateDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "turret_rotation_seconds",
			Help:    "Duration of slot-to-slot rotations",
			Buckets: prometheus.DefBuckets,
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turret_faults_total",
			Help: "Total number of hardware faults",
		}, []string{"reason"}),
		makeable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "menu_makeable_recipes",
			Help: "Number of makeable recipes at the last resolution",
		}),
		catalog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "menu_catalog_recipes",
			Help: "Number of recipes in the catalog at the last resolution",
		}),
	}
	for _, c := range []prometheus.Collector{s.pours, s.volume, s.rotations, s.rotateDur, s.faults, s.makeable, s.catalog} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordPour increments the pour counters.
func (s *PromSink) RecordPour(r coremetrics.PourRecord) error {
	slot := strconv.Itoa(r.Slot)
	s.pours.WithLabelValues(slot, strconv.FormatBool(r.Suppressed)).Inc()
	if !r.Suppressed {
		s.volume.WithLabelValues(slot).Add(r.Ounces)
	}
	return nil
}

// RecordRotation counts the rotation and observes its duration.
func (s *PromSink) RecordRotation(r coremetrics.RotationRecord) error {
	s.rotations.Inc()
	s.rotateDur.Observe(r.Duration.Seconds())
	return nil
}

// RecordFault increments the fault counter for the reason.
func (s *PromSink) RecordFault(r coremetrics.FaultRecord) error {
	s.faults.WithLabelValues(r.Reason).Inc()
	return nil
}

// RecordMenu sets the menu gauges.
func (s *PromSink) RecordMenu(r coremetrics.MenuRecord) error {
	s.catalog.Set(float64(r.Catalog))
	s.makeable.Set(float64(r.Makeable))
	return nil
}
