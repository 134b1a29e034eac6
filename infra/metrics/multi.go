package metrics

import coremetrics "github.com/openbar/barbot/core/metrics"

// MultiSink fans records out to several sinks. The first error encountered
// is returned, but every sink still receives the record.
type MultiSink struct {
	sinks []coremetrics.MetricsSink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordPour(r coremetrics.PourRecord) error {
	return m.each(func(s coremetrics.MetricsSink) error { return s.RecordPour(r) })
}

func (m *MultiSink) RecordRotation(r coremetrics.RotationRecord) error {
	return m.each(func(s coremetrics.MetricsSink) error { return s.RecordRotation(r) })
}

func (m *MultiSink) RecordFault(r coremetrics.FaultRecord) error {
	return m.each(func(s coremetrics.MetricsSink) error { return s.RecordFault(r) })
}

func (m *MultiSink) RecordMenu(r coremetrics.MenuRecord) error {
	return m.each(func(s coremetrics.MetricsSink) error { return s.RecordMenu(r) })
}

func (m *MultiSink) each(f func(coremetrics.MetricsSink) error) error {
	var first error
	for _, s := range m.sinks {
		if err := f(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}
