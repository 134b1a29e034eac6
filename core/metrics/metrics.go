package metrics

import "time"

// PourRecord represents a completed pour to be recorded.
type PourRecord struct {
	JobID      string
	Slot       int
	Ounces     float64
	Duration   time.Duration
	Suppressed bool
	Time       time.Time
}

// RotationRecord represents a completed rotation.
type RotationRecord struct {
	From     int
	To       int
	Steps    int
	CW       bool
	Duration time.Duration
	Time     time.Time
}

// FaultRecord represents a controller fault.
type FaultRecord struct {
	Reason string
	State  string
	Time   time.Time
}

// MenuRecord captures the outcome of a menu resolution pass.
type MenuRecord struct {
	Catalog  int
	Makeable int
	Time     time.Time
}

// MetricsSink records turret activity for observability purposes.
type MetricsSink interface {
	RecordPour(PourRecord) error
	RecordRotation(RotationRecord) error
	RecordFault(FaultRecord) error
	RecordMenu(MenuRecord) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordPour(PourRecord) error         { return nil }
func (NopSink) RecordRotation(RotationRecord) error { return nil }
func (NopSink) RecordFault(FaultRecord) error       { return nil }
func (NopSink) RecordMenu(MenuRecord) error         { return nil }
