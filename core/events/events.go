// Package events defines the turret related events emitted on the event bus.
//
// Available event types:
//   - StateEvent: controller state transition
//   - PinEvent: digital output written by the GPIO driver
//   - RotationEvent: completed slot-to-slot rotation
//   - PourEvent: completed (or suppressed) pour
//   - FaultEvent: controller entered the faulted state
package events

import "time"

// StateEvent is published on every controller state transition.
type StateEvent struct {
	From string
	To   string
	Time time.Time
}

// PinEvent records a single digital output write. Safe mode is verified in
// tests by asserting no PinEvent for the actuator pin ever carries High.
type PinEvent struct {
	Pin  int
	High bool
	Time time.Time
}

// RotationEvent is published after a rotation completes.
type RotationEvent struct {
	From     int
	To       int
	Steps    int
	CW       bool
	Duration time.Duration
}

// PourEvent is published after a pour completes. Suppressed marks a pour
// that ran in safe mode: the timing sequence executed with no actuation.
type PourEvent struct {
	JobID      string
	Slot       int
	Ounces     float64
	Duration   time.Duration
	Suppressed bool
}

// FaultEvent is published when the controller enters the faulted state.
type FaultEvent struct {
	Reason string
	State  string
	Time   time.Time
}
