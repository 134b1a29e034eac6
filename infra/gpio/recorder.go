package gpio

import (
	"fmt"
	"sync"

	"github.com/openbar/barbot/core/model"
)

// Write is one recorded pin transition.
type Write struct {
	Pin  int
	High bool
}

// Recorder is a simulated Driver that records every pin write. Tests use it
// to assert pin-level behavior (for example that safe mode never asserts the
// actuator) and to inject driver failures.
type Recorder struct {
	mu     sync.Mutex
	writes []Write
	pins   model.PinMap
	setup  bool
	closed bool

	// FailSetup makes Setup return an error.
	FailSetup bool
	// FailPins makes Write fail for the listed pins.
	FailPins map[int]bool
	// FailAfter makes Write fail once the given number of writes happened.
	// Zero disables the limit.
	FailAfter int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{FailPins: make(map[int]bool)}
}

// Setup records the pin map or fails when configured to.
func (r *Recorder) Setup(pins model.PinMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSetup {
		return fmt.Errorf("simulated setup failure")
	}
	r.pins = pins
	r.setup = true
	return nil
}

// Write records the transition or fails when configured to.
func (r *Recorder) Write(pin int, high bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailPins[pin] {
		return fmt.Errorf("simulated write failure on pin %d", pin)
	}
	if r.FailAfter > 0 && len(r.writes) >= r.FailAfter {
		return fmt.Errorf("simulated write failure after %d writes", r.FailAfter)
	}
	r.writes = append(r.writes, Write{Pin: pin, High: high})
	return nil
}

// Close marks the driver closed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Writes returns a copy of all recorded transitions.
func (r *Recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Write, len(r.writes))
	copy(out, r.writes)
	return out
}

// WritesFor returns the transitions recorded for one pin.
func (r *Recorder) WritesFor(pin int) []Write {
	var out []Write
	for _, w := range r.Writes() {
		if w.Pin == pin {
			out = append(out, w)
		}
	}
	return out
}

// Asserted reports whether the pin was ever driven high.
func (r *Recorder) Asserted(pin int) bool {
	for _, w := range r.WritesFor(pin) {
		if w.High {
			return true
		}
	}
	return false
}

// WasSetup reports whether Setup ran.
func (r *Recorder) WasSetup() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setup
}

// Reset clears the recorded writes, keeping the failure configuration.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = nil
}
