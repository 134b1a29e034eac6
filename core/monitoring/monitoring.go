package monitoring

import (
	"strconv"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards all reports.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if current != nil {
		current.CaptureException(err, tags)
	}
}

// CaptureFault reports a hardware fault with its controller state, so fault
// spikes on a device show up with enough context to triage remotely.
func CaptureFault(err error, state string, slot int) {
	tags := map[string]string{"state": state}
	if slot >= 0 {
		tags["slot"] = strconv.Itoa(slot)
	}
	CaptureException(err, tags)
}

// Recover captures panics in goroutines.
func Recover() {
	if current != nil {
		current.Recover()
	}
}

// Flush waits for pending reports to be sent.
func Flush(timeout time.Duration) {
	if current != nil {
		current.Flush(timeout)
	}
}
