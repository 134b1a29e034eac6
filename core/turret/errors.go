package turret

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when an operation arrives while another one is in
// flight. The controller never queues motion requests: a stale request must
// not fire later, so the caller retries after polling Status.
var ErrBusy = errors.New("turret busy")

// ValidationError rejects bad input before any side effect. It is always
// recoverable locally.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// WrongPositionError is returned by Pour when the turret is not at the
// requested slot. The controller never rotates implicitly.
type WrongPositionError struct {
	Want int
	At   int
}

func (e WrongPositionError) Error() string {
	return fmt.Sprintf("wrong position: pour requested for slot %d but turret is at %d", e.Want, e.At)
}

// HardwareFault is a physical failure. The controller enters the faulted
// state and rejects all motion until an explicit Reset. The reason is
// surfaced verbatim to the caller.
type HardwareFault struct {
	Reason string
}

func (e HardwareFault) Error() string {
	return fmt.Sprintf("hardware fault: %s", e.Reason)
}

// IsFault reports whether err is a HardwareFault.
func IsFault(err error) bool {
	var hf HardwareFault
	return errors.As(err, &hf)
}
