package turret

import "github.com/openbar/barbot/core/model"

// Driver is the capability interface for the digital outputs driving the
// turret. The state machine never touches hardware except through it, so a
// simulated driver gives full fault-injection coverage without a device.
type Driver interface {
	// Setup claims the configured pins as outputs and enables the stepper
	// driver. It is called lazily before the first real actuation.
	Setup(pins model.PinMap) error
	// Write sets a single output pin.
	Write(pin int, high bool) error
	// Close disables the stepper driver and releases the pins.
	Close() error
}

// HomeSensor reports whether the turret is at the home position. Polled once
// per step pulse during homing.
type HomeSensor func() bool

// SlotSensor optionally reports the slot the turret is physically at, for
// missed-step detection. The boolean is false when no reading is available.
type SlotSensor func() (int, bool)
