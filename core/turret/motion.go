package turret

import (
	"fmt"
	"time"

	"github.com/openbar/barbot/core/model"
)

// Motion holds the physical timing parameters of the turret. All fields are
// configuration-with-defaults; the defaults match the stock DM542T stepper
// wiring and the calibrated valve press time.
type Motion struct {
	// StepsPerRev is the full-step count of the motor (1.8 deg = 200).
	StepsPerRev int `json:"steps_per_rev"`
	// Microstep is the driver microstepping factor.
	Microstep int `json:"microstep"`
	// StepDelayUS is the delay between step pulse edges in microseconds.
	StepDelayUS int `json:"step_delay_us"`
	// PressPerOunceMS is the valve press duration for one fluid ounce.
	PressPerOunceMS int `json:"press_per_ounce_ms"`
	// SettleDelayMS is the pause after retracting the actuator.
	SettleDelayMS int `json:"settle_delay_ms"`
	// HomeTimeoutMS bounds the homing sweep.
	HomeTimeoutMS int `json:"home_timeout_ms"`
	// TieBreakCCW flips the tie-break direction when both paths are equally
	// long. The default tie-break is clockwise.
	TieBreakCCW bool `json:"tie_break_ccw"`
}

// SetDefaults applies the stock motion parameters.
func (m *Motion) SetDefaults() {
	if m.StepsPerRev == 0 {
		m.StepsPerRev = 200
	}
	if m.Microstep == 0 {
		m.Microstep = 8
	}
	if m.StepDelayUS == 0 {
		m.StepDelayUS = 800
	}
	if m.PressPerOunceMS == 0 {
		m.PressPerOunceMS = 600
	}
	if m.SettleDelayMS == 0 {
		m.SettleDelayMS = 200
	}
	if m.HomeTimeoutMS == 0 {
		m.HomeTimeoutMS = 15000
	}
}

// Validate checks the motion parameters.
func (m Motion) Validate() error {
	if m.StepsPerRev <= 0 || m.Microstep <= 0 {
		return fmt.Errorf("steps_per_rev and microstep must be positive")
	}
	if m.StepDelayUS <= 0 || m.PressPerOunceMS <= 0 {
		return fmt.Errorf("step_delay_us and press_per_ounce_ms must be positive")
	}
	if m.HomeTimeoutMS <= 0 {
		return fmt.Errorf("home_timeout_ms must be positive")
	}
	return nil
}

// StepsPerSlot is the microstep count between adjacent slots.
func (m Motion) StepsPerSlot() int {
	return m.StepsPerRev * m.Microstep / model.SlotCount
}

// StepDelay returns the inter-pulse delay.
func (m Motion) StepDelay() time.Duration {
	return time.Duration(m.StepDelayUS) * time.Microsecond
}

// PressFor returns the valve press duration for the given volume.
func (m Motion) PressFor(ounces float64) time.Duration {
	return time.Duration(float64(m.PressPerOunceMS) * ounces * float64(time.Millisecond))
}

// SettleDelay returns the post-retract pause.
func (m Motion) SettleDelay() time.Duration {
	return time.Duration(m.SettleDelayMS) * time.Millisecond
}

// HomeTimeout returns the homing sweep bound.
func (m Motion) HomeTimeout() time.Duration {
	return time.Duration(m.HomeTimeoutMS) * time.Millisecond
}

// shortestPath returns the step direction and slot distance from one slot to
// another. Ties between the two directions fall back to the configured
// default.
func (m Motion) shortestPath(from, to int) (cw bool, slots int) {
	cwDelta := (to - from + model.SlotCount) % model.SlotCount
	ccwDelta := model.SlotCount - cwDelta
	switch {
	case cwDelta < ccwDelta:
		return true, cwDelta
	case ccwDelta < cwDelta:
		return false, ccwDelta
	default:
		return !m.TieBreakCCW, cwDelta
	}
}
