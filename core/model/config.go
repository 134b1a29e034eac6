package model

import "fmt"

// PinMap assigns BCM output pins to the four turret signals.
type PinMap struct {
	Dir      int `json:"dir"`
	Step     int `json:"step"`
	Enable   int `json:"enable"`
	Actuator int `json:"actuator"`
}

// DefaultPins matches the stock wiring of the turret controller board.
var DefaultPins = PinMap{Dir: 20, Step: 21, Enable: 16, Actuator: 26}

// Validate rejects non-positive pin numbers and duplicate assignments.
func (p PinMap) Validate() error {
	pins := map[string]int{
		"dir":      p.Dir,
		"step":     p.Step,
		"enable":   p.Enable,
		"actuator": p.Actuator,
	}
	seen := make(map[int]string, len(pins))
	for _, name := range []string{"dir", "step", "enable", "actuator"} {
		v := pins[name]
		if v <= 0 {
			return fmt.Errorf("pin %s: value %d is not a valid output pin", name, v)
		}
		if other, dup := seen[v]; dup {
			return fmt.Errorf("pin %s: %d already assigned to %s", name, v, other)
		}
		seen[v] = name
	}
	return nil
}

// BarConfig is an immutable snapshot of the bottle configuration. Resolution
// and pours capture a snapshot by value so a configuration edit can never
// change an in-flight job.
type BarConfig struct {
	Slots         SlotAssignment `json:"slots"`
	Pantry        Pantry         `json:"pantry"`
	Substitutions Substitutions  `json:"substitutions"`
	SafeMode      bool           `json:"safe_mode"`
	ShotSize      float64        `json:"shot_size"`
	Pins          PinMap         `json:"pins"`
}

// Validate checks the snapshot. Duplicate slot ingredients are reported as
// warnings in the second return value, not errors.
func (c BarConfig) Validate() ([]string, error) {
	if c.ShotSize <= 0 {
		return nil, fmt.Errorf("shot_size must be positive, got %g", c.ShotSize)
	}
	if err := c.Pins.Validate(); err != nil {
		return nil, err
	}
	var warns []string
	for _, d := range c.Slots.Duplicates() {
		warns = append(warns, fmt.Sprintf("ingredient %q loaded in more than one slot; lowest index is used", d))
	}
	return warns, nil
}
