package config

import (
	"fmt"

	"github.com/openbar/barbot/core/model"
)

// Bar is the persisted form of the bottle configuration: slots, pantry,
// substitutions, safe mode, shot size and pin assignments. It converts to an
// immutable model.BarConfig snapshot for resolution and dispensing.
type Bar struct {
	Slots         []string          `json:"slots"`
	Pantry        []string          `json:"pantry"`
	Substitutions map[string]string `json:"substitutions"`
	SafeMode      bool              `json:"safe_mode"`
	ShotSize      float64           `json:"shot_size"`
	Pins          model.PinMap      `json:"pins"`
}

// SetDefaults applies the factory configuration: empty slots, safe mode on,
// a 1.5 oz shot and the stock pin map.
func (b *Bar) SetDefaults() {
	if b.Slots == nil {
		b.Slots = make([]string, model.SlotCount)
	}
	for len(b.Slots) < model.SlotCount {
		b.Slots = append(b.Slots, "")
	}
	if b.Substitutions == nil {
		b.Substitutions = map[string]string{}
	}
	if b.ShotSize == 0 {
		b.ShotSize = 1.5
		// A fresh config also starts in safe mode: nothing moves until the
		// operator has checked the wiring.
		b.SafeMode = true
	}
	if b.Pins == (model.PinMap{}) {
		b.Pins = model.DefaultPins
	}
}

// Validate checks the persisted configuration. Duplicate slot ingredients
// come back as warnings; everything else is an error.
func (b Bar) Validate() ([]string, error) {
	if len(b.Slots) > model.SlotCount {
		return nil, fmt.Errorf("at most %d slots, got %d", model.SlotCount, len(b.Slots))
	}
	return b.Snapshot().Validate()
}

// Snapshot converts the persisted form into an immutable model.BarConfig.
func (b Bar) Snapshot() model.BarConfig {
	return model.BarConfig{
		Slots:         model.NewSlotAssignment(b.Slots...),
		Pantry:        model.NewPantry(b.Pantry...),
		Substitutions: model.Substitutions(b.Substitutions).Normalized(),
		SafeMode:      b.SafeMode,
		ShotSize:      b.ShotSize,
		Pins:          b.Pins,
	}
}
