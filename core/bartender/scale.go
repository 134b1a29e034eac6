package bartender

import (
	"math"

	"github.com/openbar/barbot/core/model"
)

// NearestMultiple returns the multiple of step closest to value, computed as
// floor(value/step + 0.5) * step.
func NearestMultiple(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	return math.Floor(value/step+0.5) * step
}

// ScaleForSlots rescales bound quantities so the largest slot-bound liquid
// lands exactly on a multiple of the shot size, then rounds every slot-bound
// liquid to its nearest shot multiple. Pantry quantities scale by the same
// factor but stay unrounded, and garnishes (zero quantity) are untouched.
// The input is not modified.
func ScaleForSlots(bindings []model.Binding, shot float64) []model.Binding {
	out := make([]model.Binding, len(bindings))
	copy(out, bindings)
	if shot <= 0 {
		return out
	}

	anchor := 0.0
	for _, b := range out {
		if b.Pourable() && b.Qty > anchor {
			anchor = b.Qty
		}
	}
	if anchor == 0 {
		return out
	}

	target := NearestMultiple(anchor, shot)
	if target == 0 {
		target = shot
	}
	factor := target / anchor

	for i, b := range out {
		if b.Qty <= 0 {
			continue
		}
		q := b.Qty * factor
		if b.Pourable() {
			q = NearestMultiple(q, shot)
		}
		out[i].Qty = math.Round(q*100) / 100
	}
	return out
}
