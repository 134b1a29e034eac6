// Package bartender turns a "make drink X" request into the rotate and pour
// sequence the turret controller executes. It owns no hardware state and
// never retries a faulted controller: fault recovery requires an explicit
// reset driven by the caller.
package bartender

import (
	"fmt"
	"strings"

	"github.com/openbar/barbot/core/logger"
	"github.com/openbar/barbot/core/model"
	"github.com/openbar/barbot/core/resolve"
)

// Pourer is the slice of the turret controller the bartender drives.
type Pourer interface {
	RotateTo(slot int, safe bool) error
	Pour(job model.DispenseJob, safe bool) error
}

// NotMakeableError is the normal negative result for a recipe whose
// ingredients do not all resolve.
type NotMakeableError struct {
	RecipeID string
	Missing  []string
}

func (e NotMakeableError) Error() string {
	return fmt.Sprintf("recipe %s not makeable, missing: %s", e.RecipeID, strings.Join(e.Missing, ", "))
}

// Step records one executed (or manual) action of a make run.
type Step struct {
	Ingredient string  `json:"ingredient"`
	Ounces     float64 `json:"ounces"`
	Slot       int     `json:"slot"`
	Manual     bool    `json:"manual"`
	JobID      string  `json:"job_id,omitempty"`
}

// MakeResult summarizes a completed make run.
type MakeResult struct {
	RecipeID string `json:"recipe_id"`
	Name     string `json:"name"`
	Steps    []Step `json:"steps"`
}

// Bartender sequences pours for whole recipes.
type Bartender struct {
	ctrl Pourer
	log  logger.Logger
}

// New creates a Bartender driving the given controller.
func New(ctrl Pourer, log logger.Logger) (*Bartender, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("bartender: nil controller")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Bartender{ctrl: ctrl, log: log}, nil
}

// Make resolves the recipe against the configuration snapshot and executes
// the bound pours in recipe-declared order. Pantry bindings become manual
// steps. A controller error aborts the run and is returned as-is; partial
// progress is reported in the result.
func (b *Bartender) Make(cfg model.BarConfig, catalog []model.Recipe, recipeID string) (MakeResult, error) {
	rr, err := resolve.Lookup(cfg, catalog, recipeID)
	if err != nil {
		return MakeResult{}, err
	}
	if !rr.Makeable {
		return MakeResult{}, NotMakeableError{RecipeID: recipeID, Missing: rr.Missing}
	}

	bindings := ScaleForSlots(rr.Bindings, cfg.ShotSize)
	res := MakeResult{RecipeID: rr.Recipe.ID, Name: rr.Recipe.Name}
	for _, bind := range bindings {
		if !bind.Pourable() {
			b.log.Infof("manual add: %.2g oz %s", bind.Qty, bind.Resolved)
			res.Steps = append(res.Steps, Step{Ingredient: bind.Ingredient, Ounces: bind.Qty, Slot: model.SlotUnknown, Manual: true})
			continue
		}
		if bind.Qty <= 0 {
			// Slot-bound garnish; nothing to dispense.
			continue
		}
		if err := b.ctrl.RotateTo(bind.Slot, cfg.SafeMode); err != nil {
			return res, err
		}
		job := model.NewDispenseJob(bind.Slot, bind.Qty)
		if err := b.ctrl.Pour(job, cfg.SafeMode); err != nil {
			return res, err
		}
		b.log.Infof("dispensed %.2g oz %s from slot %d", bind.Qty, bind.Resolved, bind.Slot)
		res.Steps = append(res.Steps, Step{Ingredient: bind.Ingredient, Ounces: bind.Qty, Slot: bind.Slot, JobID: job.ID})
	}
	return res, nil
}
