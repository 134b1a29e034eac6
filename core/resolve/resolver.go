// Package resolve computes which recipes are currently makeable from a
// configuration snapshot and a recipe catalog. Resolution is a pure function
// of its inputs: no clock, no randomness, no shared state, so it may be
// called concurrently and repeatedly.
package resolve

import (
	"fmt"

	"github.com/openbar/barbot/core/model"
)

// Diagnostic reports a catalog entry that was skipped during resolution.
type Diagnostic struct {
	RecipeID string
	Reason   string
}

// Resolve evaluates every catalog recipe against the configuration snapshot,
// preserving catalog order. Recipes with an empty requirement list are
// skipped and reported as diagnostics rather than failing the whole call.
func Resolve(cfg model.BarConfig, catalog []model.Recipe) ([]model.ResolvedRecipe, []Diagnostic) {
	subs := cfg.Substitutions.Normalized()
	out := make([]model.ResolvedRecipe, 0, len(catalog))
	var diags []Diagnostic
	for _, r := range catalog {
		if len(r.Ingredients) == 0 {
			diags = append(diags, Diagnostic{RecipeID: r.ID, Reason: "recipe has no ingredients"})
			continue
		}
		out = append(out, resolveRecipe(cfg, subs, r))
	}
	return out, diags
}

// resolveRecipe walks the requirements in declared order and stops at the
// first one that cannot be satisfied.
func resolveRecipe(cfg model.BarConfig, subs model.Substitutions, r model.Recipe) model.ResolvedRecipe {
	res := model.ResolvedRecipe{Recipe: r, Makeable: true}
	for _, req := range r.Ingredients {
		b, ok := bind(cfg, subs, req)
		if !ok {
			res.Makeable = false
			res.Missing = []string{model.Normalize(req.Name)}
			return res
		}
		res.Bindings = append(res.Bindings, b)
	}
	return res
}

// bind resolves a single requirement. Lookup order: slot by literal name,
// then substitution target (slot before pantry), then pantry by literal
// name. Slot bindings always beat pantry bindings for the same name, and a
// substitution never chains through another substitution.
func bind(cfg model.BarConfig, subs model.Substitutions, req model.Requirement) (model.Binding, bool) {
	name := model.Normalize(req.Name)
	if name == "" {
		return model.Binding{}, false
	}
	if idx := cfg.Slots.IndexOf(name); idx >= 0 {
		return model.Binding{Ingredient: name, Resolved: name, Kind: model.SourceSlot, Slot: idx, Qty: req.Qty}, true
	}
	if sub, ok := subs.Lookup(name); ok {
		if idx := cfg.Slots.IndexOf(sub); idx >= 0 {
			return model.Binding{Ingredient: name, Resolved: sub, Kind: model.SourceSlot, Slot: idx, Qty: req.Qty}, true
		}
		if cfg.Pantry.Has(sub) {
			return model.Binding{Ingredient: name, Resolved: sub, Kind: model.SourcePantry, Slot: model.SlotUnknown, Qty: req.Qty}, true
		}
	}
	if cfg.Pantry.Has(name) {
		return model.Binding{Ingredient: name, Resolved: name, Kind: model.SourcePantry, Slot: model.SlotUnknown, Qty: req.Qty}, true
	}
	return model.Binding{}, false
}

// Lookup resolves a single recipe by identifier. It returns an error only
// for unknown identifiers; an unmakeable recipe is a normal result.
func Lookup(cfg model.BarConfig, catalog []model.Recipe, recipeID string) (model.ResolvedRecipe, error) {
	subs := cfg.Substitutions.Normalized()
	for _, r := range catalog {
		if r.ID == recipeID {
			if len(r.Ingredients) == 0 {
				return model.ResolvedRecipe{}, fmt.Errorf("recipe %s has no ingredients", recipeID)
			}
			return resolveRecipe(cfg, subs, r), nil
		}
	}
	return model.ResolvedRecipe{}, fmt.Errorf("unknown recipe %s", recipeID)
}

// Suggestion pairs a recipe with the ingredients keeping it off the menu.
type Suggestion struct {
	Recipe  model.Recipe `json:"recipe"`
	Missing []string     `json:"missing"`
}

// Suggestions scans the catalog for recipes that are almost makeable. Unlike
// Resolve it does not short-circuit: every unsatisfied ingredient is
// collected so the caller can show what to shop for. maxMissing bounds the
// size of the missing list; zero means unbounded.
func Suggestions(cfg model.BarConfig, catalog []model.Recipe, maxMissing int) []Suggestion {
	subs := cfg.Substitutions.Normalized()
	var out []Suggestion
	for _, r := range catalog {
		if len(r.Ingredients) == 0 {
			continue
		}
		var missing []string
		for _, req := range r.Ingredients {
			if _, ok := bind(cfg, subs, req); !ok {
				missing = append(missing, model.Normalize(req.Name))
			}
		}
		if len(missing) == 0 {
			continue
		}
		if maxMissing > 0 && len(missing) > maxMissing {
			continue
		}
		out = append(out, Suggestion{Recipe: r, Missing: missing})
	}
	return out
}
