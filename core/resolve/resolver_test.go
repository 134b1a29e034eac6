package resolve

import (
	"reflect"
	"testing"

	"github.com/openbar/barbot/core/model"
)

func testConfig() model.BarConfig {
	return model.BarConfig{
		Slots:         model.NewSlotAssignment("Gin", "", "Vodka", "Tonic"),
		Pantry:        model.NewPantry("Lime"),
		Substitutions: model.Substitutions{"soda water": "tonic"},
		ShotSize:      1.5,
		Pins:          model.DefaultPins,
	}
}

func TestResolve_SubstitutionAndPantry(t *testing.T) {
	catalog := []model.Recipe{{
		ID:   "11403",
		Name: "Gin Rickey",
		Ingredients: []model.Requirement{
			{Name: "Gin", Qty: 1.5},
			{Name: "Soda Water", Qty: 3},
			{Name: "Lime", Qty: 0},
		},
	}}
	res, diags := Resolve(testConfig(), catalog)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(res) != 1 || !res[0].Makeable {
		t.Fatalf("expected makeable recipe, got %+v", res)
	}
	b := res[0].Bindings
	if b[0].Slot != 0 || !b[0].Pourable() {
		t.Fatalf("gin should bind to slot 0, got %+v", b[0])
	}
	if b[1].Slot != 3 || b[1].Resolved != "tonic" {
		t.Fatalf("soda water should substitute to tonic in slot 3, got %+v", b[1])
	}
	if b[2].Kind != model.SourcePantry {
		t.Fatalf("lime should bind to pantry, got %+v", b[2])
	}
}

func TestResolve_ShortCircuitOnFirstMiss(t *testing.T) {
	catalog := []model.Recipe{{
		ID: "negroni",
		Ingredients: []model.Requirement{
			{Name: "Gin", Qty: 1},
			{Name: "Campari", Qty: 1},
			{Name: "Sweet Vermouth", Qty: 1},
		},
	}}
	res, _ := Resolve(testConfig(), catalog)
	if res[0].Makeable {
		t.Fatalf("negroni should not be makeable")
	}
	if !reflect.DeepEqual(res[0].Missing, []string{"campari"}) {
		t.Fatalf("missing should stop at campari, got %v", res[0].Missing)
	}
	if len(res[0].Bindings) != 1 {
		t.Fatalf("bindings past the failure point must not be reported, got %+v", res[0].Bindings)
	}
}

func TestResolve_SlotBeatsPantry(t *testing.T) {
	cfg := testConfig()
	cfg.Pantry = model.NewPantry("Gin")
	catalog := []model.Recipe{{ID: "g", Ingredients: []model.Requirement{{Name: "gin", Qty: 1}}}}
	res, _ := Resolve(cfg, catalog)
	if res[0].Bindings[0].Kind != model.SourceSlot {
		t.Fatalf("slot binding must take precedence over pantry, got %+v", res[0].Bindings[0])
	}
}

func TestResolve_SubstitutionsNeverChain(t *testing.T) {
	cfg := model.BarConfig{
		Slots:         model.NewSlotAssignment("c"),
		Pantry:        model.NewPantry(),
		Substitutions: model.Substitutions{"a": "b", "b": "c"},
		ShotSize:      1.5,
	}
	catalog := []model.Recipe{
		{ID: "needs-a", Ingredients: []model.Requirement{{Name: "a", Qty: 1}}},
		{ID: "needs-b", Ingredients: []model.Requirement{{Name: "b", Qty: 1}}},
	}
	res, _ := Resolve(cfg, catalog)
	if res[0].Makeable {
		t.Fatalf("a -> b must not chain through b -> c")
	}
	if !res[1].Makeable || res[1].Bindings[0].Resolved != "c" {
		t.Fatalf("b should resolve directly to c, got %+v", res[1])
	}
}

func TestResolve_SubstitutionOnlyWhenLiteralAbsent(t *testing.T) {
	cfg := testConfig()
	cfg.Substitutions = model.Substitutions{"gin": "vodka"}
	catalog := []model.Recipe{{ID: "g", Ingredients: []model.Requirement{{Name: "Gin", Qty: 1}}}}
	res, _ := Resolve(cfg, catalog)
	if res[0].Bindings[0].Slot != 0 {
		t.Fatalf("literal slot match must win over substitution, got %+v", res[0].Bindings[0])
	}
}

func TestResolve_DuplicateSlotLowestIndexWins(t *testing.T) {
	cfg := testConfig()
	cfg.Slots = model.NewSlotAssignment("", "gin", "", "gin")
	catalog := []model.Recipe{{ID: "g", Ingredients: []model.Requirement{{Name: "gin", Qty: 1}}}}
	res, _ := Resolve(cfg, catalog)
	if res[0].Bindings[0].Slot != 1 {
		t.Fatalf("lowest slot index should win, got %d", res[0].Bindings[0].Slot)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	cfg := testConfig()
	catalog := []model.Recipe{
		{ID: "a", Ingredients: []model.Requirement{{Name: "gin", Qty: 1}, {Name: "tonic", Qty: 2}}},
		{ID: "b", Ingredients: []model.Requirement{{Name: "rum", Qty: 1}}},
		{ID: "c", Ingredients: []model.Requirement{{Name: "lime", Qty: 0}}},
	}
	first, _ := Resolve(cfg, catalog)
	for i := 0; i < 10; i++ {
		again, _ := Resolve(cfg, catalog)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution must be deterministic: run %d differs", i)
		}
	}
	if first[0].Recipe.ID != "a" || first[1].Recipe.ID != "b" || first[2].Recipe.ID != "c" {
		t.Fatalf("catalog order must be preserved")
	}
}

func TestResolve_MalformedRecipeSkipped(t *testing.T) {
	catalog := []model.Recipe{
		{ID: "empty"},
		{ID: "g", Ingredients: []model.Requirement{{Name: "gin", Qty: 1}}},
	}
	res, diags := Resolve(testConfig(), catalog)
	if len(res) != 1 || res[0].Recipe.ID != "g" {
		t.Fatalf("empty recipe should be skipped, got %+v", res)
	}
	if len(diags) != 1 || diags[0].RecipeID != "empty" {
		t.Fatalf("expected a diagnostic for the empty recipe, got %+v", diags)
	}
}

func TestSuggestions(t *testing.T) {
	catalog := []model.Recipe{
		{ID: "one-miss", Ingredients: []model.Requirement{{Name: "gin", Qty: 1}, {Name: "campari", Qty: 1}}},
		{ID: "two-miss", Ingredients: []model.Requirement{{Name: "campari", Qty: 1}, {Name: "sweet vermouth", Qty: 1}}},
		{ID: "ok", Ingredients: []model.Requirement{{Name: "gin", Qty: 1}}},
	}
	cfg := testConfig()

	one := Suggestions(cfg, catalog, 1)
	if len(one) != 1 || one[0].Recipe.ID != "one-miss" {
		t.Fatalf("expected only the single-miss recipe, got %+v", one)
	}
	if !reflect.DeepEqual(one[0].Missing, []string{"campari"}) {
		t.Fatalf("unexpected missing list: %v", one[0].Missing)
	}

	all := Suggestions(cfg, catalog, 0)
	if len(all) != 2 {
		t.Fatalf("expected two suggestions with unbounded missing, got %+v", all)
	}
	if len(all[1].Missing) != 2 {
		t.Fatalf("two-miss should report both ingredients, got %v", all[1].Missing)
	}
}

func TestLookup(t *testing.T) {
	catalog := []model.Recipe{{ID: "g", Ingredients: []model.Requirement{{Name: "gin", Qty: 1}}}}
	if _, err := Lookup(testConfig(), catalog, "nope"); err == nil {
		t.Fatalf("unknown recipe should error")
	}
	rr, err := Lookup(testConfig(), catalog, "g")
	if err != nil || !rr.Makeable {
		t.Fatalf("lookup failed: %v %+v", err, rr)
	}
}
