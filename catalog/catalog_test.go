package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openbar/barbot/core/logger"
)

func TestParseMeasure(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"1.5 oz", 1.5},
		{"2 1/2 oz", 2.5},
		{"1/2 oz", 0.5},
		{"50 ml", 1.69},
		{"3 cl", 1.01},
		{"2", 2},
		{"1 slice", 0},
		{"dash", 0},
		{"Juice of 1 lime", 0},
		{"", 0},
		{"2 1/2", 2.5},
	}
	for _, tc := range cases {
		if got := ParseMeasure(tc.raw); got != tc.want {
			t.Fatalf("ParseMeasure(%q) = %g, want %g", tc.raw, got, tc.want)
		}
	}
}

func TestLoad(t *testing.T) {
	data := `[
  {"id": "11403", "name": "Gin Rickey", "ingredients": [
    {"item": " Gin ", "qty_oz": 1.5},
    {"item": "Soda Water", "raw": "2 1/2 oz"},
    {"item": "Lime", "raw": "1 wedge"}
  ]},
  {"name": "No ID", "ingredients": [{"item": "Gin", "qty_oz": 1}]}
]`
	path := filepath.Join(t.TempDir(), "recipes.json")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	recipes, err := Load(path, logger.NopLogger{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("entries without id must be dropped, got %d recipes", len(recipes))
	}
	r := recipes[0]
	if r.Ingredients[0].Name != "gin" || r.Ingredients[0].Qty != 1.5 {
		t.Fatalf("names must normalize, got %+v", r.Ingredients[0])
	}
	if r.Ingredients[1].Qty != 2.5 {
		t.Fatalf("raw measures must parse, got %+v", r.Ingredients[1])
	}
	if r.Ingredients[2].Qty != 0 {
		t.Fatalf("garnish must parse to zero, got %+v", r.Ingredients[2])
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil); err == nil {
		t.Fatalf("missing catalog must error")
	}
}
