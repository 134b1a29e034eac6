// Package catalog loads the pre-merged recipe catalog from disk. Syncing
// the catalog against remote sources is a separate concern; this package
// only reads the merged file and normalizes it into the core model.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openbar/barbot/core/logger"
	"github.com/openbar/barbot/core/model"
)

// entry mirrors the on-disk catalog format. The quantity may come either
// pre-converted in qty_oz or as the raw measure string from the source
// database.
type entry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Ingredients  []struct {
		Item  string  `json:"item"`
		QtyOz float64 `json:"qty_oz"`
		Raw   string  `json:"raw"`
	} `json:"ingredients"`
}

// Load reads the catalog file. Entries without an identifier are dropped
// with a warning; ingredient names are normalized and missing qty_oz values
// are recovered from the raw measure.
func Load(path string, log logger.Logger) ([]model.Recipe, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]model.Recipe, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			log.Warnf("catalog entry %q has no id, skipped", e.Name)
			continue
		}
		r := model.Recipe{ID: e.ID, Name: e.Name, Instructions: e.Instructions}
		for _, ing := range e.Ingredients {
			name := model.Normalize(ing.Item)
			if name == "" {
				continue
			}
			qty := ing.QtyOz
			if qty == 0 && ing.Raw != "" {
				qty = ParseMeasure(ing.Raw)
			}
			r.Ingredients = append(r.Ingredients, model.Requirement{Name: name, Qty: qty})
		}
		out = append(out, r)
	}
	log.Infof("loaded %d recipes from %s", len(out), path)
	return out, nil
}
