package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openbar/barbot/config"
)

func TestNewWithStore_SimulatedHardware(t *testing.T) {
	dir := t.TempDir()
	recipes := filepath.Join(dir, "recipes.json")
	if err := os.WriteFile(recipes, []byte(`[{"id": "gt", "name": "Gin Tonic", "ingredients": [{"item": "Gin", "qty_oz": 1.5}]}]`), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cfg := &config.Config{}
	cfg.Bar.Slots = []string{"gin"}
	cfg.Hardware.Simulated = true
	cfg.Catalog.Path = recipes
	cfg.SetDefaults()

	svc, err := NewWithStore(config.NewStoreWith(filepath.Join(dir, "config.json"), cfg))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()
	// A fresh config starts in safe mode, so this must not touch hardware.
	if err := svc.Controller.RotateTo(0, svc.Store.Snapshot().SafeMode); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if st := svc.Controller.Status(); st.CurrentSlot != 0 || st.State != "idle" {
		t.Fatalf("unexpected status: %+v", st)
	}
}
