package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openbar/barbot/catalog"
	"github.com/openbar/barbot/config"
	"github.com/openbar/barbot/core/logger"
	"github.com/openbar/barbot/core/resolve"
)

var menuAll bool

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Resolve the catalog against the configured bottles",
	RunE:  runMenu,
}

func init() {
	menuCmd.Flags().BoolVar(&menuAll, "all", false, "include recipes that cannot be made")
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	recipes, err := catalog.Load(cfg.Catalog.Path, logger.NopLogger{})
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	resolved, diags := resolve.Resolve(cfg.Bar.Snapshot(), recipes)
	for _, d := range diags {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", d.RecipeID, d.Reason)
	}
	for _, rr := range resolved {
		if !rr.Makeable && !menuAll {
			continue
		}
		if rr.Makeable {
			fmt.Printf("%s (%s)\n", rr.Recipe.Name, rr.Recipe.ID)
			for _, b := range rr.Bindings {
				switch {
				case b.Pourable():
					fmt.Printf("  %-20s %.2f oz  slot %d (%s)\n", b.Ingredient, b.Qty, b.Slot, b.Resolved)
				default:
					fmt.Printf("  %-20s pantry (%s)\n", b.Ingredient, b.Resolved)
				}
			}
		} else {
			fmt.Printf("%s (%s)  missing: %v\n", rr.Recipe.Name, rr.Recipe.ID, rr.Missing)
		}
	}
	return nil
}
