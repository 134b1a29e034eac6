package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openbar/barbot/config"
	"github.com/openbar/barbot/core/turret"
	"github.com/openbar/barbot/infra/gpio"
	"github.com/openbar/barbot/infra/logger"
)

var rotateSafe bool

var rotateCmd = &cobra.Command{
	Use:   "rotate <slot>",
	Short: "Home the turret and rotate it to a slot",
	Args:  cobra.ExactArgs(1),
	RunE:  runRotate,
}

func init() {
	rotateCmd.Flags().BoolVar(&rotateSafe, "safe", false, "dry run, never drive the pins")
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("slot must be an integer: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	var drv turret.Driver
	if cfg.Hardware.Simulated {
		drv = gpio.NewRecorder()
	} else {
		drv = gpio.NewSysfsDriver(logger.New("gpio"))
	}
	ctrl, err := turret.New(drv, cfg.Bar.Snapshot().Pins, cfg.Motion, turret.WithLogger(logger.New("turret")))
	if err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	defer func() {
		if err := ctrl.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "close: %v\n", err)
		}
	}()
	safe := rotateSafe || cfg.Bar.SafeMode
	if err := ctrl.RotateTo(slot, safe); err != nil {
		return err
	}
	st := ctrl.Status()
	fmt.Printf("state=%s slot=%d safe=%v\n", st.State, st.CurrentSlot, safe)
	return nil
}
