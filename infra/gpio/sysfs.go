// Package gpio provides Driver implementations for the turret controller:
// a Linux sysfs driver for the real device and a Recorder used by tests and
// simulated deployments.
package gpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/openbar/barbot/core/logger"
	"github.com/openbar/barbot/core/model"
)

const sysfsRoot = "/sys/class/gpio"

// SysfsDriver drives digital outputs through the Linux sysfs GPIO interface.
// The DM542T enable input is low-active: Setup pulls it low, Close releases
// it high so the motor is never left energized.
type SysfsDriver struct {
	root string
	pins model.PinMap
	log  logger.Logger
}

// NewSysfsDriver creates a driver rooted at /sys/class/gpio.
func NewSysfsDriver(log logger.Logger) *SysfsDriver {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &SysfsDriver{root: sysfsRoot, log: log}
}

// Setup exports the configured pins, sets them as outputs and enables the
// stepper driver.
func (d *SysfsDriver) Setup(pins model.PinMap) error {
	d.pins = pins
	for _, pin := range []int{pins.Dir, pins.Step, pins.Enable, pins.Actuator} {
		if err := d.export(pin); err != nil {
			return err
		}
		if err := d.writeFile(d.pinPath(pin, "direction"), "out"); err != nil {
			return fmt.Errorf("gpio %d: set direction: %w", pin, err)
		}
	}
	// Low-active enable.
	if err := d.Write(pins.Enable, false); err != nil {
		return err
	}
	d.log.Infof("gpio ready, pins dir=%d step=%d enable=%d actuator=%d",
		pins.Dir, pins.Step, pins.Enable, pins.Actuator)
	return nil
}

// Write sets the output value of a pin.
func (d *SysfsDriver) Write(pin int, high bool) error {
	v := "0"
	if high {
		v = "1"
	}
	if err := d.writeFile(d.pinPath(pin, "value"), v); err != nil {
		return fmt.Errorf("gpio %d: write value: %w", pin, err)
	}
	return nil
}

// Close disables the stepper driver and unexports the pins.
func (d *SysfsDriver) Close() error {
	if d.pins == (model.PinMap{}) {
		return nil
	}
	// Raise enable (disable the motor) before releasing anything.
	if err := d.Write(d.pins.Enable, true); err != nil {
		d.log.Warnf("disable motor: %v", err)
	}
	for _, pin := range []int{d.pins.Dir, d.pins.Step, d.pins.Enable, d.pins.Actuator} {
		if err := d.writeFile(filepath.Join(d.root, "unexport"), strconv.Itoa(pin)); err != nil {
			d.log.Warnf("unexport gpio %d: %v", pin, err)
		}
	}
	return nil
}

func (d *SysfsDriver) export(pin int) error {
	if _, err := os.Stat(d.pinPath(pin, "")); err == nil {
		return nil
	}
	if err := d.writeFile(filepath.Join(d.root, "export"), strconv.Itoa(pin)); err != nil {
		return fmt.Errorf("gpio %d: export: %w", pin, err)
	}
	// The kernel needs a moment to create the pin directory.
	for i := 0; i < 10; i++ {
		if _, err := os.Stat(d.pinPath(pin, "direction")); err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("gpio %d: not available after export", pin)
}

func (d *SysfsDriver) pinPath(pin int, file string) string {
	return filepath.Join(d.root, fmt.Sprintf("gpio%d", pin), file)
}

func (d *SysfsDriver) writeFile(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(value)
	return err
}
