// Package turret owns the physical axes of the bottle turret: the rotating
// carousel and the valve actuator. All actuation flows through a single
// Driver so that safe mode can guarantee zero pin writes and tests can
// inject faults. Exactly one controller instance owns a device.
package turret

import (
	"sync"
	"time"

	"github.com/openbar/barbot/core/events"
	"github.com/openbar/barbot/core/logger"
	"github.com/openbar/barbot/core/model"
	"github.com/openbar/barbot/core/monitoring"
	"github.com/openbar/barbot/internal/eventbus"
)

// State enumerates the controller states.
type State int

const (
	Uninitialized State = iota
	Homing
	Idle
	Rotating
	Pouring
	Faulted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Homing:
		return "homing"
	case Idle:
		return "idle"
	case Rotating:
		return "rotating"
	case Pouring:
		return "pouring"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Status is a point-in-time snapshot of the controller.
type Status struct {
	State       string `json:"state"`
	Homed       bool   `json:"homed"`
	CurrentSlot int    `json:"current_slot"`
	Actuator    string `json:"actuator"`
	FaultReason string `json:"fault_reason,omitempty"`
}

// Controller is the dispense controller state machine.
type Controller struct {
	drv        Driver
	pins       model.PinMap
	motion     Motion
	homeSensor HomeSensor
	slotSensor SlotSensor
	log        logger.Logger
	bus        eventbus.EventBus
	sleep      func(time.Duration)

	// op serializes motion. TryLock semantics give the immediate busy
	// rejection: requests are never queued.
	op sync.Mutex

	mu          sync.RWMutex
	state       State
	axis        model.AxisState
	faultReason string
	setup       bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(c *Controller) { c.log = l } }

// WithBus sets the event bus for state, pin and motion events.
func WithBus(b eventbus.EventBus) Option { return func(c *Controller) { c.bus = b } }

// WithHomeSensor sets the home position sensor. Without one, homing trusts
// the power-on position and zeroes the counter immediately.
func WithHomeSensor(s HomeSensor) Option { return func(c *Controller) { c.homeSensor = s } }

// WithSlotSensor enables missed-step detection after each rotation.
func WithSlotSensor(s SlotSensor) Option { return func(c *Controller) { c.slotSensor = s } }

// WithSleep replaces the sleep function, letting tests run motion instantly.
func WithSleep(f func(time.Duration)) Option { return func(c *Controller) { c.sleep = f } }

// New creates a Controller for the given driver and pin map.
func New(drv Driver, pins model.PinMap, motion Motion, opts ...Option) (*Controller, error) {
	if drv == nil {
		return nil, ValidationError{Field: "driver", Reason: "must not be nil"}
	}
	if err := pins.Validate(); err != nil {
		return nil, ValidationError{Field: "pins", Reason: err.Error()}
	}
	motion.SetDefaults()
	if err := motion.Validate(); err != nil {
		return nil, ValidationError{Field: "motion", Reason: err.Error()}
	}
	c := &Controller{
		drv:    drv,
		pins:   pins,
		motion: motion,
		log:    logger.NopLogger{},
		sleep:  time.Sleep,
		state:  Uninitialized,
		axis:   model.AxisState{CurrentSlot: model.SlotUnknown, Actuator: model.ActuatorUnknown},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		State:       c.state.String(),
		Homed:       c.axis.Homed,
		CurrentSlot: c.axis.CurrentSlot,
		Actuator:    c.axis.Actuator.String(),
		FaultReason: c.faultReason,
	}
}

// RotateTo rotates the turret to the given slot over the shortest angular
// path. Calling it for the slot the turret is already at succeeds without
// motion. The first motion request triggers homing.
func (c *Controller) RotateTo(slot int, safe bool) error {
	if slot < 0 || slot >= model.SlotCount {
		return ValidationError{Field: "slot", Reason: "must be between 0 and 11"}
	}
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()
	if err := c.checkFaulted(); err != nil {
		return err
	}
	if err := c.ensureHomed(safe); err != nil {
		return err
	}
	c.mu.RLock()
	from := c.axis.CurrentSlot
	c.mu.RUnlock()
	if from == slot {
		c.log.Debugf("already at slot %d, no motion", slot)
		return nil
	}
	return c.rotate(from, slot, safe)
}

// Pour presses the bottle valve at the given slot for a duration proportional
// to the job volume. The turret must already be at the slot: Pour never
// rotates implicitly. In safe mode the full timing sequence runs but no
// output pin is asserted, and the pour is reported as success.
func (c *Controller) Pour(job model.DispenseJob, safe bool) error {
	if job.Slot < 0 || job.Slot >= model.SlotCount {
		return ValidationError{Field: "slot", Reason: "must be between 0 and 11"}
	}
	if job.Ounces <= 0 {
		return ValidationError{Field: "ounces", Reason: "must be positive"}
	}
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()
	if err := c.checkFaulted(); err != nil {
		return err
	}
	if err := c.ensureHomed(safe); err != nil {
		return err
	}
	c.mu.RLock()
	at := c.axis.CurrentSlot
	c.mu.RUnlock()
	if at != job.Slot {
		return WrongPositionError{Want: job.Slot, At: at}
	}
	return c.pour(job, safe)
}

// Home runs the homing calibration. It is also triggered implicitly by the
// first rotate or pour request.
func (c *Controller) Home(safe bool) error {
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()
	if err := c.checkFaulted(); err != nil {
		return err
	}
	return c.home(safe)
}

// Reset is the only way out of the faulted state. It clears the fault and
// re-enters homing.
func (c *Controller) Reset(safe bool) error {
	if !c.op.TryLock() {
		return ErrBusy
	}
	defer c.op.Unlock()
	c.mu.Lock()
	c.faultReason = ""
	c.axis.Homed = false
	c.axis.CurrentSlot = model.SlotUnknown
	c.mu.Unlock()
	return c.home(safe)
}

// Close disables the stepper driver and releases the pins.
func (c *Controller) Close() error {
	c.op.Lock()
	defer c.op.Unlock()
	c.mu.Lock()
	wasSetup := c.setup
	c.setup = false
	c.mu.Unlock()
	if !wasSetup {
		return nil
	}
	return c.drv.Close()
}

func (c *Controller) checkFaulted() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == Faulted {
		return HardwareFault{Reason: c.faultReason}
	}
	return nil
}

func (c *Controller) ensureHomed(safe bool) error {
	c.mu.RLock()
	homed := c.axis.Homed
	c.mu.RUnlock()
	if homed {
		return nil
	}
	return c.home(safe)
}

// home sweeps clockwise until the home sensor triggers, then zeroes the
// position counter. The sweep is bounded by the configured timeout. Without
// a sensor the power-on position is trusted. Safe mode performs the logical
// sequence with no pin writes. Caller holds the op lock.
func (c *Controller) home(safe bool) error {
	c.setState(Homing)
	if !safe {
		if err := c.ensureSetup(); err != nil {
			return err
		}
	}
	if !safe && c.homeSensor != nil {
		if err := c.out(safe, c.pins.Dir, true); err != nil {
			return c.fault("home sweep: " + err.Error())
		}
		var elapsed time.Duration
		pulse := 2 * c.motion.StepDelay()
		for !c.homeSensor() {
			if elapsed >= c.motion.HomeTimeout() {
				return c.fault("home not found")
			}
			if err := c.step(safe); err != nil {
				return c.fault("home sweep: " + err.Error())
			}
			elapsed += pulse
		}
	}
	c.mu.Lock()
	c.axis.Homed = true
	c.axis.CurrentSlot = 0
	c.axis.Actuator = model.ActuatorRetracted
	c.mu.Unlock()
	c.setState(Idle)
	c.log.Infof("homed, slot counter zeroed")
	return nil
}

// rotate issues the stepper motion between two slots. Caller holds the op
// lock and has validated the target.
func (c *Controller) rotate(from, to int, safe bool) error {
	cw, slots := c.motion.shortestPath(from, to)
	steps := slots * c.motion.StepsPerSlot()
	c.setState(Rotating)
	start := time.Now()
	if !safe {
		if err := c.ensureSetup(); err != nil {
			return err
		}
		if err := c.out(safe, c.pins.Dir, cw); err != nil {
			return c.fault("set direction: " + err.Error())
		}
		for i := 0; i < steps; i++ {
			if err := c.step(safe); err != nil {
				return c.fault("step pulse: " + err.Error())
			}
		}
	}
	c.mu.Lock()
	c.axis.CurrentSlot = to
	c.mu.Unlock()
	if c.slotSensor != nil && !safe {
		if got, ok := c.slotSensor(); ok && got != to {
			return c.fault(WrongPositionError{Want: to, At: got}.Error())
		}
	}
	c.setState(Idle)
	c.publish(events.RotationEvent{From: from, To: to, Steps: steps, CW: cw, Duration: time.Since(start)})
	c.log.Infof("rotated %d -> %d (%d steps, cw=%v)", from, to, steps, cw)
	return nil
}

// pour runs the actuator press sequence. Caller holds the op lock and has
// validated position and volume.
func (c *Controller) pour(job model.DispenseJob, safe bool) error {
	c.setState(Pouring)
	press := c.motion.PressFor(job.Ounces)
	start := time.Now()
	if !safe {
		if err := c.ensureSetup(); err != nil {
			return err
		}
	}
	if err := c.out(safe, c.pins.Actuator, true); err != nil {
		return c.fault("extend actuator: " + err.Error())
	}
	c.setActuator(safe, model.ActuatorExtended)
	c.sleep(press)
	if err := c.out(safe, c.pins.Actuator, false); err != nil {
		// The valve may be stuck open; this is not locally recoverable.
		return c.fault("retract actuator: " + err.Error())
	}
	c.setActuator(safe, model.ActuatorRetracted)
	c.sleep(c.motion.SettleDelay())
	c.setState(Idle)
	c.publish(events.PourEvent{
		JobID:      job.ID,
		Slot:       job.Slot,
		Ounces:     job.Ounces,
		Duration:   time.Since(start),
		Suppressed: safe,
	})
	if safe {
		c.log.Infof("safe mode: pour of %.2f oz at slot %d suppressed", job.Ounces, job.Slot)
	} else {
		c.log.Infof("poured %.2f oz at slot %d", job.Ounces, job.Slot)
	}
	return nil
}

// out is the single choke point for pin writes. In safe mode it returns
// immediately without touching the driver, which is what makes the
// no-actuation guarantee hard rather than best-effort.
func (c *Controller) out(safe bool, pin int, high bool) error {
	if safe {
		return nil
	}
	if err := c.drv.Write(pin, high); err != nil {
		return err
	}
	c.publish(events.PinEvent{Pin: pin, High: high, Time: time.Now()})
	return nil
}

// step emits one step pulse.
func (c *Controller) step(safe bool) error {
	if err := c.out(safe, c.pins.Step, true); err != nil {
		return err
	}
	c.sleep(c.motion.StepDelay())
	if err := c.out(safe, c.pins.Step, false); err != nil {
		return err
	}
	c.sleep(c.motion.StepDelay())
	return nil
}

func (c *Controller) ensureSetup() error {
	c.mu.RLock()
	done := c.setup
	c.mu.RUnlock()
	if done {
		return nil
	}
	if err := c.drv.Setup(c.pins); err != nil {
		return c.fault("driver setup: " + err.Error())
	}
	c.mu.Lock()
	c.setup = true
	c.mu.Unlock()
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	from := c.state
	c.state = s
	c.mu.Unlock()
	if from != s {
		c.publish(events.StateEvent{From: from.String(), To: s.String(), Time: time.Now()})
	}
}

func (c *Controller) setActuator(safe bool, pos model.ActuatorPos) {
	if safe {
		return
	}
	c.mu.Lock()
	c.axis.Actuator = pos
	c.mu.Unlock()
}

// fault transitions to Faulted, records the reason verbatim and reports it.
func (c *Controller) fault(reason string) error {
	c.mu.Lock()
	c.faultReason = reason
	slot := c.axis.CurrentSlot
	c.mu.Unlock()
	c.setState(Faulted)
	err := HardwareFault{Reason: reason}
	c.publish(events.FaultEvent{Reason: reason, State: Faulted.String(), Time: time.Now()})
	monitoring.CaptureFault(err, Faulted.String(), slot)
	c.log.Errorf("fault: %s", reason)
	return err
}

func (c *Controller) publish(e eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}
