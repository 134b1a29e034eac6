package turret

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openbar/barbot/core/model"
	"github.com/openbar/barbot/infra/gpio"
	"github.com/openbar/barbot/internal/eventbus"
)

func newTestController(t *testing.T, rec *gpio.Recorder, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithSleep(func(time.Duration) {})}, opts...)
	c, err := New(rec, model.DefaultPins, Motion{}, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func TestNew_RejectsBadPins(t *testing.T) {
	bad := model.PinMap{Dir: 20, Step: 20, Enable: 16, Actuator: 26}
	if _, err := New(gpio.NewRecorder(), bad, Motion{}); err == nil {
		t.Fatalf("duplicate pins must be rejected")
	}
	var ve ValidationError
	_, err := New(gpio.NewRecorder(), model.PinMap{}, Motion{})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRotateTo_InvalidSlotRejectedBeforeMotion(t *testing.T) {
	rec := gpio.NewRecorder()
	c := newTestController(t, rec)
	var ve ValidationError
	if err := c.RotateTo(12, false); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := c.RotateTo(-1, false); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(rec.Writes()) != 0 {
		t.Fatalf("invalid input must be rejected before any pin write")
	}
	if c.Status().State != Uninitialized.String() {
		t.Fatalf("state must be untouched, got %s", c.Status().State)
	}
}

func TestRotateTo_FirstRequestHomes(t *testing.T) {
	c := newTestController(t, gpio.NewRecorder())
	if err := c.RotateTo(3, false); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	st := c.Status()
	if !st.Homed || st.CurrentSlot != 3 || st.State != Idle.String() {
		t.Fatalf("expected homed controller idle at slot 3, got %+v", st)
	}
}

func TestRotateTo_ShortestPath(t *testing.T) {
	cases := []struct {
		from, to  int
		wantCW    bool
		wantSlots int
	}{
		{0, 3, true, 3},
		{0, 9, false, 3},
		{10, 1, true, 3},
		{1, 10, false, 3},
		{0, 6, true, 6}, // tie broken clockwise by default
	}
	for _, tc := range cases {
		rec := gpio.NewRecorder()
		c := newTestController(t, rec)
		if err := c.RotateTo(tc.from, false); err != nil {
			t.Fatalf("pre-position: %v", err)
		}
		rec.Reset()
		if err := c.RotateTo(tc.to, false); err != nil {
			t.Fatalf("rotate %d->%d: %v", tc.from, tc.to, err)
		}
		dir := rec.WritesFor(model.DefaultPins.Dir)
		if len(dir) != 1 || dir[0].High != tc.wantCW {
			t.Fatalf("rotate %d->%d: want cw=%v, dir writes %+v", tc.from, tc.to, tc.wantCW, dir)
		}
		steps := rec.WritesFor(model.DefaultPins.Step)
		wantPulses := tc.wantSlots * c.motion.StepsPerSlot()
		if len(steps) != 2*wantPulses {
			t.Fatalf("rotate %d->%d: want %d step edges, got %d", tc.from, tc.to, 2*wantPulses, len(steps))
		}
	}
}

func TestRotateTo_SameSlotIsNoOp(t *testing.T) {
	rec := gpio.NewRecorder()
	c := newTestController(t, rec)
	if err := c.RotateTo(5, false); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	rec.Reset()
	if err := c.RotateTo(5, false); err != nil {
		t.Fatalf("same-slot rotate must succeed, got %v", err)
	}
	if len(rec.Writes()) != 0 {
		t.Fatalf("same-slot rotate must not move, got writes %+v", rec.Writes())
	}
}

func TestPour_WrongPositionNeverRotates(t *testing.T) {
	rec := gpio.NewRecorder()
	c := newTestController(t, rec)
	if err := c.RotateTo(2, false); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	rec.Reset()
	err := c.Pour(model.NewDispenseJob(5, 1.5), false)
	var wp WrongPositionError
	if !errors.As(err, &wp) || wp.Want != 5 || wp.At != 2 {
		t.Fatalf("expected wrong-position 5 vs 2, got %v", err)
	}
	if len(rec.Writes()) != 0 {
		t.Fatalf("wrong-position pour must not actuate, got %+v", rec.Writes())
	}
	if c.Status().State != Idle.String() {
		t.Fatalf("controller must stay idle, got %s", c.Status().State)
	}
}

func TestPour_ActuatorSequenceAndDuration(t *testing.T) {
	rec := gpio.NewRecorder()
	var sleeps []time.Duration
	c := newTestController(t, rec, WithSleep(func(d time.Duration) { sleeps = append(sleeps, d) }))
	if err := c.RotateTo(2, false); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	rec.Reset()
	sleeps = nil
	if err := c.Pour(model.NewDispenseJob(2, 1.5), false); err != nil {
		t.Fatalf("pour: %v", err)
	}
	acts := rec.WritesFor(model.DefaultPins.Actuator)
	if len(acts) != 2 || !acts[0].High || acts[1].High {
		t.Fatalf("expected extend then retract, got %+v", acts)
	}
	// 600 ms per ounce at 1.5 oz.
	if len(sleeps) != 2 || sleeps[0] != 900*time.Millisecond {
		t.Fatalf("press duration must be proportional to volume, got %v", sleeps)
	}
	if c.Status().State != Idle.String() {
		t.Fatalf("expected idle after pour, got %s", c.Status().State)
	}
}

func TestSafeMode_NeverAssertsAnyPin(t *testing.T) {
	rec := gpio.NewRecorder()
	bus := eventbus.New()
	c := newTestController(t, rec, WithBus(bus))
	if err := c.Home(true); err != nil {
		t.Fatalf("safe home: %v", err)
	}
	if err := c.RotateTo(4, true); err != nil {
		t.Fatalf("safe rotate: %v", err)
	}
	// Safe-mode pour must be reported as success so downstream accounting
	// matches production mode.
	if err := c.Pour(model.NewDispenseJob(4, 2), true); err != nil {
		t.Fatalf("safe pour must succeed, got %v", err)
	}
	if len(rec.Writes()) != 0 {
		t.Fatalf("safe mode asserted pins: %+v", rec.Writes())
	}
	if rec.WasSetup() {
		t.Fatalf("safe mode must not initialize the driver")
	}
	if rec.Asserted(model.DefaultPins.Actuator) {
		t.Fatalf("actuator asserted in safe mode")
	}
	st := c.Status()
	if st.CurrentSlot != 4 || st.State != Idle.String() {
		t.Fatalf("logical state must track in safe mode, got %+v", st)
	}
}

func TestBusy_RejectsConcurrentRequests(t *testing.T) {
	rec := gpio.NewRecorder()
	block := make(chan struct{})
	entered := make(chan struct{}, 1)
	c := newTestController(t, rec, WithSleep(func(time.Duration) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-block
	}))
	if err := c.Home(false); err != nil {
		t.Fatalf("home: %v", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := c.Pour(model.NewDispenseJob(0, 1), false); err != nil {
			t.Errorf("pour: %v", err)
		}
	}()
	<-entered
	if err := c.RotateTo(3, false); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected busy rejection, got %v", err)
	}
	if err := c.Pour(model.NewDispenseJob(0, 1), false); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected busy rejection, got %v", err)
	}
	close(block)
	wg.Wait()
}

func TestFault_DriverErrorThenReset(t *testing.T) {
	rec := gpio.NewRecorder()
	rec.FailPins[model.DefaultPins.Step] = true
	c := newTestController(t, rec)
	err := c.RotateTo(3, false)
	if !IsFault(err) {
		t.Fatalf("expected hardware fault, got %v", err)
	}
	st := c.Status()
	if st.State != Faulted.String() || st.FaultReason == "" {
		t.Fatalf("expected faulted state with reason, got %+v", st)
	}
	// All motion is rejected until Reset.
	if err := c.RotateTo(1, false); !IsFault(err) {
		t.Fatalf("faulted controller must reject motion, got %v", err)
	}
	if err := c.Pour(model.NewDispenseJob(0, 1), false); !IsFault(err) {
		t.Fatalf("faulted controller must reject pours, got %v", err)
	}
	rec.FailPins[model.DefaultPins.Step] = false
	if err := c.Reset(false); err != nil {
		t.Fatalf("reset: %v", err)
	}
	st = c.Status()
	if st.State != Idle.String() || st.CurrentSlot != 0 || st.FaultReason != "" {
		t.Fatalf("expected rehomed controller after reset, got %+v", st)
	}
}

func TestHome_SensorSweepAndTimeout(t *testing.T) {
	rec := gpio.NewRecorder()
	trigger := 0
	sensor := func() bool {
		trigger++
		return trigger > 40
	}
	c := newTestController(t, rec, WithHomeSensor(sensor))
	if err := c.Home(false); err != nil {
		t.Fatalf("home: %v", err)
	}
	if got := len(rec.WritesFor(model.DefaultPins.Step)); got != 80 {
		t.Fatalf("expected 40 step pulses (80 edges), got %d", got)
	}
	st := c.Status()
	if !st.Homed || st.CurrentSlot != 0 {
		t.Fatalf("expected homed at slot 0, got %+v", st)
	}

	// A sensor that never triggers faults after the configured bound.
	never, err := New(gpio.NewRecorder(), model.DefaultPins,
		Motion{HomeTimeoutMS: 10},
		WithSleep(func(time.Duration) {}),
		WithHomeSensor(func() bool { return false }))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	herr := never.Home(false)
	if !IsFault(herr) {
		t.Fatalf("expected home timeout fault, got %v", herr)
	}
	if never.Status().FaultReason != "home not found" {
		t.Fatalf("fault reason must surface verbatim, got %q", never.Status().FaultReason)
	}
}

func TestRotate_SlotSensorMismatchFaults(t *testing.T) {
	rec := gpio.NewRecorder()
	c := newTestController(t, rec, WithSlotSensor(func() (int, bool) { return 1, true }))
	err := c.RotateTo(3, false)
	if !IsFault(err) {
		t.Fatalf("expected position mismatch fault, got %v", err)
	}
}

func TestPour_RejectsNonPositiveVolume(t *testing.T) {
	c := newTestController(t, gpio.NewRecorder())
	var ve ValidationError
	if err := c.Pour(model.DispenseJob{Slot: 0, Ounces: 0}, false); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for zero volume, got %v", err)
	}
}
