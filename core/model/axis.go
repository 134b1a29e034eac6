package model

// SlotUnknown marks an uncalibrated rotation axis.
const SlotUnknown = -1

// ActuatorPos is the logical position of the valve actuator.
type ActuatorPos int

const (
	ActuatorUnknown ActuatorPos = iota
	ActuatorRetracted
	ActuatorExtended
)

func (p ActuatorPos) String() string {
	switch p {
	case ActuatorRetracted:
		return "retracted"
	case ActuatorExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// AxisState is the physical truth of the turret axes. It is owned exclusively
// by the turret controller; configuration state is kept elsewhere so that a
// configuration edit can never move hardware.
type AxisState struct {
	Homed       bool        `json:"homed"`
	CurrentSlot int         `json:"current_slot"`
	Actuator    ActuatorPos `json:"actuator"`
}
