package flight

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEnvelope = errors.New("invalid flight envelope")
	ErrInvalidRotation = errors.New("start rotation is not unit length")
	ErrPlayerIndex     = errors.New("the player must be the first and only player aircraft")
)

// Envelope holds the tunable limits of an aircraft, set at spawn and never changed
type Envelope struct {
	MaxSpeed     float32 `yaml:"max_speed"`
	MinSpeed     float32 `yaml:"min_speed"`
	Acceleration float32 `yaml:"acceleration"`

	YawMaxSpeed     float32 `yaml:"yaw_max_speed"`
	YawAcceleration float32 `yaml:"yaw_acceleration"`

	PitchMaxSpeed     float32 `yaml:"pitch_max_speed"`
	PitchAcceleration float32 `yaml:"pitch_acceleration"`
}

// Validate rejects envelopes the flight model cannot integrate.
// YawMaxSpeed divides the roll coupling term, so it must be strictly positive.
func (e Envelope) Validate() error {
	switch {
	case e.YawMaxSpeed <= 0:
		return fmt.Errorf("%w: yaw max speed must be > 0, got %v", ErrInvalidEnvelope, e.YawMaxSpeed)
	case e.PitchMaxSpeed <= 0:
		return fmt.Errorf("%w: pitch max speed must be > 0, got %v", ErrInvalidEnvelope, e.PitchMaxSpeed)
	case e.MinSpeed > e.MaxSpeed:
		return fmt.Errorf("%w: min speed %v above max speed %v", ErrInvalidEnvelope, e.MinSpeed, e.MaxSpeed)
	case e.Acceleration < 0 || e.YawAcceleration < 0 || e.PitchAcceleration < 0:
		return fmt.Errorf("%w: accelerations must not be negative", ErrInvalidEnvelope)
	}
	return nil
}
