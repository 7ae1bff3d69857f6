package controller

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("controller: invalid config")

// Config holds the tuning values of a controller. A Config is treated as an
// immutable snapshot; use Controller.Reconfigure to swap in a new one.
type Config struct {
	Speed         float64 `yaml:"speed"`
	MaxVelocity   float64 `yaml:"max_velocity"`
	RayDistance   float64 `yaml:"ray_distance"`
	MaxSlopeAngle float64 `yaml:"max_slope_angle"`
	JumpHeight    float64 `yaml:"jump_height"`
	MaxJumpCount  int     `yaml:"max_jump_count"`
	ClimbSpeed    float64 `yaml:"climb_speed"`
}

func DefaultConfig() Config {
	return Config{
		Speed:         5,
		MaxVelocity:   2,
		RayDistance:   0.5,
		MaxSlopeAngle: 45,
		JumpHeight:    2,
		MaxJumpCount:  2,
		ClimbSpeed:    5,
	}
}

// Validate reports every out-of-range field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	if c.Speed < 0 {
		errs = append(errs, fmt.Errorf("speed %v < 0", c.Speed))
	}
	if c.MaxVelocity < 0 {
		errs = append(errs, fmt.Errorf("max_velocity %v < 0", c.MaxVelocity))
	}
	if c.RayDistance <= 0 {
		errs = append(errs, fmt.Errorf("ray_distance %v <= 0", c.RayDistance))
	}
	if c.MaxSlopeAngle < 0 || c.MaxSlopeAngle > 180 {
		errs = append(errs, fmt.Errorf("max_slope_angle %v outside [0, 180]", c.MaxSlopeAngle))
	}
	if c.JumpHeight < 0 {
		errs = append(errs, fmt.Errorf("jump_height %v < 0", c.JumpHeight))
	}
	if c.MaxJumpCount < 0 {
		errs = append(errs, fmt.Errorf("max_jump_count %d < 0", c.MaxJumpCount))
	}
	if c.ClimbSpeed < 0 {
		errs = append(errs, fmt.Errorf("climb_speed %v < 0", c.ClimbSpeed))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
