package controller

import "github.com/go-gl/mathgl/mgl64"

// MovementState is the per-frame state owned by a Controller.
type MovementState struct {
	IsGrounded  bool
	IsOnSlope   bool
	IsJumping   bool
	IsCrouching bool
	IsClimbing  bool
	JumpCount   int
	// GroundNormal is the negated surface normal of the latest accepted
	// ground contact. It starts as world-up until the first contact.
	GroundNormal mgl64.Vec3
}
