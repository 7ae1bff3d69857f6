package controller

import "github.com/go-gl/mathgl/mgl64"

// Hit is a single result of a downward cast. An empty ColliderID means the
// hit has no collider and is never accepted as ground.
type Hit struct {
	Point      mgl64.Vec3
	Normal     mgl64.Vec3
	Distance   float64
	ColliderID string
	IsTrigger  bool
}

// GroundCaster answers ray casts against the world. Hits come back in
// backend order, which is not necessarily sorted by distance.
type GroundCaster interface {
	CastDown(origin, direction mgl64.Vec3, maxDistance float64) []Hit
}

// GravitySource is implemented by casters that know the world gravity.
// Without it the controller assumes common.Gravity along Y.
type GravitySource interface {
	Gravity() mgl64.Vec3
}

// Body is the force/velocity surface of the physics body being driven.
type Body interface {
	Position() mgl64.Vec3
	Velocity() mgl64.Vec3
	SetVelocity(v mgl64.Vec3)
	ApplyForce(f mgl64.Vec3)
	ApplyImpulse(j mgl64.Vec3)
	SetGravityScale(scale float64)
}

// Facer flips the visual facing of the entity.
type Facer interface {
	SetFacing(flipped bool)
}

// ColliderSwitcher swaps between the default and the crouch collider.
type ColliderSwitcher interface {
	SetCrouchCollider(crouching bool)
}

// Simulator toggles whether the physics body takes part in simulation.
type Simulator interface {
	SetSimulated(simulated bool)
}
