package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/sunnyland/common"
)

// BodySpec describes a dynamic box body. CrouchHeight <= 0 disables the
// crouch collider.
type BodySpec struct {
	X            float64
	Y            float64
	Width        float64
	Height       float64
	CrouchHeight float64
	Mass         float64
	Friction     float64
}

// Body is a fixed-rotation dynamic body with an optional crouch collider.
// It satisfies controller.Body, controller.ColliderSwitcher and
// controller.Simulator.
type Body struct {
	world *World
	body  *cp.Body
	id    string

	stand  *cp.Shape
	crouch *cp.Shape
	active *cp.Shape

	gravityScale float64
	simulated    bool
}

// NewBody creates and adds a dynamic body to the world.
func (w *World) NewBody(spec BodySpec) *Body {
	width, height := spec.Width, spec.Height
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}
	mass := spec.Mass
	if mass <= 0 {
		mass = 1
	}

	// Infinite moment keeps the body upright.
	body := cp.NewBody(mass, math.Inf(1))
	body.SetPosition(cp.Vector{X: spec.X, Y: spec.Y})
	body.SetAngle(0)
	body.SetAngularVelocity(0)

	b := &Body{
		world:        w,
		body:         body,
		id:           uuid.NewString(),
		gravityScale: 1,
		simulated:    true,
	}
	body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, gravity.Mult(b.gravityScale), damping, dt)
	})

	b.stand = cp.NewBox(body, width, height, 0)
	b.stand.SetFriction(spec.Friction)
	b.stand.SetCollisionType(collisionTypeBody)

	if spec.CrouchHeight > 0 && spec.CrouchHeight < height {
		// Crouch box shares the standing box's bottom edge.
		bottom := -height / 2
		bb := cp.BB{L: -width / 2, B: bottom, R: width / 2, T: bottom + spec.CrouchHeight}
		b.crouch = cp.NewBox2(body, bb, 0)
		b.crouch.SetFriction(spec.Friction)
		b.crouch.SetCollisionType(collisionTypeBody)
	}

	w.space.AddBody(body)
	w.space.AddShape(b.stand)
	b.active = b.stand
	w.register(b.id, b.stand)
	if b.crouch != nil {
		w.register(b.id, b.crouch)
	}
	return b
}

// ID is the collider id shared by every shape of the body.
func (b *Body) ID() string {
	return b.id
}

func (b *Body) Position() mgl64.Vec3 {
	p := b.body.Position()
	return common.Vec3(p.X, p.Y)
}

func (b *Body) SetPosition(p mgl64.Vec3) {
	b.body.SetPosition(cp.Vector{X: p.X(), Y: p.Y()})
}

func (b *Body) Velocity() mgl64.Vec3 {
	v := b.body.Velocity()
	return common.Vec3(v.X, v.Y)
}

func (b *Body) SetVelocity(v mgl64.Vec3) {
	b.body.SetVelocityVector(cp.Vector{X: v.X(), Y: v.Y()})
}

// ApplyForce accumulates a force at the center of mass until the next step.
func (b *Body) ApplyForce(f mgl64.Vec3) {
	b.body.ApplyForceAtWorldPoint(cp.Vector{X: f.X(), Y: f.Y()}, b.body.Position())
}

func (b *Body) ApplyImpulse(j mgl64.Vec3) {
	b.body.ApplyImpulseAtWorldPoint(cp.Vector{X: j.X(), Y: j.Y()}, b.body.Position())
}

func (b *Body) SetGravityScale(scale float64) {
	b.gravityScale = scale
}

func (b *Body) GravityScale() float64 {
	return b.gravityScale
}

// Crouching reports whether the crouch collider is active.
func (b *Body) Crouching() bool {
	return b.crouch != nil && b.active == b.crouch
}

// SetCrouchCollider swaps the active collider. It is a no-op without a
// crouch collider. Must not be called during a space step.
func (b *Body) SetCrouchCollider(crouching bool) {
	if b.crouch == nil {
		return
	}
	next := b.stand
	if crouching {
		next = b.crouch
	}
	if next == b.active {
		return
	}
	if b.simulated {
		b.world.space.RemoveShape(b.active)
		b.world.space.AddShape(next)
	}
	b.active = next
}

func (b *Body) Simulated() bool {
	return b.simulated
}

// SetSimulated adds or removes the body and its active collider from the
// space.
func (b *Body) SetSimulated(simulated bool) {
	if b.simulated == simulated {
		return
	}
	space := b.world.space
	if simulated {
		space.AddBody(b.body)
		space.AddShape(b.active)
	} else {
		space.RemoveShape(b.active)
		space.RemoveBody(b.body)
	}
	b.simulated = simulated
}

// Remove takes the body out of the world for good.
func (b *Body) Remove() {
	b.SetSimulated(false)
	b.world.unregister(b.stand)
	if b.crouch != nil {
		b.world.unregister(b.crouch)
	}
}
