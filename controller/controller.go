package controller

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/sunnyland/common"
)

// wallNormalThreshold is the horizontal normal component above which a hit
// is treated as a wall and gravity is switched off for the tick.
const wallNormalThreshold = 0.1

var (
	ErrNilCaster = errors.New("controller: ground caster is nil")
	ErrNilBody   = errors.New("controller: body is nil")
	ErrNilFacer  = errors.New("controller: facer is nil")
	ErrNoSelfID  = errors.New("controller: self collider id is empty")
)

// Deps are the collaborators a Controller drives. Caster, Body and Facer
// are required. Colliders and Simulator are optional and, when nil, are
// looked up on Body through the ColliderSwitcher and Simulator interfaces.
type Deps struct {
	SelfID    string
	Caster    GroundCaster
	Body      Body
	Facer     Facer
	Colliders ColliderSwitcher
	Simulator Simulator
}

// Controller is a platformer movement controller. It is stepped by the host
// with LogicTick followed by PhysicsTick once per frame, and is not safe
// for concurrent use.
type Controller struct {
	cfg  Config
	deps Deps

	state     MovementState
	listeners Listeners

	inputH float64
	inputV float64
}

// New validates cfg and deps. The controller starts ungrounded.
func New(cfg Config, deps Deps) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Caster == nil:
		return nil, ErrNilCaster
	case deps.Body == nil:
		return nil, ErrNilBody
	case deps.Facer == nil:
		return nil, ErrNilFacer
	case deps.SelfID == "":
		return nil, ErrNoSelfID
	}
	if deps.Colliders == nil {
		deps.Colliders, _ = deps.Body.(ColliderSwitcher)
	}
	if deps.Simulator == nil {
		deps.Simulator, _ = deps.Body.(Simulator)
	}
	return &Controller{
		cfg:   cfg,
		deps:  deps,
		state: MovementState{GroundNormal: common.WorldUp},
	}, nil
}

// Config returns the active config snapshot.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns a copy of the current movement state.
func (c *Controller) State() MovementState {
	return c.state
}

// Listeners is the controller's event registry.
func (c *Controller) Listeners() *Listeners {
	return &c.listeners
}

// Reconfigure swaps in a new config snapshot. The jump count is clamped to
// the new MaxJumpCount.
func (c *Controller) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("controller: reconfigure: %w", err)
	}
	c.cfg = cfg
	if c.state.JumpCount > cfg.MaxJumpCount {
		c.state.JumpCount = cfg.MaxJumpCount
	}
	return nil
}

// Close releases every listener.
func (c *Controller) Close() {
	c.listeners.Clear()
}

func (c *Controller) OnJump(fn func()) ListenerID {
	if fn == nil {
		return 0
	}
	return c.listeners.Subscribe(EventJump, func(Event) { fn() })
}

func (c *Controller) OnHurt(fn func()) ListenerID {
	if fn == nil {
		return 0
	}
	return c.listeners.Subscribe(EventHurt, func(Event) { fn() })
}

func (c *Controller) OnCrouchChanged(fn func(bool)) ListenerID {
	return c.subscribeFlag(EventCrouchChanged, fn)
}

func (c *Controller) OnGroundedChanged(fn func(bool)) ListenerID {
	return c.subscribeFlag(EventGroundedChanged, fn)
}

func (c *Controller) OnSlopeChanged(fn func(bool)) ListenerID {
	return c.subscribeFlag(EventSlopeChanged, fn)
}

func (c *Controller) OnClimbChanged(fn func(bool)) ListenerID {
	return c.subscribeFlag(EventClimbChanged, fn)
}

func (c *Controller) OnMove(fn func(float64)) ListenerID {
	return c.subscribeValue(EventMove, fn)
}

func (c *Controller) OnClimb(fn func(float64)) ListenerID {
	return c.subscribeValue(EventClimb, fn)
}

func (c *Controller) subscribeFlag(kind EventKind, fn func(bool)) ListenerID {
	if fn == nil {
		return 0
	}
	return c.listeners.Subscribe(kind, func(ev Event) { fn(ev.Flag) })
}

func (c *Controller) subscribeValue(kind EventKind, fn func(float64)) ListenerID {
	if fn == nil {
		return 0
	}
	return c.listeners.Subscribe(kind, func(ev Event) { fn(ev.Value) })
}

// Move records the horizontal intent for the next logic tick.
func (c *Controller) Move(horizontal float64) {
	if horizontal != 0 {
		c.deps.Facer.SetFacing(horizontal > 0)
	}
	c.inputH = horizontal
	c.listeners.emit(Event{Kind: EventMove, Value: horizontal})
}

// Jump requests a jump for the next logic tick. The Jump event fires even
// when the request is later dropped by the jump-count cap.
func (c *Controller) Jump() {
	c.state.IsJumping = true
	c.listeners.emit(Event{Kind: EventJump})
}

func (c *Controller) Hurt() {
	c.listeners.emit(Event{Kind: EventHurt})
}

// Crouch switches the crouch collider when the crouch state changes.
func (c *Controller) Crouch(crouching bool) {
	if c.state.IsCrouching == crouching {
		return
	}
	c.state.IsCrouching = crouching
	if c.deps.Colliders != nil {
		c.deps.Colliders.SetCrouchCollider(crouching)
	}
	c.listeners.emit(Event{Kind: EventCrouchChanged, Flag: crouching})
}

// SetClimbing enters or leaves the climbing state. Leaving restores normal
// gravity.
func (c *Controller) SetClimbing(climbing bool) {
	if c.state.IsClimbing == climbing {
		return
	}
	c.state.IsClimbing = climbing
	if !climbing {
		c.inputV = 0
		c.deps.Body.SetGravityScale(1)
	}
	c.listeners.emit(Event{Kind: EventClimbChanged, Flag: climbing})
}

// Climb records the vertical climb intent for the next logic tick.
func (c *Controller) Climb(vertical float64) {
	c.inputV = vertical
	c.listeners.emit(Event{Kind: EventClimb, Value: vertical})
}

// EnablePhysics puts the body back into simulation with normal gravity.
func (c *Controller) EnablePhysics() {
	if c.deps.Simulator != nil {
		c.deps.Simulator.SetSimulated(true)
	}
	c.deps.Body.SetGravityScale(1)
}

// DisablePhysics takes the body out of simulation.
func (c *Controller) DisablePhysics() {
	if c.deps.Simulator != nil {
		c.deps.Simulator.SetSimulated(false)
	}
	c.deps.Body.SetGravityScale(0)
}

// LogicTick applies movement, jump and climb intents.
func (c *Controller) LogicTick() {
	c.PerformMove()
	c.PerformJump()
	c.PerformClimb()
}

// PhysicsTick runs ground detection. Call it after the physics step.
func (c *Controller) PhysicsTick() {
	c.DetectGround()
}

// PerformMove pushes the body along the ground tangent and caps its speed.
func (c *Controller) PerformMove() {
	if c.state.IsOnSlope && c.inputH == 0 && c.state.IsGrounded {
		// Stop sliding down slopes while idle.
		c.deps.Body.SetVelocity(mgl64.Vec3{})
	}

	right := c.state.GroundNormal.Cross(common.WorldBack)
	c.deps.Body.ApplyForce(right.Mul(c.inputH * c.cfg.Speed))

	c.limitVelocity()
}

// PerformJump applies a pending jump impulse while jumps remain.
func (c *Controller) PerformJump() {
	if c.state.IsJumping && c.state.JumpCount < c.cfg.MaxJumpCount {
		c.state.JumpCount++
		c.deps.Body.ApplyImpulse(common.WorldUp.Mul(c.cfg.JumpHeight))
	}
	c.state.IsJumping = false
}

func (c *Controller) PerformClimb() {
	if !c.state.IsClimbing {
		return
	}
	c.deps.Body.SetGravityScale(0)
	v := c.deps.Body.Velocity()
	c.deps.Body.SetVelocity(mgl64.Vec3{v.X(), c.inputV * c.cfg.ClimbSpeed, v.Z()})
}

// DetectGround casts down from the body and updates the grounded state.
func (c *Controller) DetectGround() {
	wasGrounded := c.state.IsGrounded

	hits := c.deps.Caster.CastDown(c.deps.Body.Position(), common.WorldDown, c.cfg.RayDistance)
	grounded := false
	for _, hit := range hits {
		// Wall-like contacts suspend gravity. The last evaluated hit wins.
		if math.Abs(hit.Normal.X()) > wallNormalThreshold {
			c.deps.Body.SetGravityScale(0)
		} else {
			c.deps.Body.SetGravityScale(1)
		}

		if c.checkGround(hit) {
			grounded = true
			break
		}
	}
	if !grounded {
		c.state.IsGrounded = false
	}

	if wasGrounded != grounded {
		c.listeners.emit(Event{Kind: EventGroundedChanged, Flag: grounded})
	}
}

// GroundRay returns the segment swept by DetectGround.
func (c *Controller) GroundRay() (from, to mgl64.Vec3) {
	from = c.deps.Body.Position()
	return from, from.Add(common.WorldDown.Mul(c.cfg.RayDistance))
}

func (c *Controller) checkGround(hit Hit) bool {
	if hit.ColliderID == "" || hit.ColliderID == c.deps.SelfID || hit.IsTrigger {
		return false
	}

	c.state.JumpCount = 0
	c.state.IsGrounded = true
	c.state.GroundNormal = hit.Normal.Mul(-1)

	wasOnSlope := c.state.IsOnSlope
	c.state.IsOnSlope = c.checkSlope(hit)
	if wasOnSlope != c.state.IsOnSlope {
		c.listeners.emit(Event{Kind: EventSlopeChanged, Flag: c.state.IsOnSlope})
	}
	return true
}

// checkSlope classifies the contact and pushes the body down slopes at or
// beyond MaxSlopeAngle. Such slopes slide but do not count as on-slope.
func (c *Controller) checkSlope(hit Hit) bool {
	angle := common.Angle(common.WorldUp, hit.Normal)
	if angle >= c.cfg.MaxSlopeAngle {
		c.deps.Body.ApplyForce(c.gravity())
	}
	return angle > 0 && angle < c.cfg.MaxSlopeAngle
}

func (c *Controller) gravity() mgl64.Vec3 {
	if src, ok := c.deps.Caster.(GravitySource); ok {
		return src.Gravity()
	}
	return common.Vec3(0, common.Gravity)
}

func (c *Controller) limitVelocity() {
	v := c.deps.Body.Velocity()
	if v.Len() > c.cfg.MaxVelocity {
		c.deps.Body.SetVelocity(common.ClampMagnitude(v, c.cfg.MaxVelocity))
	}
}
