package sim

// InputSystem polls the sim's Input and forwards the intent to the
// controller.
type InputSystem struct{}

func NewInputSystem() *InputSystem { return &InputSystem{} }

func (InputSystem) Update(s *Sim) {
	intent := s.Input.Poll()
	s.intent = intent

	c := s.Controller
	c.Move(intent.MoveX)
	if intent.Jump {
		c.SetClimbing(false)
		c.Jump()
	}
	c.Crouch(intent.Crouch)
	if c.State().IsClimbing {
		c.Climb(intent.ClimbY)
	}
}

type LogicSystem struct{}

func NewLogicSystem() *LogicSystem { return &LogicSystem{} }

func (LogicSystem) Update(s *Sim) {
	s.Controller.LogicTick()
}

type PhysicsStepSystem struct{}

func NewPhysicsStepSystem() *PhysicsStepSystem { return &PhysicsStepSystem{} }

func (PhysicsStepSystem) Update(s *Sim) {
	s.World.Step(s.dt)
}

// GroundSystem runs ground detection after the physics step.
type GroundSystem struct{}

func NewGroundSystem() *GroundSystem { return &GroundSystem{} }

func (GroundSystem) Update(s *Sim) {
	s.Controller.PhysicsTick()
}

// ClimbZoneSystem starts climbing when the player presses up or down inside
// a ladder and stops it once the body centre leaves every ladder.
type ClimbZoneSystem struct{}

func NewClimbZoneSystem() *ClimbZoneSystem { return &ClimbZoneSystem{} }

func (ClimbZoneSystem) Update(s *Sim) {
	p := s.Body.Position()
	inside := false
	for _, ladder := range s.Built.Ladders {
		if ladder.Contains(p.X(), p.Y()) {
			inside = true
			break
		}
	}

	c := s.Controller
	switch {
	case !inside:
		c.SetClimbing(false)
	case !c.State().IsClimbing && s.intent.ClimbY != 0 && !s.intent.Jump:
		c.SetClimbing(true)
		c.Climb(s.intent.ClimbY)
	}
}

// HazardSystem hurts and respawns the player when its body enters a hazard
// tile.
type HazardSystem struct {
	touching bool
}

func NewHazardSystem() *HazardSystem { return &HazardSystem{} }

func (h *HazardSystem) Update(s *Sim) {
	bounds := s.PlayerBounds()
	touching := false
	for _, hazard := range s.Built.Hazards {
		if hazard.Overlaps(bounds) {
			touching = true
			break
		}
	}
	if touching && !h.touching {
		s.Controller.Hurt()
		s.Respawn()
		touching = false
	}
	h.touching = touching
}
