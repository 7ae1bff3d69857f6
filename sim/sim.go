package sim

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/sunnyland/common"
	"github.com/milk9111/sunnyland/controller"
	"github.com/milk9111/sunnyland/levels"
	"github.com/milk9111/sunnyland/physics"
	"github.com/milk9111/sunnyland/prefabs"
	"github.com/milk9111/sunnyland/scripting"
)

const DefaultDT = 1.0 / 60.0

type Options struct {
	// Level and Player default to the embedded meadow level and player
	// prefab when nil.
	Level  *levels.Level
	Player *prefabs.PlayerSpec
	Input  Input
	DT     float64
	// NoScript skips the player's listener script.
	NoScript bool
	// Debug subscribes LogListeners to the controller.
	Debug bool
}

// Facing records the direction the controller last faced.
type Facing struct {
	Right bool
}

func (f *Facing) SetFacing(right bool) {
	f.Right = right
}

// Sim owns one level, one player body and its controller, and steps them
// through the system schedule.
type Sim struct {
	Level      *levels.Level
	Built      *levels.Built
	Player     *prefabs.PlayerSpec
	World      *physics.World
	Body       *physics.Body
	Controller *controller.Controller
	Facing     *Facing
	Script     *scripting.Listener

	Input Input
	Frame int

	dt        float64
	intent    Intent
	scheduler *Scheduler
	logIDs    []controller.ListenerID
}

func New(opts Options) (*Sim, error) {
	lvl := opts.Level
	if lvl == nil {
		var err error
		if lvl, err = levels.LoadLevel(levels.DefaultLevel); err != nil {
			return nil, err
		}
	}
	player := opts.Player
	if player == nil {
		var err error
		if player, err = prefabs.LoadPlayerSpec(prefabs.PlayerFile); err != nil {
			return nil, err
		}
	}
	dt := opts.DT
	if dt <= 0 {
		dt = DefaultDT
	}
	input := opts.Input
	if input == nil {
		input = noInput{}
	}

	world := physics.NewWorld(common.Gravity)
	built := lvl.Build(world)
	body := world.NewBody(player.Body.Physics(built.SpawnX, built.SpawnY))
	facing := &Facing{Right: true}

	c, err := controller.New(player.Controller, controller.Deps{
		SelfID: body.ID(),
		Caster: world,
		Body:   body,
		Facer:  facing,
	})
	if err != nil {
		return nil, fmt.Errorf("sim: player %s: %w", player.Name, err)
	}

	s := &Sim{
		Level:      lvl,
		Built:      built,
		Player:     player,
		World:      world,
		Body:       body,
		Controller: c,
		Facing:     facing,
		Input:      input,
		dt:         dt,
		scheduler:  DefaultScheduler(),
	}
	if opts.Debug {
		s.logIDs = LogListeners(c, nil)
	}
	if !opts.NoScript && player.Script != "" {
		if err := s.ReloadScript(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DefaultScheduler returns the standard frame order.
func DefaultScheduler() *Scheduler {
	return NewScheduler(
		NewInputSystem(),
		NewLogicSystem(),
		NewPhysicsStepSystem(),
		NewGroundSystem(),
		NewClimbZoneSystem(),
		NewHazardSystem(),
	)
}

func (s *Sim) Scheduler() *Scheduler {
	return s.scheduler
}

func (s *Sim) DT() float64 {
	return s.dt
}

// Intent is the input polled on the latest frame.
func (s *Sim) Intent() Intent {
	return s.intent
}

// Step runs one frame.
func (s *Sim) Step() {
	s.scheduler.Update(s)
	s.Frame++
}

func (s *Sim) Run(frames int) {
	for i := 0; i < frames; i++ {
		s.Step()
	}
}

// Respawn puts the body back on the level spawn at rest.
func (s *Sim) Respawn() {
	s.Controller.SetClimbing(false)
	s.Body.SetPosition(common.Vec3(s.Built.SpawnX, s.Built.SpawnY))
	s.Body.SetVelocity(mgl64.Vec3{})
}

// Reload applies a new player spec. Controller settings and the listener
// script change in place; body dimensions need a new Sim.
func (s *Sim) Reload(player *prefabs.PlayerSpec) error {
	if err := s.Controller.Reconfigure(player.Controller); err != nil {
		return err
	}
	scriptChanged := player.Script != s.Player.Script
	s.Player = player
	if scriptChanged {
		return s.ReloadScript()
	}
	return nil
}

// ReloadScript recompiles the player's listener script. On failure the
// previous script stays attached.
func (s *Sim) ReloadScript() error {
	if s.Player.Script == "" {
		if s.Script != nil {
			s.Script.Detach()
			s.Script = nil
		}
		return nil
	}
	l, err := scripting.Load(s.Player.Script)
	if err != nil {
		return err
	}
	if s.Script != nil {
		s.Script.Detach()
	}
	l.Attach(s.Controller)
	s.Script = l
	log.Printf("sim: attached script %s", l.Path())
	return nil
}

// PlayerBounds is the body's standing box in world space.
func (s *Sim) PlayerBounds() levels.Rect {
	p := s.Body.Position()
	hw, hh := s.Player.Body.Width/2, s.Player.Body.Height/2
	return levels.Rect{MinX: p.X() - hw, MinY: p.Y() - hh, MaxX: p.X() + hw, MaxY: p.Y() + hh}
}

// Close detaches every listener and removes the body from the world.
func (s *Sim) Close() {
	if s.Script != nil {
		s.Script.Detach()
		s.Script = nil
	}
	for _, id := range s.logIDs {
		s.Controller.Listeners().Unsubscribe(id)
	}
	s.logIDs = nil
	s.Controller.Close()
	s.Body.Remove()
}
