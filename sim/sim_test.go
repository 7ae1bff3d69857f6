package sim

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/milk9111/sunnyland/controller"
	"github.com/milk9111/sunnyland/levels"
	"github.com/milk9111/sunnyland/prefabs"
)

func testLevel(t *testing.T, spawnX, spawnY int, rows ...string) *levels.Level {
	t.Helper()
	lvl := &levels.Level{
		Name:   t.Name(),
		Width:  len(rows[0]),
		Height: len(rows),
		Rows:   rows,
		SpawnX: spawnX,
		SpawnY: spawnY,
	}
	if err := lvl.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return lvl
}

func flatLevel(t *testing.T) *levels.Level {
	return testLevel(t, 10, 2,
		"................................",
		"................................",
		"................................",
		"################################",
	)
}

func newSim(t *testing.T, lvl *levels.Level, in Input) *Sim {
	t.Helper()
	s, err := New(Options{Level: lvl, Input: in, NoScript: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func scripted(steps ...Step) *ScriptedInput {
	return NewScriptedInput(&Scenario{Steps: steps})
}

func TestDefaultSimLandsOnMeadow(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	if s.Script == nil {
		t.Fatalf("expected the player prefab script to be attached")
	}
	s.Run(120)
	if !s.Controller.State().IsGrounded {
		t.Fatalf("expected player to land, pos=%v", s.Body.Position())
	}
	if s.Frame != 120 {
		t.Fatalf("expected frame 120, got %d", s.Frame)
	}
	if got := s.Script.State()["grounded_changed"]; got != 1 {
		t.Fatalf("expected script to see one landing, got %v", got)
	}
}

func TestWalkAndFace(t *testing.T) {
	in := scripted(
		Step{Frames: 10},
		Step{Frames: 60, MoveX: 1},
		Step{Frames: 90, MoveX: -1},
	)
	s := newSim(t, flatLevel(t), in)
	start := s.Body.Position().X()

	s.Run(70)
	right := s.Body.Position().X()
	if right-start < 1 {
		t.Fatalf("expected to walk right, moved %v", right-start)
	}
	if !s.Facing.Right {
		t.Fatalf("expected to face right")
	}

	s.Run(90)
	if s.Facing.Right {
		t.Fatalf("expected to face left")
	}
	if x := s.Body.Position().X(); x >= right {
		t.Fatalf("expected to walk back left from %v, at %v", right, x)
	}
	if !s.Controller.State().IsGrounded {
		t.Fatalf("expected to stay grounded on flat ground")
	}
}

func TestMultiJumpCap(t *testing.T) {
	sc, err := LoadScenario("testdata/hop.yaml")
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	s := newSim(t, flatLevel(t), NewScriptedInput(sc))

	jumps := 0
	s.Controller.OnJump(func() { jumps++ })
	var grounded []bool
	s.Controller.OnGroundedChanged(func(v bool) { grounded = append(grounded, v) })

	s.Run(61)
	if jumps != 3 {
		t.Fatalf("expected 3 jump requests, got %d", jumps)
	}
	if st := s.Controller.State(); st.IsGrounded || st.JumpCount != s.Player.Controller.MaxJumpCount {
		t.Fatalf("expected airborne at the jump cap, state=%+v", st)
	}

	s.Run(sc.Frames() - 61)
	if !s.Controller.State().IsGrounded {
		t.Fatalf("expected to land after the hop, pos=%v", s.Body.Position())
	}
	if len(grounded) < 3 || !grounded[len(grounded)-1] {
		t.Fatalf("expected land, leave, land transitions, got %v", grounded)
	}
}

func TestClimbLadder(t *testing.T) {
	lvl := testLevel(t, 4, 4,
		"....H.......",
		"....H.......",
		"....H.......",
		"....H.......",
		"....H.......",
		"############",
	)
	in := scripted(
		Step{Frames: 10},
		Step{Frames: 60, ClimbY: 1},
		Step{Frames: 1, Jump: true},
		Step{Frames: 5},
	)
	s := newSim(t, lvl, in)

	var climbing []bool
	s.Controller.OnClimbChanged(func(v bool) { climbing = append(climbing, v) })

	s.Run(70)
	if !s.Controller.State().IsClimbing {
		t.Fatalf("expected to be climbing")
	}
	if y := s.Body.Position().Y(); y < 3 {
		t.Fatalf("expected to climb above 3, at %v", y)
	}
	if vy := s.Body.Velocity().Y(); math.Abs(vy-s.Player.Controller.ClimbSpeed) > 1e-6 {
		t.Fatalf("expected to climb at %v without gravity, vy=%v", s.Player.Controller.ClimbSpeed, vy)
	}

	s.Run(6)
	if s.Controller.State().IsClimbing {
		t.Fatalf("expected jump to leave the ladder")
	}
	if len(climbing) != 2 || !climbing[0] || climbing[1] {
		t.Fatalf("expected climb on then off, got %v", climbing)
	}
}

func TestHazardHurtsAndRespawns(t *testing.T) {
	lvl := testLevel(t, 6, 2,
		"................",
		"................",
		"..........~.....",
		"################",
	)
	s := newSim(t, lvl, scripted(Step{Frames: 150, MoveX: 1}))

	hurts := 0
	s.Controller.OnHurt(func() { hurts++ })

	for i := 0; i < 150; i++ {
		s.Step()
		if x := s.Body.Position().X(); x > 10.5 {
			t.Fatalf("frame %d: body entered the hazard at x=%v", i, x)
		}
	}
	if hurts == 0 {
		t.Fatalf("expected the hazard to hurt the player")
	}
}

func TestCrouchSwapsCollider(t *testing.T) {
	s := newSim(t, flatLevel(t), scripted(Step{Frames: 10}, Step{Frames: 10, Crouch: true}, Step{Frames: 10}))

	var changes []bool
	s.Controller.OnCrouchChanged(func(v bool) { changes = append(changes, v) })

	s.Run(15)
	if !s.Body.Crouching() || !s.Controller.State().IsCrouching {
		t.Fatalf("expected crouch collider active")
	}
	s.Run(15)
	if s.Body.Crouching() {
		t.Fatalf("expected standing collider restored")
	}
	if len(changes) != 2 {
		t.Fatalf("expected two crouch changes, got %v", changes)
	}
}

func TestReload(t *testing.T) {
	s := newSim(t, flatLevel(t), nil)

	next := *s.Player
	next.Script = ""
	next.Controller.Speed = 12
	if err := s.Reload(&next); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Controller.Config().Speed != 12 {
		t.Fatalf("expected speed 12, got %v", s.Controller.Config().Speed)
	}

	bad := next
	bad.Controller.MaxVelocity = -1
	err := s.Reload(&bad)
	if !errors.Is(err, controller.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if s.Controller.Config().MaxVelocity != next.Controller.MaxVelocity {
		t.Fatalf("invalid reload should keep the old config")
	}

	withScript := next
	withScript.Script = "scripts/announce.tengo"
	if err := s.Reload(&withScript); err != nil {
		t.Fatalf("Reload with script: %v", err)
	}
	if s.Script == nil || s.Script.Path() != withScript.Script {
		t.Fatalf("expected script attached after reload")
	}

	broken := withScript
	broken.Script = "scripts/missing.tengo"
	if err := s.Reload(&broken); !errors.Is(err, prefabs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Script == nil || s.Script.Path() != withScript.Script {
		t.Fatalf("failed reload should keep the previous script")
	}
}

func TestLogListeners(t *testing.T) {
	s := newSim(t, flatLevel(t), nil)

	var lines []string
	ids := LogListeners(s.Controller, func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})
	if len(ids) != len(controller.EventKinds()) {
		t.Fatalf("expected one subscription per kind, got %d", len(ids))
	}

	s.Controller.Move(0)
	s.Controller.Move(1)
	s.Controller.Jump()
	s.Controller.Crouch(true)

	want := []string{"sim: move 1.00", "sim: jump", "sim: crouch_changed true"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %q, got %q", want, lines)
	}
}

type countSystem struct{ frames []int }

func (c *countSystem) Update(s *Sim) { c.frames = append(c.frames, s.Frame) }

func TestSchedulerOrder(t *testing.T) {
	s := newSim(t, flatLevel(t), nil)
	if n := len(s.Scheduler().Systems()); n != 6 {
		t.Fatalf("expected 6 default systems, got %d", n)
	}

	counter := &countSystem{}
	s.Scheduler().Add(counter)
	s.Scheduler().Add(nil)
	s.Run(3)
	if fmt.Sprint(counter.frames) != "[0 1 2]" {
		t.Fatalf("unexpected frames %v", counter.frames)
	}
	if n := len(s.Scheduler().Systems()); n != 7 {
		t.Fatalf("nil system should be ignored, got %d systems", n)
	}
}
