package scripting

import (
	"fmt"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/sunnyland/controller"
)

type stubCaster struct{ hits []controller.Hit }

func (s *stubCaster) CastDown(mgl64.Vec3, mgl64.Vec3, float64) []controller.Hit { return s.hits }

type stubBody struct{}

func (stubBody) Position() mgl64.Vec3 { return mgl64.Vec3{} }
func (stubBody) Velocity() mgl64.Vec3 { return mgl64.Vec3{} }
func (stubBody) SetVelocity(mgl64.Vec3) {}
func (stubBody) ApplyForce(mgl64.Vec3) {}
func (stubBody) ApplyImpulse(mgl64.Vec3) {}
func (stubBody) SetGravityScale(float64) {}
func (stubBody) SetFacing(bool) {}

func newController(t *testing.T, caster *stubCaster) *controller.Controller {
	t.Helper()
	c, err := controller.New(controller.DefaultConfig(), controller.Deps{
		SelfID: "self",
		Caster: caster,
		Body:   stubBody{},
		Facer:  stubBody{},
	})
	if err != nil {
		t.Fatalf("controller.New: %v", err)
	}
	return c
}

func TestEmbeddedAnnounceScript(t *testing.T) {
	l, err := Load("scripts/announce.tengo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var logged []string
	l.SetLogger(func(format string, args ...any) { logged = append(logged, fmt.Sprintf(format, args...)) })

	caster := &stubCaster{}
	c := newController(t, caster)
	l.Attach(c)

	c.Jump()
	c.Jump()
	caster.hits = []controller.Hit{{Normal: mgl64.Vec3{0, 1, 0}, ColliderID: "ground"}}
	c.PhysicsTick()

	state := l.State()
	if state["jump"] != 2 {
		t.Fatalf("expected 2 jumps counted, got %v", state)
	}
	if state["grounded_changed"] != 1 {
		t.Fatalf("expected 1 grounded change, got %v", state)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "jumps so far: 2") {
		t.Fatalf("unexpected log lines %v", logged)
	}
}

func TestEventValues(t *testing.T) {
	src := `
handle := func(engine, state, event, value) {
	state[event] = value
	state["grounded"] = engine.movement().grounded
}
`
	l, err := Compile("inline", []byte(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	c := newController(t, &stubCaster{})
	l.Attach(c)

	c.Move(0.5)
	c.Crouch(true)
	c.Hurt()

	state := l.State()
	cases := []struct {
		key  string
		want any
	}{
		{"move", 0.5},
		{"crouch_changed", true},
		{"hurt", nil},
		{"grounded", false},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			if got := state[tc.key]; got != tc.want {
				t.Fatalf("expected %v, got %v (%T)", tc.want, got, got)
			}
		})
	}
}

func TestDetach(t *testing.T) {
	l, err := Compile("inline", []byte(`handle := func(engine, state, event, value) { state.n = 1 }`))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	c := newController(t, &stubCaster{})
	l.Attach(c)
	if c.Listeners().Count(controller.EventJump) != 1 {
		t.Fatalf("expected script subscribed to jump")
	}
	l.Detach()
	for _, kind := range controller.EventKinds() {
		if n := c.Listeners().Count(kind); n != 0 {
			t.Fatalf("expected %s listeners removed, got %d", kind, n)
		}
	}
	c.Jump()
	if len(l.State()) != 0 {
		t.Fatalf("detached script should not run, state=%v", l.State())
	}
}

func TestHandleRuntimeFault(t *testing.T) {
	src := `
handle := func(engine, state, event, value) {
	if event == "jump" {
		state.bad = 1 / 0
	}
	if is_undefined(state.n) { state.n = 0 }
	state.n += 1
}
`
	l, err := Compile("faulty", []byte(src))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	err = l.Handle(controller.Event{Kind: controller.EventJump})
	if err == nil || !strings.Contains(err.Error(), "faulty") {
		t.Fatalf("expected runtime error naming the script, got %v", err)
	}
	if err := l.Handle(controller.Event{Kind: controller.EventMove, Value: 1}); err != nil {
		t.Fatalf("Handle after fault: %v", err)
	}
	if l.State()["n"] != 1 {
		t.Fatalf("expected the script to keep running after a fault, state=%v", l.State())
	}

	c := newController(t, &stubCaster{})
	l.Attach(c)
	c.Jump()
	c.Move(1)
	if l.State()["n"] != 2 {
		t.Fatalf("expected dispatch to survive the fault, state=%v", l.State())
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no_handle", `x := 1`},
		{"syntax", `handle := func(`},
		{"runtime", `handle := func(a, b, c, d) {}; y := 1 / 0`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Compile(tc.name, []byte(tc.src)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, err := Load("scripts/missing.tengo"); err == nil {
		t.Fatalf("expected missing script error")
	}
}
