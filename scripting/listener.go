package scripting

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/sunnyland/controller"
	"github.com/milk9111/sunnyland/prefabs"
)

const dispatchScript = `
if __dispatch {
	handle(__engine, __state, __event, __value)
}
`

// Listener runs a tengo script's handle(engine, state, event, value)
// function for every controller event. state is a map kept across calls.
type Listener struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map

	movement func() controller.MovementState
	logf     func(format string, args ...any)

	listeners *controller.Listeners
	ids       []controller.ListenerID
}

// Load compiles the named script from prefabs/scripts.
func Load(path string) (*Listener, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: load %s: %w", path, err)
	}
	return Compile(path, src)
}

// Compile builds a listener from source. The script must define handle; its
// top-level statements run once here.
func Compile(path string, src []byte) (*Listener, error) {
	full := string(src) + "\n" + dispatchScript
	script := tengo.NewScript([]byte(full))
	_ = script.Add("__dispatch", false)
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__event", "")
	_ = script.Add("__value", nil)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("scripting: compile %s: %w", path, err)
	}

	l := &Listener{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
		logf:     log.Printf,
	}
	if err := l.run(false, controller.Event{}); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Listener) Path() string {
	return l.path
}

// SetLogger replaces the sink used by engine.log. Nil restores log.Printf.
func (l *Listener) SetLogger(logf func(format string, args ...any)) {
	if logf == nil {
		logf = log.Printf
	}
	l.logf = logf
}

// Attach subscribes the script to every event kind of c. A listener is
// attached to at most one controller; attaching again moves it.
func (l *Listener) Attach(c *controller.Controller) {
	l.Detach()
	l.listeners = c.Listeners()
	l.movement = c.State
	for _, kind := range controller.EventKinds() {
		id := l.listeners.Subscribe(kind, func(ev controller.Event) {
			if err := l.Handle(ev); err != nil {
				log.Printf("scripting: %s: %v", ev.Kind, err)
			}
		})
		l.ids = append(l.ids, id)
	}
}

func (l *Listener) Detach() {
	if l.listeners == nil {
		return
	}
	for _, id := range l.ids {
		l.listeners.Unsubscribe(id)
	}
	l.ids = nil
	l.listeners = nil
	l.movement = nil
}

// Handle dispatches a single event to the script.
func (l *Listener) Handle(ev controller.Event) error {
	return l.run(true, ev)
}

// State returns a Go copy of the script's state map.
func (l *Listener) State() map[string]any {
	out, _ := objectToAny(l.state).(map[string]any)
	return out
}

// run executes the compiled script once. Runtime faults inside the VM come
// back as errors.
func (l *Listener) run(dispatch bool, ev controller.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scripting: run %s: %v", l.path, r)
		}
	}()

	if err := l.compiled.Set("__dispatch", dispatch); err != nil {
		return err
	}
	if err := l.compiled.Set("__engine", l.engine()); err != nil {
		return err
	}
	if err := l.compiled.Set("__state", l.state); err != nil {
		return err
	}
	if err := l.compiled.Set("__event", ev.Kind.String()); err != nil {
		return err
	}
	if err := l.compiled.Set("__value", eventValue(ev)); err != nil {
		return err
	}
	if err := l.compiled.Run(); err != nil {
		return fmt.Errorf("scripting: run %s: %w", l.path, err)
	}
	return nil
}

// eventValue picks the payload a script sees for ev.
func eventValue(ev controller.Event) any {
	switch ev.Kind {
	case controller.EventMove, controller.EventClimb:
		return ev.Value
	case controller.EventJump, controller.EventHurt:
		return nil
	default:
		return ev.Flag
	}
}

func (l *Listener) engine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, arg := range args {
			parts = append(parts, objectAsString(arg))
		}
		l.logf("scripting: %s: %s", l.path, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	values["movement"] = &tengo.UserFunction{Name: "movement", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if l.movement == nil {
			return tengo.UndefinedValue, nil
		}
		st := l.movement()
		return &tengo.ImmutableMap{Value: map[string]tengo.Object{
			"grounded":   boolObject(st.IsGrounded),
			"on_slope":   boolObject(st.IsOnSlope),
			"crouching":  boolObject(st.IsCrouching),
			"climbing":   boolObject(st.IsClimbing),
			"jump_count": &tengo.Int{Value: int64(st.JumpCount)},
		}}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
