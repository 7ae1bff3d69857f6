package sim

// Intent is the player input for one frame. Jump is edge triggered: it is
// true only on the frame the button went down.
type Intent struct {
	MoveX  float64
	ClimbY float64
	Jump   bool
	Crouch bool
}

type Input interface {
	Poll() Intent
}

// InputFunc adapts a function to Input.
type InputFunc func() Intent

func (f InputFunc) Poll() Intent {
	return f()
}

type noInput struct{}

func (noInput) Poll() Intent { return Intent{} }

// ScriptedInput plays a Scenario back one frame per Poll. Once the steps
// run out it reports an empty intent.
type ScriptedInput struct {
	steps []Step
	step  int
	frame int
}

func NewScriptedInput(sc *Scenario) *ScriptedInput {
	in := &ScriptedInput{}
	if sc != nil {
		in.steps = append([]Step(nil), sc.Steps...)
	}
	return in
}

func (in *ScriptedInput) Poll() Intent {
	if in.Done() {
		return Intent{}
	}
	st := in.steps[in.step]
	intent := Intent{
		MoveX:  st.MoveX,
		ClimbY: st.ClimbY,
		Jump:   st.Jump && in.frame == 0,
		Crouch: st.Crouch,
	}
	in.frame++
	if in.frame >= st.Frames {
		in.step++
		in.frame = 0
	}
	return intent
}

// Done reports whether every step has been played.
func (in *ScriptedInput) Done() bool {
	return in.step >= len(in.steps)
}
