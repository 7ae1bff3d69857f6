package prefabs

import (
	"fmt"

	"github.com/milk9111/sunnyland/controller"
	"github.com/milk9111/sunnyland/physics"
	"gopkg.in/yaml.v3"
)

const PlayerFile = "player.yaml"

// LoadSpec decodes the named prefab over spec. Fields absent from the file
// keep the values spec already holds.
func LoadSpec[T any](filename string, spec T) (T, error) {
	data, err := Load(filename)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	return decodeSpec(filename, data, spec)
}

func decodeSpec[T any](filename string, data []byte, spec T) (T, error) {
	if err := yaml.Unmarshal(data, &spec); err != nil {
		var zero T
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return spec, nil
}

type PlayerSpec struct {
	Name       string            `yaml:"name"`
	Controller controller.Config `yaml:"controller"`
	Body       BodySpec          `yaml:"body"`
	// Script is an optional tengo listener under scripts/.
	Script string `yaml:"script"`
}

type BodySpec struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	CrouchHeight float64 `yaml:"crouch_height"`
	Mass         float64 `yaml:"mass"`
	Friction     float64 `yaml:"friction"`
}

// Physics places the body at x, y.
func (b BodySpec) Physics(x, y float64) physics.BodySpec {
	return physics.BodySpec{
		X:            x,
		Y:            y,
		Width:        b.Width,
		Height:       b.Height,
		CrouchHeight: b.CrouchHeight,
		Mass:         b.Mass,
		Friction:     b.Friction,
	}
}

// LoadPlayerSpec loads a player prefab. Controller fields missing from the
// file keep their controller.DefaultConfig values.
func LoadPlayerSpec(name string) (*PlayerSpec, error) {
	if name == "" {
		name = PlayerFile
	}
	spec, err := LoadSpec(name, defaultPlayerSpec())
	if err != nil {
		return nil, err
	}
	return validatePlayerSpec(name, spec)
}

func ParsePlayerSpec(name string, data []byte) (*PlayerSpec, error) {
	spec, err := decodeSpec(name, data, defaultPlayerSpec())
	if err != nil {
		return nil, err
	}
	return validatePlayerSpec(name, spec)
}

func defaultPlayerSpec() PlayerSpec {
	return PlayerSpec{
		Controller: controller.DefaultConfig(),
		Body:       BodySpec{Width: 1, Height: 1, Mass: 1},
	}
}

func validatePlayerSpec(name string, spec PlayerSpec) (*PlayerSpec, error) {
	if err := spec.Controller.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", name, err)
	}
	return &spec, nil
}
