package sim

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("sim: invalid scenario")

// Step holds one input for Frames consecutive frames. A Jump step presses
// jump on its first frame only.
type Step struct {
	Frames int     `yaml:"frames"`
	MoveX  float64 `yaml:"move_x"`
	ClimbY float64 `yaml:"climb_y"`
	Jump   bool    `yaml:"jump"`
	Crouch bool    `yaml:"crouch"`
}

// Scenario is a recorded input script for headless runs.
type Scenario struct {
	Name  string `yaml:"name"`
	Level string `yaml:"level"`
	Steps []Step `yaml:"steps"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sim: read scenario %s: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("sim: scenario %s: %w", path, err)
	}
	return sc, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("sim: unmarshal scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	var errs []error
	for i, st := range sc.Steps {
		if st.Frames <= 0 {
			errs = append(errs, fmt.Errorf("step %d: frames must be positive, got %d", i, st.Frames))
		}
		if math.Abs(st.MoveX) > 1 {
			errs = append(errs, fmt.Errorf("step %d: move_x must be within [-1, 1], got %v", i, st.MoveX))
		}
		if math.Abs(st.ClimbY) > 1 {
			errs = append(errs, fmt.Errorf("step %d: climb_y must be within [-1, 1], got %v", i, st.ClimbY))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
	}
	return nil
}

// Frames is the total number of frames the scenario drives.
func (sc *Scenario) Frames() int {
	n := 0
	for _, st := range sc.Steps {
		n += st.Frames
	}
	return n
}
