package sim

import (
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownScenario is returned for a scenario name with no built-in path.
var ErrUnknownScenario = errors.New("unknown scenario")

var scenarios = map[string][]Waypoint{
	// Climb to 1 m and hold.
	"hover": {
		{T: 0},
		{T: 2, Position: [3]float64{0, 0, 1}},
		{T: 10, Position: [3]float64{0, 0, 1}},
	},
	// Hold 1 m while turning a quarter turn to the left.
	"yaw": {
		{T: 0, Position: [3]float64{0, 0, 1}},
		{T: 2, Position: [3]float64{0, 0, 1}},
		{T: 6, Position: [3]float64{0, 0, 1}, Yaw: math.Pi / 2},
		{T: 10, Position: [3]float64{0, 0, 1}, Yaw: math.Pi / 2},
	},
	// Fly a 2 m square at 1 m altitude.
	"square": {
		{T: 0},
		{T: 2, Position: [3]float64{0, 0, 1}},
		{T: 6, Position: [3]float64{2, 0, 1}},
		{T: 10, Position: [3]float64{2, 2, 1}},
		{T: 14, Position: [3]float64{0, 2, 1}},
		{T: 18, Position: [3]float64{0, 0, 1}},
		{T: 20, Position: [3]float64{0, 0, 1}},
	},
}

// Scenario returns the built-in Situation called name.
func Scenario(name string) (*Situation, error) {
	wps, ok := scenarios[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownScenario, name)
	}
	return NewSituation(wps)
}

type situationFile struct {
	Waypoints []Waypoint `yaml:"waypoints"`
}

// LoadSituation reads a Situation from a yaml file of the form
//
//	waypoints:
//	  - {t: 0, position: [0, 0, 0]}
//	  - {t: 5, position: [0, 0, 1], yaw: 0.5}
func LoadSituation(path string) (*Situation, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read situation")
	}
	var f situationFile
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, errors.Wrapf(err, "parse situation %s", path)
	}
	s, err := NewSituation(f.Waypoints)
	return s, errors.Wrapf(err, "situation %s", path)
}
