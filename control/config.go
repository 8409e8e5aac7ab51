package control

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings are the loop and actuation options.
type Settings struct {
	Name               string        `yaml:"name"`
	Rate               float64       `yaml:"rate"`            // Control rate, Hz
	DerivativeRate     float64       `yaml:"derivative_rate"` // Desired rate estimator rate, Hz
	MassControl        bool          `yaml:"mass_control"`
	ManipulatorControl bool          `yaml:"manipulator_control"`
	StartupTimeout     time.Duration `yaml:"startup_timeout"` // Zero waits forever
	AbortOnFault       bool          `yaml:"abort_on_fault"`
	InboxSize          int           `yaml:"inbox_size"`
}

// Config is the startup configuration, as read from YAML.
type Config struct {
	Vehicle    Vehicle  `yaml:"vehicle"`
	Controller Settings `yaml:"controller"`
	Gains      Gains    `yaml:"gains"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Vehicle: DefaultVehicle(),
		Controller: Settings{
			Name:           "uav",
			Rate:           100,
			DerivativeRate: 25,
			InboxSize:      256,
		},
		Gains: DefaultGains(),
	}
}

// LoadConfig reads a YAML file over the defaults, so the file only needs to
// name what it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read controller config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse controller config")
	}
	return cfg, cfg.Validate()
}

// Variant returns the actuation variant selected by the settings.
func (c Config) Variant() Variant {
	switch {
	case c.Controller.MassControl:
		return VariantMovableMass
	case c.Controller.ManipulatorControl:
		return VariantManipulator
	}
	return VariantNone
}

// Validate checks that the configuration describes a usable controller.
func (c Config) Validate() error {
	s, v := c.Controller, c.Vehicle
	if s.MassControl && s.ManipulatorControl {
		return ErrConflictingVariants
	}
	switch {
	case s.Rate <= 0:
		return errors.Wrapf(ErrInvalidConfig, "rate %g Hz must be positive", s.Rate)
	case s.DerivativeRate <= 0 || s.DerivativeRate > s.Rate:
		return errors.Wrapf(ErrInvalidConfig, "derivative rate %g Hz must be in (0, %g]", s.DerivativeRate, s.Rate)
	case s.InboxSize < 1:
		return errors.Wrapf(ErrInvalidConfig, "inbox size %d", s.InboxSize)
	case v.Mass <= 0 || v.ArmLength <= 0 || v.MotorConstant <= 0 || v.MomentConstant <= 0:
		return errors.Wrap(ErrInvalidConfig, "vehicle mass, arm length, motor and moment constants must be positive")
	case v.MaxRotorVelocity <= 0 || v.MaxMomentXY <= 0 || v.MaxMomentZ <= 0 || v.MaxAlpha <= 0:
		return errors.Wrap(ErrInvalidConfig, "saturation limits must be positive")
	case s.MassControl && v.MassForceConstant <= 0:
		return errors.Wrap(ErrInvalidConfig, "mass control needs a positive mass force constant")
	case s.ManipulatorControl && v.PayloadForceConstant <= 0:
		return errors.Wrap(ErrInvalidConfig, "manipulator control needs a positive payload force constant")
	}
	return nil
}
