package exercise

import (
	"errors"
	"fmt"

	"github.com/ayusman/formcoach/internal/angle"
	"github.com/ayusman/formcoach/internal/form"
	"github.com/ayusman/formcoach/internal/rep"
)

// DefaultMinVisibility is the landmark confidence below which a joint is
// treated as not tracked.
const DefaultMinVisibility = 0.5

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid exercise config")

// LimbConfig describes how one tracked limb is measured and judged.
type LimbConfig struct {
	// Side is "left", "right", or empty for single-limb exercises.
	Side       string
	Joint      angle.Joint
	Thresholds rep.Thresholds
	Completion rep.Completion
	Meter      rep.Meter
	Rules      []form.Rule
}

// Config is the complete tracking setup for one exercise.
type Config struct {
	Type          Type
	Limbs         []LimbConfig
	MinVisibility float64
}

// Bilateral reports whether the exercise tracks left and right independently.
func (c Config) Bilateral() bool {
	return len(c.Limbs) > 1
}

// Validate checks the config before a tracker is built from it.
func (c Config) Validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
	}
	if len(c.Limbs) == 0 {
		return fmt.Errorf("%w: %s has no limbs", ErrInvalidConfig, c.Type)
	}
	if c.MinVisibility < 0 || c.MinVisibility > 1 {
		return fmt.Errorf("%w: min visibility %.2f outside [0,1]", ErrInvalidConfig, c.MinVisibility)
	}

	seen := make(map[string]bool, len(c.Limbs))
	for i, l := range c.Limbs {
		if seen[l.Side] {
			return fmt.Errorf("%w: %s limb %d repeats side %q", ErrInvalidConfig, c.Type, i, l.Side)
		}
		seen[l.Side] = true

		if err := l.Thresholds.Validate(); err != nil {
			return fmt.Errorf("%s limb %q: %w", c.Type, l.Side, err)
		}
		if l.Joint.A == l.Joint.B || l.Joint.B == l.Joint.C || l.Joint.A == l.Joint.C {
			return fmt.Errorf("%w: %s limb %q joint needs three distinct landmarks", ErrInvalidConfig, c.Type, l.Side)
		}
	}
	return nil
}
