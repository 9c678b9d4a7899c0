// Package rep implements the repetition state machine, counter and progress meter.
package rep

import (
	"errors"
	"fmt"
)

// MinHysteresis is the smallest allowed gap between the down and up thresholds.
const MinHysteresis = 5.0

// ErrInvalidThresholds is returned when a threshold pair cannot form a hysteresis band.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Stage is the phase of a repetition for one tracked limb.
type Stage int

const (
	// StageUnknown is the stage before the first valid angle is seen.
	StageUnknown Stage = iota
	// StageUp is the top of the movement: an extended knee or elbow for
	// squats and push-ups, a flexed elbow for curls.
	StageUp
	// StageDown is the bottom of the movement: a flexed joint for squats and
	// push-ups, an extended elbow for curls.
	StageDown
)

// String returns the display label of the stage.
func (s Stage) String() string {
	switch s {
	case StageUp:
		return "up"
	case StageDown:
		return "down"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	switch string(text) {
	case "up":
		*s = StageUp
	case "down":
		*s = StageDown
	case "":
		*s = StageUnknown
	default:
		return fmt.Errorf("unknown stage %q", text)
	}
	return nil
}

// Completion selects which stage transition finishes a repetition. Either
// way the rep completes when the joint returns to extension; the modes differ
// in which stage label the extended joint carries.
type Completion int

const (
	// CountOnRise labels the extended joint Up and counts Down -> Up
	// (squat, push-up).
	CountOnRise Completion = iota
	// CountOnFall labels the extended joint Down and counts Up -> Down
	// (curls).
	CountOnFall
)

// labels returns the stages an extended and a flexed joint read as.
func (c Completion) labels() (extended, flexed Stage) {
	if c == CountOnFall {
		return StageDown, StageUp
	}
	return StageUp, StageDown
}

// Thresholds are the angles, in degrees, that must be crossed to change stage.
type Thresholds struct {
	Down float64 `yaml:"down" json:"down"`
	Up   float64 `yaml:"up" json:"up"`
}

// Validate checks that the thresholds form a usable hysteresis band.
func (t Thresholds) Validate() error {
	if t.Down < 0 || t.Up > 180 {
		return fmt.Errorf("%w: thresholds must lie within [0,180], got down=%.1f up=%.1f", ErrInvalidThresholds, t.Down, t.Up)
	}
	if t.Up-t.Down < MinHysteresis {
		return fmt.Errorf("%w: up (%.1f) must exceed down (%.1f) by at least %.1f", ErrInvalidThresholds, t.Up, t.Down, MinHysteresis)
	}
	return nil
}

// Machine is the two-state Up/Down machine for one limb.
type Machine struct {
	thresholds Thresholds
	completion Completion
	stage      Stage
}

// NewMachine creates a machine. The thresholds are assumed to be validated.
func NewMachine(t Thresholds, c Completion) *Machine {
	return &Machine{
		thresholds: t,
		completion: c,
	}
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	return m.stage
}

// Thresholds returns the configured thresholds.
func (m *Machine) Thresholds() Thresholds {
	return m.thresholds
}

// Flexed reports whether the joint was last seen at or below the down
// threshold.
func (m *Machine) Flexed() bool {
	_, flexed := m.completion.labels()
	return m.stage == flexed
}

// Feed advances the machine with a valid angle reading. It returns the new
// stage and whether this reading completed a repetition.
//
// The first reading only seeds the stage: flexed at or below the down
// threshold, extended otherwise. Angles strictly inside the band (Down, Up)
// never change the stage.
func (m *Machine) Feed(angle float64) (Stage, bool) {
	extended, flexed := m.completion.labels()

	if m.stage == StageUnknown {
		m.stage = extended
		if angle <= m.thresholds.Down {
			m.stage = flexed
		}
		return m.stage, false
	}

	completed := false
	switch m.stage {
	case extended:
		if angle <= m.thresholds.Down {
			m.stage = flexed
		}
	case flexed:
		if angle >= m.thresholds.Up {
			m.stage = extended
			completed = true
		}
	}

	return m.stage, completed
}

// Reset returns the machine to StageUnknown so the next reading reseeds it.
func (m *Machine) Reset() {
	m.stage = StageUnknown
}
