// Package tracker turns a stream of poses into per-frame rep counts, stages,
// progress and form warnings for one exercise.
//
// A Tracker is not safe for concurrent use. It is meant to be driven by a
// single frame loop.
package tracker

import (
	"fmt"

	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/exercise"
)

// Tracker is the per-session exercise tracker.
type Tracker struct {
	cfg   exercise.Config
	units []*unit
	frame int64
}

// New creates a Tracker from a validated config.
func New(cfg exercise.Config) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}

	t := &Tracker{cfg: cfg}
	for _, l := range cfg.Limbs {
		t.units = append(t.units, newUnit(l))
	}
	return t, nil
}

// NewForType creates a Tracker from the built-in preset for typ.
func NewForType(typ exercise.Type) (*Tracker, error) {
	cfg, err := exercise.ConfigFor(typ)
	if err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}
	return New(cfg)
}

// Exercise returns the tracked exercise type.
func (t *Tracker) Exercise() exercise.Type {
	return t.cfg.Type
}

// Update processes one frame's pose. A nil pose means nobody was detected;
// every limb keeps its previous state.
func (t *Tracker) Update(p *detector.Pose) Result {
	t.frame++
	for _, u := range t.units {
		u.update(p, t.cfg.MinVisibility)
	}
	return t.snapshot()
}

// Current returns the latest result without consuming a frame.
func (t *Tracker) Current() Result {
	return t.snapshot()
}

// Reset clears every count and stage, as at the start of a new set.
func (t *Tracker) Reset() {
	t.frame = 0
	for _, u := range t.units {
		u.reset()
	}
}

func (t *Tracker) snapshot() Result {
	r := Result{
		Exercise: t.cfg.Type,
		Frame:    t.frame,
		Limbs:    make([]LimbResult, 0, len(t.units)),
	}
	for _, u := range t.units {
		r.Limbs = append(r.Limbs, u.result())
	}
	return r
}
