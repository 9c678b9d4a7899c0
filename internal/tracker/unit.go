package tracker

import (
	"github.com/ayusman/formcoach/internal/angle"
	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/form"
	"github.com/ayusman/formcoach/internal/rep"
)

// unit tracks one limb. Units never share state, so bilateral exercises get
// fully independent left and right counts.
type unit struct {
	cfg       exercise.LimbConfig
	machine   *rep.Machine
	counter   rep.Counter
	validator *form.Validator

	angle    float64
	progress int
	warning  form.Warning
	cycleMin float64
	tracked  bool
}

func newUnit(cfg exercise.LimbConfig) *unit {
	return &unit{
		cfg:       cfg,
		machine:   rep.NewMachine(cfg.Thresholds, cfg.Completion),
		validator: form.NewValidator(cfg.Side, cfg.Rules...),
	}
}

// update feeds one frame. A missing, low-confidence or degenerate joint
// leaves count, stage, angle and progress as they were and clears the
// warning.
func (u *unit) update(p *detector.Pose, minVisibility float64) {
	a, ok := angle.AtJoint(p, u.cfg.Joint, minVisibility)
	if !ok {
		u.tracked = false
		u.warning = form.Warning{}
		return
	}

	wasFlexed := u.machine.Flexed()
	stage, completed := u.machine.Feed(a)
	if completed {
		u.counter.Inc()
	}

	switch {
	case !u.machine.Flexed():
		u.cycleMin = a
	case !wasFlexed || a < u.cycleMin:
		u.cycleMin = a
	}

	u.angle = a
	u.progress = u.cfg.Meter.Progress(a)
	u.tracked = true
	u.warning = u.validator.Check(form.Context{
		Pose:          p,
		Angle:         a,
		Stage:         stage,
		CycleMin:      u.cycleMin,
		MinVisibility: minVisibility,
	})
}

func (u *unit) result() LimbResult {
	return LimbResult{
		Side:     u.cfg.Side,
		Count:    u.counter.Value(),
		Angle:    u.angle,
		Stage:    u.machine.Stage(),
		Progress: u.progress,
		Warning:  u.warning,
		Tracked:  u.tracked,
	}
}

func (u *unit) reset() {
	u.machine.Reset()
	u.counter = rep.Counter{}
	u.angle = 0
	u.progress = 0
	u.warning = form.Warning{}
	u.cycleMin = 0
	u.tracked = false
}
