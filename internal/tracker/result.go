package tracker

import (
	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/form"
	"github.com/ayusman/formcoach/internal/rep"
)

// LimbResult is the state of one tracked limb after a frame.
type LimbResult struct {
	Side     string       `json:"side,omitempty"`
	Count    int          `json:"count"`
	Angle    float64      `json:"angle"`
	Stage    rep.Stage    `json:"stage"`
	Progress int          `json:"progress"`
	Warning  form.Warning `json:"warning"`
	// Tracked is false when this frame's joint could not be measured and
	// the values above were carried over.
	Tracked bool `json:"tracked"`
}

// Result is the consolidated output for one frame.
type Result struct {
	Exercise exercise.Type `json:"exercise"`
	Frame    int64         `json:"frame"`
	Limbs    []LimbResult  `json:"limbs"`
}

// Limb returns the result for the named side.
func (r Result) Limb(side string) (LimbResult, bool) {
	for _, l := range r.Limbs {
		if l.Side == side {
			return l, true
		}
	}
	return LimbResult{}, false
}

// Total is the sum of the counts of every limb.
func (r Result) Total() int {
	n := 0
	for _, l := range r.Limbs {
		n += l.Count
	}
	return n
}

// Single returns the single-limb output of squat and push-up trackers.
func (r Result) Single() (count int, angle float64, stage string) {
	if len(r.Limbs) == 0 {
		return 0, 0, ""
	}
	l := r.Limbs[0]
	return l.Count, l.Angle, l.Stage.String()
}

// BilateralView is the two-arm output of a hammer curl tracker.
type BilateralView struct {
	CountRight    int
	AngleRight    float64
	CountLeft     int
	AngleLeft     float64
	WarningRight  form.Code
	WarningLeft   form.Code
	ProgressRight int
	ProgressLeft  int
	StageRight    string
	StageLeft     string
}

// Bilateral returns the per-side output. Missing sides read as zero values.
func (r Result) Bilateral() BilateralView {
	right, _ := r.Limb(exercise.SideRight)
	left, _ := r.Limb(exercise.SideLeft)
	return BilateralView{
		CountRight:    right.Count,
		AngleRight:    right.Angle,
		CountLeft:     left.Count,
		AngleLeft:     left.Angle,
		WarningRight:  right.Warning.Code,
		WarningLeft:   left.Warning.Code,
		ProgressRight: right.Progress,
		ProgressLeft:  left.Progress,
		StageRight:    right.Stage.String(),
		StageLeft:     left.Stage.String(),
	}
}
