package form

import (
	"github.com/ayusman/formcoach/internal/angle"
	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/rep"
)

// Context is everything a rule may look at for one limb on one frame.
type Context struct {
	Pose          *detector.Pose
	Angle         float64   // primary joint angle this frame
	Stage         rep.Stage // stage after this frame's update
	CycleMin      float64   // lowest primary angle since the limb last entered Down
	MinVisibility float64
}

// Rule is a single form check. Check returns None when the rule does not
// fire, including when the landmarks it needs are not visible.
type Rule interface {
	Check(ctx Context) Code
}

// DepthRule flags a squat whose lowest point stayed above Floor. It fires
// only once the limb has started rising again, so a descent in progress is
// never flagged.
type DepthRule struct {
	Floor   float64
	Rebound float64
}

// Check implements Rule.
func (r DepthRule) Check(ctx Context) Code {
	if ctx.Stage != rep.StageDown {
		return None
	}
	if ctx.CycleMin > r.Floor && ctx.Angle > ctx.CycleMin+r.Rebound {
		return InsufficientDepth
	}
	return None
}

// AlignmentRule flags a secondary joint angle outside the band [Min, Max].
// A zero Min leaves the lower bound unchecked.
type AlignmentRule struct {
	Joint angle.Joint
	Min   float64
	Max   float64
	Fault Code
}

// Check implements Rule.
func (r AlignmentRule) Check(ctx Context) Code {
	a, ok := angle.AtJoint(ctx.Pose, r.Joint, ctx.MinVisibility)
	if !ok {
		return None
	}
	if a > r.Max || (r.Min > 0 && a < r.Min) {
		return r.Fault
	}
	return None
}

// TorsoRule flags a body line that bends at the hip by more than allowed.
// The hip below the shoulder-ankle line is a sag, above it a pike.
type TorsoRule struct {
	Shoulder, Hip, Ankle int
	Min                  float64
}

// Check implements Rule.
func (r TorsoRule) Check(ctx Context) Code {
	joint := angle.Joint{A: r.Shoulder, B: r.Hip, C: r.Ankle}
	a, ok := angle.AtJoint(ctx.Pose, joint, ctx.MinVisibility)
	if !ok || a >= r.Min {
		return None
	}

	shoulder, _ := ctx.Pose.Get(r.Shoulder)
	hip, _ := ctx.Pose.Get(r.Hip)
	ankle, _ := ctx.Pose.Get(r.Ankle)

	below, ok := angle.BelowLine(shoulder.Point3D, ankle.Point3D, hip.Point3D)
	if !ok {
		return None
	}
	if below {
		return HipSag
	}
	return HipPike
}

// ElbowDriftRule flags an elbow that moved sideways away from the shoulder
// by more than MaxOffset torso lengths.
type ElbowDriftRule struct {
	Shoulder, Elbow, Hip int
	MaxOffset            float64
}

// Check implements Rule.
func (r ElbowDriftRule) Check(ctx Context) Code {
	shoulder, ok := ctx.Pose.Visible(r.Shoulder, ctx.MinVisibility)
	if !ok {
		return None
	}
	elbow, ok := ctx.Pose.Visible(r.Elbow, ctx.MinVisibility)
	if !ok {
		return None
	}
	hip, ok := ctx.Pose.Visible(r.Hip, ctx.MinVisibility)
	if !ok {
		return None
	}

	offset, ok := angle.Offset(shoulder.Point3D, elbow.Point3D, shoulder.Point3D, hip.Point3D)
	if !ok {
		return None
	}
	if offset > r.MaxOffset {
		return ElbowDrift
	}
	return None
}
