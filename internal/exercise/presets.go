package exercise

import (
	"fmt"

	"github.com/ayusman/formcoach/internal/angle"
	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/form"
	"github.com/ayusman/formcoach/internal/rep"
)

// Side labels used by bilateral exercises.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// SquatConfig tracks the left knee. A rep counts when the lifter stands back
// up. Depth and knee tracking over the ankle are checked.
func SquatConfig() Config {
	return Config{
		Type:          Squat,
		MinVisibility: DefaultMinVisibility,
		Limbs: []LimbConfig{{
			Joint:      angle.Joint{A: detector.LeftHip, B: detector.LeftKnee, C: detector.LeftAnkle},
			Thresholds: rep.Thresholds{Down: 100, Up: 160},
			Completion: rep.CountOnRise,
			Meter:      rep.Meter{Empty: 170, Full: 80},
			Rules: []form.Rule{
				form.DepthRule{Floor: 90, Rebound: 5},
				form.AlignmentRule{
					Joint: angle.Joint{A: detector.LeftKnee, B: detector.LeftHip, C: detector.LeftAnkle},
					Max:   70,
					Fault: form.KneeMisalignment,
				},
			},
		}},
	}
}

// PushUpConfig tracks the left elbow. A rep counts on lockout. The
// shoulder-hip-ankle line must stay close to straight.
func PushUpConfig() Config {
	return Config{
		Type:          PushUp,
		MinVisibility: DefaultMinVisibility,
		Limbs: []LimbConfig{{
			Joint:      angle.Joint{A: detector.LeftShoulder, B: detector.LeftElbow, C: detector.LeftWrist},
			Thresholds: rep.Thresholds{Down: 90, Up: 160},
			Completion: rep.CountOnRise,
			Meter:      rep.Meter{Empty: 160, Full: 90},
			Rules: []form.Rule{
				form.TorsoRule{
					Shoulder: detector.LeftShoulder,
					Hip:      detector.LeftHip,
					Ankle:    detector.LeftAnkle,
					Min:      160,
				},
			},
		}},
	}
}

// HammerCurlConfig tracks both elbows independently. The hanging arm reads
// down and a rep counts when it straightens again after the curl. Each elbow
// must stay by the torso.
func HammerCurlConfig() Config {
	arm := func(side string, shoulder, elbow, wrist, hip int) LimbConfig {
		return LimbConfig{
			Side:       side,
			Joint:      angle.Joint{A: shoulder, B: elbow, C: wrist},
			Thresholds: rep.Thresholds{Down: 40, Up: 150},
			Completion: rep.CountOnFall,
			Meter:      rep.Meter{Empty: 160, Full: 30},
			Rules: []form.Rule{
				form.ElbowDriftRule{Shoulder: shoulder, Elbow: elbow, Hip: hip, MaxOffset: 0.3},
			},
		}
	}

	return Config{
		Type:          HammerCurl,
		MinVisibility: DefaultMinVisibility,
		Limbs: []LimbConfig{
			arm(SideRight, detector.RightShoulder, detector.RightElbow, detector.RightWrist, detector.RightHip),
			arm(SideLeft, detector.LeftShoulder, detector.LeftElbow, detector.LeftWrist, detector.LeftHip),
		},
	}
}

// ConfigFor returns the preset for t.
func ConfigFor(t Type) (Config, error) {
	switch t {
	case Squat:
		return SquatConfig(), nil
	case PushUp:
		return PushUpConfig(), nil
	case HammerCurl:
		return HammerCurlConfig(), nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}
