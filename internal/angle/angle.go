// Package angle computes joint angles and body alignment measures from pose landmarks.
package angle

import (
	"math"

	"github.com/ayusman/formcoach/internal/detector"
)

// minSegment is the shortest limb segment, in normalized image units,
// that still yields a meaningful direction.
const minSegment = 1e-9

// Angles are reported to a micro-degree. Finer digits are floating point
// noise and would make a reading of exactly a threshold land on either side.
const resolution = 1e6

// Joint names the three landmarks that define an angle. B is the vertex.
type Joint struct {
	A int `yaml:"a" json:"a"`
	B int `yaml:"b" json:"b"`
	C int `yaml:"c" json:"c"`
}

// Between returns the planar angle ABC in degrees, in [0,180].
//
// It uses the difference of the two segment headings, so the result does
// not depend on the order of A and C. The second return value is false when
// a segment is degenerate (coincident points) or the inputs are not finite.
func Between(a, b, c detector.Point3D) (float64, bool) {
	bax, bay := a.X-b.X, a.Y-b.Y
	bcx, bcy := c.X-b.X, c.Y-b.Y

	if math.Hypot(bax, bay) < minSegment || math.Hypot(bcx, bcy) < minSegment {
		return 0, false
	}

	rad := math.Atan2(bcy, bcx) - math.Atan2(bay, bax)
	deg := math.Abs(rad * 180.0 / math.Pi)
	if deg > 180 {
		deg = 360 - deg
	}

	if math.IsNaN(deg) || math.IsInf(deg, 0) || deg < 0 || deg > 180 {
		return 0, false
	}
	return math.Round(deg*resolution) / resolution, true
}

// AtJoint returns the angle at joint j in pose p. It fails when any of the
// three landmarks is missing or less visible than minVisibility.
func AtJoint(p *detector.Pose, j Joint, minVisibility float64) (float64, bool) {
	a, ok := p.Visible(j.A, minVisibility)
	if !ok {
		return 0, false
	}
	b, ok := p.Visible(j.B, minVisibility)
	if !ok {
		return 0, false
	}
	c, ok := p.Visible(j.C, minVisibility)
	if !ok {
		return 0, false
	}
	return Between(a.Point3D, b.Point3D, c.Point3D)
}

// Offset returns the horizontal displacement of point to from point from,
// divided by the length of the reference segment ref0-ref1. Used to measure
// how far a limb has drifted relative to the size of the torso.
func Offset(from, to, ref0, ref1 detector.Point3D) (float64, bool) {
	scale := detector.Distance(ref0, ref1)
	if scale < minSegment {
		return 0, false
	}
	return math.Abs(to.X-from.X) / scale, true
}

// BelowLine reports whether p lies below (greater image Y than) the line
// through a and c, evaluated at p's X. It fails for a near-vertical line.
func BelowLine(a, c, p detector.Point3D) (bool, bool) {
	dx := c.X - a.X
	if math.Abs(dx) < minSegment {
		return false, false
	}
	lineY := a.Y + (c.Y-a.Y)*(p.X-a.X)/dx
	return p.Y > lineY, true
}
