package detector

import (
	"math"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns a fixed pose, or replays a sequence of poses one per call.
type MockDetector struct {
	mu       sync.Mutex
	pose     *Pose
	sequence []*Pose
	next     int
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets the pose that will be returned by every Detect call.
func (m *MockDetector) SetPose(p *Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = p
	m.sequence = nil
}

// SetSequence makes Detect return the given poses in order. Once the
// sequence is exhausted the last pose keeps being returned. Nil entries
// simulate frames with nobody in view.
func (m *MockDetector) SetSequence(poses []*Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = poses
	m.next = 0
	m.pose = nil
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured pose or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		i := m.next
		if i >= len(m.sequence) {
			i = len(m.sequence) - 1
		} else {
			m.next++
		}
		return m.sequence[i].Clone(), nil
	}
	return m.pose.Clone(), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PlaceByAngle positions landmark c so that the angle a-b-c equals angleDeg
// and c lies length away from b. Landmarks a and b must already be set.
func PlaceByAngle(p *Pose, a, b, c int, angleDeg, length float64) {
	pa, _ := p.Get(a)
	pb, _ := p.Get(b)

	dx := pa.X - pb.X
	dy := pa.Y - pb.Y
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return
	}
	dx /= norm
	dy /= norm

	rad := angleDeg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	p.Set(c, Landmark{
		Point3D: Point3D{
			X: pb.X + length*(dx*cos-dy*sin),
			Y: pb.Y + length*(dx*sin+dy*cos),
		},
		Visibility: 0.99,
	})
}

func visible(x, y float64) Landmark {
	return Landmark{Point3D: Point3D{X: x, Y: y}, Visibility: 0.99}
}

// SquatPose returns a side-view pose with both knees bent to kneeAngle.
// Shins are vertical and the torso is upright above the hips.
func SquatPose(kneeAngle float64) *Pose {
	p := NewPose()
	p.Score = 0.95

	legs := []struct {
		knee, ankle, hip, shoulder int
		x                          float64
	}{
		{LeftKnee, LeftAnkle, LeftHip, LeftShoulder, 0.50},
		{RightKnee, RightAnkle, RightHip, RightShoulder, 0.52},
	}
	for _, leg := range legs {
		p.Set(leg.ankle, visible(leg.x, 0.90))
		p.Set(leg.knee, visible(leg.x, 0.70))
		PlaceByAngle(p, leg.ankle, leg.knee, leg.hip, kneeAngle, 0.20)
		hip, _ := p.Get(leg.hip)
		p.Set(leg.shoulder, visible(hip.X, hip.Y-0.30))
	}

	p.Set(Nose, visible(0.50, 0.10))
	return p
}

// PushUpPose returns a side-view plank with both elbows bent to elbowAngle.
// hipDrop moves the hips below (positive) or above (negative) the
// shoulder-ankle line, in normalized image units.
func PushUpPose(elbowAngle, hipDrop float64) *Pose {
	p := NewPose()
	p.Score = 0.95

	sides := []struct {
		shoulder, elbow, wrist, hip, ankle int
	}{
		{LeftShoulder, LeftElbow, LeftWrist, LeftHip, LeftAnkle},
		{RightShoulder, RightElbow, RightWrist, RightHip, RightAnkle},
	}
	for _, s := range sides {
		p.Set(s.wrist, visible(0.30, 0.80))
		p.Set(s.elbow, visible(0.30, 0.65))
		PlaceByAngle(p, s.wrist, s.elbow, s.shoulder, elbowAngle, 0.15)
		sh, _ := p.Get(s.shoulder)
		p.Set(s.ankle, visible(sh.X+0.50, sh.Y))
		p.Set(s.hip, visible(sh.X+0.25, sh.Y+hipDrop))
	}

	p.Set(Nose, visible(0.22, 0.50))
	return p
}

// CurlPose returns a front-view standing pose with the right and left
// elbows bent to the given angles. The drift arguments move each elbow
// sideways away from its shoulder, in normalized image units.
func CurlPose(rightElbow, leftElbow, rightDrift, leftDrift float64) *Pose {
	p := NewPose()
	p.Score = 0.95

	// The subject faces the camera, so their right side is on the image left.
	p.Set(RightShoulder, visible(0.40, 0.30))
	p.Set(LeftShoulder, visible(0.60, 0.30))
	p.Set(RightHip, visible(0.42, 0.60))
	p.Set(LeftHip, visible(0.58, 0.60))
	p.Set(RightElbow, visible(0.40-rightDrift, 0.45))
	p.Set(LeftElbow, visible(0.60+leftDrift, 0.45))
	PlaceByAngle(p, RightShoulder, RightElbow, RightWrist, rightElbow, 0.15)
	PlaceByAngle(p, LeftShoulder, LeftElbow, LeftWrist, leftElbow, 0.15)

	p.Set(Nose, visible(0.50, 0.15))
	return p
}
