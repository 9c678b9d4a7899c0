// Package detector provides body pose detection interfaces and types for exercise tracking.
package detector

import "math"

// Body landmark indices following the MediaPipe BlazePose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumLandmarks   = 33
)

// Point3D represents a point in normalized image space. X and Y are in [0,1]
// relative to the frame, Z is depth relative to the hips and may be zero.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmark is a single body keypoint with its visibility score in [0,1].
type Landmark struct {
	Point3D
	Visibility float64 `json:"visibility"`
}

// Pose holds the landmarks detected for one person in one frame.
// Landmarks that the estimator did not report are absent from the map.
type Pose struct {
	Landmarks map[int]Landmark `json:"landmarks"`
	Score     float64          `json:"score"`
}

// NewPose returns an empty pose ready to receive landmarks.
func NewPose() *Pose {
	return &Pose{Landmarks: make(map[int]Landmark, NumLandmarks)}
}

// Get returns the landmark at index i and whether it is present.
func (p *Pose) Get(i int) (Landmark, bool) {
	if p == nil || p.Landmarks == nil {
		return Landmark{}, false
	}
	lm, ok := p.Landmarks[i]
	return lm, ok
}

// Set stores a landmark at index i.
func (p *Pose) Set(i int, lm Landmark) {
	if p.Landmarks == nil {
		p.Landmarks = make(map[int]Landmark, NumLandmarks)
	}
	p.Landmarks[i] = lm
}

// Visible returns the landmark at index i if it is present and its
// visibility is at least minVisibility.
func (p *Pose) Visible(i int, minVisibility float64) (Landmark, bool) {
	lm, ok := p.Get(i)
	if !ok || lm.Visibility < minVisibility {
		return Landmark{}, false
	}
	return lm, true
}

// Clone returns a deep copy of the pose.
func (p *Pose) Clone() *Pose {
	if p == nil {
		return nil
	}
	c := &Pose{
		Landmarks: make(map[int]Landmark, len(p.Landmarks)),
		Score:     p.Score,
	}
	for i, lm := range p.Landmarks {
		c.Landmarks[i] = lm
	}
	return c
}

// Distance returns the planar Euclidean distance between two points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
