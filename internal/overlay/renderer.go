package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/tracker"
)

// bones are the landmark pairs joined by skeleton lines.
var bones = [][2]int{
	{detector.LeftShoulder, detector.RightShoulder},
	{detector.LeftShoulder, detector.LeftElbow},
	{detector.LeftElbow, detector.LeftWrist},
	{detector.RightShoulder, detector.RightElbow},
	{detector.RightElbow, detector.RightWrist},
	{detector.LeftShoulder, detector.LeftHip},
	{detector.RightShoulder, detector.RightHip},
	{detector.LeftHip, detector.RightHip},
	{detector.LeftHip, detector.LeftKnee},
	{detector.LeftKnee, detector.LeftAnkle},
	{detector.RightHip, detector.RightKnee},
	{detector.RightKnee, detector.RightAnkle},
	{detector.LeftAnkle, detector.LeftHeel},
	{detector.LeftHeel, detector.LeftFootIndex},
	{detector.RightAnkle, detector.RightHeel},
	{detector.RightHeel, detector.RightFootIndex},
}

var (
	colorText     = color.RGBA{255, 255, 255, 0}
	colorBox      = color.RGBA{14, 29, 118, 0}
	colorBone     = color.RGBA{245, 117, 66, 0}
	colorJoint    = color.RGBA{245, 66, 230, 0}
	colorWarning  = color.RGBA{200, 30, 30, 0}
	colorProgress = color.RGBA{60, 200, 90, 0}
	colorTrack    = color.RGBA{80, 80, 80, 0}
)

const (
	font      = gocv.FontHersheyDuplex
	fontScale = 0.7
	thickness = 1
	padding   = 6
	barWidth  = 200
	barHeight = 14
)

// Renderer draws the skeleton, per-limb indicators and the exercise header.
type Renderer struct {
	msgs          *Messages
	minVisibility float64
}

// NewRenderer creates a renderer that labels frames using msgs.
func NewRenderer(msgs *Messages, minVisibility float64) *Renderer {
	return &Renderer{msgs: msgs, minVisibility: minVisibility}
}

// Draw annotates img in place. pose may be nil when nobody was detected.
func (r *Renderer) Draw(img *gocv.Mat, pose *detector.Pose, res tracker.Result, info exercise.Info) {
	if img == nil || img.Empty() {
		return
	}

	if pose != nil {
		r.drawSkeleton(img, pose)
	}
	r.drawHeader(img, info)

	if pose == nil {
		r.textBox(img, r.msgs.sprintf(keyNoPose), image.Pt(40, img.Rows()-40), colorWarning)
		return
	}

	if len(res.Limbs) == 1 {
		r.drawLimb(img, res.Limbs[0], "", image.Pt(40, img.Rows()-110))
		return
	}

	col := img.Cols() / 2
	for _, l := range res.Limbs {
		origin := image.Pt(40, img.Rows()-110)
		label := r.msgs.sprintf(keyRight)
		if l.Side == exercise.SideLeft {
			origin.X = col + 20
			label = r.msgs.sprintf(keyLeft)
		}
		r.drawLimb(img, l, label, origin)
	}
}

func (r *Renderer) drawSkeleton(img *gocv.Mat, pose *detector.Pose) {
	for _, b := range bones {
		p1, ok1 := r.pixel(img, pose, b[0])
		p2, ok2 := r.pixel(img, pose, b[1])
		if ok1 && ok2 {
			gocv.Line(img, p1, p2, colorBone, 2)
		}
	}
	for i := detector.LeftShoulder; i < detector.NumLandmarks; i++ {
		if p, ok := r.pixel(img, pose, i); ok {
			gocv.Circle(img, p, 4, colorJoint, -1)
		}
	}
}

func (r *Renderer) drawHeader(img *gocv.Mat, info exercise.Info) {
	r.textBox(img, r.msgs.sprintf(keyExercise, info.Name), image.Pt(40, 50), colorBox)
	r.textBox(img, r.msgs.sprintf(keyTarget, info.Reps), image.Pt(40, 80), colorBox)
	r.textBox(img, r.msgs.sprintf(keySets, info.Sets), image.Pt(40, 110), colorBox)
}

func (r *Renderer) drawLimb(img *gocv.Mat, l tracker.LimbResult, label string, origin image.Point) {
	count := r.msgs.sprintf(keyCount, l.Count)
	if label != "" {
		count = fmt.Sprintf("%s  %s", label, count)
	}
	r.textBox(img, count, origin, colorBox)
	r.textBox(img, r.msgs.sprintf(keyStage, l.Stage.String()), origin.Add(image.Pt(0, 30)), colorBox)

	bar := image.Rect(origin.X, origin.Y+45, origin.X+barWidth, origin.Y+45+barHeight)
	gocv.Rectangle(img, bar, colorTrack, -1)
	filled := bar
	filled.Max.X = bar.Min.X + barWidth*l.Progress/100
	if filled.Dx() > 0 {
		gocv.Rectangle(img, filled, colorProgress, -1)
	}

	if l.Warning.Active() {
		r.textBox(img, r.msgs.Fault(l.Warning.Code), origin.Add(image.Pt(0, 85)), colorWarning)
	}
}

// textBox draws text with a filled background. origin is the text baseline.
func (r *Renderer) textBox(img *gocv.Mat, text string, origin image.Point, bg color.RGBA) {
	size := gocv.GetTextSize(text, font, fontScale, thickness)
	box := image.Rect(
		origin.X-padding, origin.Y-size.Y-padding,
		origin.X+size.X+padding, origin.Y+padding,
	)
	gocv.Rectangle(img, box, bg, -1)
	gocv.PutText(img, text, origin, font, fontScale, colorText, thickness)
}

// pixel maps a normalized landmark to image coordinates.
func (r *Renderer) pixel(img *gocv.Mat, pose *detector.Pose, i int) (image.Point, bool) {
	lm, ok := pose.Visible(i, r.minVisibility)
	if !ok {
		return image.Point{}, false
	}
	return image.Pt(int(lm.X*float64(img.Cols())), int(lm.Y*float64(img.Rows()))), true
}
