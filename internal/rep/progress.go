package rep

import "math"

// Meter maps a joint angle onto a 0-100 progress indicator.
//
// Empty is the angle shown as 0% and Full the angle shown as 100%. Empty may
// be greater than Full for movements where the angle closes as work is done.
type Meter struct {
	Empty float64 `yaml:"empty" json:"empty"`
	Full  float64 `yaml:"full" json:"full"`
}

// Progress returns the integer percentage for angle, clamped to [0,100].
func (m Meter) Progress(angle float64) int {
	span := m.Full - m.Empty
	if span == 0 {
		return 0
	}
	pct := (angle - m.Empty) / span * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return int(math.Round(pct))
}
