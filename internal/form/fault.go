// Package form checks exercise form on each frame and reports advisory faults.
//
// Faults are reported as codes only. Turning a code into text for a person
// to read happens in the overlay package.
package form

// Code identifies a form fault.
type Code string

// The closed set of form fault codes.
const (
	None              Code = ""
	InsufficientDepth Code = "insufficient_depth"
	KneeMisalignment  Code = "knee_misalignment"
	HipSag            Code = "hip_sag"
	HipPike           Code = "hip_pike"
	ElbowDrift        Code = "elbow_drift"
)

// Codes returns every fault code except None.
func Codes() []Code {
	return []Code{InsufficientDepth, KneeMisalignment, HipSag, HipPike, ElbowDrift}
}

// Valid reports whether c belongs to the closed set, None included.
func (c Code) Valid() bool {
	if c == None {
		return true
	}
	for _, known := range Codes() {
		if c == known {
			return true
		}
	}
	return false
}

// Warning is an active fault on one limb for the current frame.
type Warning struct {
	Code Code   `json:"code"`
	Side string `json:"side,omitempty"`
}

// Active reports whether the warning carries a fault.
func (w Warning) Active() bool {
	return w.Code != None
}
