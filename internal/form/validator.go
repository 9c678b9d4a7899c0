package form

// Validator runs an ordered list of rules for one limb.
type Validator struct {
	side  string
	rules []Rule
}

// NewValidator creates a Validator for the named side ("left", "right" or "").
func NewValidator(side string, rules ...Rule) *Validator {
	return &Validator{side: side, rules: rules}
}

// Check evaluates the rules in order and returns the first fault found.
// It keeps no state between calls.
func (v *Validator) Check(ctx Context) Warning {
	if ctx.Pose == nil {
		return Warning{}
	}
	for _, r := range v.rules {
		if code := r.Check(ctx); code != None {
			return Warning{Code: code, Side: v.side}
		}
	}
	return Warning{}
}
