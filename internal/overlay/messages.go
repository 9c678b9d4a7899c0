// Package overlay draws tracking results onto video frames and turns form
// fault codes into display text.
package overlay

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/ayusman/formcoach/internal/form"
)

// Message keys for the labels drawn on frames.
const (
	keyExercise = "label.exercise"
	keyTarget   = "label.reps_target"
	keySets     = "label.sets"
	keyCount    = "label.count"
	keyStage    = "label.stage"
	keyRight    = "label.right"
	keyLeft     = "label.left"
	keyNoPose   = "label.no_pose"
)

var supported = []language.Tag{language.English, language.German}

var translations = map[language.Tag]map[string]string{
	language.English: {
		string(form.InsufficientDepth): "Go lower: hips below the knees",
		string(form.KneeMisalignment):  "Keep your knees over your ankles",
		string(form.HipSag):            "Lift your hips, keep your back straight",
		string(form.HipPike):           "Lower your hips, keep your back straight",
		string(form.ElbowDrift):        "Keep your elbow stationary",

		keyExercise: "Exercise: %s",
		keyTarget:   "Reps: %d",
		keySets:     "Sets: %d",
		keyCount:    "Count: %d",
		keyStage:    "Stage: %s",
		keyRight:    "Right",
		keyLeft:     "Left",
		keyNoPose:   "Step into view",
	},
	language.German: {
		string(form.InsufficientDepth): "Tiefer: Hüfte unter die Knie",
		string(form.KneeMisalignment):  "Knie über den Fußgelenken halten",
		string(form.HipSag):            "Hüfte anheben, Rücken gerade halten",
		string(form.HipPike):           "Hüfte senken, Rücken gerade halten",
		string(form.ElbowDrift):        "Ellbogen ruhig halten",

		keyExercise: "Übung: %s",
		keyTarget:   "Wiederholungen: %d",
		keySets:     "Sätze: %d",
		keyCount:    "Zähler: %d",
		keyStage:    "Phase: %s",
		keyRight:    "Rechts",
		keyLeft:     "Links",
		keyNoPose:   "Bitte ins Bild treten",
	},
}

// Messages formats display text for one locale.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// NewMessages returns Messages for the best supported match of locale, such
// as "de-AT" or "en". Unknown locales fall back to English.
func NewMessages(locale string) *Messages {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, text := range msgs {
			// Keys and texts are static; SetString only fails on invalid tags.
			_ = b.SetString(tag, key, text)
		}
	}

	matcher := language.NewMatcher(supported)
	_, idx, _ := matcher.Match(language.Make(locale))
	tag := supported[idx]

	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}
}

// Locale returns the matched language.
func (m *Messages) Locale() language.Tag {
	return m.tag
}

// Fault returns the advice text for code, or "" for form.None.
func (m *Messages) Fault(code form.Code) string {
	if code == form.None {
		return ""
	}
	return m.printer.Sprintf(string(code))
}

func (m *Messages) sprintf(key string, args ...any) string {
	return m.printer.Sprintf(key, args...)
}
