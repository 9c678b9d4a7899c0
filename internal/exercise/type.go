// Package exercise defines the supported exercises, their tracking
// configuration and the read-only metadata catalog.
package exercise

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned for an exercise name that is not supported.
var ErrUnknownType = errors.New("unknown exercise type")

// Type discriminates the supported exercises.
type Type string

const (
	Squat      Type = "squat"
	PushUp     Type = "push_up"
	HammerCurl Type = "hammer_curl"
)

// Types returns every supported exercise type in menu order.
func Types() []Type {
	return []Type{PushUp, HammerCurl, Squat}
}

// ParseType converts a name such as "push_up" or "Hammer-Curl" to a Type.
func ParseType(s string) (Type, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")

	for _, t := range Types() {
		if string(t) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Valid reports whether t is a supported exercise type.
func (t Type) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

func (t Type) String() string {
	return string(t)
}
