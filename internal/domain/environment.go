// Package domain contains core domain types for the NeuroLens application.
package domain

import (
	"fmt"
	"strings"
)

// Level bounds for simulated readings and thresholds.
const (
	MinLevel = 10
	MaxLevel = 100
)

// ComfortMode biases the simulated environment and the child's UI theme.
type ComfortMode string

const (
	ModeCalm    ComfortMode = "Calm"
	ModeFocus   ComfortMode = "Focus"
	ModeNeutral ComfortMode = "Neutral"
)

// FocusLabel is how the dashboard presents ModeFocus.
const FocusLabel = "Focus / Study"

// ComfortModes lists the modes in the order the dashboard offers them.
var ComfortModes = []ComfortMode{ModeCalm, ModeFocus, ModeNeutral}

// ParseComfortMode accepts API names case-insensitively and the dashboard label.
func ParseComfortMode(s string) (ComfortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "calm":
		return ModeCalm, nil
	case "focus", strings.ToLower(FocusLabel):
		return ModeFocus, nil
	case "neutral":
		return ModeNeutral, nil
	}
	return "", fmt.Errorf("unknown comfort mode %q", s)
}

// Label returns the human-facing name of the mode.
func (m ComfortMode) Label() string {
	if m == ModeFocus {
		return FocusLabel
	}
	return string(m)
}

// Environment is the shared record of readings, thresholds and mode.
type Environment struct {
	Mode                ComfortMode `json:"child_mode"`
	Brightness          int         `json:"brightness"`
	Noise               int         `json:"noise"`
	BrightnessThreshold int         `json:"brightness_threshold"`
	NoiseThreshold      int         `json:"noise_threshold"`
}

// DefaultEnvironment returns the record a fresh service starts with.
func DefaultEnvironment() Environment {
	return Environment{
		Mode:                ModeNeutral,
		Brightness:          40,
		Noise:               25,
		BrightnessThreshold: 50,
		NoiseThreshold:      40,
	}
}

// Exceeded reports whether either reading is above its threshold.
func (e Environment) Exceeded() bool {
	return e.Brightness > e.BrightnessThreshold || e.Noise > e.NoiseThreshold
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
