// Package environment simulates the brightness/noise sensors and the
// caregiver thresholds they are compared against.
package environment

import (
	"sync"

	"github.com/ashureev/neurolens/internal/domain"
	"github.com/ashureev/neurolens/internal/shared"
)

// Ranges for freshly generated base readings.
const (
	baseBrightnessMin = 35
	baseBrightnessMax = 75
	baseNoiseMin      = 20
	baseNoiseMax      = 60

	focusBrightnessCap = 65
	focusThresholdCap  = 85

	// Auto-adjust pulls readings this far below their thresholds.
	brightnessMargin = 5
	noiseMargin      = 3
)

// Simulator owns the single environment record of a service process.
type Simulator struct {
	mu  sync.Mutex
	src shared.Source
	env domain.Environment
}

// NewSimulator creates a simulator starting from the default record.
func NewSimulator(src shared.Source) *Simulator {
	return &Simulator{src: src, env: domain.DefaultEnvironment()}
}

// ShiftForMode applies the mode bias to base readings and floors the result.
func ShiftForMode(mode domain.ComfortMode, brightness, noise int) (int, int) {
	switch mode {
	case domain.ModeCalm:
		brightness -= 20
		noise -= 20
	case domain.ModeFocus:
		brightness = min(focusBrightnessCap, brightness)
		noise -= 10
	}
	return max(domain.MinLevel, brightness), max(domain.MinLevel, noise)
}

// Regenerate draws new readings for the current mode.
func (s *Simulator) Regenerate() domain.Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regenerateLocked()
	return s.env
}

func (s *Simulator) regenerateLocked() {
	b := shared.IntBetween(s.src, baseBrightnessMin, baseBrightnessMax)
	n := shared.IntBetween(s.src, baseNoiseMin, baseNoiseMax)
	s.env.Brightness, s.env.Noise = ShiftForMode(s.env.Mode, b, n)
}

// Snapshot re-randomizes the readings and returns the record. Every poll
// sees fresh readings.
func (s *Simulator) Snapshot() domain.Environment {
	return s.Regenerate()
}

// Current returns the record without touching the readings.
func (s *Simulator) Current() domain.Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env
}

// Thresholds returns the current brightness and noise thresholds.
func (s *Simulator) Thresholds() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.BrightnessThreshold, s.env.NoiseThreshold
}

// DetectThresholds derives thresholds from the current readings and mode,
// then moves the readings around the new thresholds.
func (s *Simulator) DetectThresholds() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, n := s.env.Brightness, s.env.Noise
	switch s.env.Mode {
	case domain.ModeCalm:
		b = max(domain.MinLevel, b-shared.IntBetween(s.src, 10, 20))
		n = max(domain.MinLevel, n-shared.IntBetween(s.src, 5, 15))
	case domain.ModeFocus:
		b = min(focusThresholdCap, b+shared.IntBetween(s.src, 0, 10))
		n = max(domain.MinLevel, n-shared.IntBetween(s.src, 5, 10))
	default:
		b = max(domain.MinLevel, b-shared.IntBetween(s.src, 0, 10))
		n = max(domain.MinLevel, n-shared.IntBetween(s.src, 0, 5))
	}

	s.env.BrightnessThreshold = b
	s.env.NoiseThreshold = n
	s.env.Brightness = domain.Clamp(b+shared.IntBetween(s.src, -5, 15), domain.MinLevel, domain.MaxLevel)
	s.env.Noise = domain.Clamp(n+shared.IntBetween(s.src, -5, 10), domain.MinLevel, domain.MaxLevel)
	return b, n
}

// AutoAdjust lowers readings to a small margin below the thresholds.
// Readings are never raised.
func (s *Simulator) AutoAdjust() domain.Environment {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetB := max(domain.MinLevel, s.env.BrightnessThreshold-brightnessMargin)
	targetN := max(domain.MinLevel, s.env.NoiseThreshold-noiseMargin)
	s.env.Brightness = min(s.env.Brightness, targetB)
	s.env.Noise = min(s.env.Noise, targetN)
	return s.env
}

// SetReadings overwrites the current readings.
func (s *Simulator) SetReadings(brightness, noise int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Brightness = domain.Clamp(brightness, 0, domain.MaxLevel)
	s.env.Noise = domain.Clamp(noise, 0, domain.MaxLevel)
}

// SetThresholds overwrites both thresholds.
func (s *Simulator) SetThresholds(brightness, noise int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.BrightnessThreshold = domain.Clamp(brightness, 0, domain.MaxLevel)
	s.env.NoiseThreshold = domain.Clamp(noise, 0, domain.MaxLevel)
}

// SetMode switches the comfort mode.
func (s *Simulator) SetMode(mode domain.ComfortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Mode = mode
}
