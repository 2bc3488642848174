// Package testutil provides shared test infrastructure for the trafficjam
// simulator: scripted randomness and float assertion helpers used across the
// sim/ test packages.
package testutil

import (
	"math"
	"testing"
)

// ScriptedRandomness replays fixed draw sequences. When a sequence runs out,
// the corresponding Default value is returned. It satisfies sim.Randomness.
type ScriptedRandomness struct {
	Accelerations       []bool
	Velocities          []int
	DefaultAccelerate   bool
	DefaultVelocity     int
	accelerationsServed int
	velocitiesServed    int
}

// AlwaysAccelerate returns a ScriptedRandomness whose every braking draw is
// "go" and whose initial velocities are all v.
func AlwaysAccelerate(v int) *ScriptedRandomness {
	return &ScriptedRandomness{DefaultAccelerate: true, DefaultVelocity: v}
}

// Accelerate ignores probaSlow and returns the next scripted draw.
func (s *ScriptedRandomness) Accelerate(probaSlow float64) bool {
	if s.accelerationsServed < len(s.Accelerations) {
		v := s.Accelerations[s.accelerationsServed]
		s.accelerationsServed++
		return v
	}
	s.accelerationsServed++
	return s.DefaultAccelerate
}

// InitialVelocity returns the next scripted initial velocity.
func (s *ScriptedRandomness) InitialVelocity() int {
	if s.velocitiesServed < len(s.Velocities) {
		v := s.Velocities[s.velocitiesServed]
		s.velocitiesServed++
		return v
	}
	s.velocitiesServed++
	return s.DefaultVelocity
}

// AccelerationsServed returns how many braking draws were consumed.
func (s *ScriptedRandomness) AccelerationsServed() int {
	return s.accelerationsServed
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
