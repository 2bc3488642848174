package sim

import (
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical trajectories.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemPlacement is the RNG subsystem for initial velocities.
	// Uses master seed directly.
	SubsystemPlacement = "placement"

	// SubsystemBraking is the RNG subsystem for the per-car per-tick
	// accelerate/brake draw.
	SubsystemBraking = "braking"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemPlacement: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemPlacement {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === Randomness ===

// initialVelocities is the fixed set starting velocities are drawn from,
// independent of vmax.
var initialVelocities = [...]int{1, 2, 3}

// Randomness supplies every stochastic draw the engine consumes. Swapping in a
// scripted implementation makes trajectories fully reproducible in tests.
type Randomness interface {
	// Accelerate reports whether a car takes the accelerate branch of the
	// velocity update. It returns true with probability 1 - probaSlow.
	Accelerate(probaSlow float64) bool
	// InitialVelocity returns a velocity drawn uniformly from {1, 2, 3}.
	InitialVelocity() int
}

// SeededRandomness draws from a PartitionedRNG, keeping placement and braking
// streams isolated so that changing the number of cars placed does not shift
// the braking sequence of an otherwise identical run.
type SeededRandomness struct {
	rng *PartitionedRNG
}

// NewSeededRandomness creates a Randomness seeded from seed.
func NewSeededRandomness(seed int64) *SeededRandomness {
	return &SeededRandomness{rng: NewPartitionedRNG(NewSimulationKey(seed))}
}

// Accelerate implements Randomness.
func (s *SeededRandomness) Accelerate(probaSlow float64) bool {
	return s.rng.ForSubsystem(SubsystemBraking).Float64() >= probaSlow
}

// InitialVelocity implements Randomness.
func (s *SeededRandomness) InitialVelocity() int {
	return initialVelocities[s.rng.ForSubsystem(SubsystemPlacement).Intn(len(initialVelocities))]
}

// Key returns the SimulationKey behind this source.
func (s *SeededRandomness) Key() SimulationKey {
	return s.rng.Key()
}
