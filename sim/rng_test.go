package sim

import (
	"math"
	"math/rand"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForSubsystem(SubsystemBraking).Float64()
		v2 := rng2.ForSubsystem(SubsystemBraking).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// Drawing from placement doesn't affect braking
	rngA := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemPlacement).Float64()
	}
	aBrakingFirst := rngA.ForSubsystem(SubsystemBraking).Float64()

	fresh := NewPartitionedRNG(NewSimulationKey(42))
	expectedFirst := fresh.ForSubsystem(SubsystemBraking).Float64()

	if aBrakingFirst != expectedFirst {
		t.Errorf("braking first value = %v, want %v (isolation broken)", aBrakingFirst, expectedFirst)
	}
}

func TestPartitionedRNG_PlacementUsesMasterSeed(t *testing.T) {
	seed := int64(42)
	rng := NewPartitionedRNG(NewSimulationKey(seed))
	placement := rng.ForSubsystem(SubsystemPlacement)
	direct := rand.New(rand.NewSource(seed))

	for i := 0; i < 10; i++ {
		if got, want := placement.Float64(), direct.Float64(); got != want {
			t.Errorf("Value %d: placement RNG = %v, direct RNG = %v", i, got, want)
		}
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if rng.ForSubsystem(SubsystemBraking) != rng.ForSubsystem(SubsystemBraking) {
		t.Error("ForSubsystem returned different instances for same name")
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(12345))
	if rng.Key() != SimulationKey(12345) {
		t.Errorf("Key() = %v, want 12345", rng.Key())
	}
}

// === SeededRandomness Tests ===

func TestSeededRandomness_AccelerateExtremes(t *testing.T) {
	r := NewSeededRandomness(7)
	for i := 0; i < 1000; i++ {
		if !r.Accelerate(0) {
			t.Fatalf("draw %d: proba_slow=0 must always accelerate", i)
		}
		if r.Accelerate(1) {
			t.Fatalf("draw %d: proba_slow=1 must never accelerate", i)
		}
	}
}

func TestSeededRandomness_AccelerateFrequency(t *testing.T) {
	// GIVEN proba_slow = 0.25
	r := NewSeededRandomness(99)
	const draws = 20000
	accelerations := 0
	for i := 0; i < draws; i++ {
		if r.Accelerate(0.25) {
			accelerations++
		}
	}

	// THEN roughly three quarters of the draws accelerate
	frac := float64(accelerations) / draws
	if frac < 0.72 || frac > 0.78 {
		t.Errorf("acceleration fraction = %.4f, want ≈ 0.75", frac)
	}
}

func TestSeededRandomness_InitialVelocityFixedSet(t *testing.T) {
	r := NewSeededRandomness(3)
	seen := map[int]int{}
	for i := 0; i < 300; i++ {
		v := r.InitialVelocity()
		if v < 1 || v > 3 {
			t.Fatalf("initial velocity %d outside {1, 2, 3}", v)
		}
		seen[v]++
	}
	if len(seen) != 3 {
		t.Errorf("expected all of {1, 2, 3} to be drawn, got %v", seen)
	}
}

func TestSeededRandomness_Key(t *testing.T) {
	if NewSeededRandomness(5).Key() != SimulationKey(5) {
		t.Error("Key() does not match seed")
	}
}
