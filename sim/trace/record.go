// Package trace provides decision-trace recording for per-tick road analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// ClampRecord captures a single no-passing correction.
type ClampRecord struct {
	Tick              int64
	CarIndex          int // slot in the position-sorted car sequence at the start of the tick
	From              int // position before the tick
	Wanted            int // free-flow position (from + velocity) mod L
	ClampedTo         int // position actually committed
	SuccessorPosition int // successor's position at the start of the tick
}

// Overshoot is how far the free-flow position reached past the successor.
func (r ClampRecord) Overshoot() int {
	return r.Wanted - r.SuccessorPosition
}

// WrapRecord captures a car crossing the end of the road. The velocity of a
// wrapping car is left unchanged for that tick.
type WrapRecord struct {
	Tick     int64
	CarIndex int
	From     int
	To       int
}
