// Package sim provides the core cellular-automaton engine for trafficjam, a
// single-lane circular road simulated with a Nagel–Schreckenberg style rule.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - road.go: Car and RoadState, initial placement, occupancy and density vectors
//   - simulator.go: Initialize, the per-tick Step rule, the Run loop and lifecycle
//   - rng.go: explicitly seeded randomness for placement and braking draws
//
// # Step rule
//
// Each tick the cars are visited in ascending-position order. A car moves to
// (position + velocity) mod L unless that lands on or less than three cells
// past its successor's start-of-tick position, in which case it stops one cell
// behind the successor. The last car in the visiting order is exempt from that
// check. Velocity then becomes advance+1 (capped at vmax) on an accelerate draw
// or advance-1 (floored at 0) on a braking draw, except for a car that wrapped
// around the road, whose velocity is kept as is.
//
// # Outputs
//
// Presenters read Snapshot values after every tick, either through the
// Observer passed to Run or through SnapshotWriter, which streams them as JSON
// lines. Metrics and the optional sim/trace records summarize a whole run.
package sim
