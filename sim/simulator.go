// sim/simulator.go
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/trafficjam-sim/trafficjam/sim/trace"
)

// safetyGap is the margin of the no-passing rule: a free-flow position that
// lands on the successor's cell or fewer than safetyGap cells past it is pulled
// back to the cell just behind the successor.
const safetyGap = 3

// ErrNotInitialized is returned by Step and Run before Initialize succeeded.
var ErrNotInitialized = errors.New("simulator not initialized")

// EngineState is the lifecycle state of a Simulator.
type EngineState int

const (
	StateNotStarted EngineState = iota
	StateRunning
	StateFinished
)

func (s EngineState) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("EngineState(%d)", int(s))
	}
}

// Move is the outcome of one car's update within a tick, indexed by the car's
// slot at the start of the tick.
type Move struct {
	From    int  `json:"from"`
	To      int  `json:"to"`
	Clamped bool `json:"clamped,omitempty"`
	Wrapped bool `json:"wrapped,omitempty"`
}

// Snapshot is the read-only view handed to presenters after every tick.
// Every slice is a fresh copy; the engine never touches it again.
type Snapshot struct {
	Tick      int64     `json:"tick"`
	Time      float64   `json:"time"`
	Cars      []Car     `json:"cars,omitempty"`
	Moves     []Move    `json:"moves,omitempty"`
	Occupancy []int     `json:"occupancy"`
	Density   []float64 `json:"density"`
}

// Observer receives a Snapshot after every tick of Run. A non-nil error stops
// the run.
type Observer func(Snapshot) error

// Simulator is the core object that owns the road, its randomness, and the
// per-tick update rule.
type Simulator struct {
	Config RoadConfig
	Road   *RoadState
	// Tick counts completed calls to Step.
	Tick    int64
	Metrics *Metrics
	// Trace is nil unless EnableTrace was called with a recording level.
	Trace *trace.SimulationTrace

	rand  Randomness
	state EngineState
	// start-of-tick positions, reused across ticks
	prev  []int
	moves []Move
}

// NewSimulator creates a Simulator drawing from rand. The simulator is not
// usable until Initialize succeeds.
func NewSimulator(rand Randomness) *Simulator {
	return &Simulator{
		rand:  rand,
		state: StateNotStarted,
	}
}

// EnableTrace starts recording clamp and wraparound decisions when cfg asks
// for them. Calling it with TraceLevelNone drops any existing trace.
func (sim *Simulator) EnableTrace(cfg trace.TraceConfig) {
	if !cfg.Enabled() {
		sim.Trace = nil
		return
	}
	sim.Trace = trace.NewSimulationTrace(cfg)
}

// State returns the lifecycle state.
func (sim *Simulator) State() EngineState {
	return sim.state
}

// Initialize validates cfg, places the cars and resets the clock. It may be
// called again to start a fresh run with the same randomness source.
func (sim *Simulator) Initialize(cfg RoadConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cars, err := placeCars(cfg.Length, cfg.NumCars, cfg.VMax, sim.rand.InitialVelocity)
	if err != nil {
		return fmt.Errorf("initializing road: %w", err)
	}
	sim.reset(cfg, cars)
	logrus.Infof("Initialized road: L=%d, cars=%d, vmax=%d, tmax=%v, dt=%v, proba_slow=%v, time accounting=%s",
		cfg.Length, cfg.NumCars, cfg.VMax, cfg.TMax, cfg.DT, cfg.ProbaSlow, cfg.Accounting())
	return nil
}

// Place replaces the cars placed by Initialize with an explicit layout, e.g.
// to replay a recorded state. The layout must keep every invariant of the
// road: one car per configured slot, positions in [0, L), velocities in
// [0, vmax]. The clock and metrics restart from zero.
func (sim *Simulator) Place(cars []Car) error {
	if sim.state == StateNotStarted {
		return ErrNotInitialized
	}
	cfg := sim.Config
	if len(cars) != cfg.NumCars {
		return &ConfigurationError{Field: "cars", Value: len(cars),
			Reason: fmt.Sprintf("expected %d cars", cfg.NumCars)}
	}
	for i, car := range cars {
		if car.Position < 0 || car.Position >= cfg.Length {
			return &ConfigurationError{Field: fmt.Sprintf("cars[%d].position", i), Value: car.Position,
				Reason: fmt.Sprintf("must be in [0, %d)", cfg.Length)}
		}
		if car.Velocity < 0 || car.Velocity > cfg.VMax {
			return &ConfigurationError{Field: fmt.Sprintf("cars[%d].velocity", i), Value: car.Velocity,
				Reason: fmt.Sprintf("must be in [0, %d]", cfg.VMax)}
		}
	}
	sim.reset(cfg, cars)
	return nil
}

func (sim *Simulator) reset(cfg RoadConfig, cars []Car) {
	sim.Config = cfg
	sim.Road = NewRoadState(cfg.Length, cars)
	sim.Tick = 0
	sim.Metrics = NewMetrics(cfg.Length, cfg.NumCars)
	sim.prev = make([]int, len(cars))
	sim.moves = make([]Move, len(cars))
	if sim.Trace != nil {
		sim.Trace = trace.NewSimulationTrace(sim.Trace.Config)
	}
	sim.state = StateRunning
}

// Step advances the road by one tick. Cars are visited in ascending-position
// order; each car's successor position is the one recorded at the start of the
// tick. After the pass the cars are re-sorted so the next tick again visits
// them in position order.
func (sim *Simulator) Step() error {
	if sim.state == StateNotStarted {
		return ErrNotInitialized
	}
	road := sim.Road
	cars := road.Cars
	length := road.Length
	last := len(cars) - 1
	accounting := sim.Config.Accounting()

	for i := range cars {
		sim.prev[i] = cars[i].Position
	}

	clamps, wraps := 0, 0
	for i := range cars {
		accelerate := sim.rand.Accelerate(sim.Config.ProbaSlow)
		car := &cars[i]
		old := car.Position
		next := (old + car.Velocity) % length
		m := Move{From: old}

		// The last slot is exempt: its successor sits across the end of the road.
		if i != last {
			succ := sim.prev[road.successor(i)]
			if next >= succ && next-succ < safetyGap {
				wanted := next
				next = succ - 1
				m.Clamped = true
				clamps++
				logrus.Tracef("[tick %07d] car %d clamped %d -> %d behind %d", sim.Tick, i, wanted, next, succ)
				if sim.Trace != nil {
					sim.Trace.RecordClamp(trace.ClampRecord{
						Tick:              sim.Tick,
						CarIndex:          i,
						From:              old,
						Wanted:            wanted,
						ClampedTo:         wrapPosition(next, length),
						SuccessorPosition: succ,
					})
				}
			}
		}

		car.Position = wrapPosition(next, length)
		if next < old {
			// wrapped around the road: velocity is kept for this tick
			m.Wrapped = true
			wraps++
			if sim.Trace != nil {
				sim.Trace.RecordWrap(trace.WrapRecord{Tick: sim.Tick, CarIndex: i, From: old, To: car.Position})
			}
		} else {
			advance := next - old
			if accelerate {
				car.Velocity = min(advance+1, sim.Config.VMax)
			} else {
				car.Velocity = max(advance-1, 0)
			}
		}
		// unreachable after the modulo above; kept as a guard on the raw value
		if next > length {
			car.Position = 0
		}
		m.To = car.Position
		sim.moves[i] = m

		if accounting == TimeAccountingPerCar {
			road.Time += sim.Config.DT
		}
	}
	if accounting == TimeAccountingPerTick {
		road.Time += sim.Config.DT
	}

	road.sortCars()
	sim.Tick++
	sim.Metrics.RecordTick(cars, clamps, wraps)
	if road.Time >= sim.Config.TMax {
		sim.state = StateFinished
	}
	logrus.Debugf("[tick %07d] t=%.3f mean velocity=%.3f clamps=%d wraps=%d",
		sim.Tick, road.Time, road.MeanVelocity(), clamps, wraps)
	return nil
}

// wrapPosition maps pos into [0, length). Only a clamp behind a successor on
// cell 0 can produce a negative position.
func wrapPosition(pos, length int) int {
	pos %= length
	if pos < 0 {
		pos += length
	}
	return pos
}

// Run calls Step while the clock is below tmax, handing a Snapshot to observe
// (if non-nil) after every tick. Cancellation of ctx is checked between ticks.
func (sim *Simulator) Run(ctx context.Context, observe Observer) error {
	if sim.state == StateNotStarted {
		return ErrNotInitialized
	}
	for sim.Road.Time < sim.Config.TMax {
		if err := ctx.Err(); err != nil {
			logrus.Warnf("[tick %07d] Simulation interrupted: %v", sim.Tick, err)
			return err
		}
		if err := sim.Step(); err != nil {
			return err
		}
		if observe != nil {
			if err := observe(sim.Snapshot()); err != nil {
				return fmt.Errorf("observer at tick %d: %w", sim.Tick, err)
			}
		}
	}
	sim.state = StateFinished
	logrus.Infof("[tick %07d] Simulation ended at t=%.3f", sim.Tick, sim.Road.Time)
	return nil
}

// Snapshot returns a copy of the current road for presenters.
func (sim *Simulator) Snapshot() Snapshot {
	if sim.Road == nil {
		return Snapshot{}
	}
	return Snapshot{
		Tick:      sim.Tick,
		Time:      sim.Road.Time,
		Cars:      append([]Car(nil), sim.Road.Cars...),
		Moves:     sim.LastMoves(),
		Occupancy: sim.Road.Occupancy(),
		Density:   sim.Road.Density(),
	}
}

// LastMoves returns the per-slot moves of the most recent tick, indexed by the
// slot each car held at the start of that tick. Nil before the first Step.
func (sim *Simulator) LastMoves() []Move {
	if sim.Tick == 0 {
		return nil
	}
	return append([]Move(nil), sim.moves...)
}
