// Tracks per-tick traffic statistics such as flow, mean velocity and the
// number of stopped cars, and reports them at the end of a run.

package sim

import (
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about the simulation for final reporting.
// One entry is appended to each per-tick series by every Step.
type Metrics struct {
	RoadLength int // L
	NumCars    int // nb_cars

	Ticks          int64     // number of recorded ticks
	MeanVelocities []float64 // per tick: average velocity over all cars
	Flows          []float64 // per tick: sum of velocities / L
	StoppedCars    []int     // per tick: cars with velocity 0
	TotalClamps    int       // no-passing corrections over the run
	TotalWraps     int       // wraparounds over the run
}

// NewMetrics creates an empty Metrics for a road of the given size.
func NewMetrics(length, numCars int) *Metrics {
	return &Metrics{
		RoadLength:     length,
		NumCars:        numCars,
		MeanVelocities: make([]float64, 0),
		Flows:          make([]float64, 0),
		StoppedCars:    make([]int, 0),
	}
}

// RecordTick appends the statistics of one tick.
func (m *Metrics) RecordTick(cars []Car, clamps, wraps int) {
	total, stopped := 0, 0
	for _, car := range cars {
		total += car.Velocity
		if car.Velocity == 0 {
			stopped++
		}
	}
	mean := 0.0
	if len(cars) > 0 {
		mean = float64(total) / float64(len(cars))
	}
	flow := 0.0
	if m.RoadLength > 0 {
		flow = float64(total) / float64(m.RoadLength)
	}
	m.Ticks++
	m.MeanVelocities = append(m.MeanVelocities, mean)
	m.Flows = append(m.Flows, flow)
	m.StoppedCars = append(m.StoppedCars, stopped)
	m.TotalClamps += clamps
	m.TotalWraps += wraps
}

// Report is the end-of-run summary of a Metrics.
type Report struct {
	Ticks               int64   `json:"ticks"`
	RoadLength          int     `json:"road_length"`
	NumCars             int     `json:"nb_cars"`
	RoadDensity         float64 `json:"road_density"`
	MeanVelocity        float64 `json:"mean_velocity"`
	MeanVelocityStdDev  float64 `json:"mean_velocity_stddev"`
	MeanVelocityP50     float64 `json:"mean_velocity_p50"`
	MeanVelocityP90     float64 `json:"mean_velocity_p90"`
	MeanFlow            float64 `json:"mean_flow"`
	MeanStoppedFraction float64 `json:"mean_stopped_fraction"`
	TotalClamps         int     `json:"total_clamps"`
	TotalWraps          int     `json:"total_wraps"`
}

// Report computes the summary. All averages are zero when no tick was recorded.
func (m *Metrics) Report() Report {
	r := Report{
		Ticks:       m.Ticks,
		RoadLength:  m.RoadLength,
		NumCars:     m.NumCars,
		TotalClamps: m.TotalClamps,
		TotalWraps:  m.TotalWraps,
	}
	if m.RoadLength > 0 {
		r.RoadDensity = float64(m.NumCars) / float64(m.RoadLength)
	}
	if m.Ticks == 0 {
		return r
	}
	r.MeanVelocity = stat.Mean(m.MeanVelocities, nil)
	if len(m.MeanVelocities) > 1 {
		r.MeanVelocityStdDev = stat.StdDev(m.MeanVelocities, nil)
	}
	r.MeanVelocityP50 = CalculatePercentile(m.MeanVelocities, 50)
	r.MeanVelocityP90 = CalculatePercentile(m.MeanVelocities, 90)
	r.MeanFlow = stat.Mean(m.Flows, nil)
	if m.NumCars > 0 {
		r.MeanStoppedFraction = CalculateMean(m.StoppedCars) / float64(m.NumCars)
	}
	return r
}

// Print writes the report as indented JSON under a header.
func (m *Metrics) Print(w io.Writer) error {
	data, err := json.MarshalIndent(m.Report(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}
	if _, err := fmt.Fprintf(w, "=== Simulation Metrics ===\n%s\n", data); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
