package sim

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficjam-sim/trafficjam/sim/internal/testutil"
)

func TestMetrics_RecordTick(t *testing.T) {
	// GIVEN a 10-cell road with one moving and one stopped car
	m := NewMetrics(10, 2)

	// WHEN a tick is recorded
	m.RecordTick([]Car{{Position: 0, Velocity: 2}, {Position: 5, Velocity: 0}}, 1, 0)

	// THEN the per-tick series hold mean velocity, flow and stopped cars
	assert.Equal(t, int64(1), m.Ticks)
	assert.Equal(t, []float64{1}, m.MeanVelocities)
	assert.Equal(t, []float64{0.2}, m.Flows)
	assert.Equal(t, []int{1}, m.StoppedCars)
	assert.Equal(t, 1, m.TotalClamps)
	assert.Equal(t, 0, m.TotalWraps)
}

func TestMetrics_Report_Empty(t *testing.T) {
	r := NewMetrics(100, 15).Report()
	assert.Equal(t, int64(0), r.Ticks)
	assert.Equal(t, 0.15, r.RoadDensity)
	assert.Equal(t, 0.0, r.MeanVelocity)
	assert.Equal(t, 0.0, r.MeanVelocityStdDev)
	assert.Equal(t, 0.0, r.MeanFlow)
}

func TestMetrics_Report_Statistics(t *testing.T) {
	// GIVEN four ticks with known mean velocities
	m := NewMetrics(10, 4)
	m.Ticks = 4
	m.MeanVelocities = []float64{4, 1, 3, 2}
	m.Flows = []float64{0.4, 0.1, 0.3, 0.2}
	m.StoppedCars = []int{0, 2, 1, 1}

	r := m.Report()

	testutil.AssertFloat64Equal(t, "mean velocity", 2.5, r.MeanVelocity, 1e-12)
	testutil.AssertFloat64Equal(t, "stddev", math.Sqrt(5.0/3.0), r.MeanVelocityStdDev, 1e-12)
	testutil.AssertFloat64Equal(t, "p50", 2.5, r.MeanVelocityP50, 1e-12)
	testutil.AssertFloat64Equal(t, "p90", 3.7, r.MeanVelocityP90, 1e-12)
	testutil.AssertFloat64Equal(t, "mean flow", 0.25, r.MeanFlow, 1e-12)
	testutil.AssertFloat64Equal(t, "stopped fraction", 0.25, r.MeanStoppedFraction, 1e-12)
}

func TestMetrics_Report_SingleTickHasZeroStdDev(t *testing.T) {
	m := NewMetrics(10, 1)
	m.RecordTick([]Car{{Position: 3, Velocity: 2}}, 0, 0)
	r := m.Report()
	assert.Equal(t, 2.0, r.MeanVelocity)
	assert.Equal(t, 0.0, r.MeanVelocityStdDev)
}

func TestMetrics_Print_WritesHeaderAndJSON(t *testing.T) {
	m := NewMetrics(10, 2)
	m.RecordTick([]Car{{Position: 0, Velocity: 2}, {Position: 5, Velocity: 0}}, 0, 1)

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "=== Simulation Metrics ===\n"))
	var r Report
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(out, "=== Simulation Metrics ===\n")), &r))
	assert.Equal(t, int64(1), r.Ticks)
	assert.Equal(t, 1, r.TotalWraps)
	assert.Equal(t, 0.2, r.MeanFlow)
}

func TestMetrics_FreeFlowRoadHasFlowDensityTimesVMax(t *testing.T) {
	// GIVEN a sparse road and no braking
	cfg := NewRoadConfig(100, 5, 3, 1e9, 0.1, 0)
	s := newPlacedSimulator(t, cfg, testutil.AlwaysAccelerate(3), nil)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Step())
	}

	// THEN every car cruises at vmax and flow equals density × vmax
	r := s.Metrics.Report()
	assert.Equal(t, 3.0, r.MeanVelocityP50)
	assert.InDelta(t, 0.15, s.Metrics.Flows[len(s.Metrics.Flows)-1], 1e-12)
	assert.Equal(t, 0.0, r.MeanStoppedFraction)
}
