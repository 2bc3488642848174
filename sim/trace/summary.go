package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalClamps   int
	TotalWraps    int
	MeanOvershoot float64
	MaxOvershoot  int
	ClampedCars   int
	ClampsPerCar  map[int]int // car index → number of clamps
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ClampsPerCar: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalWraps = len(st.Wraps)
	summary.TotalClamps = len(st.Clamps)

	if len(st.Clamps) > 0 {
		totalOvershoot := 0
		for _, c := range st.Clamps {
			summary.ClampsPerCar[c.CarIndex]++
			overshoot := c.Overshoot()
			totalOvershoot += overshoot
			if overshoot > summary.MaxOvershoot {
				summary.MaxOvershoot = overshoot
			}
		}
		summary.MeanOvershoot = float64(totalOvershoot) / float64(len(st.Clamps))
	}

	summary.ClampedCars = len(summary.ClampsPerCar)

	return summary
}
