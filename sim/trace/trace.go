package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every no-passing clamp and wraparound.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether the config asks for any records at all.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions
}

// SimulationTrace collects decision records during a road simulation.
type SimulationTrace struct {
	Config TraceConfig
	Clamps []ClampRecord
	Wraps  []WrapRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Clamps: make([]ClampRecord, 0),
		Wraps:  make([]WrapRecord, 0),
	}
}

// RecordClamp appends a no-passing clamp record.
func (st *SimulationTrace) RecordClamp(record ClampRecord) {
	st.Clamps = append(st.Clamps, record)
}

// RecordWrap appends a wraparound record.
func (st *SimulationTrace) RecordWrap(record WrapRecord) {
	st.Wraps = append(st.Wraps, record)
}
