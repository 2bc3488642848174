package trace

import (
	"testing"
)

func TestSimulationTrace_RecordClamp_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a clamp record is recorded
	st.RecordClamp(ClampRecord{
		Tick:              3,
		CarIndex:          0,
		From:              5,
		Wanted:            8,
		ClampedTo:         6,
		SuccessorPosition: 7,
	})

	// THEN the trace contains one clamp record with correct data
	if len(st.Clamps) != 1 {
		t.Fatalf("expected 1 clamp, got %d", len(st.Clamps))
	}
	if st.Clamps[0].ClampedTo != 6 {
		t.Errorf("expected clamped position 6, got %d", st.Clamps[0].ClampedTo)
	}
	if st.Clamps[0].Overshoot() != 1 {
		t.Errorf("expected overshoot 1, got %d", st.Clamps[0].Overshoot())
	}
}

func TestSimulationTrace_RecordWrap_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a wrap record is recorded
	st.RecordWrap(WrapRecord{Tick: 1, CarIndex: 4, From: 98, To: 1})

	// THEN the trace contains one wrap record with correct data
	if len(st.Wraps) != 1 {
		t.Fatalf("expected 1 wrap, got %d", len(st.Wraps))
	}
	if st.Wraps[0].From != 98 || st.Wraps[0].To != 1 {
		t.Errorf("expected 98→1, got %d→%d", st.Wraps[0].From, st.Wraps[0].To)
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN multiple records are added
	st.RecordClamp(ClampRecord{Tick: 1, CarIndex: 2})
	st.RecordClamp(ClampRecord{Tick: 2, CarIndex: 0})
	st.RecordWrap(WrapRecord{Tick: 1, CarIndex: 5})

	// THEN order is preserved
	if len(st.Clamps) != 2 {
		t.Fatalf("expected 2 clamps, got %d", len(st.Clamps))
	}
	if st.Clamps[0].Tick != 1 || st.Clamps[1].Tick != 2 {
		t.Error("clamp order not preserved")
	}
	if len(st.Wraps) != 1 || st.Wraps[0].CarIndex != 5 {
		t.Error("wrap record mismatch")
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true},
		{"detailed", false},
		{"clamps", false},
	}
	for _, tc := range tests {
		if got := IsValidTraceLevel(tc.level); got != tc.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tc.level, got, tc.valid)
		}
	}
}

func TestTraceConfig_Enabled(t *testing.T) {
	if (TraceConfig{}).Enabled() {
		t.Error("empty level must not enable tracing")
	}
	if (TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("none must not enable tracing")
	}
	if !(TraceConfig{Level: TraceLevelDecisions}).Enabled() {
		t.Error("decisions must enable tracing")
	}
}
