package sim

import (
	"encoding/json"
	"fmt"
	"io"
)

// SnapshotWriter streams one JSON object per tick to w, the hand-off point
// for presenters that live outside this process.
type SnapshotWriter struct {
	enc         *json.Encoder
	includeCars bool
	written     int64
}

// NewSnapshotWriter creates a SnapshotWriter. When includeCars is false only
// the tick, time, occupancy and density fields are written.
func NewSnapshotWriter(w io.Writer, includeCars bool) *SnapshotWriter {
	return &SnapshotWriter{enc: json.NewEncoder(w), includeCars: includeCars}
}

// Observe writes snap as a single JSON line. It satisfies Observer.
func (sw *SnapshotWriter) Observe(snap Snapshot) error {
	if !sw.includeCars {
		snap.Cars = nil
		snap.Moves = nil
	}
	if err := sw.enc.Encode(snap); err != nil {
		return fmt.Errorf("writing snapshot for tick %d: %w", snap.Tick, err)
	}
	sw.written++
	return nil
}

// Written returns the number of snapshots written so far.
func (sw *SnapshotWriter) Written() int64 {
	return sw.written
}
