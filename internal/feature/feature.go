// Package feature computes the per-loop feature records that the extract
// phase ships to the external decision-maker.
//
// Each record is produced by one linear scan over the loop's member
// blocks. Classification is mutually exclusive: an instruction counts as
// exactly one of load, store, call/invoke, or binary arithmetic, or not
// at all. Comparisons, phis, constants, and control flow fall outside all
// four buckets on purpose; the decision-maker cares about memory traffic
// and compute density, not plumbing.
//
// The trip count field is a reserved slot. This package performs no
// symbolic trip-count derivation and always emits the unset sentinel; a
// stronger estimator can populate the slot later without changing the
// record schema.
package feature

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kolkov/looptune/internal/analysis"
	"github.com/kolkov/looptune/ir"
)

// TripCountUnknown is the sentinel for an unavailable trip-count estimate.
const TripCountUnknown = -1

// Record is one loop's feature vector as serialized for the external
// decision-maker. Field names are part of the wire contract.
type Record struct {
	Function     string `json:"function"`
	Header       string `json:"header"`
	LoopID       string `json:"loop_id"`
	TripCountEst int64  `json:"trip_count_est"`
	NumLoads     int    `json:"num_loads"`
	NumStores    int    `json:"num_stores"`
	NumArith     int    `json:"num_arith"`
	NumCalls     int    `json:"num_calls"`
	NumBlocks    int    `json:"num_blocks"`
}

// Extract computes the feature record for one discovered loop of fn.
// Pure read over the IR; the unit is never mutated.
func Extract(fn *ir.Function, l *analysis.Loop) Record {
	rec := Record{
		Function:     fn.Name,
		Header:       l.Header.Name,
		LoopID:       l.ID(fn),
		TripCountEst: TripCountUnknown,
		NumBlocks:    len(l.Blocks),
	}
	for _, b := range l.Blocks {
		for _, in := range b.Insts {
			switch {
			case in.Op == ir.OpLoad:
				rec.NumLoads++
			case in.Op == ir.OpStore:
				rec.NumStores++
			case in.Op.IsCall():
				rec.NumCalls++
			case in.Op.IsArith():
				rec.NumArith++
			}
		}
	}
	return rec
}

// Collect runs loop discovery over every function with a body and returns
// the flattened record sequence: functions in module order, loops per
// function in discovery order. Always returns a non-nil slice so an empty
// unit serializes as an empty array rather than null.
func Collect(m *ir.Module) []Record {
	recs := make([]Record, 0)
	for _, fn := range m.Funcs {
		if !fn.HasBody() {
			continue
		}
		for _, l := range analysis.Loops(fn) {
			recs = append(recs, Extract(fn, l))
		}
	}
	return recs
}

// WriteFile serializes records as indented JSON to path. A failure here
// is fatal to the whole pass invocation; there is no partial-output or
// retry behavior.
func WriteFile(path string, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode feature records: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write feature record %s: %w", path, err)
	}
	return nil
}
