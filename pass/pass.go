package pass

import (
	"fmt"

	"github.com/kolkov/looptune/internal/action"
	"github.com/kolkov/looptune/internal/feature"
	"github.com/kolkov/looptune/ir"
)

// Summary reports what one pass invocation did.
type Summary struct {
	// Loops is the number of loops discovered and serialized.
	Loops int

	// Applied reports whether an action record was found and ingested.
	// False means the file was missing or unreadable, which is the
	// normal extract-only case, not an error.
	Applied bool

	// Annotated is the number of loops that received a directive.
	Annotated int
}

// Pass is one configured extract/apply invocation. Construct with New;
// the configuration is immutable for the lifetime of the pass.
type Pass struct {
	cfg Config
}

// New creates a pass with the given configuration. Empty path fields
// fall back to the documented defaults.
func New(cfg Config) *Pass {
	return &Pass{cfg: cfg.withDefaults()}
}

// Run executes both phases over m, strictly in sequence:
//
//  1. Extraction: discover every natural loop, compute its feature
//     record, and write all records to the features file. A write
//     failure aborts the invocation.
//  2. Application: if the actions file is present and parses, re-run
//     discovery and attach directives to matching loops, mutating m in
//     place. A missing file applies nothing; a malformed file is a hard
//     failure, reported after extraction output is already on disk.
//
// Run is synchronous and single-threaded; m must not be mutated by
// anyone else while it executes.
func (p *Pass) Run(m *ir.Module) (Summary, error) {
	var sum Summary

	recs := feature.Collect(m)
	sum.Loops = len(recs)
	if err := feature.WriteFile(p.cfg.Features, recs); err != nil {
		return sum, err
	}

	set, err := action.ReadFile(p.cfg.Actions)
	if err != nil {
		return sum, fmt.Errorf("ingest actions: %w", err)
	}
	if set == nil {
		return sum, nil // no action record; extraction alone is success
	}
	sum.Applied = true
	sum.Annotated = action.Apply(m, set)
	return sum, nil
}

// Channel and annotation keys consumed by the downstream code generator,
// re-exported for embedders that inspect the annotated unit.
const (
	DirectiveChannel   = action.Channel
	KeyVectorizeEnable = action.KeyVectorizeEnable
	KeyVectorizeWidth  = action.KeyVectorizeWidth
)
