// Package pass runs the looptune loop-annotation pass: extract loop
// features from a compilation unit, and apply externally computed
// vectorization directives back onto its loops.
//
// # Quick Start
//
// The pass is normally driven by the looptune tool:
//
//	$ looptune extract kernel.lir        # writes loop_features.json
//	$ <external decision-maker>          # writes loop_actions.json
//	$ looptune run -o annotated.lir kernel.lir
//
// For embedding in another tool:
//
//	m, err := ir.Parse("kernel.lir", src)
//	if err != nil {
//		...
//	}
//	p := pass.New(pass.DefaultConfig())
//	sum, err := p.Run(m)
//
// # How It Works
//
// One invocation runs two phases over the same unit, strictly in order:
//
//  1. Extraction. For every function with a body, the pass computes the
//     dominator tree of its control-flow graph, derives natural loops
//     from back-edges, and counts loads, stores, calls, and arithmetic
//     instructions per loop in one linear scan. The records are written
//     as a JSON array to the features file.
//
//  2. Application. If the actions file is present and parses, the pass
//     re-runs loop discovery from scratch and looks up each loop's
//     identifier ("<function>:<header>") in the action map. A matched
//     loop gets a single directive annotation attached to the first
//     instruction of its header block on the reserved "loop" metadata
//     channel, overwriting any annotation already there.
//
// The two discovery runs share no state; the identifier scheme is the
// only contract between them. Decisions referring to loops that no
// longer match (renamed functions or blocks, restructured control flow)
// are silently dropped.
//
// # Failure Model
//
//   - Feature-record write failure: fatal to the invocation.
//   - Missing/unreadable actions file: not an error, nothing applied.
//   - Malformed actions file: fatal; the feature record already written
//     is unaffected, and the unit is left unmutated.
//   - Action entry of unknown shape: skipped silently (forward compat).
package pass
