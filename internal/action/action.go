// Package action ingests the external action record and applies the
// resulting loop directives to a compilation unit.
//
// The action record is a JSON object mapping loop identifiers to
// directive objects. A directive object carries either `disable: true`
// or `width: N`. Rather than probing fields ad hoc at application time,
// decoding resolves every entry into a tagged Directive up front:
//
//	{"disable": true}              -> Disable
//	{"disable": true, "width": 8}  -> Disable (disable is checked first)
//	{"width": 4}                   -> Width(4)
//	{"unroll": 2}                  -> Unrecognized (skipped, forward compat)
//
// Top-level syntax errors are fatal; an entry of unknown shape is not.
package action

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind discriminates the directive variants.
type Kind int

const (
	// Unrecognized marks an entry that matched neither known shape.
	// Application skips it silently so future directive kinds do not
	// break older builds of this pass.
	Unrecognized Kind = iota

	// Disable turns vectorization off for the loop.
	Disable

	// Width requests a specific vectorization factor.
	Width
)

func (k Kind) String() string {
	switch k {
	case Disable:
		return "disable"
	case Width:
		return "width"
	}
	return "unrecognized"
}

// Directive is one resolved per-loop decision.
type Directive struct {
	Kind  Kind
	Width int64 // meaningful only when Kind == Width
}

// Set maps loop identifiers to resolved directives.
type Set map[string]Directive

// rawEntry defers field decoding so an entry with an unexpected field
// type degrades to Unrecognized instead of failing the whole record.
type rawEntry struct {
	Disable json.RawMessage `json:"disable"`
	Width   json.RawMessage `json:"width"`
}

func (e rawEntry) resolve() Directive {
	// Priority order: a true disable flag wins over any width.
	if len(e.Disable) > 0 {
		var b bool
		if err := json.Unmarshal(e.Disable, &b); err == nil && b {
			return Directive{Kind: Disable}
		}
	}
	if len(e.Width) > 0 {
		var n json.Number
		if err := json.Unmarshal(e.Width, &n); err == nil {
			if w, err := n.Int64(); err == nil {
				return Directive{Kind: Width, Width: w}
			}
		}
	}
	return Directive{Kind: Unrecognized}
}

// Decode parses an action record. The record must parse as a whole;
// there is no partial-parse recovery.
func Decode(data []byte) (Set, error) {
	var raw map[string]rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse action record: %w", err)
	}
	set := make(Set, len(raw))
	for id, e := range raw {
		set[id] = e.resolve()
	}
	return set, nil
}

// ReadFile reads and decodes the action record at path.
//
// A missing or unreadable file is not an error: it returns (nil, nil)
// and the caller applies nothing. A file that reads but does not parse
// is a hard failure of the ingestion phase.
func ReadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	set, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}
