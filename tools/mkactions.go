//go:build ignore
// +build ignore

// This tool builds a uniform action record from a feature record: every
// loop the extract phase found gets the same directive. Useful for
// exercising the full extract/apply round trip without a real
// decision-maker on hand.
//
// Run with: go run tools/mkactions.go [-width 4 | -disable] [-features f] [-o out]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

func main() {
	features := flag.String("features", "loop_features.json", "feature record to read")
	out := flag.String("o", "loop_actions.json", "action record to write")
	width := flag.Int("width", 4, "vectorization width to request for every loop")
	disable := flag.Bool("disable", false, "emit disable directives instead of width")
	flag.Parse()

	data, err := os.ReadFile(*features)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	var recs []struct {
		LoopID string `json:"loop_id"`
	}
	if err := json.Unmarshal(data, &recs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: parse %s: %v\n", *features, err)
		os.Exit(1)
	}

	actions := make(map[string]map[string]any, len(recs))
	for _, r := range recs {
		if *disable {
			actions[r.LoopID] = map[string]any{"disable": true}
		} else {
			actions[r.LoopID] = map[string]any{"width": *width}
		}
	}

	enc, err := json.MarshalIndent(actions, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	enc = append(enc, '\n')
	if err := os.WriteFile(*out, enc, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d action(s) to %s\n", len(actions), *out)
}
