// Package main implements the looptune CLI tool.
//
// looptune is a standalone loop-annotation pass. It works by:
//
//  1. Loading a compilation unit (a textual .lir file, or Go packages
//     lowered through go/ssa)
//  2. Discovering every natural loop via dominator analysis
//  3. Writing one feature record per loop for an external decision-maker
//  4. Reading the decision-maker's per-loop directives back and
//     attaching them as metadata on each loop header
//
// Usage:
//
//	looptune extract kernel.lir        # Phase 1: write loop_features.json
//	looptune apply kernel.lir          # Phase 2: apply loop_actions.json
//	looptune run kernel.lir            # Both phases in one invocation
//
// The annotated unit is printed back in textual form for the downstream
// code generator.
//
// This is the CLI entry point for the standalone looptune tool.
package main

import (
	"fmt"
	"os"

	"github.com/kolkov/looptune/pass"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "extract":
		extractCommand(os.Args[2:])
	case "apply":
		applyCommand(os.Args[2:])
	case "run":
		runCommand(os.Args[2:])
	case "version", "--version", "-v":
		info := pass.GetInfo()
		fmt.Printf("looptune version %s (%s)\n", info.Version, info.Discovery)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`looptune - Loop Feature Extraction and Directive Application

USAGE:
    looptune <command> [flags] <unit>

A unit is either a textual IR file (*.lir) or a Go package pattern,
which is lowered through go/ssa before analysis.

COMMANDS:
    extract    Discover loops and write the feature record
    apply      Apply the action record to the unit and print it
    run        Both phases: extract, then apply if actions exist
    version    Show version information
    help       Show this help message

FLAGS:
    -features <path>   Feature record destination (default loop_features.json)
    -actions <path>    Action record source (default loop_actions.json)
    -config <path>     YAML config file (default looptune.yaml if present)
    -o <path>          Write the annotated unit here instead of stdout
    -v                 Verbose output

EXAMPLES:
    # Extract features from a textual unit
    looptune extract kernel.lir

    # Extract features from the Go package in the current directory
    looptune extract .

    # Apply decisions and write the annotated unit
    looptune apply -actions decisions.json -o annotated.lir kernel.lir

    # Full round trip with explicit record paths
    looptune run -features f.json -actions a.json kernel.lir
`)
}

// fatalf prints an error and exits with status 1.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
