// apply.go implements the 'looptune apply' command.
package main

import (
	"fmt"
	"os"

	"github.com/kolkov/looptune/internal/action"
)

// applyConfig holds configuration for the apply command.
type applyConfig struct {
	// Unit to annotate: .lir file or Go package pattern
	unit string

	// Action record source (-actions flag)
	actions string

	// YAML config file (-config flag)
	configFile string

	// Annotated unit destination (-o flag, stdout if empty)
	out string

	// Verbose output flag (-v)
	verbose bool
}

// applyCommand implements the 'looptune apply' command.
//
// This is phase 2 of the pass on its own: rediscover the unit's loops,
// match them against the action record by identifier, attach directive
// annotations to the matched loop headers, and print the annotated unit.
//
// A missing action record applies nothing; the unit is printed back
// unchanged. A malformed record is a hard failure.
//
// Example:
//
//	looptune apply kernel.lir
//	looptune apply -actions decisions.json -o annotated.lir kernel.lir
func applyCommand(args []string) {
	config, err := parseApplyArgs(args)
	if err != nil {
		fatalf("%v", err)
	}
	if err := runApply(config); err != nil {
		fatalf("%v", err)
	}
}

// runApply loads the unit, ingests the action record, and writes the
// annotated unit.
func runApply(config *applyConfig) error {
	cfg, err := resolveConfig(config.configFile, "", config.actions)
	if err != nil {
		return err
	}
	m, err := loadUnit(config.unit, config.verbose)
	if err != nil {
		return err
	}

	set, err := action.ReadFile(cfg.Actions)
	if err != nil {
		return err
	}
	if set == nil {
		if config.verbose {
			fmt.Fprintf(os.Stderr, "looptune: no action record at %s, applying nothing\n", cfg.Actions)
		}
		return writeUnit(m, config.out)
	}

	n := action.Apply(m, set)
	if config.verbose {
		fmt.Fprintf(os.Stderr, "looptune: annotated %d loop(s) from %s\n", n, cfg.Actions)
	}
	return writeUnit(m, config.out)
}

// parseApplyArgs parses command-line arguments for 'looptune apply'.
func parseApplyArgs(args []string) (*applyConfig, error) {
	config := &applyConfig{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-actions":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-actions flag requires an argument")
			}
			i++
			config.actions = args[i]
		case "-config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-config flag requires an argument")
			}
			i++
			config.configFile = args[i]
		case "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-o flag requires an argument")
			}
			i++
			config.out = args[i]
		case "-v":
			config.verbose = true
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			if config.unit != "" {
				return nil, fmt.Errorf("exactly one unit expected, got %q and %q", config.unit, arg)
			}
			config.unit = arg
		}
	}
	if config.unit == "" {
		return nil, fmt.Errorf("no unit specified (a .lir file or Go package pattern)")
	}
	return config, nil
}
