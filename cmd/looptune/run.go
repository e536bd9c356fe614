// run.go implements the 'looptune run' command.
package main

import (
	"fmt"
	"os"

	"github.com/kolkov/looptune/pass"
)

// runConfig holds configuration for the run command.
type runConfig struct {
	// Unit to process: .lir file or Go package pattern
	unit string

	// Feature record destination (-features flag)
	features string

	// Action record source (-actions flag)
	actions string

	// YAML config file (-config flag)
	configFile string

	// Annotated unit destination (-o flag, stdout if empty)
	out string

	// Verbose output flag (-v)
	verbose bool
}

// runCommand implements the 'looptune run' command.
//
// This executes the full pass: extraction always runs and writes the
// feature record; application runs afterwards only if the action record
// is present and parses. The (possibly annotated) unit is then written.
//
// Example:
//
//	looptune run kernel.lir
//	looptune run -features f.json -actions a.json -o annotated.lir kernel.lir
func runCommand(args []string) {
	config, err := parseRunArgs(args)
	if err != nil {
		fatalf("%v", err)
	}
	if err := runRun(config); err != nil {
		fatalf("%v", err)
	}
}

// runRun executes the configured pass over the loaded unit.
func runRun(config *runConfig) error {
	cfg, err := resolveConfig(config.configFile, config.features, config.actions)
	if err != nil {
		return err
	}
	m, err := loadUnit(config.unit, config.verbose)
	if err != nil {
		return err
	}

	sum, err := pass.New(cfg).Run(m)
	if err != nil {
		return err
	}
	// Summary goes to stderr so it never mixes with a unit on stdout.
	fmt.Fprintf(os.Stderr, "looptune: %d loop(s) extracted to %s", sum.Loops, cfg.Features)
	if sum.Applied {
		fmt.Fprintf(os.Stderr, ", %d annotated from %s", sum.Annotated, cfg.Actions)
	}
	fmt.Fprintln(os.Stderr)
	return writeUnit(m, config.out)
}

// parseRunArgs parses command-line arguments for 'looptune run'.
func parseRunArgs(args []string) (*runConfig, error) {
	config := &runConfig{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-features":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-features flag requires an argument")
			}
			i++
			config.features = args[i]
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
