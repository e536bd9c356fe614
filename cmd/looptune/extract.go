// extract.go implements the 'looptune extract' command.
package main

import (
	"fmt"
	"os"

	"github.com/kolkov/looptune/internal/feature"
)

// extractConfig holds configuration for the extract command.
type extractConfig struct {
	// Unit to analyze: .lir file or Go package pattern
	unit string

	// Feature record destination (-features flag)
	features string

	// YAML config file (-config flag)
	configFile string

	// Verbose output flag (-v)
	verbose bool
}

// extractCommand implements the 'looptune extract' command.
//
// This is phase 1 of the pass on its own: discover every natural loop in
// the unit and write the feature record for the external decision-maker.
// The unit itself is never modified.
//
// Example:
//
//	looptune extract kernel.lir
//	looptune extract -features out/features.json ./...
func extractCommand(args []string) {
	config, err := parseExtractArgs(args)
	if err != nil {
		fatalf("%v", err)
	}
	if err := runExtract(config); err != nil {
		fatalf("%v", err)
	}
}

// runExtract loads the unit, collects feature records, and writes them.
func runExtract(config *extractConfig) error {
	cfg, err := resolveConfig(config.configFile, config.features, "")
	if err != nil {
		return err
	}
	m, err := loadUnit(config.unit, config.verbose)
	if err != nil {
		return err
	}
	recs := feature.Collect(m)
	if err := feature.WriteFile(cfg.Features, recs); err != nil {
		return err
	}
	if config.verbose {
		for _, r := range recs {
			fmt.Fprintf(os.Stderr, "looptune: %s blocks=%d loads=%d stores=%d arith=%d calls=%d\n",
				r.LoopID, r.NumBlocks, r.NumLoads, r.NumStores, r.NumArith, r.NumCalls)
		}
	}
	fmt.Printf("Extracted %d loop(s) to %s\n", len(recs), cfg.Features)
	return nil
}

// parseExtractArgs parses command-line arguments for 'looptune extract'.
func parseExtractArgs(args []string) (*extractConfig, error) {
	config := &extractConfig{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-features":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-features flag requires an argument")
			}
			i++
			config.features = args[i]
		case "-config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-config flag requires an argument")
			}
			i++
			config.configFile = args[i]
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
