// unit.go loads compilation units and resolves the pass configuration
// shared by the extract, apply, and run commands.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kolkov/looptune/cmd/looptune/frontend"
	"github.com/kolkov/looptune/ir"
	"github.com/kolkov/looptune/pass"
)

// defaultConfigFile is probed when -config is not given. Its absence is
// fine; an explicitly named config file must exist.
const defaultConfigFile = "looptune.yaml"

// loadUnit loads the unit named by arg: a textual IR file when it ends
// in .lir, otherwise a Go package pattern lowered through go/ssa.
func loadUnit(arg string, verbose bool) (*ir.Module, error) {
	if strings.HasSuffix(arg, ".lir") {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("read unit: %w", err)
		}
		return ir.Parse(arg, data)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "looptune: lowering Go packages %q\n", arg)
	}
	return frontend.Load(".", arg)
}

// resolveConfig layers the pass configuration: documented defaults,
// then the YAML config file, then explicit flags.
func resolveConfig(configPath, features, actions string) (pass.Config, error) {
	cfg := pass.DefaultConfig()

	path := configPath
	if path == "" {
		path = defaultConfigFile
	}
	fileCfg, err := pass.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if fileCfg == nil && configPath != "" {
		return cfg, fmt.Errorf("config file %s not found", configPath)
	}
	if fileCfg != nil {
		if fileCfg.Features != "" {
			cfg.Features = fileCfg.Features
		}
		if fileCfg.Actions != "" {
			cfg.Actions = fileCfg.Actions
		}
	}

	if features != "" {
		cfg.Features = features
	}
	if actions != "" {
		cfg.Actions = actions
	}
	return cfg, nil
}

// writeUnit prints the (possibly annotated) unit to outPath, or stdout
// when outPath is empty.
func writeUnit(m *ir.Module, outPath string) error {
	text := ir.Print(m)
	if outPath == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	return nil
}
