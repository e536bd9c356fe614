package pass

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Documented default record names, matching what the external
// decision-maker expects to find next to the compilation unit.
const (
	DefaultFeaturesFile = "loop_features.json"
	DefaultActionsFile  = "loop_actions.json"
)

// Config names the two external records. It is set once per invocation
// and never mutated while the pass runs.
type Config struct {
	// Features is the destination for the feature record (written
	// unconditionally, even when no loops are found).
	Features string `yaml:"features"`

	// Actions is the source of the action record (read conditionally;
	// absence is not an error).
	Actions string `yaml:"actions"`
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{Features: DefaultFeaturesFile, Actions: DefaultActionsFile}
}

func (c Config) withDefaults() Config {
	if c.Features == "" {
		c.Features = DefaultFeaturesFile
	}
	if c.Actions == "" {
		c.Actions = DefaultActionsFile
	}
	return c
}

// LoadConfig reads a YAML config file such as looptune.yaml:
//
//	features: out/loop_features.json
//	actions: out/loop_actions.json
//
// Returns nil (not an error) if the file does not exist, so callers can
// treat the file as optional and fall back to defaults or flags.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return &c, nil
}
