// apply_test.go tests the 'looptune apply' command.
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestParseApplyArgs_Flags tests every flag the command accepts.
func TestParseApplyArgs_Flags(t *testing.T) {
	config, err := parseApplyArgs([]string{
		"-actions", "a.json", "-o", "out.lir", "-config", "lt.yaml", "-v", "kernel.lir",
	})
	if err != nil {
		t.Fatalf("parseApplyArgs() error: %v", err)
	}
	if config.actions != "a.json" || config.out != "out.lir" ||
		config.configFile != "lt.yaml" || !config.verbose || config.unit != "kernel.lir" {
		t.Errorf("config = %+v", config)
	}
}

// TestParseApplyArgs_Errors tests the rejection cases.
func TestParseApplyArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no unit", args: []string{"-actions", "a.json"}},
		{name: "missing flag value", args: []string{"-o"}},
		{name: "unknown flag", args: []string{"-width", "4", "kernel.lir"}},
		{name: "two units", args: []string{"a.lir", "b.lir"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseApplyArgs(tt.args); err == nil {
				t.Errorf("parseApplyArgs(%v) succeeded, want error", tt.args)
			}
		})
	}
}

// TestRunApply_Annotates applies a width directive end to end and checks
// the annotation in the written unit.
func TestRunApply_Annotates(t *testing.T) {
	dir := t.TempDir()
	unit := writeKernel(t, testKernel)
	actions := filepath.Join(dir, "actions.json")
	out := filepath.Join(dir, "annotated.lir")

	if err := os.WriteFile(actions, []byte(`{"f:loop": {"width": 4}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runApply(&applyConfig{unit: unit, actions: actions, out: out})
	if err != nil {
		t.Fatalf("runApply() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("annotated unit not written: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "!loop[loop.vectorize.width = 4]") {
		t.Errorf("annotated unit missing width directive:\n%s", text)
	}
	// The directive lands on the header phi, nowhere else.
	if strings.Count(text, "!loop[") != 1 {
		t.Errorf("expected exactly one annotation:\n%s", text)
	}
}

// TestRunApply_MissingActions tests that an absent action record leaves
// the unit unchanged rather than failing.
func TestRunApply_MissingActions(t *testing.T) {
	dir := t.TempDir()
	unit := writeKernel(t, testKernel)
	out := filepath.Join(dir, "out.lir")

	err := runApply(&applyConfig{
		unit:    unit,
		actions: filepath.Join(dir, "no_such.json"),
		out:     out,
	})
	if err != nil {
		t.Fatalf("runApply() error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("unit not written: %v", err)
	}
	if strings.Contains(string(data), "!loop[") {
		t.Error("unit annotated without an action record")
	}
}

// TestRunApply_MalformedActions tests the hard-failure path for a broken
// action record.
func TestRunApply_MalformedActions(t *testing.T) {
	dir := t.TempDir()
	unit := writeKernel(t, testKernel)
	actions := filepath.Join(dir, "actions.json")
	if err := os.WriteFile(actions, []byte(`{"f:loop":`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := runApply(&applyConfig{unit: unit, actions: actions, out: filepath.Join(dir, "out.lir")})
	if err == nil {
		t.Error("runApply() succeeded on malformed action record, want error")
	}
}

// TestRunApply_StaleActions tests that identifiers matching no loop are
// dropped without complaint.
func TestRunApply_StaleActions(t *testing.T) {
	dir := t.TempDir()
	unit := writeKernel(t, testKernel)
	actions := filepath.Join(dir, "actions.json")
	out := filepath.Join(dir, "out.lir")
	if err := os.WriteFile(actions, []byte(`{"renamed:loop": {"width": 4}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runApply(&applyConfig{unit: unit, actions: actions, out: out}); err != nil {
		t.Fatalf("runApply() error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("unit not written: %v", err)
	}
	if strings.Contains(string(data), "!loop[") {
		t.Error("stale identifier produced an annotation")
	}
}
