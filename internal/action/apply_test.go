package action

import (
	"testing"

	"github.com/kolkov/looptune/ir"
)

const twoLoopSrc = `module t

func @f(%n, %p) {
entry:
  br loop
loop:
  %i = phi [entry: 0, loop: %i2]
  %v = load %p
  %i2 = add %i, 1
  %c = cmp lt, %i2, %n
  cbr %c, loop, exit
exit:
  ret
}

func @g(%n) {
entry:
  br loop
loop:
  %i = phi [entry: 0, loop: %i2]
  %i2 = add %i, 1
  %c = cmp lt, %i2, %n
  cbr %c, loop, exit
exit:
  ret
}
`

func parseModule(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := ir.Parse("test.lir", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func headerFirstInst(t *testing.T, m *ir.Module, fn, block string) *ir.Instruction {
	t.Helper()
	f := m.Func(fn)
	if f == nil {
		t.Fatalf("function %s not found", fn)
	}
	b := f.Block(block)
	if b == nil {
		t.Fatalf("block %s not found in %s", block, fn)
	}
	return b.Insts[0]
}

// TestApply_WidthRoundTrip checks the extract/apply contract: a width
// directive keyed by a loop identifier lands on that loop's header, and
// loops absent from the map stay untouched.
func TestApply_WidthRoundTrip(t *testing.T) {
	m := parseModule(t, twoLoopSrc)
	n := Apply(m, Set{"f:loop": {Kind: Width, Width: 4}})
	if n != 1 {
		t.Fatalf("Apply annotated %d loops, want 1", n)
	}

	ann := headerFirstInst(t, m, "f", "loop").AnnotationOn(Channel)
	if ann == nil {
		t.Fatal("matched loop header has no annotation")
	}
	if ann.Key != KeyVectorizeWidth || ann.Value != 4 {
		t.Errorf("annotation = %+v, want %s=4", ann, KeyVectorizeWidth)
	}

	// The annotation goes on the first instruction of the header, and
	// only there.
	f := m.Func("f")
	for _, b := range f.Blocks {
		for i, in := range b.Insts {
			if (b.Name != "loop" || i != 0) && in.AnnotationOn(Channel) != nil {
				t.Errorf("unexpected annotation on %s inst %d", b.Name, i)
			}
		}
	}

	// g's loop was not in the set: no annotation.
	if ann := headerFirstInst(t, m, "g", "loop").AnnotationOn(Channel); ann != nil {
		t.Errorf("unmatched loop annotated: %+v", ann)
	}
}

// TestApply_Disable checks the disable directive encoding.
func TestApply_Disable(t *testing.T) {
	m := parseModule(t, twoLoopSrc)
	Apply(m, Set{"g:loop": {Kind: Disable}})
	ann := headerFirstInst(t, m, "g", "loop").AnnotationOn(Channel)
	if ann == nil || ann.Key != KeyVectorizeEnable || ann.Value != 0 {
		t.Errorf("annotation = %+v, want %s=0", ann, KeyVectorizeEnable)
	}
}

// TestApply_DisablePrecedence runs the full decode+apply path on an
// entry carrying both keys: the disable directive must win.
func TestApply_DisablePrecedence(t *testing.T) {
	m := parseModule(t, twoLoopSrc)
	set, err := Decode([]byte(`{"f:loop": {"disable": true, "width": 8}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	Apply(m, set)
	ann := headerFirstInst(t, m, "f", "loop").AnnotationOn(Channel)
	if ann == nil || ann.Key != KeyVectorizeEnable {
		t.Errorf("annotation = %+v, want disable directive", ann)
	}
}

// TestApply_Unrecognized checks that entries of unknown shape match a
// loop but attach nothing.
func TestApply_Unrecognized(t *testing.T) {
	m := parseModule(t, twoLoopSrc)
	n := Apply(m, Set{"f:loop": {Kind: Unrecognized}})
	if n != 0 {
		t.Errorf("Apply annotated %d loops, want 0", n)
	}
	if ann := headerFirstInst(t, m, "f", "loop").AnnotationOn(Channel); ann != nil {
		t.Errorf("unrecognized directive attached %+v", ann)
	}
}

// TestApply_Overwrite checks the clobber semantics across invocations:
// a later directive on the same loop replaces the earlier one on the
// reserved channel, it does not merge.
func TestApply_Overwrite(t *testing.T) {
	m := parseModule(t, twoLoopSrc)
	Apply(m, Set{"f:loop": {Kind: Width, Width: 4}})
	Apply(m, Set{"f:loop": {Kind: Disable}})

	in := headerFirstInst(t, m, "f", "loop")
	ann := in.AnnotationOn(Channel)
	if ann == nil || ann.Key != KeyVectorizeEnable {
		t.Errorf("annotation = %+v, want the later disable to win", ann)
	}
	if got := len(in.Channels()); got != 1 {
		t.Errorf("header carries %d channels, want 1 (overwrite, not merge)", got)
	}
}

// TestApply_StaleIdentifiers checks that identifiers that no longer
// match any loop are dropped silently.
func TestApply_StaleIdentifiers(t *testing.T) {
	m := parseModule(t, twoLoopSrc)
	n := Apply(m, Set{
		"renamed:loop": {Kind: Width, Width: 4},
		"f:oldheader":  {Kind: Disable},
	})
	if n != 0 {
		t.Errorf("Apply annotated %d loops for stale identifiers, want 0", n)
	}
}
