package ir

import (
	"strings"
	"testing"
)

// TestPrint_RoundTrip checks that printing and reparsing reproduces the
// module, including attached annotations. This is what lets an annotated
// unit travel through a file.
func TestPrint_RoundTrip(t *testing.T) {
	m, err := Parse("kernel.lir", []byte(kernelSrc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// Annotate the loop header's first instruction as the application
	// phase would.
	m.Func("f").Block("loop").Insts[0].SetAnnotation("loop",
		&Annotation{Key: "loop.vectorize.width", Value: 4})

	text := Print(m)
	if !strings.Contains(text, "!loop[loop.vectorize.width = 4]") {
		t.Fatalf("printed unit missing annotation:\n%s", text)
	}

	m2, err := Parse("kernel.lir", []byte(text))
	if err != nil {
		t.Fatalf("reparse failed: %v\nprinted:\n%s", err, text)
	}
	if Print(m2) != text {
		t.Errorf("print/parse/print not stable:\nfirst:\n%s\nsecond:\n%s", text, Print(m2))
	}

	ann := m2.Func("f").Block("loop").Insts[0].AnnotationOn("loop")
	if ann == nil || ann.Key != "loop.vectorize.width" || ann.Value != 4 {
		t.Errorf("annotation lost in round trip: %+v", ann)
	}
}

// TestPrint_Declaration checks bodiless functions print as decl lines.
func TestPrint_Declaration(t *testing.T) {
	m := &Module{
		Name:  "m",
		Funcs: []*Function{{Name: "ext", Params: []string{"a", "b"}}},
	}
	text := Print(m)
	if !strings.Contains(text, "decl @ext(%a, %b)") {
		t.Errorf("printed unit missing declaration:\n%s", text)
	}
}

// TestSetAnnotation_Overwrites checks the clobber semantics of metadata
// channels: a second attach replaces the first, never merges.
func TestSetAnnotation_Overwrites(t *testing.T) {
	in := &Instruction{Op: OpConst, Name: "x", Args: []string{"1"}}
	in.SetAnnotation("loop", &Annotation{Key: "loop.vectorize.width", Value: 4})
	in.SetAnnotation("loop", &Annotation{Key: "loop.vectorize.enable", Value: 0})

	ann := in.AnnotationOn("loop")
	if ann.Key != "loop.vectorize.enable" || ann.Value != 0 {
		t.Errorf("annotation = %+v, want the second attach to win", ann)
	}
	if got := len(in.Channels()); got != 1 {
		t.Errorf("got %d channels, want 1", got)
	}
}

// TestOpClassification pins down which opcodes count as what; the
// feature extractor depends on these predicates being disjoint.
func TestOpClassification(t *testing.T) {
	arith := []Op{OpAdd, OpSub, OpMul, OpDiv, OpRem, OpAnd, OpAndNot, OpOr, OpXor, OpShl, OpShr}
	for _, op := range arith {
		if !op.IsArith() {
			t.Errorf("%s.IsArith() = false, want true", op)
		}
		if op.IsCall() || op.IsTerminator() {
			t.Errorf("%s classified as call or terminator", op)
		}
	}
	notArith := []Op{OpCmp, OpPhi, OpLoad, OpStore, OpCall, OpInvoke, OpConst, OpOther, OpBr, OpCBr, OpRet, OpUnreachable}
	for _, op := range notArith {
		if op.IsArith() {
			t.Errorf("%s.IsArith() = true, want false", op)
		}
	}
	if !OpCall.IsCall() || !OpInvoke.IsCall() {
		t.Error("call/invoke not classified as calls")
	}
	for _, op := range []Op{OpBr, OpCBr, OpRet, OpUnreachable, OpInvoke} {
		if !op.IsTerminator() {
			t.Errorf("%s.IsTerminator() = false, want true", op)
		}
	}
}
