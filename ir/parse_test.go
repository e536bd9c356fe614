package ir

import (
	"errors"
	"strings"
	"testing"
)

const kernelSrc = `# test kernel
module t

func @f(%n, %p) {
entry:
  br loop
loop:
  %i = phi [entry: 0, body: %i2]
  %c = cmp lt, %i, %n
  cbr %c, body, exit
body:
  %v = load %p
  %s = add %v, 1
  store %s, %p
  call @g, %s
  %i2 = add %i, 1
  br loop
exit:
  ret
}

decl @g(%v)
`

// TestParse_Kernel checks structure, edges, and operand parsing of a
// representative unit.
func TestParse_Kernel(t *testing.T) {
	m, err := Parse("kernel.lir", []byte(kernelSrc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.Name != "t" {
		t.Errorf("module name = %q, want %q", m.Name, "t")
	}
	if len(m.Funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(m.Funcs))
	}

	fn := m.Func("f")
	if fn == nil {
		t.Fatal("function f not found")
	}
	if got := len(fn.Blocks); got != 4 {
		t.Fatalf("got %d blocks, want 4", got)
	}
	if fn.Entry().Name != "entry" {
		t.Errorf("entry block = %q, want entry", fn.Entry().Name)
	}

	loop := fn.Block("loop")
	if loop == nil {
		t.Fatal("block loop not found")
	}
	if len(loop.Succs) != 2 || loop.Succs[0].Name != "body" || loop.Succs[1].Name != "exit" {
		t.Errorf("loop successors wrong: %v", loop.Succs)
	}
	if len(loop.Preds) != 2 {
		t.Errorf("got %d loop predecessors, want 2 (entry and body)", len(loop.Preds))
	}

	phi := loop.Insts[0]
	if phi.Op != OpPhi || phi.Name != "i" {
		t.Fatalf("first loop instruction = %s %q, want phi i", phi.Op, phi.Name)
	}
	if len(phi.Args) != 4 || phi.Args[0] != "entry" || phi.Args[2] != "body" {
		t.Errorf("phi args wrong: %v", phi.Args)
	}

	g := m.Func("g")
	if g == nil || g.HasBody() {
		t.Errorf("g should be a bodiless declaration, got %+v", g)
	}
}

// TestParse_Annotation checks that a metadata suffix survives parsing.
func TestParse_Annotation(t *testing.T) {
	src := `func @f() {
entry:
  %x = const 1 !loop[loop.vectorize.width = 4]
  ret
}
`
	m, err := Parse("a.lir", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	in := m.Funcs[0].Entry().Insts[0]
	ann := in.AnnotationOn("loop")
	if ann == nil {
		t.Fatal("annotation missing after parse")
	}
	if ann.Key != "loop.vectorize.width" || ann.Value != 4 {
		t.Errorf("annotation = %+v, want loop.vectorize.width=4", ann)
	}
}

// TestParse_Errors exercises the parser's structural validation.
func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "missing terminator",
			src:     "func @f() {\nentry:\n  %x = const 1\n}\n",
			wantErr: "does not end in a terminator",
		},
		{
			name:    "unknown branch target",
			src:     "func @f() {\nentry:\n  br nowhere\n}\n",
			wantErr: "unknown label",
		},
		{
			name:    "duplicate block",
			src:     "func @f() {\nentry:\n  br entry\nentry:\n  ret\n}\n",
			wantErr: "duplicate block",
		},
		{
			name:    "duplicate function",
			src:     "decl @f(%x)\ndecl @f(%x)\n",
			wantErr: "duplicate function",
		},
		{
			name:    "unknown opcode",
			src:     "func @f() {\nentry:\n  frobnicate %x\n}\n",
			wantErr: "unknown opcode",
		},
		{
			name:    "unclosed function",
			src:     "func @f() {\nentry:\n  ret\n",
			wantErr: "not closed",
		},
		{
			name:    "terminator mid-block",
			src:     "func @f() {\nentry:\n  ret\n  %x = const 1\n  ret\n}\n",
			wantErr: "middle of block",
		},
		{
			name:    "instruction outside function",
			src:     "%x = const 1\n",
			wantErr: "outside function",
		},
		{
			name:    "empty block",
			src:     "func @f() {\nentry:\nnext:\n  ret\n}\n",
			wantErr: "is empty",
		},
		{
			name:    "cbr arity",
			src:     "func @f() {\nentry:\n  cbr %c, only\nonly:\n  ret\n}\n",
			wantErr: "cbr needs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.lir", []byte(tt.src))
			if err == nil {
				t.Fatalf("Parse succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("error is %T, want *ParseError", err)
			}
		})
	}
}
