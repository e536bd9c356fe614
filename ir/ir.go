// Package ir defines the LIR compilation unit that looptune analyzes and
// annotates: a module of functions, each a control-flow graph of basic
// blocks holding instructions.
//
// The representation is deliberately small. Instructions carry an opcode,
// an optional result name, and operand tokens; looptune only needs to
// classify opcodes (load / store / call / arithmetic) and to follow block
// edges, so operands are not resolved into a value graph.
//
// Instructions also carry metadata channels: named slots holding a single
// self-describing annotation each. The application phase attaches loop
// directives on the reserved "loop" channel; attaching to an occupied
// channel overwrites the previous annotation (clobber, not merge).
package ir

import "sort"

// Op identifies an instruction opcode.
type Op int

const (
	// OpOther covers instructions outside the classified categories
	// (address computation, conversions, anything a frontend cannot map).
	OpOther Op = iota

	OpConst // constant materialization
	OpLoad  // memory read
	OpStore // memory write

	// Arithmetic/binary operations. Kept contiguous so IsArith is a
	// range check over OpAdd..OpShr; extend only inside the range.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpAndNot
	OpOr
	OpXor
	OpShl
	OpShr

	OpCmp // comparison; not a binary arithmetic op for classification
	OpPhi

	OpCall   // plain call
	OpInvoke // call terminator with normal/unwind successors

	// Terminators.
	OpBr
	OpCBr
	OpRet
	OpUnreachable
)

var opNames = [...]string{
	OpOther:       "other",
	OpConst:       "const",
	OpLoad:        "load",
	OpStore:       "store",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpDiv:         "div",
	OpRem:         "rem",
	OpAnd:         "and",
	OpAndNot:      "andnot",
	OpOr:          "or",
	OpXor:         "xor",
	OpShl:         "shl",
	OpShr:         "shr",
	OpCmp:         "cmp",
	OpPhi:         "phi",
	OpCall:        "call",
	OpInvoke:      "invoke",
	OpBr:          "br",
	OpCBr:         "cbr",
	OpRet:         "ret",
	OpUnreachable: "unreachable",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "other"
}

// IsArith reports whether op is a binary arithmetic operation.
// Comparisons are excluded: cmp produces a flag, not an arithmetic value,
// and the feature extractor must not count it as arithmetic.
func (op Op) IsArith() bool {
	return op >= OpAdd && op <= OpShr
}

// IsCall reports whether op transfers control to a callee (call or invoke).
func (op Op) IsCall() bool {
	return op == OpCall || op == OpInvoke
}

// IsTerminator reports whether op must appear last in a block.
func (op Op) IsTerminator() bool {
	switch op {
	case OpInvoke, OpBr, OpCBr, OpRet, OpUnreachable:
		return true
	}
	return false
}

// Annotation is a self-describing name/value pair attached to an
// instruction under a metadata channel. The application phase emits
// annotations such as {Key: "loop.vectorize.width", Value: 4}.
type Annotation struct {
	Key   string
	Value int64
}

// Instruction is one LIR instruction.
//
// Args holds raw operand tokens: value names, literals, a comparison
// predicate (cmp), interleaved label/value pairs (phi), a callee plus
// arguments (call/invoke), or block labels (terminators).
type Instruction struct {
	Op   Op
	Name string   // result name, "" if the instruction produces no value
	Args []string // operand tokens, opcode-specific

	meta map[string]*Annotation // metadata channel -> annotation, nil until first attach
}

// SetAnnotation attaches ann to the given metadata channel, overwriting
// any annotation already present on that channel.
func (in *Instruction) SetAnnotation(channel string, ann *Annotation) {
	if in.meta == nil {
		in.meta = make(map[string]*Annotation, 1)
	}
	in.meta[channel] = ann
}

// AnnotationOn returns the annotation on the given channel, or nil.
func (in *Instruction) AnnotationOn(channel string) *Annotation {
	return in.meta[channel]
}

// Channels returns the instruction's occupied metadata channels in sorted
// order. Sorted so the printer emits deterministic output.
func (in *Instruction) Channels() []string {
	if len(in.meta) == 0 {
		return nil
	}
	chans := make([]string, 0, len(in.meta))
	for c := range in.meta {
		chans = append(chans, c)
	}
	sort.Strings(chans)
	return chans
}

// Block is a basic block: a named straight-line instruction sequence
// ending in a terminator, linked to successor and predecessor blocks.
type Block struct {
	Name  string
	Index int // position in Function.Blocks; dense, assigned at construction
	Insts []*Instruction
	Succs []*Block
	Preds []*Block
}

func (b *Block) String() string { return b.Name }

// AddEdge records a control-flow edge from b to succ.
func AddEdge(b, succ *Block) {
	b.Succs = append(b.Succs, succ)
	succ.Preds = append(succ.Preds, b)
}

// Function is one function of a module. A function without blocks is a
// declaration; discovery and extraction skip declarations.
type Function struct {
	Name   string
	Params []string
	Blocks []*Block // entry first; Block.Index matches slice position
}

// HasBody reports whether fn carries a body (is not a declaration).
func (fn *Function) HasBody() bool { return len(fn.Blocks) > 0 }

// Entry returns the function's entry block, or nil for a declaration.
func (fn *Function) Entry() *Block {
	if len(fn.Blocks) == 0 {
		return nil
	}
	return fn.Blocks[0]
}

// Block returns the block with the given name, or nil.
func (fn *Function) Block(name string) *Block {
	for _, b := range fn.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Module is one compilation unit: a named, ordered list of functions.
type Module struct {
	Name  string
	Funcs []*Function
}

// Func returns the function with the given name, or nil.
func (m *Module) Func(name string) *Function {
	for _, fn := range m.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}
