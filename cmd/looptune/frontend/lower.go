// lower.go translates one ssa.Function into an ir.Function.
package frontend

import (
	"fmt"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ssa"

	"github.com/kolkov/looptune/ir"
)

// binOps maps SSA arithmetic tokens to ir opcodes. Comparison tokens are
// handled separately; they lower to cmp, never to an arithmetic op.
var binOps = map[token.Token]ir.Op{
	token.ADD:     ir.OpAdd,
	token.SUB:     ir.OpSub,
	token.MUL:     ir.OpMul,
	token.QUO:     ir.OpDiv,
	token.REM:     ir.OpRem,
	token.AND:     ir.OpAnd,
	token.AND_NOT: ir.OpAndNot,
	token.OR:      ir.OpOr,
	token.XOR:     ir.OpXor,
	token.SHL:     ir.OpShl,
	token.SHR:     ir.OpShr,
}

var cmpPreds = map[token.Token]string{
	token.EQL: "eq",
	token.NEQ: "ne",
	token.LSS: "lt",
	token.LEQ: "le",
	token.GTR: "gt",
	token.GEQ: "ge",
}

// safeToken rewrites an SSA name into the token syntax the LIR reader
// accepts. Method names and constants carry parentheses, commas, colons,
// quotes, and spaces, all of which collide with signature or operand
// syntax; every offending byte becomes an underscore. The rewrite is
// deterministic, so loop identifiers stay stable across lowers.
func safeToken(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '_', c == '.', c == '/', c == '$', c == '*', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// lowerFunc lowers fn, which must have a body.
func lowerFunc(fn *ssa.Function) *ir.Function {
	out := &ir.Function{Name: safeToken(fn.String())}
	for _, p := range fn.Params {
		out.Params = append(out.Params, safeToken(p.Name()))
	}

	blocks := make(map[*ssa.BasicBlock]*ir.Block, len(fn.Blocks))
	for _, b := range fn.Blocks {
		nb := &ir.Block{Name: blockName(b), Index: len(out.Blocks)}
		out.Blocks = append(out.Blocks, nb)
		blocks[b] = nb
	}
	for _, b := range fn.Blocks {
		nb := blocks[b]
		for _, in := range b.Instrs {
			nb.Insts = append(nb.Insts, lowerInstr(in, blocks)...)
		}
		// Edges come from the SSA successor list, in order, so the
		// lowered CFG matches the source CFG exactly.
		for _, succ := range b.Succs {
			ir.AddEdge(nb, blocks[succ])
		}
	}
	// Sanitize after lowering so branch and phi targets stay in sync with
	// the (already safe) block names.
	for _, b := range out.Blocks {
		for _, in := range b.Insts {
			in.Name = safeToken(in.Name)
			for i, a := range in.Args {
				in.Args[i] = safeToken(a)
			}
		}
	}
	return out
}

// blockName combines the SSA block comment and index. The index keeps
// names unique; the comment keeps loop identifiers recognizable
// ("for.body2" rather than "b2").
func blockName(b *ssa.BasicBlock) string {
	c := b.Comment
	if c == "" {
		c = "b"
	}
	return fmt.Sprintf("%s%d", c, b.Index)
}

// lowerInstr lowers one SSA instruction. Usually one ir instruction;
// panic lowers to a call plus an unreachable terminator.
func lowerInstr(in ssa.Instruction, blocks map[*ssa.BasicBlock]*ir.Block) []*ir.Instruction {
	switch t := in.(type) {
	case *ssa.UnOp:
		if t.Op == token.MUL {
			return one(ir.OpLoad, t.Name(), t.X.Name())
		}
		return one(ir.OpOther, t.Name(), operandNames(in)...)

	case *ssa.Store:
		return one(ir.OpStore, "", t.Val.Name(), t.Addr.Name())

	case *ssa.Call:
		return one(ir.OpCall, t.Name(), callArgs(t.Common())...)
	case *ssa.Go:
		return one(ir.OpCall, "", callArgs(t.Common())...)
	case *ssa.Defer:
		return one(ir.OpCall, "", callArgs(t.Common())...)

	case *ssa.BinOp:
		if pred, ok := cmpPreds[t.Op]; ok {
			return one(ir.OpCmp, t.Name(), pred, t.X.Name(), t.Y.Name())
		}
		if op, ok := binOps[t.Op]; ok {
			return one(op, t.Name(), t.X.Name(), t.Y.Name())
		}
		return one(ir.OpOther, t.Name(), t.X.Name(), t.Y.Name())

	case *ssa.Phi:
		b := t.Block()
		var args []string
		for i, edge := range t.Edges {
			args = append(args, blocks[b.Preds[i]].Name, edge.Name())
		}
		return one(ir.OpPhi, t.Name(), args...)

	case *ssa.Jump:
		b := t.Block()
		return one(ir.OpBr, "", blocks[b.Succs[0]].Name)

	case *ssa.If:
		b := t.Block()
		return one(ir.OpCBr, "", t.Cond.Name(), blocks[b.Succs[0]].Name, blocks[b.Succs[1]].Name)

	case *ssa.Return:
		var args []string
		for _, r := range t.Results {
			args = append(args, r.Name())
		}
		return one(ir.OpRet, "", args...)

	case *ssa.Panic:
		// Panic both calls the runtime and terminates the block.
		return []*ir.Instruction{
			{Op: ir.OpCall, Args: []string{"panic", t.X.Name()}},
			{Op: ir.OpUnreachable},
		}

	default:
		name := ""
		if v, ok := in.(ssa.Value); ok {
			name = v.Name()
		}
		return one(ir.OpOther, name, operandNames(in)...)
	}
}

func one(op ir.Op, name string, args ...string) []*ir.Instruction {
	return []*ir.Instruction{{Op: op, Name: name, Args: args}}
}

// callArgs renders a call's callee followed by its arguments. Interface
// method invocations have no Value; the method name stands in.
func callArgs(c *ssa.CallCommon) []string {
	callee := ""
	if c.IsInvoke() {
		callee = c.Method.Name()
	} else {
		callee = c.Value.Name()
	}
	args := []string{callee}
	for _, a := range c.Args {
		args = append(args, a.Name())
	}
	return args
}

// operandNames lists the non-nil operand names of an instruction.
func operandNames(in ssa.Instruction) []string {
	var names []string
	for _, rand := range in.Operands(nil) {
		if rand != nil && *rand != nil {
			names = append(names, (*rand).Name())
		}
	}
	return names
}
