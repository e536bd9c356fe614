// print.go emits a module back into the textual LIR form accepted by
// Parse, including attached metadata annotations. Printing then reparsing
// an unchanged module reproduces it, which is what lets an annotated unit
// travel through a file to the downstream consumer.
package ir

import (
	"fmt"
	"strings"
)

// Print renders the module in textual LIR form.
func Print(m *Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s\n", m.Name)
	for _, fn := range m.Funcs {
		sb.WriteByte('\n')
		printFunc(&sb, fn)
	}
	return sb.String()
}

func printFunc(sb *strings.Builder, fn *Function) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = "%" + p
	}
	if !fn.HasBody() {
		fmt.Fprintf(sb, "decl @%s(%s)\n", fn.Name, strings.Join(params, ", "))
		return
	}
	fmt.Fprintf(sb, "func @%s(%s) {\n", fn.Name, strings.Join(params, ", "))
	for _, b := range fn.Blocks {
		fmt.Fprintf(sb, "%s:\n", b.Name)
		for _, in := range b.Insts {
			fmt.Fprintf(sb, "  %s\n", formatInst(in))
		}
	}
	sb.WriteString("}\n")
}

func formatInst(in *Instruction) string {
	var sb strings.Builder
	if in.Name != "" {
		fmt.Fprintf(&sb, "%%%s = ", in.Name)
	}
	sb.WriteString(in.Op.String())
	if in.Op == OpPhi {
		sb.WriteString(" [")
		for i := 0; i+1 < len(in.Args); i += 2 {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s: %s", in.Args[i], in.Args[i+1])
		}
		sb.WriteString("]")
	} else if len(in.Args) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(strings.Join(in.Args, ", "))
	}
	for _, channel := range in.Channels() {
		ann := in.AnnotationOn(channel)
		fmt.Fprintf(&sb, " !%s[%s = %d]", channel, ann.Key, ann.Value)
	}
	return sb.String()
}
