// parse.go implements the textual LIR reader.
//
// Format, by example:
//
//	# saxpy kernel
//	module saxpy
//
//	func @saxpy(%n, %a, %x, %y) {
//	entry:
//	  br loop
//	loop:
//	  %i = phi [entry: 0, body: %i2]
//	  %c = cmp lt, %i, %n
//	  cbr %c, body, exit
//	body:
//	  %xv = load %x
//	  %m = mul %a, %xv
//	  %i2 = add %i, 1
//	  br loop
//	exit:
//	  ret
//	}
//
//	decl @log(%v)
//
// Lines starting with '#' are comments. Operands are comma separated;
// the cmp predicate is its first operand, phi takes [label: value, ...]
// pairs. An instruction may carry a metadata annotation suffix of the
// form `!channel[key = value]`, which is how the application phase's
// output survives a round trip through a file.
package ir

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseError reports a syntax or structural error with its position.
type ParseError struct {
	File    string
	Line    int // 1-indexed; 0 when the error is not tied to a line
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Parse reads a textual LIR module. The module name defaults to the file
// base name when no `module` line is present.
func Parse(filename string, src []byte) (*Module, error) {
	p := &parser{
		file: filename,
		m: &Module{
			Name: strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)),
		},
	}
	if err := p.run(string(src)); err != nil {
		return nil, err
	}
	return p.m, nil
}

type parser struct {
	file string
	m    *Module

	// state of the function currently being parsed, nil between functions
	fn        *Function
	cur       *Block
	blockLine map[string]int
	fnLine    int
}

func (p *parser) errf(line int, format string, args ...any) error {
	return &ParseError{File: p.file, Line: line, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) run(src string) error {
	for i, raw := range strings.Split(src, "\n") {
		lineno := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.line(lineno, line); err != nil {
			return err
		}
	}
	if p.fn != nil {
		return p.errf(p.fnLine, "function @%s not closed", p.fn.Name)
	}
	return nil
}

func (p *parser) line(lineno int, line string) error {
	switch {
	case strings.HasPrefix(line, "module "):
		if p.fn != nil {
			return p.errf(lineno, "module line inside function body")
		}
		p.m.Name = strings.TrimSpace(strings.TrimPrefix(line, "module "))
		return nil

	case strings.HasPrefix(line, "func "):
		if p.fn != nil {
			return p.errf(lineno, "nested function declaration")
		}
		name, params, err := p.signature(lineno, strings.TrimPrefix(line, "func "), true)
		if err != nil {
			return err
		}
		p.fn = &Function{Name: name, Params: params}
		p.blockLine = make(map[string]int)
		p.fnLine = lineno
		return p.checkDupFunc(lineno, name)

	case strings.HasPrefix(line, "decl "):
		if p.fn != nil {
			return p.errf(lineno, "declaration inside function body")
		}
		name, params, err := p.signature(lineno, strings.TrimPrefix(line, "decl "), false)
		if err != nil {
			return err
		}
		if err := p.checkDupFunc(lineno, name); err != nil {
			return err
		}
		p.m.Funcs = append(p.m.Funcs, &Function{Name: name, Params: params})
		return nil

	case line == "}":
		if p.fn == nil {
			return p.errf(lineno, "unmatched '}'")
		}
		if err := p.finishFunc(); err != nil {
			return err
		}
		p.m.Funcs = append(p.m.Funcs, p.fn)
		p.fn, p.cur = nil, nil
		return nil

	case strings.HasSuffix(line, ":") && !strings.ContainsAny(strings.TrimSuffix(line, ":"), " \t"):
		if p.fn == nil {
			return p.errf(lineno, "block label outside function")
		}
		name := strings.TrimSuffix(line, ":")
		if _, dup := p.blockLine[name]; dup {
			return p.errf(lineno, "duplicate block %q in @%s", name, p.fn.Name)
		}
		b := &Block{Name: name, Index: len(p.fn.Blocks)}
		p.fn.Blocks = append(p.fn.Blocks, b)
		p.blockLine[name] = lineno
		p.cur = b
		return nil

	default:
		if p.fn == nil {
			return p.errf(lineno, "instruction outside function: %q", line)
		}
		if p.cur == nil {
			return p.errf(lineno, "instruction before first block label in @%s", p.fn.Name)
		}
		inst, err := p.instruction(lineno, line)
		if err != nil {
			return err
		}
		p.cur.Insts = append(p.cur.Insts, inst)
		return nil
	}
}

func (p *parser) checkDupFunc(lineno int, name string) error {
	for _, fn := range p.m.Funcs {
		if fn.Name == name {
			return p.errf(lineno, "duplicate function @%s", name)
		}
	}
	return nil
}

// signature parses `@name(%a, %b)` with an optional trailing `{`.
func (p *parser) signature(lineno int, s string, wantBody bool) (string, []string, error) {
	s = strings.TrimSpace(s)
	if wantBody {
		if !strings.HasSuffix(s, "{") {
			return "", nil, p.errf(lineno, "func line missing '{'")
		}
		s = strings.TrimSpace(strings.TrimSuffix(s, "{"))
	}
	open := strings.IndexByte(s, '(')
	if !strings.HasPrefix(s, "@") || open < 0 || !strings.HasSuffix(s, ")") {
		return "", nil, p.errf(lineno, "malformed signature %q", s)
	}
	name := s[1:open]
	if name == "" {
		return "", nil, p.errf(lineno, "empty function name")
	}
	var params []string
	if inner := strings.TrimSpace(s[open+1 : len(s)-1]); inner != "" {
		for _, f := range strings.Split(inner, ",") {
			params = append(params, strings.TrimPrefix(strings.TrimSpace(f), "%"))
		}
	}
	return name, params, nil
}

var opKeywords = map[string]Op{}

func init() {
	for op := OpOther; op <= OpUnreachable; op++ {
		opKeywords[op.String()] = op
	}
}

// instruction parses `[%name =] op operands [!channel[key = value]]`.
func (p *parser) instruction(lineno int, line string) (*Instruction, error) {
	inst := &Instruction{}

	// Detach the metadata suffix first so operand parsing never sees it.
	if at := strings.LastIndex(line, " !"); at >= 0 {
		channel, ann, err := p.annotation(lineno, strings.TrimSpace(line[at+1:]))
		if err != nil {
			return nil, err
		}
		inst.SetAnnotation(channel, ann)
		line = strings.TrimSpace(line[:at])
	}

	if eq := strings.Index(line, "="); eq >= 0 && strings.HasPrefix(line, "%") {
		inst.Name = strings.TrimPrefix(strings.TrimSpace(line[:eq]), "%")
		line = strings.TrimSpace(line[eq+1:])
	}

	opWord, rest, _ := strings.Cut(line, " ")
	op, ok := opKeywords[opWord]
	if !ok {
		return nil, p.errf(lineno, "unknown opcode %q", opWord)
	}
	inst.Op = op
	rest = strings.TrimSpace(rest)

	if op == OpPhi {
		args, err := p.phiArgs(lineno, rest)
		if err != nil {
			return nil, err
		}
		inst.Args = args
		return inst, nil
	}
	if rest != "" {
		for _, f := range strings.Split(rest, ",") {
			inst.Args = append(inst.Args, strings.TrimSpace(f))
		}
	}
	if op == OpInvoke && len(inst.Args) != 3 {
		return nil, p.errf(lineno, "invoke needs callee and two target labels")
	}
	return inst, nil
}

// phiArgs parses `[label: value, label: value]` into flat pairs.
func (p *parser) phiArgs(lineno int, s string) ([]string, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, p.errf(lineno, "phi operands must be [label: value, ...]")
	}
	var args []string
	for _, pair := range strings.Split(s[1:len(s)-1], ",") {
		label, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, p.errf(lineno, "malformed phi pair %q", strings.TrimSpace(pair))
		}
		args = append(args, strings.TrimSpace(label), strings.TrimSpace(value))
	}
	return args, nil
}

// annotation parses `!channel[key = value]`.
func (p *parser) annotation(lineno int, s string) (string, *Annotation, error) {
	if !strings.HasPrefix(s, "!") || !strings.HasSuffix(s, "]") {
		return "", nil, p.errf(lineno, "malformed annotation %q", s)
	}
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return "", nil, p.errf(lineno, "malformed annotation %q", s)
	}
	channel := s[1:open]
	key, valText, ok := strings.Cut(s[open+1:len(s)-1], "=")
	if !ok {
		return "", nil, p.errf(lineno, "annotation %q missing '='", s)
	}
	val, err := strconv.ParseInt(strings.TrimSpace(valText), 10, 64)
	if err != nil {
		return "", nil, p.errf(lineno, "annotation value %q is not an integer", strings.TrimSpace(valText))
	}
	return channel, &Annotation{Key: strings.TrimSpace(key), Value: val}, nil
}

// finishFunc validates terminators and wires the CFG edges of p.fn.
func (p *parser) finishFunc() error {
	fn := p.fn
	if len(fn.Blocks) == 0 {
		return p.errf(p.fnLine, "function @%s has a body with no blocks", fn.Name)
	}
	for _, b := range fn.Blocks {
		line := p.blockLine[b.Name]
		if len(b.Insts) == 0 {
			return p.errf(line, "block %q in @%s is empty", b.Name, fn.Name)
		}
		term := b.Insts[len(b.Insts)-1]
		if !term.Op.IsTerminator() {
			return p.errf(line, "block %q in @%s does not end in a terminator", b.Name, fn.Name)
		}
		for _, in := range b.Insts[:len(b.Insts)-1] {
			if in.Op.IsTerminator() {
				return p.errf(line, "terminator %s in the middle of block %q", in.Op, b.Name)
			}
		}
		var targets []string
		switch term.Op {
		case OpBr:
			if len(term.Args) != 1 {
				return p.errf(line, "br needs exactly one target label")
			}
			targets = term.Args
		case OpCBr:
			if len(term.Args) != 3 {
				return p.errf(line, "cbr needs a condition and two target labels")
			}
			targets = term.Args[1:]
		case OpInvoke:
			targets = term.Args[1:]
		}
		for _, t := range targets {
			succ := fn.Block(t)
			if succ == nil {
				return p.errf(line, "block %q branches to unknown label %q", b.Name, t)
			}
			AddEdge(b, succ)
		}
	}
	return nil
}
